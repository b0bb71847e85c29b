package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"sandbox_chess/internal/config"
	"sandbox_chess/internal/httpx"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	origins := fs.String("origins", getenv("SCHESS_ORIGINS", ""), "comma-separated origins allowed for CORS and websockets")
	printConfig := fs.Bool("print-config", false, "print the effective configuration as TOML and exit")
	cfg, err := config.Load(fs, os.Args[1:], os.LookupEnv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *printConfig {
		out, err := cfg.Encode()
		if err != nil {
			log.Fatalf("encode config: %v", err)
		}
		os.Stdout.Write(out)
		return
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Info("starting", "addr", cfg.Addr, "rules", cfg.Rules.String(), "max_games", cfg.MaxGames)

	srv := httpx.NewServer(httpx.Options{
		Rules:          cfg.Rules,
		Layout:         cfg.Layout,
		Turn:           cfg.Turn,
		MaxGames:       cfg.MaxGames,
		AllowedOrigins: splitCSV(*origins),
		Logger:         logger.With("package", "httpx"),
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Close(ctx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	if err := srv.Listen(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
