// Package config resolves server settings from defaults, an optional TOML
// file, SCHESS_* environment variables and command-line flags, in that
// order of increasing precedence.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"sandbox_chess/internal/game"
)

const envPrefix = "SCHESS_"

type Config struct {
	Addr     string     `toml:"addr"`
	Layout   string     `toml:"layout"`
	Turn     game.Color `toml:"turn"`
	LogLevel string     `toml:"log_level"`
	MaxGames int        `toml:"max_games"`
	Rules    game.Rules `toml:"rules"`
}

func Default() Config {
	return Config{
		Addr:     ":8080",
		Layout:   game.StartingLayout,
		Turn:     game.White,
		LogLevel: "info",
		MaxGames: 64,
		Rules:    game.DefaultRules(),
	}
}

// LoadFile overlays the settings found in a TOML file onto c. Unknown keys
// are rejected so typos do not silently fall back to defaults.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	return c.decode(data)
}

func (c *Config) decode(data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("config: %s", strict.String())
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("config: line %d column %d: %w", row, col, err)
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ApplyEnv overlays SCHESS_* variables. lookup is os.LookupEnv outside tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	env := envReader{lookup: lookup}
	c.Addr = env.str("ADDR", c.Addr)
	c.Layout = env.str("LAYOUT", c.Layout)
	c.LogLevel = env.str("LOG_LEVEL", c.LogLevel)
	if v := env.str("TURN", ""); v != "" {
		turn, ok := game.ParseColor(v)
		if !ok {
			return fmt.Errorf("%sTURN: invalid color %q", envPrefix, v)
		}
		c.Turn = turn
	}
	if v := env.str("MAX_GAMES", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_GAMES: %w", envPrefix, err)
		}
		c.MaxGames = n
	}
	c.Rules.Castle = env.boolean("CASTLE", c.Rules.Castle)
	c.Rules.Check = env.boolean("CHECK", c.Rules.Check)
	c.Rules.EnPassant = env.boolean("EN_PASSANT", c.Rules.EnPassant)
	c.Rules.Promotion = env.boolean("PROMOTION", c.Rules.Promotion)
	return nil
}

type envReader struct {
	lookup func(string) (string, bool)
}

func (e envReader) str(key, def string) string {
	if v, ok := e.lookup(envPrefix + key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (e envReader) boolean(key string, def bool) bool {
	v, ok := e.lookup(envPrefix + key)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	}
	return def
}

// Validate rejects settings a server cannot start with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: empty listen address")
	}
	if err := game.ValidateLayout(c.Layout); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.MaxGames < 1 {
		return fmt.Errorf("config: max_games must be positive, got %d", c.MaxGames)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// Encode renders c as TOML, in the format LoadFile reads.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// Load builds the effective configuration for a command line. The file
// named by -config (or SCHESS_CONFIG) is read first, the environment
// second, and flags given explicitly on the command line win.
func Load(fs *flag.FlagSet, args []string, lookup func(string) (string, bool)) (Config, error) {
	env := envReader{lookup: lookup}
	cfg := Default()

	path := fs.String("config", env.str("CONFIG", ""), "path to a TOML config file")
	addr := fs.String("addr", cfg.Addr, "listen address")
	layout := fs.String("layout", cfg.Layout, "initial board layout for new games")
	turn := fs.String("turn", cfg.Turn.String(), "side to move in the initial layout")
	level := fs.String("log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	maxGames := fs.Int("max-games", cfg.MaxGames, "maximum concurrent games")
	castle := fs.Bool("castle", cfg.Rules.Castle, "enable castling")
	check := fs.Bool("check", cfg.Rules.Check, "enable the check rule")
	enPassant := fs.Bool("en-passant", cfg.Rules.EnPassant, "enable en passant")
	promotion := fs.Bool("promotion", cfg.Rules.Promotion, "enable promotion")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *path != "" {
		if err := cfg.LoadFile(*path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return Config{}, err
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "layout":
			cfg.Layout = *layout
		case "turn":
			c, ok := game.ParseColor(*turn)
			if !ok {
				flagErr = fmt.Errorf("-turn: invalid color %q", *turn)
				return
			}
			cfg.Turn = c
		case "log-level":
			cfg.LogLevel = *level
		case "max-games":
			cfg.MaxGames = *maxGames
		case "castle":
			cfg.Rules.Castle = *castle
		case "check":
			cfg.Rules.Check = *check
		case "en-passant":
			cfg.Rules.EnPassant = *enPassant
		case "promotion":
			cfg.Rules.Promotion = *promotion
		}
	})
	if flagErr != nil {
		return Config{}, flagErr
	}
	return cfg, cfg.Validate()
}
