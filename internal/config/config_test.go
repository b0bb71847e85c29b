package config

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sandbox_chess/internal/game"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schess.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(newFlagSet(), nil, envMap(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if lvl, _ := cfg.Level(); lvl != slog.LevelInfo {
		t.Fatalf("expected info level, got %v", lvl)
	}
}

func TestPrecedence(t *testing.T) {
	path := writeFile(t, `
addr = ":9000"
turn = "black"
max_games = 4
log_level = "debug"

[rules]
castle = false
check = true
en_passant = false
promotion = true
`)
	tests := []struct {
		name  string
		args  []string
		env   map[string]string
		check func(t *testing.T, cfg Config)
	}{
		{
			name: "file only",
			args: []string{"-config", path},
			check: func(t *testing.T, cfg Config) {
				if cfg.Addr != ":9000" || cfg.Turn != game.Black || cfg.MaxGames != 4 {
					t.Fatalf("file values not applied: %+v", cfg)
				}
				if cfg.Rules.Castle || cfg.Rules.EnPassant || !cfg.Rules.Check {
					t.Fatalf("file rules not applied: %+v", cfg.Rules)
				}
			},
		},
		{
			name: "env over file",
			args: []string{"-config", path},
			env:  map[string]string{"SCHESS_ADDR": ":7000", "SCHESS_CASTLE": "yes", "SCHESS_TURN": "w"},
			check: func(t *testing.T, cfg Config) {
				if cfg.Addr != ":7000" || !cfg.Rules.Castle || cfg.Turn != game.White {
					t.Fatalf("env values not applied: %+v", cfg)
				}
				if cfg.MaxGames != 4 {
					t.Fatalf("file value lost: %+v", cfg)
				}
			},
		},
		{
			name: "config path from env",
			env:  map[string]string{"SCHESS_CONFIG": path},
			check: func(t *testing.T, cfg Config) {
				if cfg.Addr != ":9000" {
					t.Fatalf("config file from env not read: %+v", cfg)
				}
			},
		},
		{
			name: "flags over env",
			args: []string{"-config", path, "-addr", ":6000", "-check=false", "-max-games", "2"},
			env:  map[string]string{"SCHESS_ADDR": ":7000", "SCHESS_CHECK": "on"},
			check: func(t *testing.T, cfg Config) {
				if cfg.Addr != ":6000" || cfg.Rules.Check || cfg.MaxGames != 2 {
					t.Fatalf("flag values not applied: %+v", cfg)
				}
			},
		},
		{
			name: "unset flags keep lower layers",
			args: []string{"-config", path, "-promotion=false"},
			check: func(t *testing.T, cfg Config) {
				if cfg.Addr != ":9000" || cfg.Rules.Promotion {
					t.Fatalf("unexpected config: %+v", cfg)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(newFlagSet(), tt.args, envMap(tt.env))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		args []string
		env  map[string]string
		want string
	}{
		{name: "unknown key", body: "adr = \":1\"\n", want: "adr"},
		{name: "bad toml", body: "addr = \n", want: "line 1"},
		{name: "bad turn", body: "turn = \"green\"\n", want: "green"},
		{name: "bad layout", body: "layout = \"8/8\"\n", want: "layout"},
		{name: "bad level", args: []string{"-log-level", "loud"}, want: "log level"},
		{name: "bad max games", args: []string{"-max-games", "0"}, want: "max_games"},
		{name: "bad env number", env: map[string]string{"SCHESS_MAX_GAMES": "many"}, want: "SCHESS_MAX_GAMES"},
		{name: "bad flag turn", args: []string{"-turn", "red"}, want: "-turn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if tt.body != "" {
				args = append([]string{"-config", writeFile(t, tt.body)}, args...)
			}
			_, err := Load(newFlagSet(), args, envMap(tt.env))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Turn = game.Black
	cfg.Rules.EnPassant = false
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got := Default()
	if err := got.decode(data); err != nil {
		t.Fatalf("decode: %v\n%s", err, data)
	}
	if got != cfg {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}
