package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dori/dsboard/internal/board"
	"github.com/dori/dsboard/internal/model"
)

// isolate points every lookup at an empty temp home so the developer's
// own config never leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	for _, k := range []string{"DSBOARD_CONFIG", "DSBOARD_DATA_DIR", "DSBOARD_THEME", "DSBOARD_LOG_LEVEL", "DSBOARD_SEED_URL", "DSBOARD_SEED_ENABLED"} {
		t.Setenv(k, "")
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if cfg.DataDir != filepath.Join(home, ".local", "share", "dsboard") {
		t.Errorf("DataDir: got %q", cfg.DataDir)
	}
	if cfg.Theme != DefaultTheme || cfg.StorageKey != DefaultStorageKey {
		t.Errorf("Theme/StorageKey: got %q/%q", cfg.Theme, cfg.StorageKey)
	}
	if !cfg.Seed.Enabled || cfg.Seed.Limit != 15 || cfg.Seed.Timeout.Duration != 10*time.Second {
		t.Errorf("Seed: got %+v", cfg.Seed)
	}
	if cfg.DefaultAssignee() != "Ann" {
		t.Errorf("DefaultAssignee: got %q, want Ann", cfg.DefaultAssignee())
	}
	if cfg.File != "" {
		t.Errorf("File: got %q, want none", cfg.File)
	}
}

func TestDefaultDoesNotShareBands(t *testing.T) {
	cfg := Default()
	cfg.Seed.Bands[0].Size = 99
	if board.DefaultBands[0].Size == 99 {
		t.Error("Default aliases board.DefaultBands")
	}
}

func TestBoardBandsMatchesConfig(t *testing.T) {
	seed := SeedConfig{Bands: []BandConfig{
		{Column: model.StatusTodo, Size: 2},
		{Column: model.StatusDone, Size: 5},
	}}
	got := seed.BoardBands()
	want := []board.Band{{Column: model.StatusTodo, Size: 2}, {Column: model.StatusDone, Size: 5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BoardBands() = %+v, want %+v", got, want)
	}
	if got := Default().Seed.BoardBands(); !reflect.DeepEqual(got, board.DefaultBands) {
		t.Errorf("default bands = %+v, want %+v", got, board.DefaultBands)
	}
}

func TestLoadUserConfigFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".config", "dsboard", "config.toml"), `
theme = "dracula"
data_dir = "~/boards"

[seed]
limit = 4
timeout = "250ms"
bands = [
  { column = "todo", size = 2 },
  { column = "done", size = 2 },
]

[roster]
names = ["Kim", "Lee"]
`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if cfg.Theme != "dracula" {
		t.Errorf("Theme: got %q", cfg.Theme)
	}
	if cfg.DataDir != filepath.Join(home, "boards") {
		t.Errorf("DataDir: got %q", cfg.DataDir)
	}
	if cfg.Seed.Limit != 4 || cfg.Seed.Timeout.Duration != 250*time.Millisecond {
		t.Errorf("Seed: got %+v", cfg.Seed)
	}
	if len(cfg.Seed.Bands) != 2 || cfg.Seed.Bands[1].Column != model.StatusDone {
		t.Errorf("Bands: got %+v", cfg.Seed.Bands)
	}
	// keys missing from the file keep their defaults
	if !cfg.Seed.Enabled || cfg.Seed.URL != DefaultSeedURL {
		t.Errorf("Seed defaults lost: %+v", cfg.Seed)
	}
	// an unset roster default falls back to the first name
	if cfg.DefaultAssignee() != "Kim" {
		t.Errorf("DefaultAssignee: got %q", cfg.DefaultAssignee())
	}
}

func TestEnvOverridesFile(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "custom.toml")
	writeFile(t, path, `theme = "gruvbox"`)

	t.Setenv("DSBOARD_CONFIG", path)
	t.Setenv("DSBOARD_THEME", "catppuccin")
	t.Setenv("DSBOARD_SEED_ENABLED", "false")
	t.Setenv("DSBOARD_DATA_DIR", filepath.Join(home, "data"))

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.File != path {
		t.Errorf("File: got %q, want %q", cfg.File, path)
	}
	if cfg.Theme != "catppuccin" {
		t.Errorf("Theme: got %q, want env value", cfg.Theme)
	}
	if cfg.Seed.Enabled {
		t.Error("Seed.Enabled: env override ignored")
	}
	if cfg.DataDir != filepath.Join(home, "data") {
		t.Errorf("DataDir: got %q", cfg.DataDir)
	}
}

func TestLoadErrors(t *testing.T) {
	home := isolate(t)

	if _, err := Load(filepath.Join(home, "missing.toml")); err == nil {
		t.Error("explicit missing file should fail")
	}

	bad := filepath.Join(home, "bad.toml")
	writeFile(t, bad, `theme = `)
	if _, err := Load(bad); err == nil {
		t.Error("malformed file should fail")
	}

	unknown := filepath.Join(home, "unknown.toml")
	writeFile(t, unknown, `colour = "red"`)
	_, err := Load(unknown)
	if err == nil || !strings.Contains(err.Error(), "colour") {
		t.Errorf("unknown key: got %v", err)
	}

	t.Setenv("DSBOARD_SEED_ENABLED", "maybe")
	if _, err := Load(""); err == nil {
		t.Error("bad boolean env should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown theme", func(c *Config) { c.Theme = "solarized" }, "unknown theme"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"zero limit", func(c *Config) { c.Seed.Limit = 0 }, "seed.limit"},
		{"zero timeout", func(c *Config) { c.Seed.Timeout = Duration{} }, "seed.timeout"},
		{"unknown band column", func(c *Config) { c.Seed.Bands = []BandConfig{{Column: "archive", Size: 1}} }, "seed.bands"},
		{"negative band", func(c *Config) { c.Seed.Bands[0].Size = -1 }, "seed.bands"},
		{"empty key", func(c *Config) { c.StorageKey = " " }, "storage_key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.DataDir = t.TempDir()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := isolate(t)
	t.Setenv("BOARD_ROOT", "/srv/boards")

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"~", home},
		{"~/x", filepath.Join(home, "x")},
		{"$BOARD_ROOT/a", "/srv/boards/a"},
		{"/abs", "/abs"},
	}
	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPaths(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/data"
	if cfg.DBPath() != "/data/dsboard.db" || cfg.LogPath() != "/data/dsboard.log" || cfg.LockPath() != "/data/dsboard.lock" {
		t.Errorf("paths: %s %s %s", cfg.DBPath(), cfg.LogPath(), cfg.LockPath())
	}
}
