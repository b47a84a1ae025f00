package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/google/go-cmp/cmp"
	"github.com/takoeight0821/symdiff/config"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, config.RelPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "variable: t\nprecision: 128\nlog_level: debug\n")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &config.Config{Variable: "t", Precision: 128, LogLevel: "debug", History: true}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("level %v, want debug", cfg.Level())
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		content string
		want    string
	}{
		{"variable: pi\n", "variable"},
		{"precision: 2\n", "precision"},
		{"log_level: loud\n", "log_level"},
		{"history: [\n", "parse"},
	}

	for _, c := range cases {
		path := writeConfig(t, t.TempDir(), c.content)
		_, err := config.Load(path)
		if err == nil || !strings.Contains(err.Error(), c.want) {
			t.Errorf("%q: got %v, want an error mentioning %s", c.content, err, c.want)
		}
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	if err := config.Default().Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoadDefaultSearchesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CONFIG_DIRS", filepath.Join(dir, "none"))
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	cfg, err := config.LoadDefault()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Errorf("without a file (-want +got):\n%s", diff)
	}

	writeConfig(t, dir, "history: false\n")
	cfg, err = config.LoadDefault()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.History {
		t.Error("history should be disabled by the config file")
	}
}
