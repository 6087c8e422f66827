// internal/appconfig/appconfig_test.go
package appconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// TestLoad checks that values from the file override the defaults and that
// unset keys keep them.
func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `{"input": "runs/results.json", "rsrpRuns": 3, "noColor": true}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() with valid config failed: %v", err)
	}
	if cfg.Input != "runs/results.json" {
		t.Fatalf("expected input from file, got %q", cfg.Input)
	}
	if cfg.RSRPRuns != 3 {
		t.Fatalf("expected rsrpRuns 3, got %d", cfg.RSRPRuns)
	}
	if !cfg.NoColor {
		t.Fatalf("expected noColor true")
	}
	if cfg.HTMLOutput != defaultHTMLOutput {
		t.Fatalf("expected default html output, got %q", cfg.HTMLOutput)
	}
	if cfg.CacheSize != defaultCacheSize {
		t.Fatalf("expected default cache size, got %d", cfg.CacheSize)
	}
	if cfg.ConfigPath != path {
		t.Fatalf("expected config path %q, got %q", path, cfg.ConfigPath)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for explicit missing file")
	}

	bad := writeConfig(t, dir, `{"input": `)
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}

	negative := writeConfig(t, t.TempDir(), `{"rsrpRuns": -1}`)
	if _, err := Load(negative); err == nil {
		t.Fatalf("expected validation error for negative runs")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty log level keeps current", mutate: func(c *Config) { c.LogLevel = "" }},
		{name: "warn level", mutate: func(c *Config) { c.LogLevel = "warn" }},
		{name: "empty input", mutate: func(c *Config) { c.Input = " " }, wantErr: true},
		{name: "negative runs", mutate: func(c *Config) { c.RSRPRuns = -1 }, wantErr: true},
		{name: "zero cache size", mutate: func(c *Config) { c.CacheSize = 0 }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected validation error for %+v", cfg)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoadDefaultPathMissing(t *testing.T) {
	oldCwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldCwd) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ConfigPath != "" {
		t.Fatalf("expected no config path, got %q", cfg.ConfigPath)
	}
	if cfg != withPath(Defaults(), "") {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func withPath(c Config, path string) Config {
	c.ConfigPath = path
	return c
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FIELDREPORT_TITLE", "Drive Week 12")
	path := writeConfig(t, t.TempDir(), `{"title": "from file"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Title != "Drive Week 12" {
		t.Fatalf("expected env to override file, got %q", cfg.Title)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("FIELDREPORT_DOTENV_PROBE=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("FIELDREPORT_DOTENV_PROBE") })

	if err := LoadDotEnv(filepath.Join(dir, "absent.env"), envPath); err != nil {
		t.Fatalf("LoadDotEnv error: %v", err)
	}
	if got := os.Getenv("FIELDREPORT_DOTENV_PROBE"); got != "from-dotenv" {
		t.Fatalf("expected env var loaded, got %q", got)
	}
}

func TestShowConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := Defaults()
	cfg.Input = "a.json"
	ShowConfig(&buf, "config/config.json", &cfg, Config{})

	out := buf.String()
	for _, want := range []string{"Config file: config/config.json", "Input:           a.json", "Log File:        (stderr)", "Cache Size:      16"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %s", want, out)
		}
	}

	buf.Reset()
	fallback := Defaults()
	fallback.Debug = true
	ShowConfig(&buf, "", nil, fallback)
	out = buf.String()
	if !strings.Contains(out, "No config file loaded") {
		t.Fatalf("expected no-config notice, got %s", out)
	}
	if !strings.Contains(out, "Debug:           true") {
		t.Fatalf("expected fallback values, got %s", out)
	}
	if !strings.Contains(out, "RSRPDir") {
		t.Fatalf("expected struct dump in debug mode, got %s", out)
	}
}
