package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadFrom_Valid(t *testing.T) {
	p := writeConfig(t, `server:
  port: ":9000"
pdf:
  timeout_secs: 10
  chrome_no_sandbox: true
rate_limiter:
  enabled: true
  max: 20
  interval: 1m
dev_mode: true
`)
	cfg := LoadFrom(p)
	if cfg.Server.Port != ":9000" {
		t.Fatalf("unexpected port: %q", cfg.Server.Port)
	}
	if cfg.PDF.TimeoutSecs != 10 {
		t.Fatalf("unexpected timeout: %d", cfg.PDF.TimeoutSecs)
	}
	if !cfg.PDF.ChromeNoSandbox || !cfg.DevMode {
		t.Fatalf("expected flags set: %+v", cfg)
	}
	if cfg.RateLimiter.Interval != time.Minute {
		t.Fatalf("unexpected interval: %v", cfg.RateLimiter.Interval)
	}
	// Defaults survive partial files.
	if cfg.PDF.DefaultPaper != "A4" {
		t.Fatalf("expected default paper A4, got %q", cfg.PDF.DefaultPaper)
	}
	if _, ok := cfg.PDF.PaperSizes["LETTER"]; !ok {
		t.Fatalf("expected default paper sizes to survive")
	}
}

func TestLoadFrom_PanicsOnInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{name: "zero timeout", yml: "pdf:\n  timeout_secs: 0\n"},
		{name: "unknown default paper", yml: "pdf:\n  default_paper: B0\n"},
		{name: "limiter enabled without max", yml: "rate_limiter:\n  enabled: true\n  max: 0\n"},
		{name: "negative html limit", yml: "limits:\n  max_html_bytes: -1\n"},
		{name: "broken yaml", yml: "server: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := writeConfig(t, tc.yml)
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
			}()
			_ = LoadFrom(p)
		})
	}
}

func TestLoad_UsesConfigPathEnv(t *testing.T) {
	p := writeConfig(t, `server:
  port: ":7777"
`)
	t.Setenv("CONFIG_PATH", p)
	cfg := Load()
	if cfg.Server.Port != ":7777" {
		t.Fatalf("expected CONFIG_PATH to be used")
	}
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	cfg := Load()
	if cfg.Server.Port != ":3000" {
		t.Fatalf("expected default port, got %q", cfg.Server.Port)
	}
	if cfg.PDF.MarginMM != 10 {
		t.Fatalf("expected default margin, got %v", cfg.PDF.MarginMM)
	}
}
