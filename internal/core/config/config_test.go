package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.RepoPath != "." {
		t.Errorf("RepoPath = %q, expected .", cfg.RepoPath)
	}
	if cfg.HeadRev != "HEAD" {
		t.Errorf("HeadRev = %q, expected HEAD", cfg.HeadRev)
	}
	if cfg.Format != "text" {
		t.Errorf("Format = %q, expected text", cfg.Format)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, expected info", cfg.LogLevel)
	}
	if cfg.Verbose {
		t.Error("Verbose should default to false")
	}
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("CG_VALIDATE_FORMAT", "json")
	t.Setenv("CG_VALIDATE_BASE", "origin/main")
	t.Setenv("CG_LOG_LEVEL", "debug")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, expected json", cfg.Format)
	}
	if cfg.BaseRev != "origin/main" {
		t.Errorf("BaseRev = %q, expected origin/main", cfg.BaseRev)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, expected debug", cfg.LogLevel)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
validate:
  policy: policies/prod.yaml
  base: origin/main
  format: json
log:
  level: warn
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.PolicyPath != "policies/prod.yaml" {
		t.Errorf("PolicyPath = %q", cfg.PolicyPath)
	}
	if cfg.BaseRev != "origin/main" {
		t.Errorf("BaseRev = %q", cfg.BaseRev)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q", cfg.Format)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	// Untouched keys keep their defaults.
	if cfg.HeadRev != "HEAD" {
		t.Errorf("HeadRev = %q, expected HEAD", cfg.HeadRev)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		setup string
	}{
		{"bad format", map[string]string{"CG_VALIDATE_FORMAT": "xml"}, ""},
		{"bad log level", map[string]string{"CG_LOG_LEVEL": "trace"}, ""},
		{"bad log format", map[string]string{"CG_LOG_FORMAT": "csv"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(""); err == nil {
				t.Error("LoadConfig() expected an error")
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadConfig() on a missing file should error")
	}
}
