package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()

	if cfg.Global.LogLevel != "INFO" {
		t.Errorf("Expected LogLevel to be INFO, got %s", cfg.Global.LogLevel)
	}
	if cfg.Provider.Active != "local" {
		t.Errorf("Expected default provider to be local, got %s", cfg.Provider.Active)
	}
	if cfg.Survey.Shuffle != "none" {
		t.Errorf("Expected default shuffle to be none, got %s", cfg.Survey.Shuffle)
	}
	if cfg.Geo.Timeout != 5*time.Second {
		t.Errorf("Expected geo timeout 5s, got %v", cfg.Geo.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default configuration should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Configuration)
		wantErr bool
	}{
		{
			name:    "valid default",
			mutate:  func(c *Configuration) {},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Configuration) { c.Provider.Active = "ftp" },
			wantErr: true,
		},
		{
			name:    "unknown shuffle mode",
			mutate:  func(c *Configuration) { c.Survey.Shuffle = "reverse" },
			wantErr: true,
		},
		{
			name: "s3 without bucket",
			mutate: func(c *Configuration) {
				c.Provider.Active = "s3"
				c.Provider.S3.PublicBaseURL = "https://bench.s3.amazonaws.com"
			},
			wantErr: true,
		},
		{
			name: "s3 complete",
			mutate: func(c *Configuration) {
				c.Provider.Active = "s3"
				c.Provider.S3.Bucket = "bench"
				c.Provider.S3.PublicBaseURL = "https://bench.s3.amazonaws.com"
			},
			wantErr: false,
		},
		{
			name:    "dropbox without token",
			mutate:  func(c *Configuration) { c.Provider.Active = "dropbox" },
			wantErr: true,
		},
		{
			name: "gridfs without gateway",
			mutate: func(c *Configuration) {
				c.Provider.Active = "gridfs"
				c.Provider.GridFS.URI = "mongodb://localhost:27017"
			},
			wantErr: true,
		},
		{
			name: "preconfigured without presets",
			mutate: func(c *Configuration) {
				c.Survey.UsePreconfigured = true
				c.Survey.PresetCases = nil
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	os.Setenv("MEDIABENCH_TEST_TOKEN", "sl.secret")
	defer os.Unsetenv("MEDIABENCH_TEST_TOKEN")

	content := `
global:
  log_level: DEBUG
provider:
  active: dropbox
  dropbox:
    access_token: ${MEDIABENCH_TEST_TOKEN}
    root_path: /bench
survey:
  shuffle: categorized
  preset_cases: [image-case1, audio-case2]
  use_preconfigured: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Global.LogLevel != "DEBUG" {
		t.Errorf("LogLevel = %s, want DEBUG", cfg.Global.LogLevel)
	}
	if cfg.Provider.Dropbox.AccessToken != "sl.secret" {
		t.Errorf("env expansion failed, token = %q", cfg.Provider.Dropbox.AccessToken)
	}
	if cfg.Provider.Dropbox.RootPath != "/bench" {
		t.Errorf("RootPath = %q, want /bench", cfg.Provider.Dropbox.RootPath)
	}
	if cfg.Survey.Shuffle != "categorized" {
		t.Errorf("Shuffle = %q, want categorized", cfg.Survey.Shuffle)
	}
	// Defaults must survive the merge.
	if cfg.Geo.Endpoint == "" {
		t.Error("geo endpoint default was lost")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
