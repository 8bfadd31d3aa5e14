package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Configuration represents the complete application configuration.
type Configuration struct {
	Global   GlobalConfig   `yaml:"global"`
	Provider ProviderConfig `yaml:"provider"`
	Survey   SurveyConfig   `yaml:"survey"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Geo      GeoConfig      `yaml:"geo"`
	Origin   OriginConfig   `yaml:"origin"`
}

// GlobalConfig represents global application settings.
type GlobalConfig struct {
	LogLevel string `yaml:"log_level"`
}

// ProviderConfig selects the active storage backend and carries the opaque
// credential/root configuration for each one. Credentials are treated as
// inputs; nothing beyond presence is validated here.
type ProviderConfig struct {
	Active  string        `yaml:"active"`
	S3      S3Config      `yaml:"s3"`
	Dropbox DropboxConfig `yaml:"dropbox"`
	GDrive  GDriveConfig  `yaml:"gdrive"`
	GridFS  GridFSConfig  `yaml:"gridfs"`
	Local   LocalConfig   `yaml:"local"`
}

// S3Config configures the object-store backend.
type S3Config struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
	RootPath        string `yaml:"root_path"`
	// PublicBaseURL is the browser-reachable base for seeded assets,
	// e.g. "https://bench-assets.s3.eu-north-1.amazonaws.com".
	PublicBaseURL string `yaml:"public_base_url"`
}

// DropboxConfig configures the Dropbox consumer-drive backend.
type DropboxConfig struct {
	AccessToken string `yaml:"access_token"`
	RootPath    string `yaml:"root_path"`
}

// GDriveConfig configures the Google Drive consumer-drive backend.
type GDriveConfig struct {
	AccessToken  string `yaml:"access_token"`
	RootFolderID string `yaml:"root_folder_id"`
}

// GridFSConfig configures the NoSQL-backed file store (MongoDB GridFS).
type GridFSConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
	Bucket   string `yaml:"bucket"`
	RootPath string `yaml:"root_path"`
	// GatewayBaseURL is the HTTP gateway that serves GridFS content.
	GatewayBaseURL string `yaml:"gateway_base_url"`
}

// LocalConfig configures the client-local origin backend.
type LocalConfig struct {
	Root    string `yaml:"root"`
	BaseURL string `yaml:"base_url"`
}

// SurveyConfig governs case selection.
type SurveyConfig struct {
	// UsePreconfigured presents PresetCases instead of a live listing.
	UsePreconfigured bool     `yaml:"use_preconfigured"`
	CasesPath        string   `yaml:"cases_path"`
	PresetCases      []string `yaml:"preset_cases"`
	// Shuffle is one of none, full, categorized.
	Shuffle string `yaml:"shuffle"`
	// Manifests maps a case name to the fixed asset filenames measured for
	// it. Cases without an entry fall back to a live directory listing.
	Manifests map[string][]string `yaml:"manifests"`
}

// MetricsConfig governs the measurement engine and report output.
type MetricsConfig struct {
	OutputDir        string `yaml:"output_dir"`
	EnablePrometheus bool   `yaml:"enable_prometheus"`
}

// GeoConfig configures the IP geolocation lookup.
type GeoConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// OriginConfig configures the local asset origin server.
type OriginConfig struct {
	Listen string `yaml:"listen"`
	Root   string `yaml:"root"`
}

// providerNames are the recognized backend identifiers.
var providerNames = map[string]bool{
	"s3":      true,
	"dropbox": true,
	"gdrive":  true,
	"gridfs":  true,
	"local":   true,
}

// NewDefault returns a configuration with sensible defaults.
func NewDefault() *Configuration {
	return &Configuration{
		Global: GlobalConfig{
			LogLevel: "INFO",
		},
		Provider: ProviderConfig{
			Active: "local",
			S3: S3Config{
				Region:   "us-east-1",
				RootPath: "assets",
			},
			Dropbox: DropboxConfig{
				RootPath: "/assets",
			},
			GridFS: GridFSConfig{
				Database: "mediabench",
				Bucket:   "assets",
				RootPath: "assets",
			},
			Local: LocalConfig{
				Root:    "./assets",
				BaseURL: "http://localhost:8380",
			},
		},
		Survey: SurveyConfig{
			UsePreconfigured: false,
			CasesPath:        "assets",
			Shuffle:          "none",
			Manifests:        map[string][]string{},
		},
		Metrics: MetricsConfig{
			OutputDir:        ".",
			EnablePrometheus: false,
		},
		Geo: GeoConfig{
			Endpoint: "https://ipapi.co/json/",
			Timeout:  5 * time.Second,
		},
		Origin: OriginConfig{
			Listen: ":8380",
			Root:   "./assets",
		},
	}
}

// LoadFromFile reads a YAML configuration file, expanding ${VAR} environment
// references in its contents, and merges it over the defaults.
func LoadFromFile(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := NewDefault()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for consistency. Backend credentials are
// checked for presence only.
func (c *Configuration) Validate() error {
	active := strings.ToLower(c.Provider.Active)
	if !providerNames[active] {
		return fmt.Errorf("unknown provider %q (want s3, dropbox, gdrive, gridfs or local)", c.Provider.Active)
	}

	switch c.Survey.Shuffle {
	case "none", "full", "categorized":
	default:
		return fmt.Errorf("unknown shuffle mode %q (want none, full or categorized)", c.Survey.Shuffle)
	}

	switch active {
	case "s3":
		if c.Provider.S3.Bucket == "" {
			return fmt.Errorf("s3 provider requires a bucket")
		}
		if c.Provider.S3.PublicBaseURL == "" {
			return fmt.Errorf("s3 provider requires a public base URL")
		}
	case "dropbox":
		if c.Provider.Dropbox.AccessToken == "" {
			return fmt.Errorf("dropbox provider requires an access token")
		}
	case "gdrive":
		if c.Provider.GDrive.AccessToken == "" {
			return fmt.Errorf("gdrive provider requires an access token")
		}
		if c.Provider.GDrive.RootFolderID == "" {
			return fmt.Errorf("gdrive provider requires a root folder id")
		}
	case "gridfs":
		if c.Provider.GridFS.URI == "" {
			return fmt.Errorf("gridfs provider requires a connection URI")
		}
		if c.Provider.GridFS.GatewayBaseURL == "" {
			return fmt.Errorf("gridfs provider requires a gateway base URL")
		}
	case "local":
		if c.Provider.Local.Root == "" {
			return fmt.Errorf("local provider requires an asset root")
		}
		if c.Provider.Local.BaseURL == "" {
			return fmt.Errorf("local provider requires a base URL")
		}
	}

	if c.Survey.UsePreconfigured && len(c.Survey.PresetCases) == 0 {
		return fmt.Errorf("use_preconfigured is set but preset_cases is empty")
	}

	if c.Geo.Timeout < 0 {
		return fmt.Errorf("geo timeout must not be negative")
	}

	return nil
}
