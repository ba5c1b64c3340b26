// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"costcalc/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Pricing contains pricing configuration
	Pricing PricingConfig `json:"pricing"`

	// Region is the default pricing region
	Region string `json:"region"`

	// Units is the default unit system (imperial, metric)
	Units string `json:"units"`

	// DataDir is where preferences and history are persisted
	DataDir string `json:"data_dir"`

	// HistoryLimit caps the number of stored calculations per calculator
	HistoryLimit int `json:"history_limit"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// URL is the remote pricing table resource
	URL string `json:"url"`

	// FetchTimeoutSeconds bounds the remote fetch
	FetchTimeoutSeconds int `json:"fetch_timeout_seconds"`

	// OfflineOnly skips the remote fetch entirely
	OfflineOnly bool `json:"offline_only"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`

	// ShutdownTimeoutSeconds bounds graceful shutdown
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".costcalc")

	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			// Empty means embedded rates only; set COSTCALC_PRICING_URL to
			// layer a remote table on top.
			URL:                 "",
			FetchTimeoutSeconds: 10,
		},
		Region:       "national",
		Units:        "imperial",
		DataDir:      dataDir,
		HistoryLimit: 25,
		Server: ServerConfig{
			Addr:                   ":8080",
			ShutdownTimeoutSeconds: 10,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file, layering environment overrides on top
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	config.applyEnv()
	return config, nil
}

// LoadEnv loads a .env file (if present) and returns the default
// configuration with environment overrides applied.
func LoadEnv() *Config {
	_ = godotenv.Load()

	config := Default()
	config.applyEnv()
	return config
}

// applyEnv overlays COSTCALC_* environment variables
func (c *Config) applyEnv() {
	if v := os.Getenv("COSTCALC_PRICING_URL"); v != "" {
		c.Pricing.URL = v
	}
	if v := os.Getenv("COSTCALC_REGION"); v != "" {
		c.Region = v
	}
	if v := os.Getenv("COSTCALC_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("COSTCALC_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("COSTCALC_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
