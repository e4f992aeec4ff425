// Package config provides configuration loading and validation for the CLI
// and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents the application configuration that can be loaded from a
// JSON file, overlaid with environment variables and CLI flags.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs
	Job         string `json:"job,omitempty"`          // Path to job posting text file
	JobURL      string `json:"job_url,omitempty"`      // URL to fetch job posting from
	ProfilePath string `json:"profile_path,omitempty"` // Path to the YAML knowledge base

	// LLM
	Provider    string `json:"provider,omitempty"`     // "local" or "gemini"
	EndpointURL string `json:"endpoint_url,omitempty"` // Local generation endpoint base URL
	ModelID     string `json:"model_id,omitempty"`     // Model identifier
	APIKey      string `json:"api_key,omitempty"`      // Provider API key

	// Research
	EnableWebSearch bool   `json:"enable_web_search,omitempty"` // Company research toggle
	SearchAPIKey    string `json:"search_api_key,omitempty"`    // Custom Search API key
	SearchEngineID  string `json:"search_engine_id,omitempty"`  // Custom Search engine ID

	// Behavior
	UseBrowser     bool    `json:"use_browser,omitempty"`     // Use headless browser for SPA sites
	Verbose        bool    `json:"verbose,omitempty"`         // Print detailed debug information
	RequestTimeout int     `json:"request_timeout,omitempty"` // LLM request timeout in seconds
	MaxBullets     int     `json:"max_bullets,omitempty"`     // Maximum bullets per experience
	TechWeight     float64 `json:"tech_weight,omitempty"`     // Technology-overlap ranking weight (0.0-1.0)

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Server
	ListenAddr string `json:"listen_addr,omitempty"` // HTTP serve address
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv overlays secrets and endpoints from environment variables onto c.
// Environment values win over file values so deployments can keep credentials
// out of config files.
func (c *Config) FromEnv() {
	if v := os.Getenv("CVTAILOR_ENDPOINT_URL"); v != "" {
		c.EndpointURL = v
	}
	if v := os.Getenv("CVTAILOR_MODEL_ID"); v != "" {
		c.ModelID = v
	}
	if v := os.Getenv("CVTAILOR_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && c.APIKey == "" {
		c.APIKey = v
	}
	if v := os.Getenv("SEARCH_API_KEY"); v != "" {
		c.SearchAPIKey = v
	}
	if v := os.Getenv("SEARCH_ENGINE_ID"); v != "" {
		c.SearchEngineID = v
	}
	if v := os.Getenv("ENABLE_WEB_SEARCH"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.EnableWebSearch = enabled
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate mutually exclusive fields
	if c.Job != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'job' and 'job_url' are mutually exclusive")
	}

	if c.Provider != "" && c.Provider != "local" && c.Provider != "gemini" {
		return fmt.Errorf("config error: 'provider' must be \"local\" or \"gemini\", got %q", c.Provider)
	}

	// Validate numeric ranges
	if c.MaxBullets < 0 {
		return fmt.Errorf("config error: 'max_bullets' must be non-negative")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("config error: 'request_timeout' must be non-negative")
	}
	if c.TechWeight < 0 || c.TechWeight > 1 {
		return fmt.Errorf("config error: 'tech_weight' must be between 0.0 and 1.0")
	}

	// Validate file paths exist (if specified)
	if c.ProfilePath != "" {
		if _, err := os.Stat(c.ProfilePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: profile file not found: %s", c.ProfilePath)
		}
	}

	if c.Job != "" {
		if _, err := os.Stat(c.Job); os.IsNotExist(err) {
			return fmt.Errorf("config error: job file not found: %s", c.Job)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Job == "" {
		result.Job = defaults.Job
	}
	if result.JobURL == "" {
		result.JobURL = defaults.JobURL
	}
	if result.ProfilePath == "" {
		result.ProfilePath = defaults.ProfilePath
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.EndpointURL == "" {
		result.EndpointURL = defaults.EndpointURL
	}
	if result.ModelID == "" {
		result.ModelID = defaults.ModelID
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.SearchAPIKey == "" {
		result.SearchAPIKey = defaults.SearchAPIKey
	}
	if result.SearchEngineID == "" {
		result.SearchEngineID = defaults.SearchEngineID
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}

	// Int fields: use default if zero
	if result.MaxBullets == 0 {
		result.MaxBullets = defaults.MaxBullets
	}
	if result.RequestTimeout == 0 {
		result.RequestTimeout = defaults.RequestTimeout
	}
	if result.TechWeight == 0 {
		result.TechWeight = defaults.TechWeight
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Defaults returns the built-in default configuration.
func Defaults() Config {
	return Config{
		Provider:       "local",
		EndpointURL:    "http://localhost:11434",
		ModelID:        "llama3:8b",
		ProfilePath:    "profile.yaml",
		RequestTimeout: 60,
		MaxBullets:     4,
		ListenAddr:     ":8080",
	}
}

// Timeout returns RequestTimeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}
