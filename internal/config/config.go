package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
)

// Config holds all application configuration.
type Config struct {
	Finnhub  FinnhubConfig  `toml:"finnhub"`
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Email    EmailConfig    `toml:"email"`
	AI       AIConfig       `toml:"ai"`
	Jobs     JobsConfig     `toml:"jobs"`
}

// FinnhubConfig holds market data API settings.
type FinnhubConfig struct {
	APIKey             string `toml:"api_key"`
	BaseURL            string `toml:"base_url"`
	LookbackDays       int    `toml:"lookback_days"`
	SearchCacheSeconds int    `toml:"search_cache_seconds"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `toml:"port"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// EmailConfig holds SMTP settings for transactional email.
type EmailConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
}

// AIConfig holds AI provider settings.
type AIConfig struct {
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	Model    string `toml:"model"`
}

// JobsConfig holds background job settings.
type JobsConfig struct {
	DailyDigestCron string `toml:"daily_digest_cron"`
	Workers         int    `toml:"workers"`
}

const defaultConfigContent = `[finnhub]
api_key = ""                      # Or set FINNHUB_API_KEY
base_url = "https://finnhub.io/api/v1"
lookback_days = 5
search_cache_seconds = 1800

[server]
port = 8080

[database]
path = "./data/tickerwire.db"

[email]
host = "smtp.gmail.com"
port = 587
username = ""                     # Or set SMTP_USERNAME
password = ""                     # Or set SMTP_PASSWORD
from = "Tickerwire <no-reply@tickerwire.app>"

[ai]
provider = "anthropic"            # "anthropic" or "openai"
api_key = ""                      # Or set AI_API_KEY
model = "claude-haiku-4-5"

[jobs]
daily_digest_cron = "0 12 * * *"
workers = 4
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Explicit zero values are errors, not requests for the default.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("finnhub", "lookback_days") {
		if cfg.Finnhub.LookbackDays < 1 {
			return fmt.Errorf("invalid finnhub.lookback_days %d: must be >= 1", cfg.Finnhub.LookbackDays)
		}
	}
	if md.IsDefined("jobs", "workers") {
		if cfg.Jobs.Workers < 1 {
			return fmt.Errorf("invalid jobs.workers %d: must be >= 1", cfg.Jobs.Workers)
		}
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.Finnhub.BaseURL == "" {
		cfg.Finnhub.BaseURL = "https://finnhub.io/api/v1"
	}
	if cfg.Finnhub.LookbackDays == 0 {
		cfg.Finnhub.LookbackDays = 5
	}
	if cfg.Finnhub.SearchCacheSeconds == 0 {
		cfg.Finnhub.SearchCacheSeconds = 1800
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./data/tickerwire.db"
	}
	if cfg.Email.Host == "" {
		cfg.Email.Host = "smtp.gmail.com"
	}
	if cfg.Email.Port == 0 {
		cfg.Email.Port = 587
	}
	if cfg.Email.From == "" {
		cfg.Email.From = "Tickerwire <no-reply@tickerwire.app>"
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "anthropic"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "claude-haiku-4-5"
	}
	if cfg.Jobs.DailyDigestCron == "" {
		cfg.Jobs.DailyDigestCron = "0 12 * * *"
	}
	if cfg.Jobs.Workers == 0 {
		cfg.Jobs.Workers = 4
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
//
// Priority for finnhub.api_key:
//  1. FINNHUB_API_KEY (highest)
//  2. NEXT_PUBLIC_FINNHUB_API_KEY (name used by the web frontend)
//
// Priority for ai.api_key:
//  1. AI_API_KEY (generic, highest)
//  2. ANTHROPIC_API_KEY (when provider is "anthropic")
//  3. OPENAI_API_KEY (when provider is "openai")
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NEXT_PUBLIC_FINNHUB_API_KEY"); v != "" {
		cfg.Finnhub.APIKey = v
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		cfg.Finnhub.APIKey = v
	}

	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.Email.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.Password = v
	}

	switch cfg.AI.Provider {
	case "anthropic":
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	case "openai":
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	}
	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
}

// validate checks that configuration values are within acceptable ranges.
// A missing Finnhub key is only a warning: news calls report it when made.
func validate(cfg *Config) error {
	switch cfg.AI.Provider {
	case "anthropic", "openai":
		// valid
	default:
		return fmt.Errorf("invalid ai.provider %q: must be \"anthropic\" or \"openai\"", cfg.AI.Provider)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}

	if cfg.Email.Port < 1 || cfg.Email.Port > 65535 {
		return fmt.Errorf("invalid email.port %d: must be between 1 and 65535", cfg.Email.Port)
	}

	if cfg.Finnhub.LookbackDays < 1 {
		return fmt.Errorf("invalid finnhub.lookback_days %d: must be >= 1", cfg.Finnhub.LookbackDays)
	}

	if _, err := cron.ParseStandard(cfg.Jobs.DailyDigestCron); err != nil {
		return fmt.Errorf("invalid jobs.daily_digest_cron %q: %w", cfg.Jobs.DailyDigestCron, err)
	}

	if cfg.Finnhub.APIKey == "" {
		slog.Warn("finnhub.api_key is empty: set it in the config file or via FINNHUB_API_KEY environment variable")
	}

	return nil
}
