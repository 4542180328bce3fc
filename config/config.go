package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix = "MOVIESCOUT"

	placeholderAPIKey = "your-api-key-here"
)

// Load loads the configuration from file and MOVIESCOUT_ environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".moviescout"))
		}

		// Check /etc
		v.AddConfigPath("/etc/moviescout/")
	}

	// A missing file in the search path is fine, the environment may carry everything
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// OMDb defaults
	v.SetDefault("omdb.url", "https://www.omdbapi.com")
	v.SetDefault("omdb.api_key", "")
	v.SetDefault("omdb.timeout", 30*time.Second)

	// Search defaults
	v.SetDefault("search.max_results_cap", 100)
	v.SetDefault("search.default_results", 10)
	v.SetDefault("search.concurrency", 10)
	v.SetDefault("search.task_timeout", time.Duration(0))

	// Radarr defaults
	v.SetDefault("radarr.enabled", false)
	v.SetDefault("radarr.url", "http://localhost:7878")
	v.SetDefault("radarr.api_key", "")

	v.SetDefault("filter.default_expression", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.OMDb.URL == "" {
		return fmt.Errorf("omdb.url is required")
	}

	if cfg.OMDb.APIKey == "" || cfg.OMDb.APIKey == placeholderAPIKey {
		return fmt.Errorf("omdb.api_key must be set to a valid API key")
	}

	if cfg.OMDb.Timeout < 0 {
		return fmt.Errorf("omdb.timeout must not be negative")
	}

	if err := validateSearch(cfg.Search); err != nil {
		return err
	}

	if cfg.Radarr.Enabled {
		if cfg.Radarr.URL == "" {
			return fmt.Errorf("radarr.url is required when radarr is enabled")
		}
		if cfg.Radarr.APIKey == "" || cfg.Radarr.APIKey == placeholderAPIKey {
			return fmt.Errorf("radarr.api_key must be set to a valid API key when radarr is enabled")
		}
	}

	for name, preset := range cfg.Filter.Presets {
		if strings.TrimSpace(preset.Expression) == "" {
			return fmt.Errorf("filter preset %q has an empty expression", name)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

func validateSearch(s SearchConfig) error {
	if s.MaxResultsCap < 1 {
		return fmt.Errorf("search.max_results_cap must be at least 1, got %d", s.MaxResultsCap)
	}
	if s.DefaultResults < 1 || s.DefaultResults > s.MaxResultsCap {
		return fmt.Errorf("search.default_results must be between 1 and %d, got %d", s.MaxResultsCap, s.DefaultResults)
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("search.concurrency must be at least 1, got %d", s.Concurrency)
	}
	if s.TaskTimeout < 0 {
		return fmt.Errorf("search.task_timeout must not be negative")
	}
	return nil
}
