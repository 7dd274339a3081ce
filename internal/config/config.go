package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config carries every tunable of the client. Values come from an optional
// yaml file, then a .env file / process environment for deploy-time
// overrides (the API URL in particular differs between local dev and
// production).
type Config struct {
	ApiBaseURL      string        `yaml:"api_base_url"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	MaxRetries      int           `yaml:"max_retries"`
	BackoffCap      time.Duration `yaml:"backoff_cap"`
	PageLimit       int           `yaml:"page_limit"`
	NotificationTTL time.Duration `yaml:"notification_ttl"`
	HighlightTTL    time.Duration `yaml:"highlight_ttl"`
	HealthInterval  time.Duration `yaml:"health_interval"`
	StatePath       string        `yaml:"state_path"`
	LogLevel        string        `yaml:"log_level"`
	LogJSON         bool          `yaml:"log_json"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		ApiBaseURL:      "http://localhost:8080",
		RequestTimeout:  20 * time.Second,
		MaxRetries:      3,
		BackoffCap:      10 * time.Second,
		PageLimit:       10,
		NotificationTTL: 3 * time.Second,
		HighlightTTL:    3 * time.Second,
		HealthInterval:  5 * time.Second,
		StatePath:       "happy-thoughts.db",
		LogLevel:        "info",
	}
}

// MustLoad reads the config file at configPath, applies environment
// overrides and panics on a broken file. A missing file is not an error:
// defaults plus environment cover the common local setup.
func MustLoad(configPath string) *Config {
	cfg := Default()

	if _, err := os.Stat(configPath); err == nil {
		raw, err := os.ReadFile(configPath)
		if err != nil {
			panic("can't read config file: " + configPath)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			panic("can't unmarshal config file: " + configPath)
		}
	}

	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	// Best effort: .env is optional, process env always wins.
	_ = godotenv.Load()

	if v := os.Getenv("HAPPY_THOUGHTS_API_URL"); v != "" {
		c.ApiBaseURL = v
	}
	if v := os.Getenv("HAPPY_THOUGHTS_STATE_PATH"); v != "" {
		c.StatePath = v
	}
	if v := os.Getenv("HAPPY_THOUGHTS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}
