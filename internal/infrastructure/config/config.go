// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	threshold := cfg.Scoring.AcceptThreshold
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	Scoring       ScoringConfig       `yaml:"scoring"`
	OpenAI        OpenAIConfig        `yaml:"openai"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ScoringConfig controls the external scoring fallback.
type ScoringConfig struct {
	// Provider selects the scoring backend: "heuristic", "openai" or
	// "none" to disable the external scoring phase entirely.
	Provider string `yaml:"provider"`

	// AcceptThreshold is the minimum score (0-100) for an external
	// candidate to become a match.
	AcceptThreshold int `yaml:"accept_threshold"`
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${OPENAI_API_KEY})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Storage: StorageConfig{
			DatabasePath: getEnv("RECONCILER_DB_PATH", "reconciler.db"),
		},
		Scoring: ScoringConfig{
			Provider:        getEnv("SCORING_PROVIDER", "heuristic"),
			AcceptThreshold: getEnvInt("SCORING_ACCEPT_THRESHOLD", 0),
		},
		OpenAI: OpenAIConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		API: APIConfig{
			Port: getEnvInt("PORT", 0),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries config.yaml first, then falls back to environment variables
func LoadOrEnv() *Config {
	if cfg, err := Load("config.yaml"); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func (c *Config) applyDefaults() {
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "reconciler.db"
	}
	if c.Scoring.Provider == "" {
		c.Scoring.Provider = "heuristic"
	}
	if c.Scoring.AcceptThreshold == 0 {
		c.Scoring.AcceptThreshold = 60
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if len(c.API.AllowedOrigins) == 0 {
		c.API.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
}

func (c *Config) validate() error {
	if c.Scoring.AcceptThreshold < 0 || c.Scoring.AcceptThreshold > 100 {
		return fmt.Errorf("scoring.accept_threshold must be between 0 and 100, got %d", c.Scoring.AcceptThreshold)
	}
	switch c.Scoring.Provider {
	case "heuristic", "openai", "none":
	default:
		return fmt.Errorf("scoring.provider must be heuristic, openai or none, got %q", c.Scoring.Provider)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
