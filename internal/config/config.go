package config

import (
	"os"
	"strconv"
	"time"

	"datalens/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Uploads UploadsConfig `yaml:"uploads"`
	AI      AIConfig      `yaml:"ai"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port     string `yaml:"port"`
	OpsPort  string `yaml:"ops_port"`
	GinMode  string `yaml:"gin_mode"`
	OpsDebug bool   `yaml:"ops_debug"`
}

// StoreConfig holds JSON store settings
type StoreConfig struct {
	Dir           string        `yaml:"dir"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// UploadsConfig holds uploaded-file settings
type UploadsConfig struct {
	Dir       string        `yaml:"dir"`
	MaxSizeMB int64         `yaml:"max_size_mb"`
	Retention time.Duration `yaml:"retention"`
}

// AIConfig holds LLM provider defaults. The API key configured at runtime
// through the settings endpoint takes precedence over these.
type AIConfig struct {
	Provider    string  `yaml:"provider"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	Timeout     int     `yaml:"timeout_seconds"`
}

// LoggingConfig holds log settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration and validates it. Precedence, lowest first:
// built-in defaults, an optional YAML file (DATALENS_CONFIG or ./datalens.yaml),
// then environment variables.
func Load() (*Config, error) {
	config := defaults()

	if err := applyFile(config); err != nil {
		return nil, errors.Wrap(err, "failed to load configuration file")
	}
	applyEnv(config)

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     "8080",
			OpsPort:  "6060",
			GinMode:  "debug",
			OpsDebug: true,
		},
		Store: StoreConfig{
			Dir:           "./data",
			FlushInterval: 30 * time.Second,
		},
		Uploads: UploadsConfig{
			Dir:       "./data/uploads",
			MaxSizeMB: 50,
			Retention: 24 * time.Hour,
		},
		AI: AIConfig{
			Provider:    "mock",
			Model:       "",
			Temperature: 0.3,
			MaxTokens:   4000,
			Timeout:     60,
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}

// applyFile overlays values from an optional YAML config file.
func applyFile(config *Config) error {
	path := os.Getenv("DATALENS_CONFIG")
	if path == "" {
		path = "datalens.yaml"
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(raw, config)
}

// applyEnv overlays environment variables on top of file values.
func applyEnv(config *Config) {
	config.Server.Port = getEnvOrDefault("PORT", config.Server.Port)
	config.Server.OpsPort = getEnvOrDefault("OPS_PORT", config.Server.OpsPort)
	config.Server.GinMode = getEnvOrDefault("GIN_MODE", config.Server.GinMode)
	config.Server.OpsDebug = getEnvBoolOrDefault("OPS_DEBUG", config.Server.OpsDebug)

	config.Store.Dir = getEnvOrDefault("DATA_DIR", config.Store.Dir)
	config.Store.FlushInterval = getEnvDurationOrDefault("STORE_FLUSH_INTERVAL", config.Store.FlushInterval)

	config.Uploads.Dir = getEnvOrDefault("UPLOADS_DIR", config.Uploads.Dir)
	config.Uploads.MaxSizeMB = int64(getEnvIntOrDefault("UPLOAD_MAX_SIZE_MB", int(config.Uploads.MaxSizeMB)))
	config.Uploads.Retention = getEnvDurationOrDefault("UPLOAD_RETENTION", config.Uploads.Retention)

	config.AI.Provider = getEnvOrDefault("LLM_PROVIDER", config.AI.Provider)
	config.AI.APIKey = getEnvOrDefault("LLM_API_KEY", config.AI.APIKey)
	config.AI.Model = getEnvOrDefault("LLM_MODEL", config.AI.Model)
	config.AI.BaseURL = getEnvOrDefault("LLM_BASE_URL", config.AI.BaseURL)
	config.AI.Temperature = getEnvFloatOrDefault("LLM_TEMPERATURE", config.AI.Temperature)
	config.AI.MaxTokens = getEnvIntOrDefault("LLM_MAX_TOKENS", config.AI.MaxTokens)
	config.AI.Timeout = getEnvIntOrDefault("LLM_TIMEOUT_SECONDS", config.AI.Timeout)

	config.Logging.Level = getEnvOrDefault("LOG_LEVEL", config.Logging.Level)
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Store.Dir == "" {
		return errors.ConfigInvalid("store directory is required")
	}
	if config.Store.FlushInterval < time.Second {
		return errors.ConfigInvalid("store flush interval must be at least 1s")
	}
	switch config.AI.Provider {
	case "openai", "gemini", "mock":
	default:
		return errors.ConfigInvalid("LLM provider must be one of openai, gemini, mock")
	}
	if config.Uploads.MaxSizeMB <= 0 {
		return errors.ConfigInvalid("upload size limit must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
