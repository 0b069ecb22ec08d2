package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ag-ui/a2ui-go/pkg/client"
	"github.com/ag-ui/a2ui-go/pkg/core"
)

// Config holds the host configuration: a YAML file overlaid with A2UI_*
// environment variables.
type Config struct {
	URL              string        `yaml:"url"`
	Transport        string        `yaml:"transport"`
	InitialContext   string        `yaml:"initial_context"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	BufferSize       int           `yaml:"buffer_size"`
	EnableHTTP2      bool          `yaml:"http2"`
	ValidateMessages bool          `yaml:"validate_messages"`
	LogLevel         string        `yaml:"log_level"` // debug, info, warn, error
	LogFormat        string        `yaml:"log_format"`
}

func defaultConfig() Config {
	return Config{
		URL:              "http://localhost:10002",
		Transport:        "sse",
		PollInterval:     core.DefaultPollInterval,
		BufferSize:       core.DefaultBufferSize,
		ValidateMessages: true,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// LoadConfig reads path, if set, then applies environment overrides.
// A .env file in the working directory is loaded first if present.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.URL = getEnvOrDefault("A2UI_URL", cfg.URL)
	cfg.Transport = getEnvOrDefault("A2UI_TRANSPORT", cfg.Transport)
	cfg.InitialContext = getEnvOrDefault("A2UI_INITIAL_CONTEXT", cfg.InitialContext)
	cfg.PollInterval = getEnvDurationOrDefault("A2UI_POLL_INTERVAL", cfg.PollInterval)
	cfg.BufferSize = getEnvIntOrDefault("A2UI_BUFFER_SIZE", cfg.BufferSize)
	cfg.EnableHTTP2 = getEnvBoolOrDefault("A2UI_HTTP2", cfg.EnableHTTP2)
	cfg.ValidateMessages = getEnvBoolOrDefault("A2UI_VALIDATE", cfg.ValidateMessages)
	cfg.LogLevel = getEnvOrDefault("A2UI_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("A2UI_LOG_FORMAT", cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields the client does not check itself.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return &core.ConfigError{Field: "log_level", Value: c.LogLevel, Err: err}
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return &core.ConfigError{Field: "log_format", Value: c.LogFormat, Err: errors.New(`must be "text" or "json"`)}
	}
	return nil
}

// Logger builds the logger described by the configuration.
func (c *Config) Logger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// ClientConfig maps the configuration onto the client.
func (c *Config) ClientConfig(logger *logrus.Entry) client.Config {
	return client.Config{
		BaseURL:          c.URL,
		Transport:        c.Transport,
		PollInterval:     c.PollInterval,
		BufferSize:       c.BufferSize,
		EnableHTTP2:      c.EnableHTTP2,
		ValidateMessages: c.ValidateMessages,
		Logger:           logger,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
