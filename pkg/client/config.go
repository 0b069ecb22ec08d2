package client

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ag-ui/a2ui-go/pkg/core"
	"github.com/ag-ui/a2ui-go/pkg/host"
)

// Config contains configuration options for the client.
type Config struct {
	// BaseURL is the agent endpoint
	BaseURL string

	// Transport selects "sse" (default) or "websocket"
	Transport string

	// PollInterval is the tick period of Run
	PollInterval time.Duration

	// BufferSize is the host event buffer capacity
	BufferSize int

	// EnableHTTP2 configures the SSE client for HTTP/2
	EnableHTTP2 bool

	// ValidateMessages checks every message against the message schema
	// before it is applied
	ValidateMessages bool

	// Logger receives client diagnostics
	Logger *logrus.Entry
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return &core.ConfigError{
			Field: "BaseURL",
			Value: c.BaseURL,
			Err:   errors.New("base URL cannot be empty"),
		}
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return &core.ConfigError{
			Field: "BaseURL",
			Value: c.BaseURL,
			Err:   fmt.Errorf("invalid base URL: %w", err),
		}
	}
	if u.Scheme == "" || u.Host == "" {
		return &core.ConfigError{
			Field: "BaseURL",
			Value: c.BaseURL,
			Err:   errors.New("base URL must be absolute"),
		}
	}

	switch c.Transport {
	case "", host.TransportSSE, host.TransportWebSocket:
	default:
		return &core.ConfigError{
			Field: "Transport",
			Value: c.Transport,
			Err:   fmt.Errorf("must be %q or %q", host.TransportSSE, host.TransportWebSocket),
		}
	}

	if c.PollInterval < 0 {
		return &core.ConfigError{
			Field: "PollInterval",
			Value: c.PollInterval,
			Err:   errors.New("poll interval cannot be negative"),
		}
	}
	if c.BufferSize < 0 {
		return &core.ConfigError{
			Field: "BufferSize",
			Value: c.BufferSize,
			Err:   errors.New("buffer size cannot be negative"),
		}
	}
	return nil
}

func (c Config) withDefaults() Config {
	sc := core.StreamConfig{BufferSize: c.BufferSize, PollInterval: c.PollInterval}.WithDefaults()
	c.BufferSize = sc.BufferSize
	c.PollInterval = sc.PollInterval
	if c.Logger == nil {
		c.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return c
}

func (c Config) hostConfig() host.Config {
	return host.Config{
		URL:         c.BaseURL,
		Transport:   c.Transport,
		BufferSize:  c.BufferSize,
		EnableHTTP2: c.EnableHTTP2,
		Logger:      c.Logger,
	}
}
