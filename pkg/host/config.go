package host

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/ag-ui/a2ui-go/pkg/core"
	"github.com/ag-ui/a2ui-go/pkg/transport"
)

// Transport names accepted by Config.
const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
)

// Config contains configuration options for the host.
type Config struct {
	// URL is the agent endpoint
	URL string

	// Transport selects "sse" (default) or "websocket"
	Transport string

	// BufferSize is the capacity of the event buffer between polls
	BufferSize int

	// EnableHTTP2 configures the SSE client for HTTP/2
	EnableHTTP2 bool

	// ContextID is sent with every request until the agent assigns one
	ContextID string

	// Header is added to every request
	Header http.Header

	// HTTPClient overrides the SSE HTTP client
	HTTPClient *http.Client

	// Logger receives host diagnostics
	Logger *logrus.Entry
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.URL == "" {
		return &core.ConfigError{
			Field: "URL",
			Value: c.URL,
			Err:   errors.New("URL cannot be empty"),
		}
	}
	if _, err := url.Parse(c.URL); err != nil {
		return &core.ConfigError{
			Field: "URL",
			Value: c.URL,
			Err:   fmt.Errorf("invalid URL: %w", err),
		}
	}
	switch c.Transport {
	case "", TransportSSE, TransportWebSocket:
	default:
		return &core.ConfigError{
			Field: "Transport",
			Value: c.Transport,
			Err:   fmt.Errorf("must be %q or %q", TransportSSE, TransportWebSocket),
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
	if c.Transport == "" {
		c.Transport = TransportSSE
	}
	c.BufferSize = core.StreamConfig{BufferSize: c.BufferSize}.WithDefaults().BufferSize
	if c.Logger == nil {
		c.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return c
}

// newTransport builds the transport named by the configuration.
func (c Config) newTransport() (transport.Transport, error) {
	tc := transport.Config{
		URL:         c.URL,
		HTTPClient:  c.HTTPClient,
		EnableHTTP2: c.EnableHTTP2,
		Header:      c.Header,
		Logger:      c.Logger,
	}
	if c.Transport == TransportWebSocket {
		return transport.NewWebSocket(tc)
	}
	return transport.NewSSE(tc)
}

// Option configures a Host.
type Option func(*Host)

// WithTransport replaces the transport built from the configuration.
func WithTransport(t transport.Transport) Option {
	return func(h *Host) {
		h.transport = t
	}
}
