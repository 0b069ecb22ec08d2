package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ag-ui/a2ui-go/pkg/core"
)

// Frame is one inbound record. Exactly one of Data and Err is set.
type Frame struct {
	Data []byte
	Err  error
}

// Transport carries frames between the host and an agent.
type Transport interface {
	// Open starts a stream by sending body and returns the inbound frames.
	// It returns once the stream is established; failures to establish it
	// are returned directly.
	Open(ctx context.Context, body []byte) (<-chan Frame, error)

	// Post sends body outside the stream and returns the reply body, if any.
	Post(ctx context.Context, body []byte) ([]byte, error)

	// Close releases connections held by the transport.
	Close() error
}

// Config contains configuration shared by the transports.
type Config struct {
	// URL is the agent endpoint
	URL string

	// HTTPClient overrides the client used by the SSE transport
	HTTPClient *http.Client

	// EnableHTTP2 configures the default SSE client for HTTP/2
	EnableHTTP2 bool

	// Header is added to every request
	Header http.Header

	// HandshakeTimeout bounds the WebSocket handshake
	HandshakeTimeout time.Duration

	// FrameBuffer is the capacity of the frame channel
	FrameBuffer int

	// MaxEventSize bounds one SSE record; a longer record fails the stream
	MaxEventSize int

	// Logger receives transport diagnostics
	Logger *logrus.Entry
}

const (
	defaultFrameBuffer      = 64
	defaultHandshakeTimeout = 10 * time.Second
	defaultMaxEventSize     = 1 << 20
	maxReplyBytes           = 1 << 20
)

func (c Config) withDefaults() Config {
	if c.FrameBuffer <= 0 {
		c.FrameBuffer = defaultFrameBuffer
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = defaultHandshakeTimeout
	}
	if c.MaxEventSize <= 0 {
		c.MaxEventSize = defaultMaxEventSize
	}
	if c.Logger == nil {
		c.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return c
}

func parseURL(raw string, schemes ...string) (*url.URL, error) {
	if raw == "" {
		return nil, &core.ConfigError{
			Field: "URL",
			Value: raw,
			Err:   errors.New("URL cannot be empty"),
		}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &core.ConfigError{
			Field: "URL",
			Value: raw,
			Err:   fmt.Errorf("invalid URL: %w", err),
		}
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return u, nil
		}
	}
	return nil, &core.ConfigError{
		Field: "URL",
		Value: raw,
		Err:   fmt.Errorf("unsupported scheme %q", u.Scheme),
	}
}

// send delivers f unless ctx is done first.
func send(ctx context.Context, frames chan<- Frame, f Frame) bool {
	select {
	case frames <- f:
		return true
	case <-ctx.Done():
		return false
	}
}
