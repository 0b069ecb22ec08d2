package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/sirupsen/logrus"
	sse "github.com/tmaxmax/go-sse"
	"golang.org/x/net/http2"

	"github.com/ag-ui/a2ui-go/pkg/core"
)

// SSETransport streams frames from an HTTP endpoint answering with
// Server-Sent Events.
type SSETransport struct {
	url    string
	client *http.Client
	config Config
	logger *logrus.Entry
}

// NewSSE creates an SSE transport.
func NewSSE(config Config) (*SSETransport, error) {
	config = config.withDefaults()
	u, err := parseURL(config.URL, "http", "https")
	if err != nil {
		return nil, err
	}

	client := config.HTTPClient
	if client == nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		if config.EnableHTTP2 {
			if err := http2.ConfigureTransport(tr); err != nil {
				return nil, &core.ConfigError{Field: "EnableHTTP2", Value: true, Err: err}
			}
		}
		client = &http.Client{Transport: tr}
	}

	return &SSETransport{
		url:    u.String(),
		client: client,
		config: config,
		logger: config.Logger.WithFields(logrus.Fields{"transport": "sse", "url": u.String()}),
	}, nil
}

func (t *SSETransport) newRequest(ctx context.Context, body []byte, accept string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range t.config.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)
	return req, nil
}

func (t *SSETransport) do(ctx context.Context, op string, body []byte, accept string) (*http.Response, error) {
	req, err := t.newRequest(ctx, body, accept)
	if err != nil {
		return nil, &core.TransportError{Op: op, URL: t.url, Err: err}
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &core.TransportError{Op: op, URL: t.url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &core.TransportError{
			Op:         op,
			URL:        t.url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s: %s", resp.Status, bytes.TrimSpace(snippet)),
		}
	}
	return resp, nil
}

// Open posts body and streams the response. A JSON (non event-stream) reply
// is delivered as a single frame.
func (t *SSETransport) Open(ctx context.Context, body []byte) (<-chan Frame, error) {
	resp, err := t.do(ctx, "open", body, "text/event-stream")
	if err != nil {
		return nil, err
	}

	frames := make(chan Frame, t.config.FrameBuffer)
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	t.logger.WithField("content_type", mediaType).Debug("stream opened")

	go func() {
		defer close(frames)
		defer resp.Body.Close()

		if mediaType != "text/event-stream" {
			data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
			if err != nil {
				t.fail(ctx, frames, err)
				return
			}
			if len(bytes.TrimSpace(data)) > 0 {
				send(ctx, frames, Frame{Data: data})
			}
			return
		}

		for ev, err := range sse.Read(resp.Body, &sse.ReadConfig{MaxEventSize: t.config.MaxEventSize}) {
			if err != nil {
				t.fail(ctx, frames, err)
				return
			}
			// Records without data (keepalives, bare event names) carry no frame.
			if ev.Data == "" {
				continue
			}
			if !send(ctx, frames, Frame{Data: []byte(ev.Data)}) {
				return
			}
		}
		t.logger.Debug("stream ended")
	}()

	return frames, nil
}

// fail reports a read error unless the stream was cancelled on purpose.
func (t *SSETransport) fail(ctx context.Context, frames chan<- Frame, err error) {
	if ctx.Err() != nil {
		return
	}
	t.logger.WithError(err).Warn("stream read failed")
	send(ctx, frames, Frame{Err: &core.TransportError{Op: "read", URL: t.url, Err: err}})
}

// Post sends body as a plain JSON request and returns the reply body.
func (t *SSETransport) Post(ctx context.Context, body []byte) ([]byte, error) {
	resp, err := t.do(ctx, "post", body, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, &core.TransportError{Op: "post", URL: t.url, Err: err}
	}
	return reply, nil
}

// Close releases idle connections.
func (t *SSETransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
