package transport

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ag-ui/a2ui-go/pkg/core"
)

// errStreamDone stops the watcher goroutine once the reader has finished.
var errStreamDone = errors.New("stream done")

// WebSocketTransport streams frames over a WebSocket connection.
type WebSocketTransport struct {
	url    string
	dialer *websocket.Dialer
	config Config
	logger *logrus.Entry

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocket creates a WebSocket transport. http and https URLs are mapped
// to ws and wss.
func NewWebSocket(config Config) (*WebSocketTransport, error) {
	config = config.withDefaults()
	u, err := parseURL(config.URL, "ws", "wss", "http", "https")
	if err != nil {
		return nil, err
	}
	u = toWebSocketURL(u)

	return &WebSocketTransport{
		url: u.String(),
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: config.HandshakeTimeout,
		},
		config: config,
		logger: config.Logger.WithFields(logrus.Fields{"transport": "websocket", "url": u.String()}),
	}, nil
}

func toWebSocketURL(u *url.URL) *url.URL {
	out := *u
	switch out.Scheme {
	case "http":
		out.Scheme = "ws"
	case "https":
		out.Scheme = "wss"
	}
	return &out
}

// Open dials, sends body as the first message and streams inbound text
// messages. A previous connection held by the transport is closed.
func (t *WebSocketTransport) Open(ctx context.Context, body []byte) (<-chan Frame, error) {
	conn, resp, err := t.dialer.DialContext(ctx, t.url, t.config.Header)
	if err != nil {
		te := &core.TransportError{Op: "open", URL: t.url, Err: err}
		if resp != nil {
			te.StatusCode = resp.StatusCode
		}
		return nil, te
	}

	t.mu.Lock()
	if t.conn != nil {
		t.conn.Close()
	}
	t.conn = conn
	err = conn.WriteMessage(websocket.TextMessage, body)
	t.mu.Unlock()
	if err != nil {
		conn.Close()
		return nil, &core.TransportError{Op: "open", URL: t.url, Err: err}
	}

	frames := make(chan Frame, t.config.FrameBuffer)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			kind, data, err := conn.ReadMessage()
			if err != nil {
				switch {
				case ctx.Err() != nil:
				case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
					t.logger.Debug("stream closed by peer")
				default:
					t.logger.WithError(err).Warn("stream read failed")
					send(ctx, frames, Frame{Err: &core.TransportError{Op: "read", URL: t.url, Err: err}})
				}
				return errStreamDone
			}
			if kind != websocket.TextMessage {
				continue
			}
			if !send(ctx, frames, Frame{Data: data}) {
				return errStreamDone
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		conn.Close()
		return nil
	})

	go func() {
		_ = g.Wait()
		t.mu.Lock()
		if t.conn == conn {
			t.conn = nil
		}
		t.mu.Unlock()
		close(frames)
	}()

	return frames, nil
}

// Post writes body on the open connection. Replies arrive on the stream.
func (t *WebSocketTransport) Post(ctx context.Context, body []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return nil, &core.TransportError{Op: "post", URL: t.url, Err: core.ErrNotConnected}
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = t.conn.SetWriteDeadline(deadline)
		defer t.conn.SetWriteDeadline(time.Time{})
	}
	if err := t.conn.WriteMessage(websocket.TextMessage, body); err != nil {
		return nil, &core.TransportError{Op: "post", URL: t.url, Err: err}
	}
	return nil, nil
}

// Close closes the open connection, ending its stream.
func (t *WebSocketTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return nil
	}
	err := t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	if err != nil {
		t.logger.WithError(err).Debug("close handshake failed")
	}
	closeErr := t.conn.Close()
	t.conn = nil
	return closeErr
}
