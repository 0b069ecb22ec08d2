package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ag-ui/a2ui-go/internal/protocol"
	"github.com/ag-ui/a2ui-go/pkg/core"
	"github.com/ag-ui/a2ui-go/pkg/core/events"
	a2ui "github.com/ag-ui/a2ui-go/pkg/protocol"
	"github.com/ag-ui/a2ui-go/pkg/transport"
)

// State is the connection state of a Host.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateStreaming
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Host owns one agent connection and the buffer of events read from it.
type Host struct {
	config    Config
	transport transport.Transport
	logger    *logrus.Entry

	mu         sync.Mutex
	state      State
	generation uint64
	cancel     context.CancelFunc
	events     chan events.Event
	contextID  string
}

// New creates a host. It does not connect.
func New(config Config, opts ...Option) (*Host, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = config.withDefaults()

	h := &Host{
		config:    config,
		logger:    config.Logger.WithField("agent_url", config.URL),
		events:    make(chan events.Event, config.BufferSize),
		contextID: config.ContextID,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.transport == nil {
		t, err := config.newTransport()
		if err != nil {
			return nil, err
		}
		h.transport = t
	}
	return h, nil
}

// State returns the current connection state.
func (h *Host) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// ContextID returns the conversation context assigned by the agent, if any.
func (h *Host) ContextID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.contextID
}

// Connect opens the stream, sending initialContext as the first user message.
// It returns once the stream is established. The stream outlives ctx and ends
// on Close or when the agent ends it.
func (h *Host) Connect(ctx context.Context, initialContext string) error {
	h.mu.Lock()
	if h.state == StateConnecting || h.state == StateStreaming {
		h.mu.Unlock()
		return core.ErrAlreadyConnected
	}
	h.state = StateConnecting
	h.generation++
	gen := h.generation
	contextID := h.contextID
	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h.cancel = cancel
	h.mu.Unlock()

	frames, err := h.open(ctx, streamCtx, cancel, initialContext, contextID)
	if err != nil {
		cancel()
		h.mu.Lock()
		if h.generation == gen {
			h.state = StateError
			h.cancel = nil
		}
		h.mu.Unlock()
		h.logger.WithError(err).Warn("connect failed")
		return err
	}

	h.mu.Lock()
	if h.generation != gen {
		// Closed while connecting.
		h.mu.Unlock()
		cancel()
		return core.ErrStreamClosed
	}
	h.state = StateStreaming
	ch := h.events
	h.mu.Unlock()

	h.logger.Debug("stream connected")
	if !h.emit(streamCtx, ch, events.NewConnectedEvent(h.config.URL)) {
		return nil
	}
	go h.pump(streamCtx, gen, ch, frames)
	return nil
}

func (h *Host) open(ctx, streamCtx context.Context, cancel context.CancelFunc, initialContext, contextID string) (<-chan transport.Frame, error) {
	req, err := protocol.NewStreamRequest(initialContext, contextID)
	if err != nil {
		return nil, &core.TransportError{Op: "open", URL: h.config.URL, Err: err}
	}
	body, err := protocol.EncodeRequest(req)
	if err != nil {
		return nil, &core.TransportError{Op: "open", URL: h.config.URL, Err: err}
	}

	// The caller's ctx bounds the handshake only.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	frames, err := h.transport.Open(streamCtx, body)
	if err != nil {
		if !core.IsTransportError(err) {
			err = &core.TransportError{Op: "open", URL: h.config.URL, Err: err}
		}
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, &core.TransportError{Op: "open", URL: h.config.URL, Err: ctx.Err()}
	}
	return frames, nil
}

// pump converts frames into events until the transport closes the channel.
func (h *Host) pump(ctx context.Context, gen uint64, ch chan events.Event, frames <-chan transport.Frame) {
	var lastErr error
	for frame := range frames {
		if frame.Err != nil {
			lastErr = frame.Err
			if !h.emit(ctx, ch, events.NewErrorEvent(frame.Err)) {
				return
			}
			continue
		}
		for _, ev := range h.decode(frame.Data) {
			if !h.emit(ctx, ch, ev) {
				return
			}
		}
	}
	h.finish(ctx, gen, ch, lastErr)
}

func (h *Host) decode(frame []byte) []events.Event {
	env, err := protocol.Decode(frame)
	if err != nil {
		h.logger.WithError(err).Debug("dropping malformed frame")
		return []events.Event{events.NewErrorEvent(err)}
	}
	evs, err := env.Events()
	if errors.Is(err, protocol.ErrUnknownKind) {
		h.logger.WithError(err).Debug("ignoring frame")
		return nil
	}
	if err != nil {
		return []events.Event{events.NewErrorEvent(err)}
	}
	for _, ev := range evs {
		if status, ok := ev.(*events.TaskStatusEvent); ok && status.ContextID != "" {
			h.mu.Lock()
			h.contextID = status.ContextID
			h.mu.Unlock()
		}
	}
	return evs
}

// finish records the end of a stream that was not closed locally.
func (h *Host) finish(ctx context.Context, gen uint64, ch chan events.Event, lastErr error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.generation != gen || ctx.Err() != nil {
		return
	}
	reason := "stream ended"
	h.state = StateDisconnected
	if lastErr != nil {
		reason = lastErr.Error()
		h.state = StateError
	}
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.logger.WithField("reason", reason).Debug("stream disconnected")

	select {
	case ch <- events.NewDisconnectedEvent(reason):
	default:
		h.logger.Warn("event buffer full, dropping disconnect")
	}
}

// emit queues ev, blocking while the buffer is full. It reports false once
// the stream has been cancelled.
func (h *Host) emit(ctx context.Context, ch chan events.Event, ev events.Event) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// PollAll drains every buffered event without blocking.
func (h *Host) PollAll() []events.Event {
	h.mu.Lock()
	ch := h.events
	h.mu.Unlock()

	var out []events.Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// SendAction reports a user action to the agent. Failures are returned and
// never retried.
func (h *Host) SendAction(ctx context.Context, action a2ui.UserAction) error {
	req, err := protocol.NewActionRequest(action, h.ContextID())
	if err != nil {
		return fmt.Errorf("failed to build action request: %w", err)
	}
	body, err := protocol.EncodeRequest(req)
	if err != nil {
		return err
	}

	reply, err := h.transport.Post(ctx, body)
	if err != nil {
		h.logger.WithError(err).WithField("action", action.Name).Warn("action delivery failed")
		return err
	}
	if err := protocol.DecodeResponse(reply); err != nil {
		return fmt.Errorf("action %s rejected: %w", action.Name, err)
	}
	h.logger.WithFields(logrus.Fields{
		"action":     action.Name,
		"surface_id": action.SurfaceID,
	}).Debug("action sent")
	return nil
}

// Close cancels the stream. Events from the closed stream that were not yet
// polled are discarded and none are delivered afterwards.
func (h *Host) Close() error {
	h.mu.Lock()
	h.generation++
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.state = StateDisconnected
	h.events = make(chan events.Event, h.config.BufferSize)
	h.mu.Unlock()

	return h.transport.Close()
}
