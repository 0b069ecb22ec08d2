package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ag-ui/a2ui-go/internal/testutil"
	"github.com/ag-ui/a2ui-go/pkg/core"
	"github.com/ag-ui/a2ui-go/pkg/core/events"
	"github.com/ag-ui/a2ui-go/pkg/host"
	"github.com/ag-ui/a2ui-go/pkg/processor"
	"github.com/ag-ui/a2ui-go/pkg/protocol"
	"github.com/ag-ui/a2ui-go/pkg/value"
)

const headerBatch = `[
	{"beginRendering": {"surfaceId": "s", "root": "header"}},
	{"surfaceUpdate": {"surfaceId": "s", "components": [
		{"id": "header", "component": {"Text": {"text": {"literalString": "Hi"}}}}
	]}}
]`

const counterBatch = `[
	{"beginRendering": {"surfaceId": "c", "root": "inc"}},
	{"surfaceUpdate": {"surfaceId": "c", "components": [
		{"id": "label", "component": {"Text": {"text": {"path": "/count"}}}},
		{"id": "inc", "component": {"Button": {"child": "label", "action": {"name": "increment", "context": [
			{"key": "count", "value": {"path": "/count"}}
		]}}}}
	]}},
	{"dataModelUpdate": {"surfaceId": "c", "contents": [{"key": "count", "valueNumber": 1}]}}
]`

// fakeHost replays queued polls.
type fakeHost struct {
	state      host.State
	connectErr error
	polls      [][]events.Event
	actions    []protocol.UserAction
	closed     bool
}

func (f *fakeHost) Connect(ctx context.Context, initialContext string) error {
	if f.connectErr != nil {
		f.state = host.StateError
		return f.connectErr
	}
	f.state = host.StateStreaming
	return nil
}

func (f *fakeHost) PollAll() []events.Event {
	if len(f.polls) == 0 {
		return nil
	}
	out := f.polls[0]
	f.polls = f.polls[1:]
	return out
}

func (f *fakeHost) SendAction(ctx context.Context, action protocol.UserAction) error {
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeHost) State() host.State { return f.state }

func (f *fakeHost) Close() error {
	f.closed = true
	f.state = host.StateDisconnected
	return nil
}

// fakeClock advances only when told.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	client *Client
	clock  *fakeClock
	hosts  []*fakeHost
	// next is the template for the next host created
	next fakeHost
}

func newHarness(t *testing.T, config Config) *harness {
	t.Helper()
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	if config.BaseURL == "" {
		config.BaseURL = "http://agent.example"
	}
	config.Logger = logrus.NewEntry(logger)

	h := &harness{clock: &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}}
	c, err := New(config,
		WithClock(h.clock.now),
		WithHostFactory(func(host.Config) (Streamer, error) {
			fh := h.next
			h.hosts = append(h.hosts, &fh)
			return &fh, nil
		}),
	)
	require.NoError(t, err)
	h.client = c
	return h
}

func (h *harness) current() *fakeHost {
	return h.hosts[len(h.hosts)-1]
}

func batch(t *testing.T, data string) []events.Event {
	t.Helper()
	msgs, err := protocol.ParseBatch([]byte(data))
	require.NoError(t, err)
	out := make([]events.Event, len(msgs))
	for i, msg := range msgs {
		raw, err := protocol.MarshalMessage(msg)
		require.NoError(t, err)
		out[i] = events.NewMessageEvent(msg, raw)
	}
	return out
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		field   string
	}{
		{
			name:   "valid config",
			config: Config{BaseURL: "http://localhost:8080"},
		},
		{
			name:   "valid config with https and websocket",
			config: Config{BaseURL: "https://api.example.com", Transport: host.TransportWebSocket},
		},
		{
			name:    "empty URL",
			config:  Config{BaseURL: ""},
			wantErr: true,
			field:   "BaseURL",
		},
		{
			name:    "invalid URL scheme",
			config:  Config{BaseURL: "://invalid-scheme"},
			wantErr: true,
			field:   "BaseURL",
		},
		{
			name:    "malformed URL",
			config:  Config{BaseURL: "http://[::1:80"},
			wantErr: true,
			field:   "BaseURL",
		},
		{
			name:    "relative URL",
			config:  Config{BaseURL: "localhost"},
			wantErr: true,
			field:   "BaseURL",
		},
		{
			name:    "unknown transport",
			config:  Config{BaseURL: "http://localhost", Transport: "carrier-pigeon"},
			wantErr: true,
			field:   "Transport",
		},
		{
			name:    "negative poll interval",
			config:  Config{BaseURL: "http://localhost", PollInterval: -time.Second},
			wantErr: true,
			field:   "PollInterval",
		},
		{
			name:    "negative buffer",
			config:  Config{BaseURL: "http://localhost", BufferSize: -1},
			wantErr: true,
			field:   "BufferSize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if client == nil {
					t.Fatal("New() returned nil client with no error")
				}
				if client.config.PollInterval != core.DefaultPollInterval {
					t.Errorf("PollInterval = %v, want %v", client.config.PollInterval, core.DefaultPollInterval)
				}
				return
			}

			var configErr *core.ConfigError
			if !errors.As(err, &configErr) {
				t.Fatalf("Expected *core.ConfigError, got %T", err)
			}
			if configErr.Field != tt.field {
				t.Errorf("Expected error field %q, got %q", tt.field, configErr.Field)
			}
			if !errors.Is(err, core.ErrInvalidConfig) {
				t.Error("ConfigError should match ErrInvalidConfig")
			}
		})
	}
}

func TestTickAppliesBatchOnce(t *testing.T) {
	h := newHarness(t, Config{})
	h.next.polls = [][]events.Event{
		batch(t, headerBatch),
		batch(t, headerBatch),
		batch(t, counterBatch),
	}
	require.NoError(t, h.client.Connect(context.Background(), "hello"))

	first := h.client.Tick(context.Background())
	assert.Equal(t, 2, first.Applied)
	assert.False(t, first.Duplicate)
	assert.NotEmpty(t, first.Events)

	second := h.client.Tick(context.Background())
	assert.True(t, second.Duplicate)
	assert.Zero(t, second.Applied)
	assert.Empty(t, second.Events)

	third := h.client.Tick(context.Background())
	assert.Equal(t, 3, third.Applied)

	p := h.client.Processor()
	surface, ok := p.Surface("s")
	require.True(t, ok)
	assert.Equal(t, 1, surface.Len())
	root, ok := surface.RootComponent()
	require.True(t, ok)
	assert.Equal(t, "Hi", p.ResolveString("s", root.Component.(*protocol.Text).Text, processor.NoScope))
	if diff := cmp.Diff([]string{"c", "s"}, p.SurfaceIDs()); diff != "" {
		t.Errorf("SurfaceIDs mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateDetectionIgnoresKeyOrder(t *testing.T) {
	h := newHarness(t, Config{})
	reordered := `[
		{"beginRendering": {"root": "header", "surfaceId": "s"}},
		{"surfaceUpdate": {"components": [
			{"component": {"Text": {"text": {"literalString": "Hi"}}}, "id": "header"}
		], "surfaceId": "s"}}
	]`
	h.next.polls = [][]events.Event{batch(t, headerBatch), batch(t, reordered)}
	require.NoError(t, h.client.Connect(context.Background(), "hello"))

	assert.Equal(t, 2, h.client.Tick(context.Background()).Applied)
	assert.True(t, h.client.Tick(context.Background()).Duplicate)
}

func TestStatusEventsAreReported(t *testing.T) {
	h := newHarness(t, Config{})
	status := events.NewTaskStatusEvent("t", events.TaskStateWorking)
	h.next.polls = [][]events.Event{
		append([]events.Event{events.NewConnectedEvent("http://agent.example"), status}, batch(t, headerBatch)...),
	}
	require.NoError(t, h.client.Connect(context.Background(), "hello"))

	res := h.client.Tick(context.Background())
	require.Len(t, res.Status, 2)
	assert.Equal(t, events.EventTypeConnected, res.Status[0].Type())
	assert.Same(t, status, res.Status[1])
	assert.Equal(t, 2, res.Applied)
}

func TestReconnectFailureIsSwallowed(t *testing.T) {
	h := newHarness(t, Config{PollInterval: time.Second})
	h.next.connectErr = &core.TransportError{Op: "open", Err: errors.New("refused")}

	err := h.client.Connect(context.Background(), "hello")
	assert.True(t, core.IsTransportError(err))
	require.Len(t, h.hosts, 1)

	// Retried on the very next tick, failure swallowed.
	res := h.client.Tick(context.Background())
	assert.False(t, res.Reconnected)
	assert.Len(t, h.hosts, 2)
	assert.True(t, h.hosts[0].closed, "replaced hosts are closed")

	// Agent back: next tick reconnects.
	h.next.connectErr = nil
	res = h.client.Tick(context.Background())
	assert.True(t, res.Reconnected)
	assert.Len(t, h.hosts, 3)
	assert.Equal(t, host.StateStreaming, h.client.State())

	// Streaming: no further attempts.
	res = h.client.Tick(context.Background())
	assert.False(t, res.Reconnected)
	assert.Len(t, h.hosts, 3)
}

func TestReconnectIgnoresTickJitter(t *testing.T) {
	tests := []struct {
		name    string
		offsets []time.Duration
	}{
		{"late then early", []time.Duration{1005 * time.Millisecond, 995 * time.Millisecond}},
		{"early then late", []time.Duration{995 * time.Millisecond, 1005 * time.Millisecond}},
		{"same instant", []time.Duration{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Config{PollInterval: time.Second})
			h.next.connectErr = &core.TransportError{Op: "open", Err: errors.New("refused")}
			assert.Error(t, h.client.Connect(context.Background(), "hello"))

			for i, d := range tt.offsets {
				h.clock.advance(d)
				h.client.Tick(context.Background())
				assert.Len(t, h.hosts, i+2, "tick %d", i)
			}
		})
	}
}

func TestRunRetriesEveryTick(t *testing.T) {
	h := newHarness(t, Config{PollInterval: 5 * time.Millisecond})
	h.next.connectErr = &core.TransportError{Op: "open", Err: errors.New("refused")}
	assert.Error(t, h.client.Connect(context.Background(), "hello"))

	ctx, cancel := context.WithCancel(context.Background())
	var ticks int
	err := h.client.Run(ctx, func(TickResult) {
		ticks++
		if ticks == 5 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, ticks)
	assert.Len(t, h.hosts, 1+ticks)
}

func TestRunIsPaced(t *testing.T) {
	h := newHarness(t, Config{PollInterval: 20 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()
	var ticks int
	err := h.client.Run(ctx, func(TickResult) { ticks++ })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, ticks, 2)
	assert.LessOrEqual(t, ticks, 6)
}

func TestReconnectAfterStreamEnds(t *testing.T) {
	h := newHarness(t, Config{})
	require.NoError(t, h.client.Connect(context.Background(), "hello"))
	h.current().state = host.StateDisconnected

	h.clock.advance(time.Second)
	res := h.client.Tick(context.Background())
	assert.True(t, res.Reconnected)
	assert.Len(t, h.hosts, 2)
}

func TestDisconnectStopsReconnecting(t *testing.T) {
	h := newHarness(t, Config{})
	require.NoError(t, h.client.Connect(context.Background(), "hello"))
	require.NoError(t, h.client.Disconnect())
	assert.True(t, h.hosts[0].closed)
	assert.Equal(t, host.StateDisconnected, h.client.State())

	h.clock.advance(time.Minute)
	res := h.client.Tick(context.Background())
	assert.False(t, res.Reconnected)
	assert.Len(t, h.hosts, 1)
}

func TestTrigger(t *testing.T) {
	h := newHarness(t, Config{})
	h.next.polls = [][]events.Event{batch(t, counterBatch)}
	require.NoError(t, h.client.Connect(context.Background(), "hello"))
	h.client.Tick(context.Background())

	_, err := h.client.ApplyEdit(processor.DataModelChanged{SurfaceID: "c", Path: "/count", Value: value.Number(5)})
	require.NoError(t, err)

	action, err := h.client.Trigger(context.Background(), "c", "inc", processor.NoScope)
	require.NoError(t, err)
	assert.Equal(t, "increment", action.Name)
	assert.Equal(t, value.Number(5), action.Context["count"])
	assert.Equal(t, h.clock.t, action.Timestamp)
	require.Len(t, h.current().actions, 1)
	assert.Equal(t, action, h.current().actions[0])

	_, err = h.client.Trigger(context.Background(), "c", "label", processor.NoScope)
	assert.Error(t, err)
}

func TestSendActionWithoutConnection(t *testing.T) {
	h := newHarness(t, Config{})
	err := h.client.SendAction(context.Background(), protocol.UserAction{Name: "x", SurfaceID: "s"})
	assert.ErrorIs(t, err, core.ErrNotConnected)
}

func TestValidationRejectsMessages(t *testing.T) {
	h := newHarness(t, Config{ValidateMessages: true})
	evs := batch(t, headerBatch)
	evs[1].(*events.MessageEvent).Raw = []byte(`{"surfaceUpdate": {"surfaceId": ""}}`)
	h.next.polls = [][]events.Event{evs}
	require.NoError(t, h.client.Connect(context.Background(), "hello"))

	res := h.client.Tick(context.Background())
	assert.Equal(t, 1, res.Applied)
	require.Len(t, res.Errors, 1)
	var pe *core.ProtocolError
	assert.True(t, errors.As(res.Errors[0], &pe))

	surface, ok := h.client.Processor().Surface("s")
	require.True(t, ok)
	assert.Zero(t, surface.Len())
}

func TestRunStopsWhenCancelled(t *testing.T) {
	h := newHarness(t, Config{PollInterval: 10 * time.Millisecond})
	h.next.polls = [][]events.Event{batch(t, headerBatch)}
	require.NoError(t, h.client.Connect(context.Background(), "hello"))

	ctx, cancel := context.WithCancel(context.Background())
	var ticks int
	err := h.client.Run(ctx, func(res TickResult) {
		ticks++
		if ticks == 3 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, ticks)
	_, ok := h.client.Processor().Surface("s")
	assert.True(t, ok)
}

func TestClientAgainstAgent(t *testing.T) {
	agent := testutil.NewAgent(t)
	agent.SetHold(true)
	agent.SetScript(testutil.TaskFrame("t", "working"), testutil.EventFrame(headerBatch))

	logger, _ := test.NewNullLogger()
	c, err := New(Config{BaseURL: agent.URL(), ValidateMessages: true, Logger: logrus.NewEntry(logger)})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Connect(context.Background(), "show header"))

	var applied int
	require.Eventually(t, func() bool {
		applied += c.Tick(context.Background()).Applied
		return applied == 2
	}, 5*time.Second, 10*time.Millisecond)

	var text string
	c.View(func(p *processor.Processor) {
		surface, ok := p.Surface("s")
		require.True(t, ok)
		def, ok := surface.RootComponent()
		require.True(t, ok)
		text = p.ResolveString("s", def.Component.(*protocol.Text).Text, processor.NoScope)
	})
	assert.Equal(t, "Hi", text)

	require.NoError(t, c.SendAction(context.Background(), protocol.UserAction{Name: "ack", SurfaceID: "s"}))
	assert.Len(t, agent.Actions(), 1)
}
