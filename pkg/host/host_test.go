package host

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ag-ui/a2ui-go/internal/testutil"
	"github.com/ag-ui/a2ui-go/pkg/core"
	"github.com/ag-ui/a2ui-go/pkg/core/events"
	"github.com/ag-ui/a2ui-go/pkg/encoding"
	a2ui "github.com/ag-ui/a2ui-go/pkg/protocol"
	"github.com/ag-ui/a2ui-go/pkg/transport"
	"github.com/ag-ui/a2ui-go/pkg/value"
)

const headerBatch = `[
	{"beginRendering": {"surfaceId": "s", "root": "header"}},
	{"surfaceUpdate": {"surfaceId": "s", "components": [
		{"id": "header", "component": {"Text": {"text": {"literalString": "Hi"}}}}
	]}}
]`

// fakeTransport hands out a frame channel driven by the test.
type fakeTransport struct {
	mu      sync.Mutex
	in      chan transport.Frame
	openErr error
	opened  [][]byte
	posted  [][]byte
	reply   []byte
	closed  int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{in: make(chan transport.Frame, 16)}
}

func (f *fakeTransport) Open(ctx context.Context, body []byte) (<-chan transport.Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, body)
	if f.openErr != nil {
		return nil, f.openErr
	}
	in := f.in
	out := make(chan transport.Frame)
	go func() {
		defer close(out)
		for {
			select {
			case fr, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- fr:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (f *fakeTransport) Post(ctx context.Context, body []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, body)
	return f.reply, nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeTransport) frame(data string) {
	f.in <- transport.Frame{Data: []byte(data)}
}

func testLogger() *logrus.Entry {
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(logger)
}

func newHost(t *testing.T, config Config, opts ...Option) *Host {
	t.Helper()
	config.Logger = testLogger()
	h, err := New(config, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

// pollUntil keeps polling until the accumulated events satisfy done.
func pollUntil(t *testing.T, h *Host, done func([]events.Event) bool) []events.Event {
	t.Helper()
	var got []events.Event
	require.Eventually(t, func() bool {
		got = append(got, h.PollAll()...)
		return done(got)
	}, 5*time.Second, 10*time.Millisecond)
	return got
}

func hasType(want events.EventType) func([]events.Event) bool {
	return func(evs []events.Event) bool {
		for _, ev := range evs {
			if ev.Type() == want {
				return true
			}
		}
		return false
	}
}

func types(evs []events.Event) []events.EventType {
	out := make([]events.EventType, len(evs))
	for i, ev := range evs {
		out[i] = ev.Type()
	}
	return out
}

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		field  string
	}{
		{name: "empty URL", config: Config{}, field: "URL"},
		{name: "malformed URL", config: Config{URL: "http://[::1:80"}, field: "URL"},
		{name: "unknown transport", config: Config{URL: "http://agent", Transport: "grpc"}, field: "Transport"},
		{name: "negative buffer", config: Config{URL: "http://agent", BufferSize: -1}, field: "BufferSize"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			var ce *core.ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.field, ce.Field)
		})
	}

	h, err := New(Config{URL: "http://agent", Transport: TransportWebSocket})
	require.NoError(t, err)
	assert.IsType(t, &transport.WebSocketTransport{}, h.transport)
	assert.Equal(t, StateDisconnected, h.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "streaming", StateStreaming.String())
	assert.Equal(t, "error", StateError.String())
	assert.Equal(t, "state(9)", State(9).String())
}

func TestConnectAndPollOverSSE(t *testing.T) {
	agent := testutil.NewAgent(t)
	agent.SetScript(
		testutil.TaskFrame("task-1", "working"),
		testutil.EventFrame(headerBatch),
	)

	h := newHost(t, Config{URL: agent.URL()})
	require.NoError(t, h.Connect(context.Background(), "show header"))

	got := pollUntil(t, h, hasType(events.EventTypeDisconnected))
	assert.Equal(t, []events.EventType{
		events.EventTypeConnected,
		events.EventTypeTaskStatus,
		events.EventTypeMessage,
		events.EventTypeMessage,
		events.EventTypeDisconnected,
	}, types(got))
	assert.NoError(t, events.ValidateSequence(got))

	status := got[1].(*events.TaskStatusEvent)
	assert.Equal(t, "task-1", status.TaskID)
	assert.Equal(t, events.TaskStateWorking, status.State)

	msg := got[2].(*events.MessageEvent)
	assert.Equal(t, a2ui.KindBeginRendering, msg.Message.Kind())
	assert.Equal(t, "s", msg.SurfaceID())

	assert.Equal(t, StateDisconnected, h.State())
	assert.Empty(t, h.PollAll())
	assert.Contains(t, string(agent.OpenBodies()[0]), "show header")
}

func TestConnectAndPollOverWebSocket(t *testing.T) {
	agent := testutil.NewAgent(t)
	agent.SetHold(true)
	agent.SetScript(testutil.EventFrame(headerBatch))

	h := newHost(t, Config{URL: agent.URL(), Transport: TransportWebSocket})
	require.NoError(t, h.Connect(context.Background(), "show header"))

	got := pollUntil(t, h, func(evs []events.Event) bool { return len(evs) >= 3 })
	assert.Equal(t, []events.EventType{
		events.EventTypeConnected,
		events.EventTypeMessage,
		events.EventTypeMessage,
	}, types(got))
	assert.Equal(t, StateStreaming, h.State())
}

func TestConnectFailure(t *testing.T) {
	agent := testutil.NewAgent(t)
	agent.FailWith(http.StatusBadGateway)

	h := newHost(t, Config{URL: agent.URL()})
	err := h.Connect(context.Background(), "hello")
	require.Error(t, err)
	var te *core.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusBadGateway, te.StatusCode)
	assert.Equal(t, StateError, h.State())
	assert.Empty(t, h.PollAll())

	agent.FailWith(0)
	require.NoError(t, h.Connect(context.Background(), "hello"))
	pollUntil(t, h, hasType(events.EventTypeConnected))
}

func TestConnectWrapsNonTransportErrors(t *testing.T) {
	ft := newFakeTransport()
	ft.openErr = errors.New("boom")
	h := newHost(t, Config{URL: "http://agent"}, WithTransport(ft))

	err := h.Connect(context.Background(), "hello")
	assert.True(t, core.IsTransportError(err))
}

func TestConnectTwice(t *testing.T) {
	ft := newFakeTransport()
	h := newHost(t, Config{URL: "http://agent"}, WithTransport(ft))

	require.NoError(t, h.Connect(context.Background(), "hello"))
	err := h.Connect(context.Background(), "again")
	assert.ErrorIs(t, err, core.ErrAlreadyConnected)
	assert.Len(t, ft.opened, 1)
}

func TestStreamOutlivesConnectContext(t *testing.T) {
	ft := newFakeTransport()
	h := newHost(t, Config{URL: "http://agent"}, WithTransport(ft))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, h.Connect(ctx, "hello"))
	cancel()

	ft.frame(string(testutil.TaskFrame("t", "working")))
	got := pollUntil(t, h, hasType(events.EventTypeTaskStatus))
	assert.Equal(t, events.EventTypeConnected, got[0].Type())
	assert.Equal(t, StateStreaming, h.State())
}

func TestMalformedFramesBecomeErrors(t *testing.T) {
	ft := newFakeTransport()
	h := newHost(t, Config{URL: "http://agent"}, WithTransport(ft))
	require.NoError(t, h.Connect(context.Background(), "hello"))

	ft.frame(`{not json`)
	ft.frame(string(testutil.EventFrame(`[{"beginRendering": {"surfaceId": "s", "root": "r"}}, {"bogus": {}}]`)))
	ft.frame(string(testutil.ErrorFrame(-32000, "agent exploded")))
	ft.frame(`{"jsonrpc":"2.0","id":"1","result":{"kind":"mystery"}}`)
	ft.frame(string(testutil.TaskFrame("t", "completed")))

	got := pollUntil(t, h, hasType(events.EventTypeTaskStatus))
	assert.Equal(t, []events.EventType{
		events.EventTypeConnected,
		events.EventTypeError,
		events.EventTypeError,
		events.EventTypeError,
		events.EventTypeTaskStatus,
	}, types(got))

	assert.True(t, core.IsParseError(got[1].(*events.ErrorEvent).Err))
	rpc := got[3].(*events.ErrorEvent)
	assert.Equal(t, -32000, rpc.Code)
	assert.Contains(t, rpc.Message, "agent exploded")
	assert.True(t, got[4].(*events.TaskStatusEvent).Final)
}

func TestTransportErrorEndsInErrorState(t *testing.T) {
	ft := newFakeTransport()
	h := newHost(t, Config{URL: "http://agent"}, WithTransport(ft))
	require.NoError(t, h.Connect(context.Background(), "hello"))

	ft.in <- transport.Frame{Err: &core.TransportError{Op: "read", Err: errors.New("reset")}}
	close(ft.in)

	got := pollUntil(t, h, hasType(events.EventTypeDisconnected))
	assert.Equal(t, []events.EventType{
		events.EventTypeConnected,
		events.EventTypeError,
		events.EventTypeDisconnected,
	}, types(got))
	assert.Contains(t, got[2].(*events.DisconnectedEvent).Reason, "reset")
	assert.Equal(t, StateError, h.State())

	// A failed stream may be replaced.
	ft.in = make(chan transport.Frame, 1)
	require.NoError(t, h.Connect(context.Background(), "hello"))
	assert.Equal(t, StateStreaming, h.State())
}

func TestCloseDiscardsStaleEvents(t *testing.T) {
	ft := newFakeTransport()
	h := newHost(t, Config{URL: "http://agent"}, WithTransport(ft))
	require.NoError(t, h.Connect(context.Background(), "hello"))

	ft.frame(string(testutil.EventFrame(headerBatch)))
	require.NoError(t, h.Close())
	ft.frame(string(testutil.TaskFrame("t", "working")))

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, h.PollAll())
	assert.Equal(t, StateDisconnected, h.State())
	assert.Equal(t, 1, ft.closed)
}

func TestPollAllIsNonBlocking(t *testing.T) {
	ft := newFakeTransport()
	h := newHost(t, Config{URL: "http://agent"}, WithTransport(ft))

	done := make(chan []events.Event)
	go func() { done <- h.PollAll() }()
	select {
	case evs := <-done:
		assert.Empty(t, evs)
	case <-time.After(time.Second):
		t.Fatal("PollAll blocked")
	}
}

func TestSendAction(t *testing.T) {
	agent := testutil.NewAgent(t)
	h := newHost(t, Config{URL: agent.URL(), ContextID: "ctx-9"})

	action := a2ui.UserAction{
		Name:              "purchase",
		SurfaceID:         "shop",
		SourceComponentID: "buy",
		Timestamp:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Context:           map[string]value.Value{"qty": value.Number(5)},
	}
	require.NoError(t, h.SendAction(context.Background(), action))

	sent := agent.Actions()
	require.Len(t, sent, 1)
	var wire struct {
		Method string `json:"method"`
		Params struct {
			Message struct {
				ContextID string `json:"contextId"`
				Parts     []struct {
					Data struct {
						UserAction struct {
							Name    string         `json:"name"`
							Context map[string]any `json:"context"`
						} `json:"userAction"`
					} `json:"data"`
				} `json:"parts"`
			} `json:"message"`
		} `json:"params"`
	}
	require.NoError(t, encoding.Unmarshal(sent[0], &wire))
	assert.Equal(t, "message/send", wire.Method)
	assert.Equal(t, "ctx-9", wire.Params.Message.ContextID)
	require.Len(t, wire.Params.Message.Parts, 1)
	sentAction := wire.Params.Message.Parts[0].Data.UserAction
	assert.Equal(t, "purchase", sentAction.Name)
	assert.Equal(t, map[string]any{"qty": float64(5)}, sentAction.Context)

	agent.RejectActions(-32602, "bad action")
	err := h.SendAction(context.Background(), action)
	var pe *core.ProtocolError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, -32602, pe.Code)
	assert.Len(t, agent.Actions(), 2, "rejected actions are not retried")

	assert.Error(t, h.SendAction(context.Background(), a2ui.UserAction{}))
	assert.Len(t, agent.Actions(), 2)
}

func TestContextIDIsLearnedFromStatus(t *testing.T) {
	ft := newFakeTransport()
	h := newHost(t, Config{URL: "http://agent"}, WithTransport(ft))
	require.NoError(t, h.Connect(context.Background(), "hello"))

	ft.frame(`{"jsonrpc":"2.0","id":"1","result":{"kind":"status-update","taskId":"t","contextId":"ctx-42","status":{"state":"working"}}}`)
	pollUntil(t, h, hasType(events.EventTypeTaskStatus))
	assert.Equal(t, "ctx-42", h.ContextID())

	require.NoError(t, h.SendAction(context.Background(), a2ui.UserAction{Name: "go", SurfaceID: "s"}))
	require.Len(t, ft.posted, 1)
	assert.Contains(t, string(ft.posted[0]), `"contextId":"ctx-42"`)
}
