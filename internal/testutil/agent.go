package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/ag-ui/a2ui-go/pkg/encoding"
)

// Agent is a fake agent serving a fixed script of frames per stream.
type Agent struct {
	server   *httptest.Server
	upgrader websocket.Upgrader

	mu          sync.Mutex
	script      [][]byte
	hold        bool
	failStatus  int
	streams     int
	openBodies  [][]byte
	actions     [][]byte
	subscribers map[chan []byte]struct{}
	sendError   *jsonrpc2.Error
}

// NewAgent starts a fake agent that is shut down when the test ends.
func NewAgent(t testing.TB) *Agent {
	t.Helper()
	a := &Agent{subscribers: make(map[chan []byte]struct{})}
	a.server = httptest.NewServer(http.HandlerFunc(a.serveHTTP))
	t.Cleanup(a.Close)
	return a
}

// URL returns the agent endpoint.
func (a *Agent) URL() string {
	return a.server.URL
}

// Close shuts the server down.
func (a *Agent) Close() {
	a.server.CloseClientConnections()
	a.server.Close()
}

// SetScript sets the frames sent at the start of every stream.
func (a *Agent) SetScript(frames ...[]byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.script = frames
}

// SetHold keeps streams open after the script until the client leaves.
func (a *Agent) SetHold(hold bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hold = hold
}

// FailWith makes stream opens fail with status. Zero restores normal service.
func (a *Agent) FailWith(status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failStatus = status
}

// RejectActions makes message/send reply with a JSON-RPC error.
func (a *Agent) RejectActions(code int64, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sendError = &jsonrpc2.Error{Code: code, Message: message}
}

// Push sends frame to every stream currently held open.
func (a *Agent) Push(frame []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for ch := range a.subscribers {
		select {
		case ch <- frame:
		default:
		}
	}
}

// Streams returns how many streams have been opened.
func (a *Agent) Streams() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.streams
}

// OpenBodies returns the request bodies that opened streams.
func (a *Agent) OpenBodies() [][]byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([][]byte(nil), a.openBodies...)
}

// Actions returns the bodies of every action received.
func (a *Agent) Actions() [][]byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([][]byte(nil), a.actions...)
}

// session registers a stream and returns its script and push channel.
func (a *Agent) session(body []byte) (script [][]byte, hold bool, push chan []byte, done func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.streams++
	a.openBodies = append(a.openBodies, body)
	push = make(chan []byte, 16)
	a.subscribers[push] = struct{}{}
	return append([][]byte(nil), a.script...), a.hold, push, func() {
		a.mu.Lock()
		delete(a.subscribers, push)
		a.mu.Unlock()
	}
}

func (a *Agent) serveHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	failStatus := a.failStatus
	a.mu.Unlock()

	if websocket.IsWebSocketUpgrade(r) {
		if failStatus != 0 {
			http.Error(w, "unavailable", failStatus)
			return
		}
		a.serveWebSocket(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req jsonrpc2.Request
	if err := encoding.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	switch req.Method {
	case "message/send":
		a.handleSend(w, req, body)
	case "message/stream":
		if failStatus != 0 {
			http.Error(w, "unavailable", failStatus)
			return
		}
		a.serveSSE(w, r, body)
	default:
		http.Error(w, "unknown method "+req.Method, http.StatusBadRequest)
	}
}

func (a *Agent) handleSend(w http.ResponseWriter, req jsonrpc2.Request, body []byte) {
	a.mu.Lock()
	a.actions = append(a.actions, body)
	sendErr := a.sendError
	a.mu.Unlock()

	resp := &jsonrpc2.Response{ID: req.ID}
	if sendErr != nil {
		resp.Error = sendErr
	} else {
		result := json.RawMessage(`{"kind":"task","id":"action-task","status":{"state":"completed"}}`)
		resp.Result = &result
	}
	data, _ := encoding.Marshal(resp)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (a *Agent) serveSSE(w http.ResponseWriter, r *http.Request, body []byte) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	script, hold, push, done := a.session(body)
	defer done()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	write := func(frame []byte) bool {
		if _, err := fmt.Fprintf(w, "data: %s\n\n", frame); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}
	for _, frame := range script {
		if !write(frame) {
			return
		}
	}
	if !hold {
		return
	}
	for {
		select {
		case frame := <-push:
			if !write(frame) {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

func (a *Agent) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	_, body, err := conn.ReadMessage()
	if err != nil {
		return
	}
	script, hold, push, done := a.session(body)
	defer done()

	var writeMu sync.Mutex
	write := func(frame []byte) bool {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(websocket.TextMessage, frame) == nil
	}
	for _, frame := range script {
		if !write(frame) {
			return
		}
	}
	if !hold {
		writeMu.Lock()
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		writeMu.Unlock()
		return
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			a.mu.Lock()
			a.actions = append(a.actions, msg)
			a.mu.Unlock()
		}
	}()
	for {
		select {
		case frame := <-push:
			if !write(frame) {
				return
			}
		case <-closed:
			return
		}
	}
}
