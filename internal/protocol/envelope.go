package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/ag-ui/a2ui-go/pkg/core"
	"github.com/ag-ui/a2ui-go/pkg/core/events"
	"github.com/ag-ui/a2ui-go/pkg/encoding"
	a2ui "github.com/ag-ui/a2ui-go/pkg/protocol"
)

// Result kinds carried in a JSON-RPC response.
const (
	KindTask           = "task"
	KindStatusUpdate   = "status-update"
	KindMessage        = "message"
	KindArtifactUpdate = "artifact-update"
	KindEvent          = "event"
)

// ErrUnknownKind is returned by Events for a result kind the host ignores.
var ErrUnknownKind = errors.New("unknown result kind")

// Envelope is one decoded inbound frame.
type Envelope struct {
	// Response is nil for a bare A2UI batch.
	Response *jsonrpc2.Response
	// Bare holds a frame that was not wrapped in JSON-RPC.
	Bare json.RawMessage
}

type taskStatus struct {
	State   events.TaskState `json:"state"`
	Message *struct {
		Parts []Part `json:"parts"`
	} `json:"message,omitempty"`
}

type result struct {
	Kind      string          `json:"kind"`
	ID        string          `json:"id"`
	TaskID    string          `json:"taskId"`
	ContextID string          `json:"contextId"`
	Final     bool            `json:"final"`
	Status    *taskStatus     `json:"status"`
	Parts     []Part          `json:"parts"`
	Data      json.RawMessage `json:"data"`
	Artifact  *struct {
		Parts []Part `json:"parts"`
	} `json:"artifact"`
}

// Decode parses a frame. Errors are *core.ParseError.
func Decode(frame []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(frame)
	if len(trimmed) == 0 {
		return nil, &core.ParseError{Source: "frame", Err: errors.New("empty frame")}
	}

	var head map[string]json.RawMessage
	if trimmed[0] == '{' {
		if err := encoding.Unmarshal(trimmed, &head); err != nil {
			return nil, &core.ParseError{Source: "frame", Err: err}
		}
	} else if !encoding.Valid(trimmed) {
		return nil, &core.ParseError{Source: "frame", Err: errors.New("invalid JSON")}
	}

	_, hasVersion := head["jsonrpc"]
	_, hasResult := head["result"]
	_, hasError := head["error"]
	if !hasVersion && !hasResult && !hasError {
		return &Envelope{Bare: trimmed}, nil
	}

	var resp jsonrpc2.Response
	if err := encoding.Unmarshal(trimmed, &resp); err != nil {
		return nil, &core.ParseError{Source: "envelope", Err: err}
	}
	if resp.Error == nil && (resp.Result == nil || bytes.Equal(bytes.TrimSpace(*resp.Result), []byte("null"))) {
		return nil, &core.ParseError{Source: "envelope", Err: errors.New("response has neither result nor error")}
	}
	return &Envelope{Response: &resp}, nil
}

// Events classifies the envelope into host events in frame order. A JSON-RPC
// error becomes an ERROR event. A data payload that fails to parse yields a
// single ERROR event and no messages. ErrUnknownKind is returned for results
// the host does not act on.
func (e *Envelope) Events() ([]events.Event, error) {
	if e.Response == nil {
		return messageEvents(e.Bare), nil
	}
	if rpcErr := e.Response.Error; rpcErr != nil {
		ev := events.NewErrorEvent(&core.ProtocolError{
			Operation: "rpc",
			Code:      int(rpcErr.Code),
			Err:       errors.New(rpcErr.Message),
		})
		ev.Code = int(rpcErr.Code)
		return []events.Event{ev}, nil
	}

	var res result
	if err := encoding.Unmarshal(*e.Response.Result, &res); err != nil {
		return []events.Event{events.NewErrorEvent(&core.ParseError{Source: "result", Err: err})}, nil
	}

	switch res.Kind {
	case KindTask, KindStatusUpdate:
		taskID := res.TaskID
		if taskID == "" {
			taskID = res.ID
		}
		var out []events.Event
		if res.Status != nil {
			if res.Status.Message != nil {
				out = append(out, partEvents(res.Status.Message.Parts)...)
			}
			status := events.NewTaskStatusEvent(taskID, res.Status.State)
			status.ContextID = res.ContextID
			status.Final = res.Final || res.Status.State.IsTerminal()
			out = append(out, status)
		}
		return out, nil
	case KindMessage:
		return partEvents(res.Parts), nil
	case KindArtifactUpdate:
		if res.Artifact == nil {
			return nil, nil
		}
		return partEvents(res.Artifact.Parts), nil
	case KindEvent:
		return messageEvents(res.Data), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, res.Kind)
	}
}

// partEvents turns the data parts of an agent message into message events.
func partEvents(parts []Part) []events.Event {
	var out []events.Event
	for _, part := range parts {
		if part.Kind != "data" || len(part.Data) == 0 {
			continue
		}
		out = append(out, messageEvents(part.Data)...)
	}
	return out
}

// messageEvents parses data as a batch. A failure anywhere yields one error
// event so that half a batch is never delivered.
func messageEvents(data json.RawMessage) []events.Event {
	raws, err := splitBatch(data)
	if err != nil {
		return []events.Event{events.NewErrorEvent(&core.ParseError{Source: "data", Err: err})}
	}
	out := make([]events.Event, 0, len(raws))
	for _, raw := range raws {
		msg, err := a2ui.ParseMessage(raw)
		if err != nil {
			return []events.Event{events.NewErrorEvent(err)}
		}
		out = append(out, events.NewMessageEvent(msg, raw))
	}
	return out
}

func splitBatch(data json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("missing data")
	}
	if trimmed[0] != '[' {
		return []json.RawMessage{trimmed}, nil
	}
	var raws []json.RawMessage
	if err := encoding.Unmarshal(trimmed, &raws); err != nil {
		return nil, err
	}
	return raws, nil
}

// DecodeResponse checks a message/send reply for a JSON-RPC error. An empty
// body is accepted.
func DecodeResponse(body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	var resp jsonrpc2.Response
	if err := encoding.Unmarshal(trimmed, &resp); err != nil {
		return &core.ParseError{Source: "response", Err: err}
	}
	if resp.Error != nil {
		return &core.ProtocolError{Operation: MethodSend, Code: int(resp.Error.Code), Err: errors.New(resp.Error.Message)}
	}
	return nil
}
