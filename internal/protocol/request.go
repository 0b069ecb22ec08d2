package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/ag-ui/a2ui-go/pkg/encoding"
	a2ui "github.com/ag-ui/a2ui-go/pkg/protocol"
)

// JSON-RPC methods used by the host.
const (
	MethodStream = "message/stream"
	MethodSend   = "message/send"
)

// MimeType marks data parts that carry A2UI payloads.
const MimeType = "application/json+a2ui"

// Part is one segment of an agent message.
type Part struct {
	Kind     string          `json:"kind"`
	Text     string          `json:"text,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	Metadata map[string]any  `json:"metadata,omitempty"`
}

// NewTextPart creates a text part.
func NewTextPart(text string) Part {
	return Part{Kind: "text", Text: text}
}

// NewDataPart creates a data part tagged with the A2UI mime type.
func NewDataPart(data json.RawMessage) Part {
	return Part{Kind: "data", Data: data, Metadata: map[string]any{"mimeType": MimeType}}
}

// Message is an outbound user message.
type Message struct {
	Kind      string  `json:"kind"`
	MessageID string  `json:"messageId"`
	Role      string  `json:"role"`
	Parts     []Part  `json:"parts"`
	ContextID *string `json:"contextId,omitempty"`
}

// NewMessage creates a user message with a fresh id.
func NewMessage(contextID string, parts ...Part) Message {
	m := Message{
		Kind:      "message",
		MessageID: uuid.New().String(),
		Role:      "user",
		Parts:     parts,
	}
	if contextID != "" {
		m.ContextID = &contextID
	}
	return m
}

// SendParams are the params of message/send and message/stream.
type SendParams struct {
	Message  Message        `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func newRequest(method string, params SendParams) (*jsonrpc2.Request, error) {
	req := &jsonrpc2.Request{
		Method: method,
		ID:     jsonrpc2.ID{Str: uuid.New().String(), IsString: true},
	}
	if err := req.SetParams(params); err != nil {
		return nil, fmt.Errorf("failed to set %s params: %w", method, err)
	}
	return req, nil
}

// NewStreamRequest builds the message/stream request that opens a stream.
func NewStreamRequest(initialContext, contextID string) (*jsonrpc2.Request, error) {
	return newRequest(MethodStream, SendParams{
		Message:  NewMessage(contextID, NewTextPart(initialContext)),
		Metadata: map[string]any{"a2uiClientCapabilities": map[string]any{"supportedCatalogIds": []string{"standard"}}},
	})
}

// NewActionRequest builds the message/send request that reports a user action.
func NewActionRequest(action a2ui.UserAction, contextID string) (*jsonrpc2.Request, error) {
	if err := action.Validate(); err != nil {
		return nil, err
	}
	payload, err := encoding.Marshal(map[string]a2ui.UserAction{"userAction": action})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user action: %w", err)
	}
	return newRequest(MethodSend, SendParams{
		Message: NewMessage(contextID, NewDataPart(payload)),
	})
}

// EncodeRequest serializes a request for the wire.
func EncodeRequest(req *jsonrpc2.Request) ([]byte, error) {
	data, err := encoding.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", req.Method, err)
	}
	return data, nil
}
