package events

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ag-ui/a2ui-go/pkg/protocol"
)

// ConnectedEvent indicates that the stream to the agent is open
type ConnectedEvent struct {
	*BaseEvent
	URL string `json:"url,omitempty"`
}

// NewConnectedEvent creates a new connected event
func NewConnectedEvent(url string) *ConnectedEvent {
	return &ConnectedEvent{
		BaseEvent: NewBaseEvent(EventTypeConnected),
		URL:       url,
	}
}

// Validate validates the connected event
func (e *ConnectedEvent) Validate() error {
	return e.BaseEvent.Validate()
}

// ToJSON serializes the event to JSON
func (e *ConnectedEvent) ToJSON() ([]byte, error) {
	return toJSON(e)
}

// ToProtobuf converts the event to a protobuf Struct
func (e *ConnectedEvent) ToProtobuf() (*structpb.Struct, error) {
	return toStruct(e)
}

// MessageEvent carries one parsed A2UI message together with its raw bytes
type MessageEvent struct {
	*BaseEvent
	Message protocol.Message `json:"-"`
	Raw     json.RawMessage  `json:"message"`
}

// NewMessageEvent creates a new message event
func NewMessageEvent(msg protocol.Message, raw json.RawMessage) *MessageEvent {
	return &MessageEvent{
		BaseEvent: NewBaseEvent(EventTypeMessage),
		Message:   msg,
		Raw:       raw,
	}
}

// SurfaceID returns the surface the message addresses
func (e *MessageEvent) SurfaceID() string {
	if e.Message == nil {
		return ""
	}
	return e.Message.GetSurfaceID()
}

// Validate validates the message event
func (e *MessageEvent) Validate() error {
	if err := e.BaseEvent.Validate(); err != nil {
		return err
	}

	if e.Message == nil {
		return fmt.Errorf("message is required")
	}

	if len(e.Raw) == 0 {
		return fmt.Errorf("raw message is required")
	}

	return e.Message.Validate()
}

// ToJSON serializes the event to JSON
func (e *MessageEvent) ToJSON() ([]byte, error) {
	return toJSON(e)
}

// ToProtobuf converts the event to a protobuf Struct
func (e *MessageEvent) ToProtobuf() (*structpb.Struct, error) {
	return toStruct(e)
}

// TaskState is the lifecycle state of the agent task behind a stream
type TaskState string

const (
	TaskStateSubmitted     TaskState = "submitted"
	TaskStateWorking       TaskState = "working"
	TaskStateRunning       TaskState = "running"
	TaskStateInputRequired TaskState = "input-required"
	TaskStateAuthRequired  TaskState = "auth-required"
	TaskStateCompleted     TaskState = "completed"
	TaskStateCanceled      TaskState = "canceled"
	TaskStateFailed        TaskState = "failed"
	TaskStateRejected      TaskState = "rejected"
	TaskStateUnknown       TaskState = "unknown"
)

// IsTerminal reports whether no further updates are expected for the task
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateCanceled, TaskStateFailed, TaskStateRejected:
		return true
	}
	return false
}

// TaskStatusEvent reports a task state change
type TaskStatusEvent struct {
	*BaseEvent
	TaskID    string    `json:"taskId"`
	ContextID string    `json:"contextId,omitempty"`
	State     TaskState `json:"state"`
	Final     bool      `json:"final,omitempty"`
}

// NewTaskStatusEvent creates a new task status event
func NewTaskStatusEvent(taskID string, state TaskState) *TaskStatusEvent {
	return &TaskStatusEvent{
		BaseEvent: NewBaseEvent(EventTypeTaskStatus),
		TaskID:    taskID,
		State:     state,
	}
}

// Validate validates the task status event
func (e *TaskStatusEvent) Validate() error {
	if err := e.BaseEvent.Validate(); err != nil {
		return err
	}

	if e.State == "" {
		return fmt.Errorf("task state is required")
	}

	return nil
}

// ToJSON serializes the event to JSON
func (e *TaskStatusEvent) ToJSON() ([]byte, error) {
	return toJSON(e)
}

// ToProtobuf converts the event to a protobuf Struct
func (e *TaskStatusEvent) ToProtobuf() (*structpb.Struct, error) {
	return toStruct(e)
}

// ErrorEvent reports a transport, envelope or parse failure
type ErrorEvent struct {
	*BaseEvent
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
	Err     error  `json:"-"`
}

// NewErrorEvent creates a new error event from err
func NewErrorEvent(err error) *ErrorEvent {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &ErrorEvent{
		BaseEvent: NewBaseEvent(EventTypeError),
		Message:   msg,
		Err:       err,
	}
}

// Unwrap returns the underlying error, if any
func (e *ErrorEvent) Unwrap() error {
	return e.Err
}

// Validate validates the error event
func (e *ErrorEvent) Validate() error {
	if err := e.BaseEvent.Validate(); err != nil {
		return err
	}

	if e.Message == "" {
		return fmt.Errorf("error message is required")
	}

	return nil
}

// ToJSON serializes the event to JSON
func (e *ErrorEvent) ToJSON() ([]byte, error) {
	return toJSON(e)
}

// ToProtobuf converts the event to a protobuf Struct
func (e *ErrorEvent) ToProtobuf() (*structpb.Struct, error) {
	return toStruct(e)
}

// DisconnectedEvent indicates that the stream ended
type DisconnectedEvent struct {
	*BaseEvent
	Reason string `json:"reason,omitempty"`
}

// NewDisconnectedEvent creates a new disconnected event
func NewDisconnectedEvent(reason string) *DisconnectedEvent {
	return &DisconnectedEvent{
		BaseEvent: NewBaseEvent(EventTypeDisconnected),
		Reason:    reason,
	}
}

// Validate validates the disconnected event
func (e *DisconnectedEvent) Validate() error {
	return e.BaseEvent.Validate()
}

// ToJSON serializes the event to JSON
func (e *DisconnectedEvent) ToJSON() ([]byte, error) {
	return toJSON(e)
}

// ToProtobuf converts the event to a protobuf Struct
func (e *DisconnectedEvent) ToProtobuf() (*structpb.Struct, error) {
	return toStruct(e)
}
