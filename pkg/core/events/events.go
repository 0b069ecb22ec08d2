package events

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ag-ui/a2ui-go/pkg/encoding"
	"github.com/ag-ui/a2ui-go/pkg/value"
)

// EventType represents the type of an A2UI runtime event
type EventType string

// Host event types, produced by the streaming host when draining its buffer
const (
	EventTypeConnected    EventType = "CONNECTED"
	EventTypeMessage      EventType = "MESSAGE"
	EventTypeTaskStatus   EventType = "TASK_STATUS"
	EventTypeError        EventType = "ERROR"
	EventTypeDisconnected EventType = "DISCONNECTED"
)

// Processor event types, returned when a message is applied to a surface
const (
	EventTypeSurfaceCreated   EventType = "SURFACE_CREATED"
	EventTypeRootChanged      EventType = "ROOT_CHANGED"
	EventTypeComponentCreated EventType = "COMPONENT_CREATED"
	EventTypeComponentUpdated EventType = "COMPONENT_UPDATED"
	EventTypeDataModelUpdated EventType = "DATA_MODEL_UPDATED"
	EventTypeSurfaceCleared   EventType = "SURFACE_CLEARED"
	EventTypeSurfaceDeleted   EventType = "SURFACE_DELETED"

	// EventTypeUnknown represents an unrecognized event type
	EventTypeUnknown EventType = "UNKNOWN"
)

// validEventTypes is a map for O(1) lookup of valid event types
var validEventTypes = map[EventType]bool{
	EventTypeConnected:        true,
	EventTypeMessage:          true,
	EventTypeTaskStatus:       true,
	EventTypeError:            true,
	EventTypeDisconnected:     true,
	EventTypeSurfaceCreated:   true,
	EventTypeRootChanged:      true,
	EventTypeComponentCreated: true,
	EventTypeComponentUpdated: true,
	EventTypeDataModelUpdated: true,
	EventTypeSurfaceCleared:   true,
	EventTypeSurfaceDeleted:   true,
}

// IsHostEvent reports whether t is produced by the streaming host.
func (t EventType) IsHostEvent() bool {
	switch t {
	case EventTypeConnected, EventTypeMessage, EventTypeTaskStatus, EventTypeError, EventTypeDisconnected:
		return true
	}
	return false
}

// Event defines the common interface for all runtime events
type Event interface {
	// Type returns the event type
	Type() EventType

	// Timestamp returns the event timestamp (Unix milliseconds)
	Timestamp() *int64

	// SetTimestamp sets the event timestamp
	SetTimestamp(timestamp int64)

	// Validate validates the event structure and content
	Validate() error

	// ToJSON serializes the event to JSON
	ToJSON() ([]byte, error)

	// ToProtobuf converts the event to a protobuf Struct
	ToProtobuf() (*structpb.Struct, error)

	// GetBaseEvent returns the underlying base event
	GetBaseEvent() *BaseEvent
}

// BaseEvent provides common fields and functionality for all events
type BaseEvent struct {
	EventType   EventType `json:"type"`
	TimestampMs *int64    `json:"timestamp,omitempty"`
}

// Type returns the event type
func (b *BaseEvent) Type() EventType {
	return b.EventType
}

// Timestamp returns the event timestamp
func (b *BaseEvent) Timestamp() *int64 {
	return b.TimestampMs
}

// SetTimestamp sets the event timestamp
func (b *BaseEvent) SetTimestamp(timestamp int64) {
	b.TimestampMs = &timestamp
}

// GetBaseEvent returns the base event
func (b *BaseEvent) GetBaseEvent() *BaseEvent {
	return b
}

// NewBaseEvent creates a new base event with the given type and current timestamp
func NewBaseEvent(eventType EventType) *BaseEvent {
	now := time.Now().UnixMilli()
	return &BaseEvent{
		EventType:   eventType,
		TimestampMs: &now,
	}
}

// Validate validates the base event structure
func (b *BaseEvent) Validate() error {
	if b.EventType == "" {
		return fmt.Errorf("BaseEvent validation failed: type field is required")
	}

	if !isValidEventType(b.EventType) {
		return fmt.Errorf("BaseEvent validation failed: invalid event type '%s'", b.EventType)
	}

	return nil
}

// isValidEventType checks if the given event type is valid
func isValidEventType(eventType EventType) bool {
	return validEventTypes[eventType]
}

// toJSON marshals any event with the shared codec.
func toJSON(e Event) ([]byte, error) {
	return encoding.Marshal(e)
}

// toStruct converts an event into a protobuf Struct via its JSON form.
func toStruct(e Event) (*structpb.Struct, error) {
	data, err := e.ToJSON()
	if err != nil {
		return nil, err
	}
	v, err := value.Parse(data)
	if err != nil {
		return nil, err
	}
	m, ok := v.(value.Map)
	if !ok {
		return nil, fmt.Errorf("event %s did not encode to an object", e.Type())
	}
	return value.MapToProto(m)
}

// ValidateSequence validates a sequence of host events: nothing but ERROR may
// precede CONNECTED, nothing but CONNECTED may follow DISCONNECTED, and every
// event must be valid on its own. Processor events are checked individually.
func ValidateSequence(events []Event) error {
	if len(events) == 0 {
		return nil
	}

	connected := false
	for i, event := range events {
		if err := event.Validate(); err != nil {
			return fmt.Errorf("event %d validation failed: %w", i, err)
		}

		switch event.Type() {
		case EventTypeConnected:
			if connected {
				return fmt.Errorf("event %d: connected twice without disconnect", i)
			}
			connected = true

		case EventTypeMessage, EventTypeTaskStatus:
			if !connected {
				return fmt.Errorf("event %d: %s outside a connection", i, event.Type())
			}

		case EventTypeDisconnected:
			if !connected {
				return fmt.Errorf("event %d: disconnected without connect", i)
			}
			connected = false

		case EventTypeError:
			// Errors can be reported before a connection exists (failed connect)
			// and while streaming.
		}
	}

	return nil
}
