package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ag-ui/a2ui-go/pkg/core"
	"github.com/ag-ui/a2ui-go/pkg/encoding"
	"github.com/ag-ui/a2ui-go/pkg/value"
)

// MessageKind is the wrapper key of a message on the wire.
type MessageKind string

const (
	KindBeginRendering  MessageKind = "beginRendering"
	KindSurfaceUpdate   MessageKind = "surfaceUpdate"
	KindDataModelUpdate MessageKind = "dataModelUpdate"
	KindDeleteSurface   MessageKind = "deleteSurface"
)

// ErrUnknownMessage is returned for a message whose wrapper key is not recognised.
var ErrUnknownMessage = errors.New("unknown message kind")

// Message is one server-to-client A2UI message.
type Message interface {
	Kind() MessageKind
	GetSurfaceID() string
	Validate() error
	isMessage()
}

// BeginRendering sets the root component of a surface.
type BeginRendering struct {
	SurfaceID string    `json:"surfaceId"`
	Root      string    `json:"root"`
	Styles    value.Map `json:"styles,omitempty"`
}

// SurfaceUpdate upserts components into a surface by id.
type SurfaceUpdate struct {
	SurfaceID  string                `json:"surfaceId"`
	Components []ComponentDefinition `json:"components"`
}

// DataModelUpdate merges Contents into the data model at Path.
type DataModelUpdate struct {
	SurfaceID string  `json:"surfaceId"`
	Path      string  `json:"path,omitempty"`
	Contents  Entries `json:"contents"`
}

// DeleteSurface drops a surface and its data model.
type DeleteSurface struct {
	SurfaceID string `json:"surfaceId"`
}

func (*BeginRendering) Kind() MessageKind  { return KindBeginRendering }
func (*SurfaceUpdate) Kind() MessageKind   { return KindSurfaceUpdate }
func (*DataModelUpdate) Kind() MessageKind { return KindDataModelUpdate }
func (*DeleteSurface) Kind() MessageKind   { return KindDeleteSurface }

func (m *BeginRendering) GetSurfaceID() string  { return m.SurfaceID }
func (m *SurfaceUpdate) GetSurfaceID() string   { return m.SurfaceID }
func (m *DataModelUpdate) GetSurfaceID() string { return m.SurfaceID }
func (m *DeleteSurface) GetSurfaceID() string   { return m.SurfaceID }

func (*BeginRendering) isMessage()  {}
func (*SurfaceUpdate) isMessage()   {}
func (*DataModelUpdate) isMessage() {}
func (*DeleteSurface) isMessage()   {}

func requireSurfaceID(kind MessageKind, id string) error {
	if id == "" {
		return fmt.Errorf("%s: surfaceId is required", kind)
	}
	return nil
}

// Validate validates the begin rendering message
func (m *BeginRendering) Validate() error {
	return requireSurfaceID(m.Kind(), m.SurfaceID)
}

// Validate validates the surface update. Broken component entries do not fail
// the message; the processor skips them.
func (m *SurfaceUpdate) Validate() error {
	return requireSurfaceID(m.Kind(), m.SurfaceID)
}

// UnmarshalJSON decodes components one by one. An entry that fails to decode
// is kept with its error in Err, so the rest of the update still applies.
func (m *SurfaceUpdate) UnmarshalJSON(data []byte) error {
	var wire struct {
		SurfaceID  string            `json:"surfaceId"`
		Components []json.RawMessage `json:"components"`
	}
	if err := encoding.Unmarshal(data, &wire); err != nil {
		return err
	}

	*m = SurfaceUpdate{SurfaceID: wire.SurfaceID}
	if wire.Components == nil {
		return nil
	}
	m.Components = make([]ComponentDefinition, len(wire.Components))
	for i, raw := range wire.Components {
		if err := m.Components[i].UnmarshalJSON(raw); err != nil {
			m.Components[i] = ComponentDefinition{ID: peekID(raw), Err: err}
		}
	}
	return nil
}

// peekID returns the id of a component entry that could not be decoded.
func peekID(raw []byte) string {
	var entry struct {
		ID string `json:"id"`
	}
	if err := encoding.Unmarshal(raw, &entry); err != nil {
		return ""
	}
	return entry.ID
}

// Validate validates the data model update
func (m *DataModelUpdate) Validate() error {
	if err := requireSurfaceID(m.Kind(), m.SurfaceID); err != nil {
		return err
	}
	for i, e := range m.Contents {
		if e.Key == "" {
			return fmt.Errorf("%s: contents[%d]: key is required", m.Kind(), i)
		}
	}
	return nil
}

// Validate validates the delete surface message
func (m *DeleteSurface) Validate() error {
	return requireSurfaceID(m.Kind(), m.SurfaceID)
}

// TargetPath returns the update path, defaulting to the root.
func (m *DataModelUpdate) TargetPath() string {
	if m.Path == "" {
		return "/"
	}
	return m.Path
}

// DataEntry is one key of a dataModelUpdate. Its value is carried in one of
// valueString, valueNumber, valueBoolean, valueMap, valueArray or value.
type DataEntry struct {
	Key   string
	Value value.Value
}

// Entries is one level of an object expressed as key/value entries.
type Entries []DataEntry

// ToMap folds the entries into a Map. Later duplicate keys win.
func (e Entries) ToMap() value.Map {
	m := make(value.Map, len(e))
	for _, entry := range e {
		v := entry.Value
		if v == nil {
			v = value.Null{}
		}
		m[entry.Key] = v
	}
	return m
}

// EntriesFromMap converts a Map into entries sorted by key. Nested maps are
// kept as Map values and encode as valueMap.
func EntriesFromMap(m value.Map) Entries {
	out := make(Entries, 0, len(m))
	for _, k := range m.Keys() {
		out = append(out, DataEntry{Key: k, Value: m[k]})
	}
	return out
}

type dataEntryWire struct {
	Key          string          `json:"key"`
	ValueString  *string         `json:"valueString,omitempty"`
	ValueNumber  *float64        `json:"valueNumber,omitempty"`
	ValueBoolean *bool           `json:"valueBoolean,omitempty"`
	ValueMap     Entries         `json:"valueMap,omitempty"`
	ValueArray   json.RawMessage `json:"valueArray,omitempty"`
	Value        json.RawMessage `json:"value,omitempty"`
}

func (e DataEntry) MarshalJSON() ([]byte, error) {
	wire := dataEntryWire{Key: e.Key}
	switch v := e.Value.(type) {
	case value.String:
		s := string(v)
		wire.ValueString = &s
	case value.Number:
		n := float64(v)
		wire.ValueNumber = &n
	case value.Bool:
		b := bool(v)
		wire.ValueBoolean = &b
	case value.Map:
		wire.ValueMap = EntriesFromMap(v)
		if wire.ValueMap == nil {
			wire.ValueMap = Entries{}
		}
	default:
		if v == nil {
			v = value.Null{}
		}
		raw, err := value.Marshal(v)
		if err != nil {
			return nil, err
		}
		if _, isArray := v.(value.Array); isArray {
			wire.ValueArray = raw
		} else {
			wire.Value = raw
		}
	}
	return encoding.Marshal(wire)
}

func (e *DataEntry) UnmarshalJSON(data []byte) error {
	var wire dataEntryWire
	if err := encoding.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("invalid data entry: %w", err)
	}
	*e = DataEntry{Key: wire.Key}
	switch {
	case wire.ValueString != nil:
		e.Value = value.String(*wire.ValueString)
	case wire.ValueNumber != nil:
		e.Value = value.Number(*wire.ValueNumber)
	case wire.ValueBoolean != nil:
		e.Value = value.Bool(*wire.ValueBoolean)
	case wire.ValueMap != nil:
		e.Value = wire.ValueMap.ToMap()
	case len(wire.ValueArray) > 0:
		v, err := value.Parse(wire.ValueArray)
		if err != nil {
			return fmt.Errorf("invalid valueArray for %q: %w", wire.Key, err)
		}
		e.Value = v
	case len(wire.Value) > 0:
		v, err := value.Parse(wire.Value)
		if err != nil {
			return fmt.Errorf("invalid value for %q: %w", wire.Key, err)
		}
		e.Value = v
	default:
		e.Value = value.Null{}
	}
	return nil
}

// MarshalMessage encodes m in its wrapped wire form, e.g. {"beginRendering": {...}}.
func MarshalMessage(m Message) ([]byte, error) {
	if m == nil {
		return nil, errors.New("nil message")
	}
	body, err := encoding.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", m.Kind(), err)
	}
	return encoding.Marshal(map[string]json.RawMessage{string(m.Kind()): body})
}

// ParseMessage decodes one wrapped message. Errors are *core.ParseError.
func ParseMessage(data []byte) (Message, error) {
	msg, err := parseMessage(data)
	if err != nil {
		return nil, &core.ParseError{Source: "message", Err: err}
	}
	return msg, nil
}

func parseMessage(data []byte) (Message, error) {
	var wrapper map[string]json.RawMessage
	if err := encoding.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}

	var (
		msg   Message
		found int
		body  json.RawMessage
	)
	for key, raw := range wrapper {
		m := newMessage(MessageKind(key))
		if m == nil {
			continue
		}
		msg, body = m, raw
		found++
	}
	switch found {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMessage, keysOf(wrapper))
	case 1:
	default:
		return nil, fmt.Errorf("message carries %d kinds, want exactly one", found)
	}

	if err := encoding.Unmarshal(body, msg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", msg.Kind(), err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}

// ParseBatch decodes a JSON array of messages, or a single message object, as
// one unit: if any element fails nothing is returned.
func ParseBatch(data []byte) ([]Message, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '[' {
		msg, err := ParseMessage(trimmed)
		if err != nil {
			return nil, err
		}
		return []Message{msg}, nil
	}

	var raws []json.RawMessage
	if err := encoding.Unmarshal(trimmed, &raws); err != nil {
		return nil, &core.ParseError{Source: "batch", Err: err}
	}
	msgs := make([]Message, 0, len(raws))
	for i, raw := range raws {
		msg, err := parseMessage(raw)
		if err != nil {
			return nil, &core.ParseError{Source: fmt.Sprintf("batch[%d]", i), Err: err}
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func newMessage(kind MessageKind) Message {
	switch kind {
	case KindBeginRendering:
		return &BeginRendering{}
	case KindSurfaceUpdate:
		return &SurfaceUpdate{}
	case KindDataModelUpdate:
		return &DataModelUpdate{}
	case KindDeleteSurface:
		return &DeleteSurface{}
	}
	return nil
}

func keysOf(m map[string]json.RawMessage) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "[" + strings.Join(keys, ", ") + "]"
}
