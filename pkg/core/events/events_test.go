package events

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ag-ui/a2ui-go/pkg/protocol"
)

func TestBaseEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   *BaseEvent
		wantErr bool
	}{
		{"valid", NewBaseEvent(EventTypeConnected), false},
		{"empty type", &BaseEvent{}, true},
		{"unknown type", &BaseEvent{EventType: EventTypeUnknown}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetTimestamp(t *testing.T) {
	e := NewDisconnectedEvent("eof")
	require.NotNil(t, e.Timestamp())
	e.SetTimestamp(42)
	assert.Equal(t, int64(42), *e.Timestamp())
}

func TestHostEventTypes(t *testing.T) {
	assert.True(t, EventTypeMessage.IsHostEvent())
	assert.True(t, EventTypeDisconnected.IsHostEvent())
	assert.False(t, EventTypeSurfaceCreated.IsHostEvent())
}

func TestMessageEvent(t *testing.T) {
	raw := []byte(`{"beginRendering":{"surfaceId":"main","root":"r"}}`)
	msg, err := protocol.ParseMessage(raw)
	require.NoError(t, err)

	e := NewMessageEvent(msg, raw)
	require.NoError(t, e.Validate())
	assert.Equal(t, "main", e.SurfaceID())

	data, err := e.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"MESSAGE","timestamp":`+strconv.FormatInt(*e.Timestamp(), 10)+`,"message":`+string(raw)+`}`, string(data))

	assert.Error(t, NewMessageEvent(nil, raw).Validate())
	assert.Error(t, NewMessageEvent(msg, nil).Validate())
}

func TestErrorEventUnwraps(t *testing.T) {
	cause := errors.New("boom")
	e := NewErrorEvent(cause)
	assert.Equal(t, "boom", e.Message)
	assert.ErrorIs(t, e.Unwrap(), cause)
	assert.NoError(t, e.Validate())

	assert.Equal(t, "unknown error", NewErrorEvent(nil).Message)
}

func TestTaskState(t *testing.T) {
	assert.True(t, TaskStateCompleted.IsTerminal())
	assert.True(t, TaskStateFailed.IsTerminal())
	assert.False(t, TaskStateRunning.IsTerminal())
	assert.False(t, TaskStateInputRequired.IsTerminal())

	assert.Error(t, NewTaskStatusEvent("t1", "").Validate())
	assert.NoError(t, NewTaskStatusEvent("t1", TaskStateRunning).Validate())
}

func TestProcessorEventsValidate(t *testing.T) {
	valid := []Event{
		NewSurfaceCreatedEvent("s", "root"),
		NewRootChangedEvent("s", "b", "a"),
		NewComponentCreatedEvent("s", "c", "Text"),
		NewComponentUpdatedEvent("s", "c", "Text"),
		NewDataModelUpdatedEvent("s", "/", []string{"/title"}),
		NewSurfaceClearedEvent("s", 3),
		NewSurfaceDeletedEvent("s"),
	}
	for _, e := range valid {
		assert.NoError(t, e.Validate(), e.Type())
		se, ok := e.(SurfaceEvent)
		require.True(t, ok, e.Type())
		assert.Equal(t, "s", se.GetSurfaceID())
	}

	assert.Error(t, NewSurfaceCreatedEvent("", "root").Validate())
	assert.Error(t, NewComponentCreatedEvent("s", "", "Text").Validate())
}

func TestDataModelUpdatedEvent(t *testing.T) {
	e := NewDataModelUpdatedEvent("s", "/", nil)
	assert.False(t, e.Changed())
	assert.Equal(t, []string{}, e.Paths)

	data, err := e.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"paths":[]`)
}

func TestToProtobuf(t *testing.T) {
	e := NewComponentCreatedEvent("main", "header", "Text")
	pb, err := e.ToProtobuf()
	require.NoError(t, err)

	fields := pb.GetFields()
	assert.Equal(t, "COMPONENT_CREATED", fields["type"].GetStringValue())
	assert.Equal(t, "main", fields["surfaceId"].GetStringValue())
	assert.Equal(t, "header", fields["componentId"].GetStringValue())
	assert.Equal(t, "Text", fields["kind"].GetStringValue())
}

func TestValidateSequence(t *testing.T) {
	raw := []byte(`{"deleteSurface":{"surfaceId":"x"}}`)
	msg, err := protocol.ParseMessage(raw)
	require.NoError(t, err)

	tests := []struct {
		name    string
		events  []Event
		wantErr bool
	}{
		{"empty", nil, false},
		{"normal stream", []Event{
			NewConnectedEvent("http://agent"),
			NewTaskStatusEvent("t", TaskStateRunning),
			NewMessageEvent(msg, raw),
			NewDisconnectedEvent("eof"),
		}, false},
		{"error before connect", []Event{
			NewErrorEvent(errors.New("refused")),
		}, false},
		{"message before connect", []Event{
			NewMessageEvent(msg, raw),
		}, true},
		{"double connect", []Event{
			NewConnectedEvent(""),
			NewConnectedEvent(""),
		}, true},
		{"disconnect without connect", []Event{
			NewDisconnectedEvent(""),
		}, true},
		{"invalid event", []Event{
			&ErrorEvent{BaseEvent: NewBaseEvent(EventTypeError)},
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSequence(tt.events)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
