package events

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// SurfaceEvent is implemented by every processor event
type SurfaceEvent interface {
	Event
	GetSurfaceID() string
}

// surfaceBase holds the surface id shared by processor events
type surfaceBase struct {
	*BaseEvent
	SurfaceID string `json:"surfaceId"`
}

// GetSurfaceID returns the surface the event refers to
func (s *surfaceBase) GetSurfaceID() string {
	return s.SurfaceID
}

func (s *surfaceBase) validate() error {
	if err := s.BaseEvent.Validate(); err != nil {
		return err
	}

	if s.SurfaceID == "" {
		return fmt.Errorf("surface ID is required")
	}

	return nil
}

func newSurfaceBase(eventType EventType, surfaceID string) surfaceBase {
	return surfaceBase{BaseEvent: NewBaseEvent(eventType), SurfaceID: surfaceID}
}

// SurfaceCreatedEvent indicates that a surface was registered
type SurfaceCreatedEvent struct {
	surfaceBase
	Root string `json:"root"`
}

// NewSurfaceCreatedEvent creates a new surface created event
func NewSurfaceCreatedEvent(surfaceID, root string) *SurfaceCreatedEvent {
	return &SurfaceCreatedEvent{surfaceBase: newSurfaceBase(EventTypeSurfaceCreated, surfaceID), Root: root}
}

// Validate validates the surface created event
func (e *SurfaceCreatedEvent) Validate() error { return e.validate() }

// ToJSON serializes the event to JSON
func (e *SurfaceCreatedEvent) ToJSON() ([]byte, error) { return toJSON(e) }

// ToProtobuf converts the event to a protobuf Struct
func (e *SurfaceCreatedEvent) ToProtobuf() (*structpb.Struct, error) { return toStruct(e) }

// RootChangedEvent indicates that an existing surface got a new root
type RootChangedEvent struct {
	surfaceBase
	Root         string `json:"root"`
	PreviousRoot string `json:"previousRoot"`
}

// NewRootChangedEvent creates a new root changed event
func NewRootChangedEvent(surfaceID, root, previous string) *RootChangedEvent {
	return &RootChangedEvent{
		surfaceBase:  newSurfaceBase(EventTypeRootChanged, surfaceID),
		Root:         root,
		PreviousRoot: previous,
	}
}

// Validate validates the root changed event
func (e *RootChangedEvent) Validate() error { return e.validate() }

// ToJSON serializes the event to JSON
func (e *RootChangedEvent) ToJSON() ([]byte, error) { return toJSON(e) }

// ToProtobuf converts the event to a protobuf Struct
func (e *RootChangedEvent) ToProtobuf() (*structpb.Struct, error) { return toStruct(e) }

// ComponentEvent reports an upserted component. Its type is either
// COMPONENT_CREATED or COMPONENT_UPDATED.
type ComponentEvent struct {
	surfaceBase
	ComponentID string `json:"componentId"`
	Kind        string `json:"kind"`
}

// NewComponentCreatedEvent creates a new component created event
func NewComponentCreatedEvent(surfaceID, componentID, kind string) *ComponentEvent {
	return &ComponentEvent{
		surfaceBase: newSurfaceBase(EventTypeComponentCreated, surfaceID),
		ComponentID: componentID,
		Kind:        kind,
	}
}

// NewComponentUpdatedEvent creates a new component updated event
func NewComponentUpdatedEvent(surfaceID, componentID, kind string) *ComponentEvent {
	return &ComponentEvent{
		surfaceBase: newSurfaceBase(EventTypeComponentUpdated, surfaceID),
		ComponentID: componentID,
		Kind:        kind,
	}
}

// Validate validates the component event
func (e *ComponentEvent) Validate() error {
	if err := e.validate(); err != nil {
		return err
	}

	if e.ComponentID == "" {
		return fmt.Errorf("component ID is required")
	}

	return nil
}

// ToJSON serializes the event to JSON
func (e *ComponentEvent) ToJSON() ([]byte, error) { return toJSON(e) }

// ToProtobuf converts the event to a protobuf Struct
func (e *ComponentEvent) ToProtobuf() (*structpb.Struct, error) { return toStruct(e) }

// DataModelUpdatedEvent reports the leaf paths changed by one update
type DataModelUpdatedEvent struct {
	surfaceBase
	Path  string   `json:"path"`
	Paths []string `json:"paths"`
}

// NewDataModelUpdatedEvent creates a new data model updated event
func NewDataModelUpdatedEvent(surfaceID, path string, changed []string) *DataModelUpdatedEvent {
	if changed == nil {
		changed = []string{}
	}
	return &DataModelUpdatedEvent{
		surfaceBase: newSurfaceBase(EventTypeDataModelUpdated, surfaceID),
		Path:        path,
		Paths:       changed,
	}
}

// Changed reports whether the update modified anything
func (e *DataModelUpdatedEvent) Changed() bool {
	return len(e.Paths) > 0
}

// Validate validates the data model updated event
func (e *DataModelUpdatedEvent) Validate() error { return e.validate() }

// ToJSON serializes the event to JSON
func (e *DataModelUpdatedEvent) ToJSON() ([]byte, error) { return toJSON(e) }

// ToProtobuf converts the event to a protobuf Struct
func (e *DataModelUpdatedEvent) ToProtobuf() (*structpb.Struct, error) { return toStruct(e) }

// SurfaceClearedEvent indicates that a surface lost its components and root
type SurfaceClearedEvent struct {
	surfaceBase
	Removed int `json:"removed"`
}

// NewSurfaceClearedEvent creates a new surface cleared event
func NewSurfaceClearedEvent(surfaceID string, removed int) *SurfaceClearedEvent {
	return &SurfaceClearedEvent{surfaceBase: newSurfaceBase(EventTypeSurfaceCleared, surfaceID), Removed: removed}
}

// Validate validates the surface cleared event
func (e *SurfaceClearedEvent) Validate() error { return e.validate() }

// ToJSON serializes the event to JSON
func (e *SurfaceClearedEvent) ToJSON() ([]byte, error) { return toJSON(e) }

// ToProtobuf converts the event to a protobuf Struct
func (e *SurfaceClearedEvent) ToProtobuf() (*structpb.Struct, error) { return toStruct(e) }

// SurfaceDeletedEvent indicates that a surface and its data model were dropped
type SurfaceDeletedEvent struct {
	surfaceBase
}

// NewSurfaceDeletedEvent creates a new surface deleted event
func NewSurfaceDeletedEvent(surfaceID string) *SurfaceDeletedEvent {
	return &SurfaceDeletedEvent{surfaceBase: newSurfaceBase(EventTypeSurfaceDeleted, surfaceID)}
}

// Validate validates the surface deleted event
func (e *SurfaceDeletedEvent) Validate() error { return e.validate() }

// ToJSON serializes the event to JSON
func (e *SurfaceDeletedEvent) ToJSON() ([]byte, error) { return toJSON(e) }

// ToProtobuf converts the event to a protobuf Struct
func (e *SurfaceDeletedEvent) ToProtobuf() (*structpb.Struct, error) { return toStruct(e) }
