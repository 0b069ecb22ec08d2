package processor

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ag-ui/a2ui-go/pkg/core"
	"github.com/ag-ui/a2ui-go/pkg/core/events"
	"github.com/ag-ui/a2ui-go/pkg/protocol"
	"github.com/ag-ui/a2ui-go/pkg/state"
	"github.com/ag-ui/a2ui-go/pkg/value"
)

// surfaceState pairs a surface with the data model it owns.
type surfaceState struct {
	surface *Surface
	data    *state.DataModel
}

// Processor owns every surface and applies inbound messages to them.
type Processor struct {
	surfaces map[string]*surfaceState
	logger   *logrus.Entry
	now      func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger used for fail-soft diagnostics.
func WithLogger(logger *logrus.Entry) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock sets the time source used for UserAction timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a processor with no surfaces.
func New(opts ...Option) *Processor {
	p := &Processor{
		surfaces: make(map[string]*surfaceState),
		logger:   logrus.NewEntry(logrus.StandardLogger()),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DataModelChanged is an edit reported by the renderer when the user changes
// an input bound to the data model. Path is resolved under Scope.
type DataModelChanged struct {
	SurfaceID string
	Path      string
	Scope     Scope
	Value     value.Value
}

// Apply applies one message and returns the events it produced. Protocol
// level misses are absorbed; an error is only returned for a nil or
// unsupported message.
func (p *Processor) Apply(msg protocol.Message) ([]events.Event, error) {
	switch m := msg.(type) {
	case *protocol.BeginRendering:
		return p.beginRendering(m), nil
	case *protocol.SurfaceUpdate:
		return p.surfaceUpdate(m), nil
	case *protocol.DataModelUpdate:
		return p.dataModelUpdate(m), nil
	case *protocol.DeleteSurface:
		evs, _ := p.DeleteSurface(m.SurfaceID)
		return evs, nil
	case nil:
		return nil, errors.New("nil message")
	default:
		return nil, fmt.Errorf("unsupported message type %T", msg)
	}
}

// ApplyBatch applies messages in order and concatenates their events.
func (p *Processor) ApplyBatch(msgs []protocol.Message) ([]events.Event, error) {
	var out []events.Event
	for i, msg := range msgs {
		evs, err := p.Apply(msg)
		if err != nil {
			return out, fmt.Errorf("message %d: %w", i, err)
		}
		out = append(out, evs...)
	}
	return out, nil
}

// ApplyJSON parses a batch and applies it. A parse failure leaves every
// surface untouched.
func (p *Processor) ApplyJSON(data []byte) ([]events.Event, error) {
	msgs, err := protocol.ParseBatch(data)
	if err != nil {
		return nil, err
	}
	return p.ApplyBatch(msgs)
}

func (p *Processor) ensure(surfaceID, root string) (*surfaceState, []events.Event) {
	if st, ok := p.surfaces[surfaceID]; ok {
		return st, nil
	}
	st := &surfaceState{surface: newSurface(surfaceID, root), data: state.New()}
	p.surfaces[surfaceID] = st
	p.logger.WithFields(logrus.Fields{"surface_id": surfaceID, "root": root}).Debug("surface created")
	return st, []events.Event{events.NewSurfaceCreatedEvent(surfaceID, root)}
}

func (p *Processor) beginRendering(m *protocol.BeginRendering) []events.Event {
	if st, ok := p.surfaces[m.SurfaceID]; ok {
		previous := st.surface.Root
		st.surface.Root = m.Root
		st.surface.Styles = m.Styles
		return []events.Event{events.NewRootChangedEvent(m.SurfaceID, m.Root, previous)}
	}
	st, evs := p.ensure(m.SurfaceID, m.Root)
	st.surface.Styles = m.Styles
	return evs
}

func (p *Processor) surfaceUpdate(m *protocol.SurfaceUpdate) []events.Event {
	st, evs := p.ensure(m.SurfaceID, "")
	for _, def := range m.Components {
		if err := def.Validate(); err != nil {
			p.logger.WithFields(logrus.Fields{"surface_id": m.SurfaceID, "error": err}).Debug("skipping component")
			continue
		}
		kind := string(def.Component.Kind())
		if st.surface.upsert(def) {
			evs = append(evs, events.NewComponentCreatedEvent(m.SurfaceID, def.ID, kind))
		} else {
			evs = append(evs, events.NewComponentUpdatedEvent(m.SurfaceID, def.ID, kind))
		}
	}
	return evs
}

func (p *Processor) dataModelUpdate(m *protocol.DataModelUpdate) []events.Event {
	st, evs := p.ensure(m.SurfaceID, "")
	path := m.TargetPath()
	changed := p.mutate(st, path, func(dm *state.DataModel) {
		dm.MergeAt(path, m.Contents.ToMap())
	})
	return append(evs, events.NewDataModelUpdatedEvent(m.SurfaceID, path, changed))
}

// mutate runs fn on the surface's data model and returns the changed paths.
func (p *Processor) mutate(st *surfaceState, path string, fn func(*state.DataModel)) []string {
	before := st.data.Snapshot()
	fn(st.data)
	changed, err := state.Diff(before, st.data.Root())
	if err != nil {
		p.logger.WithFields(logrus.Fields{"surface_id": st.surface.ID, "error": err}).Debug("data model diff failed")
		return []string{state.Normalize(path)}
	}
	return changed
}

// Surface returns the surface registered under id.
func (p *Processor) Surface(id string) (*Surface, bool) {
	st, ok := p.surfaces[id]
	if !ok {
		return nil, false
	}
	return st.surface, true
}

// DataModel returns the data model of surface id.
func (p *Processor) DataModel(id string) (*state.DataModel, bool) {
	st, ok := p.surfaces[id]
	if !ok {
		return nil, false
	}
	return st.data, true
}

// SurfaceIDs returns the ids of every surface in sorted order.
func (p *Processor) SurfaceIDs() []string {
	ids := make([]string, 0, len(p.surfaces))
	for id := range p.surfaces {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ClearSurface drops the components and root of a surface but keeps its data
// model. A following BeginRendering starts a fresh tree.
func (p *Processor) ClearSurface(id string) ([]events.Event, error) {
	st, ok := p.surfaces[id]
	if !ok {
		return nil, fmt.Errorf("clear %q: %w", id, core.ErrUnknownSurface)
	}
	removed := st.surface.clear()
	return []events.Event{events.NewSurfaceClearedEvent(id, removed)}, nil
}

// DeleteSurface drops a surface and its data model.
func (p *Processor) DeleteSurface(id string) ([]events.Event, error) {
	if _, ok := p.surfaces[id]; !ok {
		return nil, fmt.Errorf("delete %q: %w", id, core.ErrUnknownSurface)
	}
	delete(p.surfaces, id)
	p.logger.WithField("surface_id", id).Debug("surface deleted")
	return []events.Event{events.NewSurfaceDeletedEvent(id)}, nil
}

// ApplyEdit writes a renderer edit into the data model.
func (p *Processor) ApplyEdit(edit DataModelChanged) ([]events.Event, error) {
	st, ok := p.surfaces[edit.SurfaceID]
	if !ok {
		return nil, fmt.Errorf("edit %q: %w", edit.SurfaceID, core.ErrUnknownSurface)
	}
	path := edit.Scope.Resolve(edit.Path)
	changed := p.mutate(st, path, func(dm *state.DataModel) {
		dm.Set(path, value.Clone(edit.Value))
	})
	return []events.Event{events.NewDataModelUpdatedEvent(edit.SurfaceID, state.Normalize(path), changed)}, nil
}

// ExportProto returns the data model of surface id as a protobuf Struct.
func (p *Processor) ExportProto(id string) (*structpb.Struct, error) {
	st, ok := p.surfaces[id]
	if !ok {
		return nil, fmt.Errorf("export %q: %w", id, core.ErrUnknownSurface)
	}
	root, ok := st.data.Root().(value.Map)
	if !ok {
		return nil, fmt.Errorf("export %q: data model root is %s, not a map", id, value.KindOf(st.data.Root()))
	}
	return value.MapToProto(root)
}
