package processor

import (
	"sort"

	"github.com/ag-ui/a2ui-go/pkg/protocol"
	"github.com/ag-ui/a2ui-go/pkg/value"
)

// Surface is a root component id plus a flat registry of component
// definitions keyed by id. The root may name a component that has not
// arrived yet.
type Surface struct {
	ID     string
	Root   string
	Styles value.Map

	components map[string]*protocol.ComponentDefinition
}

func newSurface(id, root string) *Surface {
	return &Surface{
		ID:         id,
		Root:       root,
		components: make(map[string]*protocol.ComponentDefinition),
	}
}

// Component returns the definition registered under id.
func (s *Surface) Component(id string) (*protocol.ComponentDefinition, bool) {
	def, ok := s.components[id]
	return def, ok
}

// RootComponent returns the root definition, if it has arrived.
func (s *Surface) RootComponent() (*protocol.ComponentDefinition, bool) {
	if s.Root == "" {
		return nil, false
	}
	return s.Component(s.Root)
}

// ComponentIDs returns every registered id in sorted order.
func (s *Surface) ComponentIDs() []string {
	ids := make([]string, 0, len(s.components))
	for id := range s.components {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered components.
func (s *Surface) Len() int {
	return len(s.components)
}

// upsert stores def by id and reports whether the id was new.
func (s *Surface) upsert(def protocol.ComponentDefinition) bool {
	_, existed := s.components[def.ID]
	stored := def
	s.components[def.ID] = &stored
	return !existed
}

// clear drops every component and the root, returning how many were removed.
func (s *Surface) clear() int {
	n := len(s.components)
	s.components = make(map[string]*protocol.ComponentDefinition)
	s.Root = ""
	return n
}
