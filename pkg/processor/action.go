package processor

import (
	"github.com/ag-ui/a2ui-go/pkg/protocol"
	"github.com/ag-ui/a2ui-go/pkg/value"
)

// CreateAction resolves action into a UserAction using the data model as it
// is right now. Literals are copied verbatim; paths are resolved under scope
// and become Null when absent.
func (p *Processor) CreateAction(surfaceID, componentID string, action protocol.ActionDefinition, scope Scope) protocol.UserAction {
	ctx := make(map[string]value.Value, len(action.Context))
	for _, entry := range action.Context {
		v, ok := p.Resolve(surfaceID, &entry.Value, scope)
		if !ok {
			v = value.Null{}
		}
		ctx[entry.Key] = value.Clone(v)
	}
	return protocol.UserAction{
		Name:              action.Name,
		SurfaceID:         surfaceID,
		SourceComponentID: componentID,
		Timestamp:         p.now().UTC(),
		Context:           ctx,
	}
}

// Trigger resolves the action of the Button componentID. It reports false
// when the component is missing or has no action.
func (p *Processor) Trigger(surfaceID, componentID string, scope Scope) (protocol.UserAction, bool) {
	st, ok := p.surfaces[surfaceID]
	if !ok {
		return protocol.UserAction{}, false
	}
	def, ok := st.surface.Component(componentID)
	if !ok {
		return protocol.UserAction{}, false
	}
	btn, ok := def.Component.(*protocol.Button)
	if !ok || btn.Action.Name == "" {
		return protocol.UserAction{}, false
	}
	return p.CreateAction(surfaceID, componentID, btn.Action, scope), true
}
