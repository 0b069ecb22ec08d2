package processor

import (
	"errors"

	"github.com/ag-ui/a2ui-go/pkg/protocol"
	"github.com/ag-ui/a2ui-go/pkg/state"
	"github.com/ag-ui/a2ui-go/pkg/value"
)

// ChildInstance is one child to render: a component id, the scope it renders
// under, and its definition. Definition is nil when the id has not arrived.
type ChildInstance struct {
	ComponentID string
	Scope       Scope
	Definition  *protocol.ComponentDefinition
	// Index is the template repetition, or -1 for a static child.
	Index int
}

// SkipChildren can be returned from a WalkFunc to skip a node's children.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every node reached by Walk.
type WalkFunc func(node ChildInstance, depth int) error

// childRef is a child id and, for templated children, the template repeating it.
type childRef struct {
	id       string
	template *protocol.Template
}

// childCollector lists the child references of one component.
type childCollector struct {
	refs []childRef
}

func (c *childCollector) children(ref protocol.ChildrenRef) error {
	if ref.Template != nil {
		c.refs = append(c.refs, childRef{id: ref.Template.ComponentID, template: ref.Template})
		return nil
	}
	for _, id := range ref.ExplicitList {
		c.refs = append(c.refs, childRef{id: id})
	}
	return nil
}

func (c *childCollector) single(ids ...string) error {
	for _, id := range ids {
		if id != "" {
			c.refs = append(c.refs, childRef{id: id})
		}
	}
	return nil
}

func (c *childCollector) VisitColumn(x *protocol.Column) error { return c.children(x.Children) }
func (c *childCollector) VisitRow(x *protocol.Row) error       { return c.children(x.Children) }
func (c *childCollector) VisitList(x *protocol.List) error     { return c.children(x.Children) }
func (c *childCollector) VisitCard(x *protocol.Card) error     { return c.single(x.Child) }
func (c *childCollector) VisitButton(x *protocol.Button) error { return c.single(x.Child) }
func (c *childCollector) VisitModal(x *protocol.Modal) error {
	return c.single(x.EntryPointChild, x.ContentChild)
}
func (c *childCollector) VisitTabs(x *protocol.Tabs) error {
	for _, item := range x.TabItems {
		_ = c.single(item.Child)
	}
	return nil
}
func (c *childCollector) VisitText(*protocol.Text) error                     { return nil }
func (c *childCollector) VisitImage(*protocol.Image) error                   { return nil }
func (c *childCollector) VisitIcon(*protocol.Icon) error                     { return nil }
func (c *childCollector) VisitVideo(*protocol.Video) error                   { return nil }
func (c *childCollector) VisitAudioPlayer(*protocol.AudioPlayer) error       { return nil }
func (c *childCollector) VisitDivider(*protocol.Divider) error               { return nil }
func (c *childCollector) VisitTextField(*protocol.TextField) error           { return nil }
func (c *childCollector) VisitCheckBox(*protocol.CheckBox) error             { return nil }
func (c *childCollector) VisitSlider(*protocol.Slider) error                 { return nil }
func (c *childCollector) VisitDateTimeInput(*protocol.DateTimeInput) error   { return nil }
func (c *childCollector) VisitMultipleChoice(*protocol.MultipleChoice) error { return nil }
func (c *childCollector) VisitChart(*protocol.Chart) error                   { return nil }
func (c *childCollector) VisitUnknown(*protocol.Unknown) error               { return nil }

// Children expands the children of componentID rendered under scope. Static
// children inherit scope; a template yields one instance per element of its
// bound array, each under its own item scope. Unknown surfaces or components
// have no children.
func (p *Processor) Children(surfaceID, componentID string, scope Scope) []ChildInstance {
	st, ok := p.surfaces[surfaceID]
	if !ok {
		return nil
	}
	def, ok := st.surface.Component(componentID)
	if !ok {
		return nil
	}
	return p.expand(st, def, scope)
}

func (p *Processor) expand(st *surfaceState, def *protocol.ComponentDefinition, scope Scope) []ChildInstance {
	collector := &childCollector{}
	if err := def.Component.Accept(collector); err != nil {
		return nil
	}

	var out []ChildInstance
	for _, ref := range collector.refs {
		child, _ := st.surface.Component(ref.id)
		if ref.template == nil {
			out = append(out, ChildInstance{ComponentID: ref.id, Scope: scope, Definition: child, Index: -1})
			continue
		}
		n := st.data.Len(ref.template.DataBinding)
		for i := 0; i < n; i++ {
			out = append(out, ChildInstance{
				ComponentID: ref.id,
				Scope:       ItemScope(ref.template.DataBinding, i),
				Definition:  child,
				Index:       i,
			})
		}
	}
	return out
}

// Walk visits the surface tree depth first from its root. A root or child
// that has not arrived is reported once with a nil Definition and not
// descended into. A child that appears among its own ancestors is skipped.
func (p *Processor) Walk(surfaceID string, fn WalkFunc) error {
	st, ok := p.surfaces[surfaceID]
	if !ok || st.surface.Root == "" {
		return nil
	}
	rootDef, _ := st.surface.Component(st.surface.Root)
	root := ChildInstance{ComponentID: st.surface.Root, Definition: rootDef, Index: -1}
	return p.walk(st, root, 0, map[string]bool{}, fn)
}

func (p *Processor) walk(st *surfaceState, node ChildInstance, depth int, ancestors map[string]bool, fn WalkFunc) error {
	err := fn(node, depth)
	if errors.Is(err, SkipChildren) {
		return nil
	}
	if err != nil {
		return err
	}
	if node.Definition == nil || ancestors[node.ComponentID] {
		return nil
	}

	ancestors[node.ComponentID] = true
	defer delete(ancestors, node.ComponentID)

	for _, child := range p.expand(st, node.Definition, node.Scope) {
		if ancestors[child.ComponentID] {
			continue
		}
		if err := p.walk(st, child, depth+1, ancestors, fn); err != nil {
			return err
		}
	}
	return nil
}

// Resolve evaluates a binding for surfaceID under scope. A literal yields its
// value; a path reads the data model and reports false when nothing is there.
func (p *Processor) Resolve(surfaceID string, ref *protocol.BindingRef, scope Scope) (value.Value, bool) {
	if ref == nil {
		return nil, false
	}
	if lit, ok := ref.LiteralValue(); ok {
		return lit, true
	}
	path, _ := ref.Path()
	st, ok := p.surfaces[surfaceID]
	if !ok {
		return nil, false
	}
	return st.data.Get(scope.Resolve(path))
}

// ResolvedPath returns the data model path a binding reads under scope.
func (p *Processor) ResolvedPath(ref *protocol.BindingRef, scope Scope) (string, bool) {
	path, ok := ref.Path()
	if !ok {
		return "", false
	}
	return state.Normalize(scope.Resolve(path)), true
}

// ResolveString resolves a binding to display text, or "".
func (p *Processor) ResolveString(surfaceID string, ref *protocol.BindingRef, scope Scope) string {
	v, ok := p.Resolve(surfaceID, ref, scope)
	if !ok {
		return ""
	}
	s, _ := value.AsString(v)
	return s
}

// ResolveNumber resolves a binding to a number.
func (p *Processor) ResolveNumber(surfaceID string, ref *protocol.BindingRef, scope Scope) (float64, bool) {
	v, ok := p.Resolve(surfaceID, ref, scope)
	if !ok {
		return 0, false
	}
	return value.AsNumber(v)
}

// ResolveBool resolves a binding to a boolean.
func (p *Processor) ResolveBool(surfaceID string, ref *protocol.BindingRef, scope Scope) (bool, bool) {
	v, ok := p.Resolve(surfaceID, ref, scope)
	if !ok {
		return false, false
	}
	return value.AsBool(v)
}
