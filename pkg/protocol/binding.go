package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ag-ui/a2ui-go/pkg/encoding"
	"github.com/ag-ui/a2ui-go/pkg/value"
)

// BindingRef is a component property that is either a literal value or a
// reference into the surface's data model.
type BindingRef struct {
	path    string
	isPath  bool
	literal value.Value
}

// Literal creates a binding that always yields v.
func Literal(v value.Value) *BindingRef {
	if v == nil {
		v = value.Null{}
	}
	return &BindingRef{literal: v}
}

// PathRef creates a binding that reads the data model at path.
func PathRef(path string) *BindingRef {
	return &BindingRef{path: path, isPath: true}
}

// IsPath reports whether the binding references the data model.
func (b *BindingRef) IsPath() bool {
	return b != nil && b.isPath
}

// Path returns the referenced path, if any.
func (b *BindingRef) Path() (string, bool) {
	if b == nil || !b.isPath {
		return "", false
	}
	return b.path, true
}

// LiteralValue returns the literal value, if the binding is a literal.
func (b *BindingRef) LiteralValue() (value.Value, bool) {
	if b == nil || b.isPath {
		return nil, false
	}
	if b.literal == nil {
		return value.Null{}, true
	}
	return b.literal, true
}

func (b *BindingRef) String() string {
	if b == nil {
		return "<nil>"
	}
	if b.isPath {
		return "path(" + b.path + ")"
	}
	s, _ := value.AsString(b.literal)
	return "literal(" + s + ")"
}

// MarshalJSON encodes the binding in its wire form.
func (b BindingRef) MarshalJSON() ([]byte, error) {
	if b.isPath {
		return encoding.Marshal(map[string]string{"path": b.path})
	}
	var key string
	switch b.literal.(type) {
	case value.Bool:
		key = "literalBoolean"
	case value.Number:
		key = "literalNumber"
	case value.Array:
		key = "literalArray"
	case value.Map:
		key = "literalMap"
	default:
		key = "literalString"
	}
	lit := b.literal
	if lit == nil {
		lit = value.Null{}
	}
	raw, err := value.Marshal(lit)
	if err != nil {
		return nil, err
	}
	return encoding.Marshal(map[string]json.RawMessage{key: raw})
}

var literalKeys = []string{"literalString", "literalNumber", "literalBoolean", "literalArray", "literalMap"}

// UnmarshalJSON decodes {"path": ...} or one of the literal forms. A bare JSON
// scalar is accepted as a literal. When both a path and a literal are present
// the path wins.
func (b *BindingRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		v, err := value.Parse(trimmed)
		if err != nil {
			return fmt.Errorf("invalid binding: %w", err)
		}
		*b = BindingRef{literal: v}
		return nil
	}

	var fields map[string]json.RawMessage
	if err := encoding.Unmarshal(trimmed, &fields); err != nil {
		return fmt.Errorf("invalid binding: %w", err)
	}
	if raw, ok := fields["path"]; ok {
		var p string
		if err := encoding.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("invalid binding path: %w", err)
		}
		*b = BindingRef{path: p, isPath: true}
		return nil
	}
	for _, key := range literalKeys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		v, err := value.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*b = BindingRef{literal: v}
		return nil
	}

	v, err := value.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("invalid binding: %w", err)
	}
	*b = BindingRef{literal: v}
	return nil
}

// ChildrenRef lists the children of a container: either an explicit ordered
// list of ids or a template repeated once per element of a bound array.
type ChildrenRef struct {
	ExplicitList []string
	Template     *Template
}

// Template repeats ComponentID once per element of the array at DataBinding.
type Template struct {
	ComponentID string `json:"componentId"`
	DataBinding string `json:"dataBinding"`
}

// ExplicitList creates a static children reference.
func ExplicitList(ids ...string) ChildrenRef {
	return ChildrenRef{ExplicitList: ids}
}

// TemplateOf creates a templated children reference.
func TemplateOf(componentID, dataBinding string) ChildrenRef {
	return ChildrenRef{Template: &Template{ComponentID: componentID, DataBinding: dataBinding}}
}

// IsTemplate reports whether the children are generated from data.
func (c ChildrenRef) IsTemplate() bool {
	return c.Template != nil
}

func (c ChildrenRef) MarshalJSON() ([]byte, error) {
	if c.Template != nil {
		return encoding.Marshal(map[string]*Template{"template": c.Template})
	}
	ids := c.ExplicitList
	if ids == nil {
		ids = []string{}
	}
	return encoding.Marshal(map[string][]string{"explicitList": ids})
}

// UnmarshalJSON accepts {"explicitList": [...]}, {"template": {...}} or a bare
// array of ids.
func (c *ChildrenRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var ids []string
		if err := encoding.Unmarshal(trimmed, &ids); err != nil {
			return fmt.Errorf("invalid children list: %w", err)
		}
		*c = ChildrenRef{ExplicitList: ids}
		return nil
	}

	var wire struct {
		ExplicitList []string  `json:"explicitList"`
		Template     *Template `json:"template"`
	}
	if err := encoding.Unmarshal(trimmed, &wire); err != nil {
		return fmt.Errorf("invalid children: %w", err)
	}
	*c = ChildrenRef{ExplicitList: wire.ExplicitList, Template: wire.Template}
	return nil
}

// ContextEntry is one key of an action context.
type ContextEntry struct {
	Key   string     `json:"key"`
	Value BindingRef `json:"value"`
}

// ActionDefinition is the static action attached to an interactive component.
type ActionDefinition struct {
	Name    string         `json:"name"`
	Context []ContextEntry `json:"context,omitempty"`
}

// UnmarshalJSON accepts the context either as a list of entries or as an
// object keyed by context name.
func (a *ActionDefinition) UnmarshalJSON(data []byte) error {
	var wire struct {
		Name    string          `json:"name"`
		Context json.RawMessage `json:"context"`
	}
	if err := encoding.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("invalid action: %w", err)
	}
	*a = ActionDefinition{Name: wire.Name}

	ctx := bytes.TrimSpace(wire.Context)
	switch {
	case len(ctx) == 0 || bytes.Equal(ctx, []byte("null")):
		return nil
	case ctx[0] == '{':
		var byKey map[string]BindingRef
		if err := encoding.Unmarshal(ctx, &byKey); err != nil {
			return fmt.Errorf("invalid action context: %w", err)
		}
		keys := make([]string, 0, len(byKey))
		for k := range byKey {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			a.Context = append(a.Context, ContextEntry{Key: k, Value: byKey[k]})
		}
		return nil
	default:
		if err := encoding.Unmarshal(ctx, &a.Context); err != nil {
			return fmt.Errorf("invalid action context: %w", err)
		}
		return nil
	}
}

// UserAction is the resolved payload sent upstream when a user triggers an
// action. Every context value is a snapshot taken when the action fired.
type UserAction struct {
	Name              string                 `json:"name"`
	SurfaceID         string                 `json:"surfaceId"`
	SourceComponentID string                 `json:"sourceComponentId"`
	Timestamp         time.Time              `json:"timestamp"`
	Context           map[string]value.Value `json:"context"`
}

// Validate checks that the action can be sent.
func (u *UserAction) Validate() error {
	if u.Name == "" {
		return fmt.Errorf("user action name is required")
	}
	if u.SurfaceID == "" {
		return fmt.Errorf("user action surfaceId is required")
	}
	return nil
}

// MarshalJSON encodes the action with a sorted, null-safe context.
func (u UserAction) MarshalJSON() ([]byte, error) {
	ctx := make(value.Map, len(u.Context))
	for k, v := range u.Context {
		if v == nil {
			v = value.Null{}
		}
		ctx[k] = v
	}
	rawCtx, err := value.Marshal(ctx)
	if err != nil {
		return nil, err
	}
	type wire struct {
		Name              string          `json:"name"`
		SurfaceID         string          `json:"surfaceId"`
		SourceComponentID string          `json:"sourceComponentId"`
		Timestamp         string          `json:"timestamp"`
		Context           json.RawMessage `json:"context"`
	}
	return encoding.Marshal(wire{
		Name:              u.Name,
		SurfaceID:         u.SurfaceID,
		SourceComponentID: u.SourceComponentID,
		Timestamp:         u.Timestamp.UTC().Format(time.RFC3339Nano),
		Context:           rawCtx,
	})
}
