package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ag-ui/a2ui-go/pkg/encoding"
)

// ComponentKind names a component variant as it appears on the wire.
type ComponentKind string

const (
	KindColumn         ComponentKind = "Column"
	KindRow            ComponentKind = "Row"
	KindList           ComponentKind = "List"
	KindCard           ComponentKind = "Card"
	KindButton         ComponentKind = "Button"
	KindText           ComponentKind = "Text"
	KindImage          ComponentKind = "Image"
	KindIcon           ComponentKind = "Icon"
	KindVideo          ComponentKind = "Video"
	KindAudioPlayer    ComponentKind = "AudioPlayer"
	KindDivider        ComponentKind = "Divider"
	KindTextField      ComponentKind = "TextField"
	KindCheckBox       ComponentKind = "CheckBox"
	KindSlider         ComponentKind = "Slider"
	KindDateTimeInput  ComponentKind = "DateTimeInput"
	KindMultipleChoice ComponentKind = "MultipleChoice"
	KindTabs           ComponentKind = "Tabs"
	KindModal          ComponentKind = "Modal"
	KindChart          ComponentKind = "Chart"
)

// Component is one variant of the closed component catalog. Use Accept with a
// ComponentVisitor for exhaustive dispatch.
type Component interface {
	Kind() ComponentKind
	Accept(v ComponentVisitor) error
	isComponent()
}

// ComponentVisitor has one method per component variant.
type ComponentVisitor interface {
	VisitColumn(c *Column) error
	VisitRow(c *Row) error
	VisitList(c *List) error
	VisitCard(c *Card) error
	VisitButton(c *Button) error
	VisitText(c *Text) error
	VisitImage(c *Image) error
	VisitIcon(c *Icon) error
	VisitVideo(c *Video) error
	VisitAudioPlayer(c *AudioPlayer) error
	VisitDivider(c *Divider) error
	VisitTextField(c *TextField) error
	VisitCheckBox(c *CheckBox) error
	VisitSlider(c *Slider) error
	VisitDateTimeInput(c *DateTimeInput) error
	VisitMultipleChoice(c *MultipleChoice) error
	VisitTabs(c *Tabs) error
	VisitModal(c *Modal) error
	VisitChart(c *Chart) error
	VisitUnknown(c *Unknown) error
}

// Column lays its children out vertically.
type Column struct {
	Children     ChildrenRef `json:"children"`
	Distribution string      `json:"distribution,omitempty"`
	Alignment    string      `json:"alignment,omitempty"`
}

// Row lays its children out horizontally.
type Row struct {
	Children     ChildrenRef `json:"children"`
	Distribution string      `json:"distribution,omitempty"`
	Alignment    string      `json:"alignment,omitempty"`
}

// List is a scrollable sequence of children.
type List struct {
	Children  ChildrenRef `json:"children"`
	Direction string      `json:"direction,omitempty"`
	Alignment string      `json:"alignment,omitempty"`
}

// Card wraps a single child.
type Card struct {
	Child string `json:"child"`
}

// Button shows a single child and fires Action when pressed.
type Button struct {
	Child   string           `json:"child"`
	Primary bool             `json:"primary,omitempty"`
	Action  ActionDefinition `json:"action"`
}

// Text displays a string.
type Text struct {
	Text      *BindingRef `json:"text,omitempty"`
	UsageHint string      `json:"usageHint,omitempty"`
}

// Image displays an image from a URL.
type Image struct {
	URL       *BindingRef `json:"url,omitempty"`
	Fit       string      `json:"fit,omitempty"`
	UsageHint string      `json:"usageHint,omitempty"`
}

// Icon displays a named icon.
type Icon struct {
	Name *BindingRef `json:"name,omitempty"`
}

// Video plays a video from a URL.
type Video struct {
	URL *BindingRef `json:"url,omitempty"`
}

// AudioPlayer plays audio from a URL.
type AudioPlayer struct {
	URL         *BindingRef `json:"url,omitempty"`
	Description *BindingRef `json:"description,omitempty"`
}

// Divider is a horizontal or vertical rule.
type Divider struct {
	Axis string `json:"axis,omitempty"`
}

// TextField is an editable text input bound to the data model.
type TextField struct {
	Label            *BindingRef `json:"label,omitempty"`
	Text             *BindingRef `json:"text,omitempty"`
	TextFieldType    string      `json:"textFieldType,omitempty"`
	ValidationRegexp string      `json:"validationRegexp,omitempty"`
}

// CheckBox is a boolean input.
type CheckBox struct {
	Label *BindingRef `json:"label,omitempty"`
	Value *BindingRef `json:"value,omitempty"`
}

// Slider is a numeric input within a range.
type Slider struct {
	Value    *BindingRef `json:"value,omitempty"`
	MinValue *float64    `json:"minValue,omitempty"`
	MaxValue *float64    `json:"maxValue,omitempty"`
}

// DateTimeInput edits a date, a time, or both.
type DateTimeInput struct {
	Value      *BindingRef `json:"value,omitempty"`
	EnableDate bool        `json:"enableDate,omitempty"`
	EnableTime bool        `json:"enableTime,omitempty"`
}

// ChoiceOption is one selectable option of a MultipleChoice.
type ChoiceOption struct {
	Label *BindingRef `json:"label,omitempty"`
	Value string      `json:"value"`
}

// MultipleChoice selects one or more options.
type MultipleChoice struct {
	Selections           *BindingRef    `json:"selections,omitempty"`
	Options              []ChoiceOption `json:"options,omitempty"`
	MaxAllowedSelections *int           `json:"maxAllowedSelections,omitempty"`
}

// TabItem is one tab of a Tabs component.
type TabItem struct {
	Title *BindingRef `json:"title,omitempty"`
	Child string      `json:"child"`
}

// Tabs shows one child per tab.
type Tabs struct {
	TabItems []TabItem `json:"tabItems"`
}

// Modal shows ContentChild when EntryPointChild is activated.
type Modal struct {
	EntryPointChild string `json:"entryPointChild"`
	ContentChild    string `json:"contentChild"`
}

// Chart plots a data series.
type Chart struct {
	ChartType string      `json:"chartType,omitempty"`
	Title     *BindingRef `json:"title,omitempty"`
	Data      *BindingRef `json:"data,omitempty"`
}

// Unknown keeps a component whose kind is not in the catalog. It renders
// nothing but survives a round trip.
type Unknown struct {
	Type string
	Raw  json.RawMessage
}

func (*Column) Kind() ComponentKind         { return KindColumn }
func (*Row) Kind() ComponentKind            { return KindRow }
func (*List) Kind() ComponentKind           { return KindList }
func (*Card) Kind() ComponentKind           { return KindCard }
func (*Button) Kind() ComponentKind         { return KindButton }
func (*Text) Kind() ComponentKind           { return KindText }
func (*Image) Kind() ComponentKind          { return KindImage }
func (*Icon) Kind() ComponentKind           { return KindIcon }
func (*Video) Kind() ComponentKind          { return KindVideo }
func (*AudioPlayer) Kind() ComponentKind    { return KindAudioPlayer }
func (*Divider) Kind() ComponentKind        { return KindDivider }
func (*TextField) Kind() ComponentKind      { return KindTextField }
func (*CheckBox) Kind() ComponentKind       { return KindCheckBox }
func (*Slider) Kind() ComponentKind         { return KindSlider }
func (*DateTimeInput) Kind() ComponentKind  { return KindDateTimeInput }
func (*MultipleChoice) Kind() ComponentKind { return KindMultipleChoice }
func (*Tabs) Kind() ComponentKind           { return KindTabs }
func (*Modal) Kind() ComponentKind          { return KindModal }
func (*Chart) Kind() ComponentKind          { return KindChart }
func (c *Unknown) Kind() ComponentKind      { return ComponentKind(c.Type) }

func (c *Column) Accept(v ComponentVisitor) error         { return v.VisitColumn(c) }
func (c *Row) Accept(v ComponentVisitor) error            { return v.VisitRow(c) }
func (c *List) Accept(v ComponentVisitor) error           { return v.VisitList(c) }
func (c *Card) Accept(v ComponentVisitor) error           { return v.VisitCard(c) }
func (c *Button) Accept(v ComponentVisitor) error         { return v.VisitButton(c) }
func (c *Text) Accept(v ComponentVisitor) error           { return v.VisitText(c) }
func (c *Image) Accept(v ComponentVisitor) error          { return v.VisitImage(c) }
func (c *Icon) Accept(v ComponentVisitor) error           { return v.VisitIcon(c) }
func (c *Video) Accept(v ComponentVisitor) error          { return v.VisitVideo(c) }
func (c *AudioPlayer) Accept(v ComponentVisitor) error    { return v.VisitAudioPlayer(c) }
func (c *Divider) Accept(v ComponentVisitor) error        { return v.VisitDivider(c) }
func (c *TextField) Accept(v ComponentVisitor) error      { return v.VisitTextField(c) }
func (c *CheckBox) Accept(v ComponentVisitor) error       { return v.VisitCheckBox(c) }
func (c *Slider) Accept(v ComponentVisitor) error         { return v.VisitSlider(c) }
func (c *DateTimeInput) Accept(v ComponentVisitor) error  { return v.VisitDateTimeInput(c) }
func (c *MultipleChoice) Accept(v ComponentVisitor) error { return v.VisitMultipleChoice(c) }
func (c *Tabs) Accept(v ComponentVisitor) error           { return v.VisitTabs(c) }
func (c *Modal) Accept(v ComponentVisitor) error          { return v.VisitModal(c) }
func (c *Chart) Accept(v ComponentVisitor) error          { return v.VisitChart(c) }
func (c *Unknown) Accept(v ComponentVisitor) error        { return v.VisitUnknown(c) }

func (*Column) isComponent()         {}
func (*Row) isComponent()            {}
func (*List) isComponent()           {}
func (*Card) isComponent()           {}
func (*Button) isComponent()         {}
func (*Text) isComponent()           {}
func (*Image) isComponent()          {}
func (*Icon) isComponent()           {}
func (*Video) isComponent()          {}
func (*AudioPlayer) isComponent()    {}
func (*Divider) isComponent()        {}
func (*TextField) isComponent()      {}
func (*CheckBox) isComponent()       {}
func (*Slider) isComponent()         {}
func (*DateTimeInput) isComponent()  {}
func (*MultipleChoice) isComponent() {}
func (*Tabs) isComponent()           {}
func (*Modal) isComponent()          {}
func (*Chart) isComponent()          {}
func (*Unknown) isComponent()        {}

// newComponent allocates the variant for kind, or nil for unknown kinds.
func newComponent(kind ComponentKind) Component {
	switch kind {
	case KindColumn:
		return &Column{}
	case KindRow:
		return &Row{}
	case KindList:
		return &List{}
	case KindCard:
		return &Card{}
	case KindButton:
		return &Button{}
	case KindText:
		return &Text{}
	case KindImage:
		return &Image{}
	case KindIcon:
		return &Icon{}
	case KindVideo:
		return &Video{}
	case KindAudioPlayer:
		return &AudioPlayer{}
	case KindDivider:
		return &Divider{}
	case KindTextField:
		return &TextField{}
	case KindCheckBox:
		return &CheckBox{}
	case KindSlider:
		return &Slider{}
	case KindDateTimeInput:
		return &DateTimeInput{}
	case KindMultipleChoice:
		return &MultipleChoice{}
	case KindTabs:
		return &Tabs{}
	case KindModal:
		return &Modal{}
	case KindChart:
		return &Chart{}
	default:
		return nil
	}
}

// ComponentDefinition is one entry of a surface's component registry.
type ComponentDefinition struct {
	ID        string
	Weight    *float64
	Component Component

	// Err is set on an entry of a decoded surfaceUpdate that was malformed
	Err error
}

// GetID returns the component id.
func (d *ComponentDefinition) GetID() string {
	return d.ID
}

// Validate checks that the definition decoded and has an id and a component.
func (d *ComponentDefinition) Validate() error {
	if d.Err != nil {
		return d.Err
	}
	if d.ID == "" {
		return fmt.Errorf("component id is required")
	}
	if d.Component == nil {
		return fmt.Errorf("component %q has no variant", d.ID)
	}
	return nil
}

type componentDefinitionWire struct {
	ID        string                     `json:"id"`
	Weight    *float64                   `json:"weight,omitempty"`
	Component map[string]json.RawMessage `json:"component"`
}

func (d ComponentDefinition) MarshalJSON() ([]byte, error) {
	wire := componentDefinitionWire{ID: d.ID, Weight: d.Weight, Component: map[string]json.RawMessage{}}
	switch c := d.Component.(type) {
	case nil:
	case *Unknown:
		raw := c.Raw
		if len(raw) == 0 {
			raw = json.RawMessage("{}")
		}
		wire.Component[c.Type] = raw
	default:
		raw, err := encoding.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", c.Kind(), err)
		}
		wire.Component[string(c.Kind())] = raw
	}
	return encoding.Marshal(wire)
}

// UnmarshalJSON decodes {"id": ..., "component": {"<Kind>": {...}}}. Kinds
// outside the catalog decode to *Unknown.
func (d *ComponentDefinition) UnmarshalJSON(data []byte) error {
	var wire componentDefinitionWire
	if err := encoding.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("invalid component definition: %w", err)
	}
	if len(wire.Component) != 1 {
		return fmt.Errorf("component %q must have exactly one variant, got %d", wire.ID, len(wire.Component))
	}

	*d = ComponentDefinition{ID: wire.ID, Weight: wire.Weight}
	for kind, raw := range wire.Component {
		c := newComponent(ComponentKind(kind))
		if c == nil {
			d.Component = &Unknown{Type: kind, Raw: append(json.RawMessage(nil), bytes.TrimSpace(raw)...)}
			return nil
		}
		if err := encoding.Unmarshal(raw, c); err != nil {
			return fmt.Errorf("invalid %s component %q: %w", kind, wire.ID, err)
		}
		d.Component = c
	}
	return nil
}
