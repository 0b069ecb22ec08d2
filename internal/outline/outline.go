// Package outline renders a surface as an indented text tree.
package outline

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ag-ui/a2ui-go/pkg/processor"
	"github.com/ag-ui/a2ui-go/pkg/protocol"
	"github.com/ag-ui/a2ui-go/pkg/value"
)

// Write renders surfaceID to w, one component per line.
func Write(w io.Writer, p *processor.Processor, surfaceID string) error {
	return p.Walk(surfaceID, func(node processor.ChildInstance, depth int) error {
		line := labelOf(p, surfaceID, node)
		_, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), line)
		return err
	})
}

// String renders surfaceID as a string.
func String(p *processor.Processor, surfaceID string) string {
	var b strings.Builder
	_ = Write(&b, p, surfaceID)
	return b.String()
}

func labelOf(p *processor.Processor, surfaceID string, node processor.ChildInstance) string {
	prefix := node.ComponentID
	if node.Index >= 0 {
		prefix += "[" + strconv.Itoa(node.Index) + "]"
	}
	if node.Definition == nil {
		return prefix + " (pending)"
	}
	l := &labeler{p: p, surfaceID: surfaceID, scope: node.Scope}
	_ = node.Definition.Component.Accept(l)
	if l.detail == "" {
		return fmt.Sprintf("%s: %s", prefix, node.Definition.Component.Kind())
	}
	return fmt.Sprintf("%s: %s %s", prefix, node.Definition.Component.Kind(), l.detail)
}

// labeler describes the resolved content of one component.
type labeler struct {
	p         *processor.Processor
	surfaceID string
	scope     processor.Scope
	detail    string
}

func (l *labeler) quote(ref *protocol.BindingRef) string {
	v, ok := l.p.Resolve(l.surfaceID, ref, l.scope)
	if !ok {
		return "<unset>"
	}
	if s, ok := v.(value.String); ok {
		return strconv.Quote(string(s))
	}
	data, err := value.Marshal(v)
	if err != nil {
		return "<invalid>"
	}
	return string(data)
}

func (l *labeler) fields(kv ...string) {
	parts := make([]string, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		parts = append(parts, kv[i]+"="+kv[i+1])
	}
	l.detail = strings.Join(parts, " ")
}

// Containers are described by their children.
func (l *labeler) VisitColumn(*protocol.Column) error   { return nil }
func (l *labeler) VisitRow(*protocol.Row) error         { return nil }
func (l *labeler) VisitList(*protocol.List) error       { return nil }
func (l *labeler) VisitCard(*protocol.Card) error       { return nil }
func (l *labeler) VisitModal(*protocol.Modal) error     { return nil }
func (l *labeler) VisitTabs(*protocol.Tabs) error       { return nil }
func (l *labeler) VisitDivider(*protocol.Divider) error { return nil }

func (l *labeler) VisitButton(x *protocol.Button) error {
	l.fields("action", x.Action.Name)
	return nil
}

func (l *labeler) VisitText(x *protocol.Text) error {
	l.detail = l.quote(x.Text)
	return nil
}

func (l *labeler) VisitImage(x *protocol.Image) error {
	l.detail = l.quote(x.URL)
	return nil
}

func (l *labeler) VisitIcon(x *protocol.Icon) error {
	l.detail = l.quote(x.Name)
	return nil
}

func (l *labeler) VisitVideo(x *protocol.Video) error {
	l.detail = l.quote(x.URL)
	return nil
}

func (l *labeler) VisitAudioPlayer(x *protocol.AudioPlayer) error {
	l.fields("url", l.quote(x.URL), "description", l.quote(x.Description))
	return nil
}

func (l *labeler) VisitTextField(x *protocol.TextField) error {
	l.fields("label", l.quote(x.Label), "text", l.quote(x.Text))
	return nil
}

func (l *labeler) VisitCheckBox(x *protocol.CheckBox) error {
	l.fields("label", l.quote(x.Label), "value", l.quote(x.Value))
	return nil
}

func (l *labeler) VisitSlider(x *protocol.Slider) error {
	l.detail = l.quote(x.Value)
	return nil
}

func (l *labeler) VisitDateTimeInput(x *protocol.DateTimeInput) error {
	l.detail = l.quote(x.Value)
	return nil
}

func (l *labeler) VisitMultipleChoice(x *protocol.MultipleChoice) error {
	l.fields("selections", l.quote(x.Selections), "options", strconv.Itoa(len(x.Options)))
	return nil
}

func (l *labeler) VisitChart(x *protocol.Chart) error {
	l.fields("type", x.ChartType, "title", l.quote(x.Title))
	return nil
}

func (l *labeler) VisitUnknown(x *protocol.Unknown) error {
	l.detail = "(" + x.Type + ")"
	return nil
}
