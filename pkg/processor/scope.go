package processor

import (
	"strconv"
	"strings"
)

// Scope is the path prefix applied to relative bindings while rendering
// inside a template repetition. The zero Scope means no scope is active.
type Scope string

// NoScope is the scope outside any template.
const NoScope Scope = ""

// ItemScope returns the scope of repetition index of a template bound to
// dataBinding. It replaces any enclosing scope rather than extending it.
func ItemScope(dataBinding string, index int) Scope {
	return Scope(dataBinding + "/" + strconv.Itoa(index))
}

// IsActive reports whether s prefixes paths.
func (s Scope) IsActive() bool {
	return s != NoScope
}

// Resolve maps a binding path to a data model path. Under an active scope
// the path is taken relative to it, leading slashes ignored; otherwise it is
// used as-is.
func (s Scope) Resolve(path string) string {
	if !s.IsActive() {
		return path
	}
	return string(s) + "/" + strings.TrimLeft(path, "/")
}

func (s Scope) String() string {
	return string(s)
}
