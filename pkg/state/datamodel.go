package state

import (
	"github.com/ag-ui/a2ui-go/pkg/value"
)

// DataModel owns the root value of one surface.
type DataModel struct {
	root value.Value
}

// New creates an empty data model rooted at an empty Map.
func New() *DataModel {
	return &DataModel{root: value.Map{}}
}

// NewFrom creates a data model from an existing root. A nil root yields an empty Map.
func NewFrom(root value.Value) *DataModel {
	if root == nil {
		root = value.Map{}
	}
	return &DataModel{root: root}
}

// Root returns the live root value. Callers must not mutate it.
func (d *DataModel) Root() value.Value {
	return d.root
}

// Snapshot returns a deep copy of the root.
func (d *DataModel) Snapshot() value.Value {
	return value.Clone(d.root)
}

// Reset replaces the whole tree with an empty Map.
func (d *DataModel) Reset() {
	d.root = value.Map{}
}

// Get returns the value at path. Any missing intermediate yields (nil, false).
func (d *DataModel) Get(path string) (value.Value, bool) {
	return getIn(d.root, SplitPath(path))
}

// GetArray returns the elements of the array at path.
func (d *DataModel) GetArray(path string) ([]value.Value, bool) {
	v, ok := d.Get(path)
	if !ok {
		return nil, false
	}
	arr, ok := v.(value.Array)
	if !ok {
		return nil, false
	}
	return arr, true
}

// Len returns the number of elements of the array at path, or 0.
func (d *DataModel) Len(path string) int {
	arr, _ := d.GetArray(path)
	return len(arr)
}

// Set writes v at path, creating intermediate maps as needed. Setting the root
// path replaces the whole tree.
func (d *DataModel) Set(path string, v value.Value) {
	if v == nil {
		v = value.Null{}
	}
	d.root = setIn(d.root, SplitPath(path), v)
}

// MergeAt overlays subtree onto the container at path. Nested maps are merged
// recursively, any other value overwrites the leaf. Keys absent from subtree are
// left untouched. Applying the same subtree twice has the same effect as once.
func (d *DataModel) MergeAt(path string, subtree value.Map) {
	d.mergeSegs(SplitPath(path), subtree)
}

func (d *DataModel) mergeSegs(segs []string, subtree value.Map) {
	current, ok := getIn(d.root, segs)
	if !ok || !isContainer(current) {
		d.root = setIn(d.root, segs, value.Map{})
	}
	for _, key := range subtree.Keys() {
		child := make([]string, len(segs)+1)
		copy(child, segs)
		child[len(segs)] = key

		if sub, isMap := subtree[key].(value.Map); isMap {
			if existing, ok := getIn(d.root, child); ok && isContainer(existing) {
				d.mergeSegs(child, sub)
				continue
			}
		}
		d.root = setIn(d.root, child, value.Clone(subtree[key]))
	}
}

func isContainer(v value.Value) bool {
	switch v.(type) {
	case value.Map, value.Array:
		return true
	}
	return false
}

func getIn(node value.Value, segs []string) (value.Value, bool) {
	if node == nil {
		return nil, false
	}
	for _, seg := range segs {
		switch n := node.(type) {
		case value.Map:
			next, ok := n[seg]
			if !ok {
				return nil, false
			}
			node = next
		case value.Array:
			idx, ok := parseIndex(seg)
			if !ok || idx >= len(n) {
				return nil, false
			}
			node = n[idx]
		default:
			return nil, false
		}
		if node == nil {
			return nil, false
		}
	}
	return node, true
}

// setIn returns node with v written at segs. Containers are updated in place
// where possible; the returned value must replace node in its parent because
// arrays may have been reallocated or scalars replaced by maps.
func setIn(node value.Value, segs []string, v value.Value) value.Value {
	if len(segs) == 0 {
		return v
	}
	seg, rest := segs[0], segs[1:]

	switch n := node.(type) {
	case value.Map:
		if n == nil {
			n = value.Map{}
		}
		n[seg] = setIn(n[seg], rest, v)
		return n
	case value.Array:
		idx, ok := parseIndex(seg)
		if !ok {
			// A non-numeric segment cannot address an array: replace it with a map.
			return value.Map{seg: setIn(nil, rest, v)}
		}
		if idx > MaxArrayIndex {
			return n
		}
		for len(n) <= idx {
			n = append(n, value.Null{})
		}
		n[idx] = setIn(n[idx], rest, v)
		return n
	default:
		return value.Map{seg: setIn(nil, rest, v)}
	}
}
