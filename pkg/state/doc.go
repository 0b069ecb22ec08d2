// Package state provides the path-addressed data model that backs A2UI bindings.
//
// Each surface owns one DataModel: a tree of value.Value rooted at a Map. Paths are
// '/'-delimited pointers; "" and "/" address the root. Lookups are total: a missing
// segment yields (nil, false), never an error or a panic. Writes auto-vivify
// intermediate maps, address arrays with decimal segments and grow arrays with
// Null padding when an index is past the end.
//
// DataModelUpdate messages are applied with MergeAt, which overlays a subtree
// onto the existing map at a path and leaves sibling keys alone. Diff reports the
// leaf paths that changed between two snapshots, computed from an RFC 7386 merge
// patch.
//
// Example usage:
//
//	import "github.com/ag-ui/a2ui-go/pkg/state"
//
//	dm := state.New()
//	dm.Set("/cart/qty", value.Number(1))
//	qty, ok := dm.Get("/cart/qty")
//
// A DataModel is not safe for concurrent use.
package state
