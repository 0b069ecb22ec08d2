// Package processor applies A2UI messages to surfaces and exposes the
// read and write interfaces a renderer needs.
//
// A Processor owns one Surface and one DataModel per surface id. Surfaces are
// independent: a message only ever touches the surface it names. Applying a
// message returns the events describing what changed. Lookup misses (a
// dangling root, an unknown child id, a binding path with no data) are never
// errors; the affected piece simply has nothing to show.
//
// The Processor is not safe for concurrent use. Drive it from one goroutine,
// or serialize access as pkg/client does.
//
// Example usage:
//
//	proc := processor.New()
//	msgs, _ := protocol.ParseBatch(payload)
//	evs, _ := proc.ApplyBatch(msgs)
//
//	_ = proc.Walk("main", func(node processor.ChildInstance, depth int) error {
//		if text, ok := node.Definition.Component.(*protocol.Text); ok {
//			fmt.Println(proc.ResolveString("main", text.Text, node.Scope))
//		}
//		return nil
//	})
//
// Templated children are expanded against the data model on every call, so a
// list grows and shrinks with its bound array. Each repetition i of a template
// bound to /items runs under the scope /items/i, and relative paths inside it
// resolve below that scope.
package processor
