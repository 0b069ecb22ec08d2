// Package core provides the foundational types shared by the A2UI runtime packages.
//
// A2UI is a declarative UI protocol: a remote agent streams messages that create
// surfaces, upsert component definitions and merge data into a per-surface data
// model, and the client sends resolved user actions back. This package holds the
// pieces every layer agrees on: the error taxonomy and the streaming defaults.
//
// Errors fall into three families:
//   - TransportError: connection refused, bad status, stream closed. Non-fatal,
//     eligible for silent reconnect.
//   - ParseError: a frame or message that is not valid JSON or not a known shape.
//     Reported; processor state is left untouched.
//   - ProtocolError: a message that parses but violates the message schema.
//
// Example usage:
//
//	import "github.com/ag-ui/a2ui-go/pkg/core"
//
//	if err := host.Connect(ctx, "show me the catalog"); err != nil {
//		if core.IsTransportError(err) {
//			// retry on the next tick
//		}
//	}
package core
