// Package protocol defines the A2UI wire vocabulary: the server-to-client
// messages (beginRendering, surfaceUpdate, dataModelUpdate, deleteSurface), the
// component catalog they carry, data bindings, and the client-to-server
// userAction payload.
//
// Messages are parsed whole. ParseBatch accepts either a JSON array of
// messages or a single message object and fails without returning anything
// if one element is malformed, so callers never apply half a batch.
//
// Example usage:
//
//	msgs, err := protocol.ParseBatch(payload)
//	if err != nil {
//		return err
//	}
//	for _, msg := range msgs {
//		switch m := msg.(type) {
//		case *protocol.BeginRendering:
//			fmt.Println("render", m.SurfaceID, "from", m.Root)
//		case *protocol.SurfaceUpdate:
//			fmt.Println(len(m.Components), "components")
//		}
//	}
//
// Bindings are either literals or data model paths:
//
//	title := protocol.PathRef("/title")
//	label := protocol.Literal(value.String("Buy"))
package protocol
