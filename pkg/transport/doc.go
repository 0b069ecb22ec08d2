// Package transport moves raw frames between the A2UI host and a remote agent.
//
// A Transport opens one long-lived stream per Open call and delivers each
// inbound record as a Frame on a channel. The channel is closed when the
// stream ends; a Frame with a non-nil Err reports an abnormal end and is
// always the last frame. Post sends a one-shot request outside the stream,
// used for user actions.
//
// Supported transports:
//   - SSE: HTTP POST answered with text/event-stream, one data record per frame.
//     HTTP/2 can be enabled on the default client.
//   - WebSocket: the request body is sent as the first text message and every
//     inbound text message is a frame. Post writes on the open connection.
//
// Example usage:
//
//	import "github.com/ag-ui/a2ui-go/pkg/transport"
//
//	t, err := transport.NewSSE(transport.Config{URL: "http://localhost:10002"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	frames, err := t.Open(ctx, body)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for frame := range frames {
//		if frame.Err != nil {
//			log.Println("stream failed:", frame.Err)
//			break
//		}
//		handle(frame.Data)
//	}
package transport
