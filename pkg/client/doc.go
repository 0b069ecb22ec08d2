// Package client drives an A2UI surface from a streaming agent connection.
//
// A Client owns a processor and a host. Each Tick reconnects when the stream
// is down, drains the host without blocking, drops a batch identical to the
// last one applied and applies the rest through the middleware chain. A
// failed reconnect is retried on the next tick. Run paces ticks to at most
// one per poll interval.
//
// Example usage:
//
//	import "github.com/ag-ui/a2ui-go/pkg/client"
//
//	c, err := client.New(client.Config{BaseURL: "http://localhost:10002"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer c.Close()
//
//	if err := c.Connect(ctx, "show me products"); err != nil {
//		log.Println("will retry:", err)
//	}
//	err = c.Run(ctx, func(res client.TickResult) {
//		for _, ev := range res.Events {
//			fmt.Println(ev.Type())
//		}
//	})
package client
