// Package host maintains the streaming connection to an A2UI agent.
//
// A Host opens one persistent stream per Connect call, converts inbound
// frames into events on a buffered channel and lets the consumer drain them
// without blocking. Actions are sent outside the stream. Reconnecting and
// duplicate suppression are left to the consumer, see package client.
//
// Example usage:
//
//	h, err := host.New(host.Config{URL: "http://localhost:10002"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer h.Close()
//
//	if err := h.Connect(ctx, "show me products"); err != nil {
//		log.Fatal(err)
//	}
//	for _, ev := range h.PollAll() {
//		fmt.Println(ev.Type())
//	}
package host
