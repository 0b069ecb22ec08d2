// Package events provides the event types emitted by the A2UI runtime.
//
// Two families share one Event interface:
//
// Host Events (drained from the streaming host with PollAll):
//   - CONNECTED: the stream to the agent is open
//   - MESSAGE: one parsed A2UI message, with its raw JSON
//   - TASK_STATUS: the agent task changed state (running, completed, ...)
//   - ERROR: a transport, envelope or parse failure
//   - DISCONNECTED: the stream ended
//
// Processor Events (returned by Processor.Apply):
//   - SURFACE_CREATED: a surface was registered
//   - ROOT_CHANGED: an existing surface received a new root
//   - COMPONENT_CREATED / COMPONENT_UPDATED: a component was upserted by id
//   - DATA_MODEL_UPDATED: leaf paths changed by a data model update
//   - SURFACE_CLEARED: components and root were reset
//   - SURFACE_DELETED: the surface and its data model were dropped
//
// # Basic Usage
//
//	for _, ev := range host.PollAll() {
//		switch e := ev.(type) {
//		case *events.MessageEvent:
//			applied, _ := proc.Apply(e.Message)
//			_ = applied
//		case *events.TaskStatusEvent:
//			fmt.Println("task", e.TaskID, e.State)
//		case *events.ErrorEvent:
//			log.Println(e.Message)
//		}
//	}
//
// Every event can be serialized with ToJSON or converted to a protobuf Struct
// with ToProtobuf for forwarding to other systems.
package events
