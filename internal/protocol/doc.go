// Package protocol implements the JSON-RPC 2.0 envelope spoken with an A2UI
// agent.
//
// Outbound, the host opens a stream with a message/stream request carrying
// the initial context as a text part, and reports user actions with a
// message/send request carrying a {"userAction": ...} data part.
//
// Inbound, every frame is a JSON-RPC response whose result has a kind:
//   - task, status-update: task state changes, optionally with a status
//     message whose data parts hold A2UI messages
//   - message, artifact-update: data parts holding A2UI messages
//   - event: data is one A2UI message or an array of them
//
// A frame without a JSON-RPC envelope is read as a bare A2UI message batch.
//
// This package is internal and should not be imported by external code.
package protocol
