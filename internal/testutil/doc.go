// Package testutil provides a scripted fake A2UI agent for tests.
//
// The agent speaks both transports on one URL: a POST carrying a
// message/stream request is answered with an SSE stream, a POST carrying
// message/send is recorded as an action, and a WebSocket upgrade streams the
// same script over text messages.
//
// This package is internal and only used from _test.go files.
package testutil
