// Package encoding provides the JSON codec and canonical hashing used on the A2UI wire.
//
// Decoding and encoding go through goccy/go-json, a drop-in replacement for
// encoding/json that honours json.Marshaler and json.Unmarshaler. Canonical form
// follows RFC 8785 (JSON Canonicalization Scheme), so two payloads that differ only
// in key order or whitespace canonicalize to the same bytes. Fingerprint hashes a
// whole batch of payloads as one unit; it is what the polling client compares to
// suppress replayed batches.
//
// Example usage:
//
//	import "github.com/ag-ui/a2ui-go/pkg/encoding"
//
//	fp := encoding.Fingerprint(rawMessages)
//	if fp == lastApplied {
//		return // replayed batch
//	}
package encoding
