package core

import (
	"time"
)

// Default values shared by the host and the polling client.
const (
	DefaultPollInterval = time.Second
	DefaultBufferSize   = 256
)

// StreamConfig contains configuration for event streaming.
type StreamConfig struct {
	// BufferSize is the number of events the host buffers between polls
	BufferSize int

	// PollInterval is the fixed tick at which the consumer polls and reconnects
	PollInterval time.Duration
}

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c StreamConfig) WithDefaults() StreamConfig {
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	return c
}
