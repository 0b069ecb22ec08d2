package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ag-ui/a2ui-go/internal/validation"
	"github.com/ag-ui/a2ui-go/pkg/core/events"
)

// Handler applies one message and returns the resulting events.
type Handler func(ctx context.Context, ev *events.MessageEvent) ([]events.Event, error)

// Middleware decorates a Handler.
type Middleware func(next Handler) Handler

// Chain wraps h so that mws[0] runs first.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Logging logs every message at debug level and failures at warn.
func Logging(logger *logrus.Entry) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, ev *events.MessageEvent) ([]events.Event, error) {
			start := time.Now()
			out, err := next(ctx, ev)

			fields := logrus.Fields{
				"surface_id": ev.SurfaceID(),
				"events":     len(out),
				"duration":   time.Since(start),
			}
			if ev.Message != nil {
				fields["message_kind"] = string(ev.Message.Kind())
			}
			entry := logger.WithFields(fields)
			if err != nil {
				entry.WithError(err).Warn("message rejected")
				return out, err
			}
			entry.Debug("message applied")
			return out, nil
		}
	}
}

// Validation rejects messages whose raw form does not match the message
// schema. Rejected messages never reach next.
func Validation(v *validation.Validator) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, ev *events.MessageEvent) ([]events.Event, error) {
			if err := v.Validate(ev.Raw); err != nil {
				return nil, err
			}
			return next(ctx, ev)
		}
	}
}

// Recover turns a panic in next into an error.
func Recover() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, ev *events.MessageEvent) (out []events.Event, err error) {
			defer func() {
				if r := recover(); r != nil {
					out, err = nil, fmt.Errorf("panic applying message for surface %q: %v", ev.SurfaceID(), r)
				}
			}()
			return next(ctx, ev)
		}
	}
}
