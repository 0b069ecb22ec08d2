// Package middleware wraps the step that applies a streamed message to the
// processor.
//
// A Handler receives one MESSAGE event and returns the processor events it
// produced. Middleware decorate a Handler and are composed with Chain, the
// first middleware being the outermost.
//
// Example usage:
//
//	import "github.com/ag-ui/a2ui-go/pkg/middleware"
//
//	apply := func(ctx context.Context, ev *events.MessageEvent) ([]events.Event, error) {
//		return proc.Apply(ev.Message)
//	}
//	h := middleware.Chain(apply,
//		middleware.Recover(),
//		middleware.Logging(logger),
//		middleware.Validation(validator),
//	)
package middleware
