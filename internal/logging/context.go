package logging

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

type contextKey struct{}

// WithLogger attaches a logger to the context. The burnrate CLI does
// this once in its root command so every operation below it logs with
// the flag-configured instance.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// nop is handed out when a context carries no logger, so callers
// never need a nil check.
var nop = NewLogger(io.Discard)

// FromContext retrieves the logger from the context, or a discarding
// logger when none was attached.
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(contextKey{}).(*log.Logger); ok {
		return l
	}
	return nop
}
