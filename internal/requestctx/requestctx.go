// Package requestctx carries the per-request correlation id so lower layers
// can log it without importing the transport packages.
package requestctx

import "context"

type contextKey int

const requestIDKey contextKey = iota

// WithRequestID returns a child context carrying the correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the correlation id, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
