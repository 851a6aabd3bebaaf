package access

import "context"

// ContextKey is the context key for the role of the current request.
var ContextKey = &struct{ string }{"access"}

// FromContext returns the role of the current request.
func FromContext(ctx context.Context) Role {
	if r, ok := ctx.Value(ContextKey).(Role); ok {
		return r
	}

	return -1
}

// WithContext returns a new context with the role attached.
func WithContext(ctx context.Context, r Role) context.Context {
	return context.WithValue(ctx, ContextKey, r)
}
