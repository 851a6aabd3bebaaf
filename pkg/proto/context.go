package proto

import "context"

// ContextKeyUser is the context key for the user.
var ContextKeyUser = &struct{ string }{"user"}

// ContextKeyRequestInfo is the context key for the request metadata.
var ContextKeyRequestInfo = &struct{ string }{"request-info"}

// RequestInfo is the client metadata recorded with audit entries.
type RequestInfo struct {
	IPAddress string
	UserAgent string
}

// UserFromContext returns the user from the context.
func UserFromContext(ctx context.Context) User {
	if u, ok := ctx.Value(ContextKeyUser).(User); ok {
		return u
	}
	return nil
}

// WithUserContext returns a new context with the user.
func WithUserContext(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ContextKeyUser, u)
}

// RequestInfoFromContext returns the request metadata from the context.
func RequestInfoFromContext(ctx context.Context) RequestInfo {
	if ri, ok := ctx.Value(ContextKeyRequestInfo).(RequestInfo); ok {
		return ri
	}
	return RequestInfo{}
}

// WithRequestInfoContext returns a new context with the request metadata.
func WithRequestInfoContext(ctx context.Context, ri RequestInfo) context.Context {
	return context.WithValue(ctx, ContextKeyRequestInfo, ri)
}
