package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter returns a new HTTP router.
func NewRouter(ctx context.Context) http.Handler {
	logger := log.FromContext(ctx).WithPrefix("http")
	router := mux.NewRouter()
	router.Use(withMetrics)

	// Health routes
	HealthController(ctx, router)

	// API routes
	AuthController(ctx, router)
	MembershipTypeController(ctx, router)
	MembershipController(ctx, router)
	WorkflowController(ctx, router)
	AuditLogController(ctx, router)

	router.NotFoundHandler = http.HandlerFunc(renderNotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(renderMethodNotAllowed)

	// Context handler
	// Adds context to the request
	h := NewLoggingMiddleware(router, logger)
	h = NewContextHandler(ctx)(h)
	h = handlers.ProxyHeaders(h)
	h = handlers.CompressHandler(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{logger}))(h)

	return h
}

// recoveryLogger logs recovered panics.
type recoveryLogger struct {
	logger *log.Logger
}

// Println implements handlers.RecoveryHandlerLogger.
func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("recovered from panic", "panic", v)
}
