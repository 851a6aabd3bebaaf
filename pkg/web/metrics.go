package web

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soft_members",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "The total number of API requests",
	}, []string{"method", "route", "code"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "soft_members",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "The latency of API requests",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// withMetrics counts requests per matched route template.
func withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unknown"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tmpl, err := cr.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues(r.Method, route))
		writer := &logWriter{code: http.StatusOK, ResponseWriter: w}
		next.ServeHTTP(writer, r)
		timer.ObserveDuration()

		httpRequestsCounter.WithLabelValues(r.Method, route, strconv.Itoa(writer.code)).Inc()
	})
}
