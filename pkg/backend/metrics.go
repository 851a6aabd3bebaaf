package backend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	membershipTransitionCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soft_members",
		Subsystem: "memberships",
		Name:      "transitions_total",
		Help:      "The total number of membership lifecycle transitions",
	}, []string{"transition"})

	workflowExecutionCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soft_members",
		Subsystem: "workflows",
		Name:      "executions_enqueued_total",
		Help:      "The total number of enqueued workflow executions",
	}, []string{"trigger"})

	auditFailureCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "soft_members",
		Subsystem: "audit",
		Name:      "write_failures_total",
		Help:      "The total number of audit entries that failed to write",
	})
)
