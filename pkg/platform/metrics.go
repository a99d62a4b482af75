package platform

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "codetrack",
		Subsystem: "platform",
		Name:      "request_duration_seconds",
		Help:      "Duration of outbound judge-platform API requests",
	}, []string{"platform", "operation"})

	requestFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codetrack",
		Subsystem: "platform",
		Name:      "request_failures_total",
		Help:      "Number of failed judge-platform API requests",
	}, []string{"platform", "operation"})
)
