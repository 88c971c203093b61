// Package metrics defines the Prometheus collectors for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hdb_insights_sessions_total",
			Help: "Total number of question sessions by terminal outcome",
		},
		[]string{"outcome"}, // completed, upstream_error, cap_exceeded, cancelled
	)

	SessionTurns = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hdb_insights_session_turns",
			Help:    "Number of reasoning turns per session",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)

	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hdb_insights_tool_calls_total",
			Help: "Total number of tool invocations",
		},
		[]string{"tool", "status"}, // status: ok or the failure kind
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hdb_insights_llm_request_duration_seconds",
			Help:    "Reasoning service request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"model", "status"},
	)

	QueryRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hdb_insights_query_rows",
			Help:    "Rows returned by database query tool executions",
			Buckets: prometheus.ExponentialBuckets(1, 4, 6),
		},
	)
)
