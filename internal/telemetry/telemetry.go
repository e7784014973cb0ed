package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ModelRoundTrips counts orchestration-loop calls to the model.
	ModelRoundTrips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mcp_model_round_trips_total",
		Help: "Number of model round-trips made by the orchestration loop.",
	})

	// ToolExecutions counts executed tool calls by tool name.
	ToolExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mcp_tool_executions_total",
		Help: "Number of tool calls executed, by tool.",
	}, []string{"tool"})

	// QueryDuration tracks full user-turn latency.
	QueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mcp_query_duration_seconds",
		Help:    "Duration of a full user-prompt-to-final-answer cycle.",
		Buckets: prometheus.DefBuckets,
	})
)
