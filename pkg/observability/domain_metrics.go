package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	segmentPipelineTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crmengine_segment_pipeline_total",
			Help: "Segment pipeline runs by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	sqlGenerationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crmengine_sql_generation_duration_seconds",
			Help:    "Latency of SQL generation completions.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)

	toolCallsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crmengine_run_sql_tool_calls_total",
			Help: "Total number of run_sql tool executions requested by the model.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		segmentPipelineTotal,
		sqlGenerationDurationSeconds,
		toolCallsTotal,
	)
}

// ObserveSegmentPipeline records one pipeline run. operation is create,
// refresh, or generate; outcome is ok or the failed error kind.
func ObserveSegmentPipeline(operation, outcome string) {
	segmentPipelineTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveSQLGeneration records the latency of one SQL generation completion.
func ObserveSQLGeneration(elapsed time.Duration) {
	sqlGenerationDurationSeconds.Observe(elapsed.Seconds())
}

// IncrementToolCall counts one run_sql tool execution.
func IncrementToolCall() {
	toolCallsTotal.Inc()
}
