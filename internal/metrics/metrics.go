// Package metrics holds the prometheus collectors shared across the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Evaluations counts scored answers by the path that produced them: llm, fallback or short.
	Evaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_evaluations_total",
			Help: "Total number of answer evaluations by scoring path",
		},
		[]string{"path", "question_type"},
	)

	// EvaluationDuration observes end-to-end evaluation latency, including the LLM call.
	EvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "interview_evaluation_duration_seconds",
			Help:    "Time spent evaluating one answer",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	// SessionTransitions counts state-machine operations and whether they were accepted.
	SessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_session_transitions_total",
			Help: "Total number of session operations by outcome",
		},
		[]string{"op", "result"},
	)

	// ActiveSessions tracks sessions that were started but not completed by this process.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "interview_sessions_in_progress",
			Help: "Sessions started and not yet completed",
		},
	)

	// LLMRequests counts calls to the language-model provider.
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_llm_requests_total",
			Help: "Total number of LLM requests by purpose and status",
		},
		[]string{"purpose", "status"},
	)

	// LLMLatency observes provider latency.
	LLMLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "interview_llm_request_duration_seconds",
			Help:    "Time spent waiting on the LLM provider",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"purpose"},
	)

	// ProgressCache counts progress-summary cache lookups.
	ProgressCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_progress_cache_total",
			Help: "Progress summary cache lookups by result",
		},
		[]string{"result"},
	)
)

// Outcome maps an error to the "result" label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
