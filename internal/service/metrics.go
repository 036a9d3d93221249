package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ultimatum_sessions_created_total",
		Help: "Total number of created experiment sessions.",
	})

	sessionsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ultimatum_sessions_started_total",
		Help: "Total number of sessions that passed the consent and identity step.",
	})

	sessionsFinishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ultimatum_sessions_finished_total",
		Help: "Total number of sessions that reached the done state.",
	})

	trialsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ultimatum_trials_completed_total",
			Help: "Total number of completed trials by participant role.",
		},
		[]string{"role"},
	)

	proposerDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ultimatum_proposer_decisions_total",
			Help: "Decisions of the simulated responder by AI type and outcome.",
		},
		[]string{"ai_type", "accepted"},
	)

	sinkFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ultimatum_result_sink_failures_total",
			Help: "Total number of failed result writes by sink.",
		},
		[]string{"sink"},
	)

	reactionTimeSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ultimatum_reaction_time_seconds",
			Help:    "Participant reaction time per trial.",
			Buckets: []float64{0.5, 1, 2, 3, 5, 8, 13, 21, 34, 60},
		},
		[]string{"role"},
	)
)
