// Package metrics exposes the engine's prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsApplied counts committed score operations by kind.
	OperationsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz_grandprix",
		Name:      "score_operations_applied_total",
		Help:      "Score operations committed to match ledgers, by operation kind.",
	}, []string{"kind"})

	OperationsUndone = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quiz_grandprix",
		Name:      "score_operations_undone_total",
		Help:      "Score operations detached from match ledgers by undo.",
	})

	OperationConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quiz_grandprix",
		Name:      "score_operation_conflicts_total",
		Help:      "Score submissions rejected because the match tip moved concurrently.",
	})

	FreeEdits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quiz_grandprix",
		Name:      "score_free_edits_total",
		Help:      "Administrative in-place snapshot edits.",
	})

	MatchmakingRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz_grandprix",
		Name:      "matchmaking_runs_total",
		Help:      "Matchmaking executions by round kind and outcome.",
	}, []string{"round", "outcome"})

	ConnectedSpectators = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "quiz_grandprix",
		Name:      "ws_connected_spectators",
		Help:      "Currently connected websocket spectators.",
	})
)
