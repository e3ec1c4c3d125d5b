// Package metrics exposes Prometheus counters for the chat pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesClassified counts processed croupier lines by classified outcome.
	MessagesClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redbet_messages_classified_total",
		Help: "Chat lines from the designated sender by classification outcome.",
	}, []string{"outcome"})

	// MessagesSuppressed counts consecutive duplicate lines dropped by the guard.
	MessagesSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "redbet_messages_suppressed_total",
		Help: "Chat lines dropped by the consecutive-duplicate guard.",
	})

	// WagersOpened counts wagers opened via the user action path.
	WagersOpened = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redbet_wagers_opened_total",
		Help: "Wagers opened, by kind.",
	}, []string{"kind"})

	// WagersSettled counts wagers reaching a terminal status.
	WagersSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redbet_wagers_settled_total",
		Help: "Wagers settled, by terminal status.",
	}, []string{"status"})
)
