// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DraftsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "draft_engine_drafts_active",
			Help: "Number of drafts currently in progress.",
		},
	)

	DraftsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "draft_engine_drafts_created_total",
			Help: "Total drafts created.",
		},
	)

	PicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draft_engine_picks_total",
			Help: "Total committed picks.",
		},
		[]string{"mode"}, // manual | auto
	)

	PickRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draft_engine_pick_rejections_total",
			Help: "Picks rejected by validation.",
		},
		[]string{"reason"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draft_engine_events_published_total",
			Help: "Events handed to the configured sink.",
		},
		[]string{"type"},
	)

	MockDrafts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "draft_engine_mock_drafts_total",
			Help: "Mock draft simulations run.",
		},
	)
)
