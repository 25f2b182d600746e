package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// item outcomes used as metric labels
const (
	outcomeProcessed    = "processed"
	outcomeDuplicate    = "duplicate"
	outcomeLowRelevance = "low_relevance"
	outcomeError        = "error"
)

var (
	itemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dcwatch_items_total",
			Help: "Total number of fetched items by processing outcome",
		},
		[]string{"outcome"},
	)

	sourceItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dcwatch_source_items_total",
			Help: "Total number of items returned by sources",
		},
		[]string{"source"},
	)

	sourceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dcwatch_source_failures_total",
			Help: "Total number of failed source fetches",
		},
		[]string{"source"},
	)

	cycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dcwatch_cycle_duration_seconds",
			Help:    "Ingestion cycle duration in seconds",
			Buckets: []float64{10, 30, 60, 120, 300, 600, 1200, 1800, 3600},
		},
	)

	lastCycleTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dcwatch_last_cycle_timestamp_seconds",
			Help: "Unix time of the last finished ingestion cycle",
		},
	)
)
