package suggest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query kinds used as the "kind" label.
const (
	kindRaw    = "raw"
	kindFields = "fields"
)

var (
	// searchDuration measures one autocomplete call end to end.
	// Labels: kind (raw, fields)
	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "courseserve",
		Subsystem: "search",
		Name:      "duration_seconds",
		Help:      "Autocomplete latency in seconds",
		Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
	}, []string{"kind"})

	// searchResults tracks how many records a call returned.
	// Labels: kind
	searchResults = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "courseserve",
		Subsystem: "search",
		Name:      "results",
		Help:      "Records returned per autocomplete call",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
	}, []string{"kind"})

	// searchQueries counts calls by outcome.
	// Labels: kind, outcome (hit, empty, invalid, canceled)
	searchQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courseserve",
		Subsystem: "search",
		Name:      "queries_total",
		Help:      "Total autocomplete calls by kind and outcome",
	}, []string{"kind", "outcome"})

	// searchNodesExpanded tracks how many graph nodes one traversal expanded.
	searchNodesExpanded = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "courseserve",
		Subsystem: "search",
		Name:      "nodes_expanded",
		Help:      "Graph nodes expanded per prefix traversal",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	// searchShared counts raw searches answered by an in-flight identical call.
	searchShared = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "courseserve",
		Subsystem: "search",
		Name:      "shared_total",
		Help:      "Raw searches coalesced onto an identical in-flight search",
	})
)
