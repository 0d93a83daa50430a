// Package metrics exposes prometheus instrumentation for the ontology core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ontology_cache_hits_total",
		Help: "Cache hits by tier (local or remote)",
	}, []string{"tier"})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ontology_cache_misses_total",
		Help: "Cache misses",
	})

	CacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ontology_cache_evictions_total",
		Help: "Entries evicted because the cache reached capacity",
	})

	CacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ontology_cache_entries",
		Help: "Current number of live cache entries",
	})

	BatchFlushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ontology_batch_flushes_total",
		Help: "Batch optimizer flushes by trigger (timer or capacity)",
	}, []string{"trigger"})

	BatchMergedRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ontology_batch_merged_requests_total",
		Help: "Requests folded into a merged statement",
	})

	ActionRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ontology_action_runs_total",
		Help: "Action pipeline outcomes by action name and result",
	}, []string{"action", "result"})
)
