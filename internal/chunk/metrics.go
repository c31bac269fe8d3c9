package chunk

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const cullTestLabel = "cull_test"

var (
	chunkSplits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "globe_chunk_splits_total",
		Help: "The number of chunks split into four children.",
	})

	chunkMerges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "globe_chunk_merges_total",
		Help: "The number of chunks whose descendants were released.",
	})

	chunkSplitsDeclined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "globe_chunk_splits_declined_total",
		Help: "The number of splits declined because the chunk pool was exhausted.",
	})

	chunkCulled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "globe_chunk_culled_total",
		Help: "The number of chunk visits skipped by a culling test.",
	}, []string{
		cullTestLabel,
	})

	chunkLeaves = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "globe_chunk_leaves",
		Help: "The number of visible leaf chunks produced by the last update.",
	})

	chunkPoolInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "globe_chunk_pool_in_use",
		Help: "The number of chunk pool slots in use.",
	})

	chunkUpdateLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "globe_chunk_update_seconds",
		Help:    "The time to walk and reshape the chunk tree.",
		Buckets: prometheus.ExponentialBuckets(1e-5, 2, 16),
	})
)

func instrumentCulled(test CullTest) {
	chunkCulled.With(prometheus.Labels{
		cullTestLabel: test.String(),
	}).Inc()
}

func instrumentUpdate(stats UpdateStats, start time.Time) {
	chunkSplits.Add(float64(stats.Splits))
	chunkMerges.Add(float64(stats.Merges))
	chunkSplitsDeclined.Add(float64(stats.SplitsDeclined))
	chunkLeaves.Set(float64(stats.Leaves))
	chunkPoolInUse.Set(float64(stats.PoolInUse))
	chunkUpdateLatency.Observe(time.Since(start).Seconds())
}
