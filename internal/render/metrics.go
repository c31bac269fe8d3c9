package render

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const pathLabel = "path"

var (
	renderChunks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "globe_render_chunks_total",
		Help: "The number of chunks drawn, by precision path.",
	}, []string{
		pathLabel,
	})

	renderDrawCalls = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "globe_render_draw_calls",
		Help: "The number of chunk draw calls issued by the last frame.",
	})

	renderLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "globe_render_seconds",
		Help:    "The time to issue the draw calls of a frame.",
		Buckets: prometheus.ExponentialBuckets(1e-5, 2, 16),
	})
)

func instrumentRender(stats Stats, start time.Time) {
	renderChunks.With(prometheus.Labels{pathLabel: GlobalPath.String()}).Add(float64(stats.GlobalChunks))
	renderChunks.With(prometheus.Labels{pathLabel: LocalPath.String()}).Add(float64(stats.LocalChunks))
	renderDrawCalls.Set(float64(stats.DrawCalls))
	renderLatency.Observe(time.Since(start).Seconds())
}
