package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the moderation module.
// Tracks per-decision image counts and scorer invocation durations.
type Metrics struct {
	ImagesScored  *prometheus.CounterVec
	ScoreDuration prometheus.Histogram
	FilesRemoved  prometheus.Counter
}

// New creates a Metrics instance with all moderation metrics registered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ImagesScored: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relato_moderation_images_scored_total",
			Help: "Total images scored, by decision",
		}, []string{"decision"}),
		ScoreDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "relato_moderation_score_duration_seconds",
			Help:    "Duration of a single scorer invocation",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FilesRemoved: factory.NewCounter(prometheus.CounterOpts{
			Name: "relato_moderation_files_removed_total",
			Help: "Total candidate files removed after a non-accepted verdict",
		}),
	}
}

// ObserveDecision records the verdict for one candidate.
func (m *Metrics) ObserveDecision(decision string) {
	m.ImagesScored.WithLabelValues(decision).Inc()
}

// ObserveScore records the duration of one scorer invocation.
// Call with time.Now() at the start of the invocation.
func (m *Metrics) ObserveScore(start time.Time) {
	m.ScoreDuration.Observe(time.Since(start).Seconds())
}

// IncrementFilesRemoved records a candidate file cleanup.
func (m *Metrics) IncrementFilesRemoved() {
	m.FilesRemoved.Inc()
}
