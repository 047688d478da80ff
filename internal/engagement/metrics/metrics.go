package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ActivitiesRecorded *prometheus.CounterVec
	StreakLength       prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActivitiesRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relato_engagement_activities_recorded_total",
			Help: "Activity events recorded, by type.",
		}, []string{"type"}),
		StreakLength: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "relato_engagement_current_streak_days",
			Help:    "Current streak length observed when streaks are computed.",
			Buckets: []float64{1, 2, 3, 5, 7, 14, 30, 60, 90, 180, 365},
		}),
	}
}
