package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ReportsCreated  *prometheus.CounterVec
	IntakeRejected  prometheus.Counter
	StatusUpdates   *prometheus.CounterVec
	ImagesPerReport prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ReportsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relato_report_created_total",
			Help: "Reports created, by category.",
		}, []string{"category"}),
		IntakeRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "relato_report_intake_rejected_total",
			Help: "Intake attempts rejected because no image passed moderation.",
		}),
		StatusUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relato_report_status_updates_total",
			Help: "Report status transitions, by target status.",
		}, []string{"status"}),
		ImagesPerReport: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "relato_report_accepted_images",
			Help:    "Accepted images per created report.",
			Buckets: []float64{1, 2, 3, 4, 5},
		}),
	}
}
