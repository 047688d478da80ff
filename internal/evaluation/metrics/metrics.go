package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EvaluationsCreated  prometheus.Counter
	EvaluationConflicts prometheus.Counter
	AreaQueries         prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EvaluationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "relato_evaluation_created_total",
			Help: "Evaluations successfully created.",
		}),
		EvaluationConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "relato_evaluation_period_conflicts_total",
			Help: "Creation attempts rejected because the period was already evaluated.",
		}),
		AreaQueries: factory.NewCounter(prometheus.CounterOpts{
			Name: "relato_evaluation_area_queries_total",
			Help: "Area statistics queries served.",
		}),
	}
}
