package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "print_consumer_deliveries_total",
		Help: "Deliveries settled by the pipeline, labeled by outcome reason.",
	}, []string{"outcome"})

	processingSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "print_consumer_processing_seconds",
		Help:    "Time from taking a delivery to a completed print.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
)
