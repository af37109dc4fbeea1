package service

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	evaluations *prometheus.CounterVec
	discounts   prometheus.Counter
	amount      *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parkwise",
			Subsystem: "fee",
			Name:      "evaluations_total",
			Help:      "Fee evaluations by outcome.",
		}, []string{"outcome"}),
		discounts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parkwise",
			Subsystem: "fee",
			Name:      "discounts_total",
			Help:      "Evaluations where a vehicle discount lowered the fee.",
		}),
		amount: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "parkwise",
			Subsystem: "fee",
			Name:      "amount",
			Help:      "Fee amounts in minor currency units.",
			Buckets:   prometheus.ExponentialBuckets(100, 2, 12),
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.evaluations, m.discounts, m.amount)
	}
	return m
}
