package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// NewRegistry returns the registry modules register their collectors on.
// Runtime, process and gorm pool metrics live in the default registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// NewGatherer merges the application registry with the default one for /metrics.
func NewGatherer(reg *prometheus.Registry) prometheus.Gatherer {
	return prometheus.Gatherers{reg, prometheus.DefaultGatherer}
}
