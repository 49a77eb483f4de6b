// Package metric provides Prometheus metrics for tokfactory.
package metric

import "github.com/prometheus/client_golang/prometheus"

// StateCounter reports how many registered tokens are active and expired.
// It is evaluated at scrape time because expiry is time-driven.
type StateCounter func() (active, expired int)

// StateCollector exposes token lifecycle counts.
type StateCollector struct {
	count StateCounter
	desc  *prometheus.Desc
}

// NewStateCollector creates a collector backed by count.
func NewStateCollector(namespace string, count StateCounter) *StateCollector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &StateCollector{
		count: count,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "tokens"),
			"Number of registered tokens by lifecycle state",
			[]string{"state"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *StateCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *StateCollector) Collect(ch chan<- prometheus.Metric) {
	active, expired := c.count()
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(active), "active")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(expired), "expired")
}

// RegisterStateCollector registers a StateCollector on the registry.
func (r *Registry) RegisterStateCollector(count StateCounter) error {
	if r == nil {
		return nil
	}
	return r.registry.Register(NewStateCollector(r.namespace, count))
}
