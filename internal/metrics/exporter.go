// internal/metrics/exporter.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter exposes a Store on a private Prometheus registry. It reads the
// store on every scrape instead of double-writing counters, so the store
// stays the single source of truth.
type Exporter struct {
	store    *Store
	registry *prometheus.Registry

	attempts  *prometheus.Desc
	successes *prometheus.Desc
	failures  *prometheus.Desc
	resources *prometheus.Desc
	storms    *prometheus.Desc
}

// NewExporter creates an exporter registered on its own registry.
func NewExporter(store *Store) *Exporter {
	e := &Exporter{
		store: store,
		attempts: prometheus.NewDesc(
			"wardkeeper_recovery_attempts_total",
			"Recovery strategy attempts per fault category",
			[]string{"category"}, nil,
		),
		successes: prometheus.NewDesc(
			"wardkeeper_recovery_successes_total",
			"Successful recoveries per fault category",
			[]string{"category"}, nil,
		),
		failures: prometheus.NewDesc(
			"wardkeeper_recovery_failures_total",
			"Failed recovery attempts per fault category",
			[]string{"category"}, nil,
		),
		resources: prometheus.NewDesc(
			"wardkeeper_resources_consumed_total",
			"Resources consumed by successful recoveries",
			[]string{"category", "resource"}, nil,
		),
		storms: prometheus.NewDesc(
			"wardkeeper_fault_storms_total",
			"Fault storm detections per category",
			[]string{"category"}, nil,
		),
	}
	e.registry = prometheus.NewRegistry()
	e.registry.MustRegister(e)
	return e
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.attempts
	ch <- e.successes
	ch <- e.failures
	ch <- e.resources
	ch <- e.storms
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	for category, m := range e.store.Snapshot() {
		label := category.String()
		ch <- prometheus.MustNewConstMetric(e.attempts, prometheus.CounterValue, float64(m.Attempts), label)
		ch <- prometheus.MustNewConstMetric(e.successes, prometheus.CounterValue, float64(m.Successes), label)
		ch <- prometheus.MustNewConstMetric(e.failures, prometheus.CounterValue, float64(m.Failures), label)
		for resource, qty := range m.ResourceUsage {
			ch <- prometheus.MustNewConstMetric(e.resources, prometheus.CounterValue, float64(qty), label, resource)
		}
	}
	for category, n := range e.store.Storms() {
		ch <- prometheus.MustNewConstMetric(e.storms, prometheus.CounterValue, float64(n), category.String())
	}
}

// Handler returns the scrape handler for the private registry.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
