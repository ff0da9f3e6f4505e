// Package metrics exposes Prometheus counters for the listing pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the pipeline's Prometheus instruments.
type Collector struct {
	registry *prometheus.Registry

	jobsStarted   prometheus.Counter
	jobsFinished  *prometheus.CounterVec
	stepsFinished *prometheus.CounterVec
	publishes     *prometheus.CounterVec
	draftUpdates  *prometheus.CounterVec
	ordersDeleted prometheus.Counter
}

// NewCollector registers the pipeline instruments on a private registry so
// tests can construct collectors without global state collisions.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		jobsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "relist_pipeline_jobs_started_total",
			Help: "Pipeline jobs created.",
		}),
		jobsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relist_pipeline_jobs_finished_total",
			Help: "Pipeline jobs by terminal status.",
		}, []string{"status"}),
		stepsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relist_pipeline_steps_finished_total",
			Help: "Pipeline steps by name and outcome.",
		}, []string{"step", "outcome"}),
		publishes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relist_publish_attempts_total",
			Help: "Marketplace publish attempts by result.",
		}, []string{"result"}),
		draftUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relist_draft_updates_total",
			Help: "Draft review decisions by resulting status.",
		}, []string{"status"}),
		ordersDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "relist_orders_deleted_total",
			Help: "Orders removed by the cleanup worker.",
		}),
	}
}

// Handler returns the HTTP handler serving the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) JobStarted() {
	c.jobsStarted.Inc()
}

func (c *Collector) JobFinished(status string) {
	c.jobsFinished.WithLabelValues(status).Inc()
}

func (c *Collector) StepFinished(step, outcome string) {
	c.stepsFinished.WithLabelValues(step, outcome).Inc()
}

func (c *Collector) PublishAttempt(result string) {
	c.publishes.WithLabelValues(result).Inc()
}

func (c *Collector) DraftUpdated(status string) {
	c.draftUpdates.WithLabelValues(status).Inc()
}

func (c *Collector) OrderDeleted() {
	c.ordersDeleted.Inc()
}
