package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector wraps a private Prometheus registry and the application counters.
type Collector struct {
	registry *prometheus.Registry

	uploads       *prometheus.CounterVec
	saves         *prometheus.CounterVec
	sessionEvents *prometheus.CounterVec
	saveDuration  *prometheus.HistogramVec
}

// NewCollector creates a collector with every application metric registered.
func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}
	c.uploads = c.RegisterCounter("batchbook_image_uploads_total", "Image uploads by bucket and outcome.", []string{"bucket", "outcome"})
	c.saves = c.RegisterCounter("batchbook_form_saves_total", "Form saves by form and outcome.", []string{"form", "outcome"})
	c.sessionEvents = c.RegisterCounter("batchbook_session_events_total", "Session changes by kind.", []string{"kind"})
	c.saveDuration = c.RegisterHistogram("batchbook_form_save_seconds", "Form save latency.", []string{"form"}, nil)
	return c
}

// RegisterCounter registers a counter metric with the collector.
func (c *Collector) RegisterCounter(name, help string, labels []string) *prometheus.CounterVec {
	return promauto.With(c.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

// RegisterHistogram registers a histogram metric with the collector.
func (c *Collector) RegisterHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	opts := prometheus.HistogramOpts{
		Name:    name,
		Help:    help,
		Buckets: buckets,
	}
	if buckets == nil {
		opts.Buckets = prometheus.DefBuckets
	}
	return promauto.With(c.registry).NewHistogramVec(opts, labels)
}

// Registry returns the Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveUpload counts one image upload attempt. A nil collector is a no-op.
func (c *Collector) ObserveUpload(bucket string, err error) {
	if c == nil {
		return
	}
	c.uploads.WithLabelValues(bucket, outcome(err)).Inc()
}

// ObserveSave counts one form save and records its latency in seconds.
func (c *Collector) ObserveSave(form string, seconds float64, err error) {
	if c == nil {
		return
	}
	c.saves.WithLabelValues(form, outcome(err)).Inc()
	c.saveDuration.WithLabelValues(form).Observe(seconds)
}

// ObserveSessionEvent counts one session change.
func (c *Collector) ObserveSessionEvent(kind string) {
	if c == nil {
		return
	}
	c.sessionEvents.WithLabelValues(kind).Inc()
}
