package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	reg             *prom.Registry
	publishDuration prom.Histogram
	publishOutcome  *prom.CounterVec
	publishedBytes  prom.Counter
	sidecarFailures *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the publish metrics on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.publishDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "fwpublish",
			Name:      "publish_duration_seconds",
			Help:      "Duration of firmware publish operations",
			Buckets:   prom.DefBuckets,
		})
		pr.publishOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "fwpublish",
			Name:      "publish_outcomes_total",
			Help:      "Publish outcomes by result",
		}, []string{"outcome"})
		pr.publishedBytes = prom.NewCounter(prom.CounterOpts{
			Namespace: "fwpublish",
			Name:      "published_bytes_total",
			Help:      "Bytes copied to the latest firmware slot",
		})
		pr.sidecarFailures = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "fwpublish",
			Name:      "sidecar_failures_total",
			Help:      "Failures of non-fatal post-copy steps (manifest, notify)",
		}, []string{"step"})
		reg.MustRegister(pr.publishDuration, pr.publishOutcome, pr.publishedBytes, pr.sidecarFailures)
	})
	return pr
}

// Registry returns the registry the metrics were registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObservePublishDuration(d time.Duration) {
	p.publishDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPublishOutcome(outcome Outcome) {
	p.publishOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddPublishedBytes(n int64) {
	if n > 0 {
		p.publishedBytes.Add(float64(n))
	}
}

func (p *PrometheusRecorder) IncSidecarFailure(step string) {
	p.sidecarFailures.WithLabelValues(step).Inc()
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}
