// Package metrics exposes publish counters behind a small Recorder interface so
// the publisher can run with or without Prometheus.
package metrics

import "time"

// Outcome enumerates publish results for counters.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Recorder defines observability hooks for publishing.
type Recorder interface {
	ObservePublishDuration(d time.Duration)
	IncPublishOutcome(outcome Outcome)
	AddPublishedBytes(n int64)
	IncSidecarFailure(step string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePublishDuration(time.Duration) {}
func (NoopRecorder) IncPublishOutcome(Outcome)            {}
func (NoopRecorder) AddPublishedBytes(int64)              {}
func (NoopRecorder) IncSidecarFailure(string)             {}
