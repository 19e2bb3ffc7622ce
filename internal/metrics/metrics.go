// Package metrics is the thin instrumentation seam for data loading runs.
//
// Core code depends only on Backend; concrete sinks (Datadog) live in
// subpackages so the dependency stays out of the inference engine.
package metrics

import "time"

// Labels attach dimensions to a metric point.
type Labels map[string]string

// Backend receives metric points. Implementations must be safe for
// concurrent use.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)

	// Close flushes anything buffered and releases resources. Call once.
	Close() error
}

// Noop discards all metrics. The zero value is ready to use.
type Noop struct{}

func (Noop) IncCounter(string, float64, Labels)       {}
func (Noop) ObserveHistogram(string, float64, Labels) {}
func (Noop) Close() error                             { return nil }

// ObserveDuration records the seconds elapsed since start as a histogram
// point.
func ObserveDuration(b Backend, name string, start time.Time, labels Labels) {
	b.ObserveHistogram(name, time.Since(start).Seconds(), labels)
}
