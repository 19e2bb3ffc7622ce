// Package datadog implements a Datadog sink for the internal/metrics package.
//
// Points are buffered in memory, flushed on a ticker, and flushed one final
// time on Close, so short one-shot loads and long-running ones both produce
// usable series. Buffers are snapshotted and reset under a mutex; submission
// happens outside the lock.
package datadog

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	dd "github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"ddlgen/internal/metrics"
)

// Options configures the backend.
type Options struct {
	// JobName becomes tag "job:<name>" on every metric. Defaults to "ddlgen".
	JobName string

	// Tags are extra Datadog tags, e.g. []string{"env:prod"}.
	Tags []string

	// FlushEvery controls the background submit interval. Defaults to 60s.
	FlushEvery time.Duration

	// Test seams. Production code leaves them nil.
	now       func() time.Time
	submitter submitter
}

// submitter is the slice of the Datadog SDK the backend needs. The SDK only
// exposes a concrete *datadogV2.MetricsApi, which cannot be stubbed without
// real HTTP; tests inject a fake through this interface instead.
type submitter interface {
	SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error)
}

// Backend buffers counters and histogram samples keyed by metric name and
// tag set.
type Backend struct {
	api      submitter
	ctx      context.Context
	baseTags []string
	now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}

	mu       sync.Mutex
	counters map[seriesKey]float64
	samples  map[seriesKey][]float64
}

type seriesKey struct {
	name string
	tags string
}

// NewBackend starts the flush loop and returns a ready backend. Credentials
// come from the environment (DD_API_KEY), resolved by the SDK's default
// context.
func NewBackend(parent context.Context, opts Options) (*Backend, error) {
	job := opts.JobName
	if job == "" {
		job = "ddlgen"
	}
	flushEvery := opts.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 60 * time.Second
	}
	nowFn := opts.now
	if nowFn == nil {
		nowFn = time.Now
	}

	api := opts.submitter
	if api == nil {
		client := dd.NewAPIClient(dd.NewConfiguration())
		api = datadogV2.NewMetricsApi(client)
	}

	b := &Backend{
		api:      api,
		ctx:      dd.NewDefaultContext(parent),
		baseTags: append([]string{"job:" + job}, opts.Tags...),
		now:      nowFn,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		counters: make(map[seriesKey]float64),
		samples:  make(map[seriesKey][]float64),
	}
	go b.loop(flushEvery)
	return b, nil
}

func (b *Backend) loop(every time.Duration) {
	defer close(b.doneCh)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			_ = b.Flush()
		case <-b.stopCh:
			return
		}
	}
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if delta <= 0 {
		return
	}
	k := key(name, labels)
	b.mu.Lock()
	b.counters[k] += delta
	b.mu.Unlock()
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if value < 0 {
		return
	}
	k := key(name, labels)
	b.mu.Lock()
	b.samples[k] = append(b.samples[k], value)
	b.mu.Unlock()
}

// Close stops the flush loop and submits whatever is still buffered. Call
// once.
func (b *Backend) Close() error {
	close(b.stopCh)
	<-b.doneCh
	return b.Flush()
}

// Flush submits buffered metrics and resets the buffers. Buffers are reset
// even when submission fails so a dead endpoint cannot grow memory without
// bound.
func (b *Backend) Flush() error {
	b.mu.Lock()
	counters := b.counters
	samples := b.samples
	b.counters = make(map[seriesKey]float64)
	b.samples = make(map[seriesKey][]float64)
	b.mu.Unlock()

	if len(counters) == 0 && len(samples) == 0 {
		return nil
	}

	series := b.buildSeries(counters, samples, b.now().Unix())
	_, _, err := b.api.SubmitMetrics(b.ctx, datadogV2.MetricPayload{Series: series}, *datadogV2.NewSubmitMetricsOptionalParameters())
	if err != nil {
		return fmt.Errorf("datadog: submit metrics: %w", err)
	}
	return nil
}

// buildSeries is pure (no locks, clocks, or network), which keeps the
// naming and tagging contract unit-testable.
func (b *Backend) buildSeries(counters map[seriesKey]float64, samples map[seriesKey][]float64, nowUnix int64) []datadogV2.MetricSeries {
	series := make([]datadogV2.MetricSeries, 0, len(counters)+6*len(samples))

	for k, v := range counters {
		series = append(series, b.point(k, datadogV2.METRICINTAKETYPE_COUNT, v, nowUnix))
	}

	for k, vals := range samples {
		if len(vals) == 0 {
			continue
		}
		cp := append([]float64(nil), vals...)
		sort.Float64s(cp)
		for _, q := range []struct {
			suffix string
			value  float64
		}{
			{".p50", percentile(cp, 0.50)},
			{".p90", percentile(cp, 0.90)},
			{".p99", percentile(cp, 0.99)},
			{".max", cp[len(cp)-1]},
			{".samples", float64(len(cp))},
		} {
			pk := seriesKey{name: k.name + q.suffix, tags: k.tags}
			series = append(series, b.point(pk, datadogV2.METRICINTAKETYPE_GAUGE, q.value, nowUnix))
		}
	}
	return series
}

func (b *Backend) point(k seriesKey, typ datadogV2.MetricIntakeType, v float64, nowUnix int64) datadogV2.MetricSeries {
	tags := append([]string(nil), b.baseTags...)
	if k.tags != "" {
		tags = append(tags, strings.Split(k.tags, ",")...)
	}
	return datadogV2.MetricSeries{
		Metric: k.name,
		Type:   typ.Ptr(),
		Points: []datadogV2.MetricPoint{
			{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(v)},
		},
		Tags: tags,
	}
}

// key canonicalizes labels into a sorted tag string so equal label sets
// always land in the same bucket.
func key(name string, labels metrics.Labels) seriesKey {
	if len(labels) == 0 {
		return seriesKey{name: name}
	}
	tags := make([]string, 0, len(labels))
	for k, v := range labels {
		tags = append(tags, k+":"+v)
	}
	sort.Strings(tags)
	return seriesKey{name: name, tags: strings.Join(tags, ",")}
}

// percentile uses nearest-rank on a sorted sample set.
func percentile(s []float64, p float64) float64 {
	n := len(s)
	if n == 0 {
		return 0
	}
	idx := int(p*float64(n-1) + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return s[idx]
}

// ParseTagsCSV parses comma-separated tags like "env:prod,service:loader".
func ParseTagsCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var _ metrics.Backend = (*Backend)(nil)
