package datadog

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"ddlgen/internal/metrics"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	payloads []datadogV2.MetricPayload
}

func (f *fakeSubmitter) SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, body)
	return datadogV2.IntakePayloadAccepted{}, nil, nil
}

func (f *fakeSubmitter) series() []datadogV2.MetricSeries {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []datadogV2.MetricSeries
	for _, p := range f.payloads {
		out = append(out, p.Series...)
	}
	return out
}

func newTestBackend(t *testing.T) (*Backend, *fakeSubmitter) {
	t.Helper()
	fake := &fakeSubmitter{}
	b, err := NewBackend(context.Background(), Options{
		JobName:    "testjob",
		FlushEvery: time.Hour,
		now:        func() time.Time { return time.Unix(1700000000, 0) },
		submitter:  fake,
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	return b, fake
}

func TestCounterFlush(t *testing.T) {
	t.Parallel()

	b, fake := newTestBackend(t)
	b.IncCounter("ddlgen.load.rows.total", 3, metrics.Labels{"table": "planets"})
	b.IncCounter("ddlgen.load.rows.total", 2, metrics.Labels{"table": "planets"})
	b.IncCounter("ddlgen.load.rows.total", -1, nil)
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	series := fake.series()
	if len(series) != 1 {
		t.Fatalf("series = %d, want 1 merged counter", len(series))
	}
	s := series[0]
	if s.Metric != "ddlgen.load.rows.total" {
		t.Errorf("metric = %q", s.Metric)
	}
	if got := *s.Points[0].Value; got != 5 {
		t.Errorf("value = %v, want merged 5", got)
	}
	wantTags := []string{"job:testjob", "table:planets"}
	gotTags := append([]string(nil), s.Tags...)
	sort.Strings(gotTags)
	sort.Strings(wantTags)
	if len(gotTags) != len(wantTags) {
		t.Fatalf("tags = %v, want %v", s.Tags, wantTags)
	}
	for i := range wantTags {
		if gotTags[i] != wantTags[i] {
			t.Errorf("tags = %v, want %v", s.Tags, wantTags)
			break
		}
	}
}

func TestHistogramPercentiles(t *testing.T) {
	t.Parallel()

	b, fake := newTestBackend(t)
	for i := 1; i <= 99; i++ {
		b.ObserveHistogram("ddlgen.load.duration_seconds", float64(i), nil)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	byName := map[string]float64{}
	for _, s := range fake.series() {
		byName[s.Metric] = *s.Points[0].Value
	}
	checks := map[string]float64{
		"ddlgen.load.duration_seconds.p50":     50,
		"ddlgen.load.duration_seconds.max":     99,
		"ddlgen.load.duration_seconds.samples": 99,
	}
	for name, want := range checks {
		got, ok := byName[name]
		if !ok {
			t.Errorf("missing series %s", name)
			continue
		}
		if got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
}

func TestFlushEmptySubmitsNothing(t *testing.T) {
	t.Parallel()

	b, fake := newTestBackend(t)
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := len(fake.series()); n != 0 {
		t.Errorf("series = %d, want none for an empty buffer", n)
	}
}

func TestFlushResetsBuffers(t *testing.T) {
	t.Parallel()

	b, fake := newTestBackend(t)
	b.IncCounter("ddlgen.load.tables.total", 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := len(fake.series()); n != 1 {
		t.Errorf("series = %d, want the counter submitted exactly once", n)
	}
}

func TestParseTagsCSV(t *testing.T) {
	t.Parallel()

	got := ParseTagsCSV(" env:prod, service:loader ,,")
	if len(got) != 2 || got[0] != "env:prod" || got[1] != "service:loader" {
		t.Errorf("ParseTagsCSV = %v", got)
	}
	if ParseTagsCSV("") != nil {
		t.Error("ParseTagsCSV(\"\") should be nil")
	}
}
