// Package datadog implements a Datadog backend for the internal/metrics
// facade.
//
// Flushing model:
//   - observations are buffered in-memory (lock-protected)
//   - a background loop submits them on a fixed interval
//   - Close() stops the loop and submits one final time
//
// Short-lived CLI runs get exactly one submission at shutdown; long ones get
// a real time series. If the process dies with SIGKILL the tail is lost, and
// no backend can fix that.
package datadog

import (
	"context"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/johnwroge/Materials-Research/internal/metrics"

	dd "github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

// Options controls Datadog backend configuration.
type Options struct {
	// JobName becomes tag "job:<name>" on every metric. Defaults to "matproj".
	JobName string

	// Tags are extra Datadog tags (e.g. []string{"env:prod"}).
	Tags []string

	// FlushEvery controls the submission interval. Defaults to 60s.
	FlushEvery time.Duration

	// Unexported test seams. Production code never sets these; tests use
	// them to avoid real submission and nondeterministic clocks.
	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker
	submitter metricsSubmitter
}

// metricsSubmitter is the minimal slice of the Datadog SDK the backend needs.
// Depending on this interface instead of *datadogV2.MetricsApi keeps the
// backend testable without network access.
type metricsSubmitter interface {
	SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error)
}

// Backend implements metrics.Backend for Datadog.
type Backend struct {
	api metricsSubmitter
	ctx context.Context

	flushEvery time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}

	baseTags []string

	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker

	mu sync.Mutex

	reqCounts    map[string]float64 // status -> count
	errCounts    map[string]float64 // status -> count
	reqDur       map[string][]float64
	respDur      map[string][]float64
	downloadB    map[string][]float64
	recordCounts map[string]float64 // command -> rows
}

func resolveEnvTag() string {
	if v := strings.TrimSpace(os.Getenv("ENV")); v != "" {
		return "env:" + v
	}
	if v := strings.TrimSpace(os.Getenv("DD_ENV")); v != "" {
		return "env:" + v
	}
	return "env:unknown"
}

// NewBackend constructs a Datadog backend using the official client.
//
// Edge cases:
//   - FlushEvery <= 0 defaults to 60s; empty JobName defaults to "matproj".
//   - Environment tag selection uses ENV then DD_ENV, otherwise env:unknown.
//
// Errors:
//   - Client construction does not fail under normal conditions; network
//     errors surface from Flush().
func NewBackend(parent context.Context, opts Options) (*Backend, error) {
	job := opts.JobName
	if job == "" {
		job = "matproj"
	}

	flushEvery := opts.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 60 * time.Second
	}

	baseTags := make([]string, 0, 2+len(opts.Tags))
	baseTags = append(baseTags, resolveEnvTag(), "job:"+job)
	baseTags = append(baseTags, opts.Tags...)

	nowFn := opts.now
	if nowFn == nil {
		nowFn = time.Now
	}
	newTicker := opts.newTicker
	if newTicker == nil {
		newTicker = time.NewTicker
	}

	submitter := opts.submitter
	if submitter == nil {
		cfg := dd.NewConfiguration()
		client := dd.NewAPIClient(cfg)
		submitter = datadogV2.NewMetricsApi(client)
	}

	b := &Backend{
		api:        submitter,
		ctx:        dd.NewDefaultContext(parent),
		flushEvery: flushEvery,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),

		baseTags: baseTags,

		now:       nowFn,
		newTicker: newTicker,

		reqCounts:    make(map[string]float64),
		errCounts:    make(map[string]float64),
		reqDur:       make(map[string][]float64),
		respDur:      make(map[string][]float64),
		downloadB:    make(map[string][]float64),
		recordCounts: make(map[string]float64),
	}

	go b.loop()
	return b, nil
}

func (b *Backend) loop() {
	defer close(b.doneCh)

	t := b.newTicker(b.flushEvery)
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

// Close stops the flush loop and performs one final Flush(). Call once at
// process shutdown.
func (b *Backend) Close() error {
	close(b.stopCh)
	<-b.doneCh
	return b.Flush()
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if delta <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch name {
	case "http_requests_total":
		b.reqCounts[statusOf(labels)] += delta

	case "http_errors_total":
		b.errCounts[statusOf(labels)] += delta

	case "query_records_total":
		cmd := labels["command"]
		if cmd == "" {
			return
		}
		b.recordCounts[cmd] += delta

	default:
		// Unknown metrics are ignored.
	}
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if value < 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch name {
	case "http_request_duration_seconds":
		s := statusOf(labels)
		b.reqDur[s] = append(b.reqDur[s], value)

	case "http_response_duration_seconds":
		s := statusOf(labels)
		b.respDur[s] = append(b.respDur[s], value)

	case "http_download_bytes":
		s := statusOf(labels)
		b.downloadB[s] = append(b.downloadB[s], value)

	default:
		// Unknown histograms are ignored.
	}
}

func statusOf(labels metrics.Labels) string {
	s := labels["status"]
	if s == "" {
		return "unknown"
	}
	return s
}

// snapshot is the detached buffered state a single Flush() submits.
type snapshot struct {
	reqCounts    map[string]float64
	errCounts    map[string]float64
	reqDur       map[string][]float64
	respDur      map[string][]float64
	downloadB    map[string][]float64
	recordCounts map[string]float64
}

// snapshotAndReset grabs the buffers and resets them. Submission happens
// out-of-lock so observers never block on the network.
func (b *Backend) snapshotAndReset() snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := snapshot{
		reqCounts:    b.reqCounts,
		errCounts:    b.errCounts,
		reqDur:       b.reqDur,
		respDur:      b.respDur,
		downloadB:    b.downloadB,
		recordCounts: b.recordCounts,
	}

	b.reqCounts = make(map[string]float64)
	b.errCounts = make(map[string]float64)
	b.reqDur = make(map[string][]float64)
	b.respDur = make(map[string][]float64)
	b.downloadB = make(map[string][]float64)
	b.recordCounts = make(map[string]float64)

	return s
}

func (s snapshot) isEmpty() bool {
	return len(s.reqCounts) == 0 &&
		len(s.errCounts) == 0 &&
		len(s.reqDur) == 0 &&
		len(s.respDur) == 0 &&
		len(s.downloadB) == 0 &&
		len(s.recordCounts) == 0
}

// Flush submits buffered metrics to Datadog and resets local buffers.
//
// Buffers are reset even when submission fails; delivery is best-effort.
func (b *Backend) Flush() error {
	snap := b.snapshotAndReset()
	if snap.isEmpty() {
		return nil
	}

	nowUnix := b.now().Unix()
	payload := datadogV2.MetricPayload{Series: b.buildSeries(snap, nowUnix)}

	_, _, err := b.api.SubmitMetrics(b.ctx, payload, *datadogV2.NewSubmitMetricsOptionalParameters())
	return err
}

// buildSeries constructs the Datadog series for a snapshot at a fixed
// timestamp. Pure (no locks, no network, no clocks), so it is unit-testable.
func (b *Backend) buildSeries(s snapshot, nowUnix int64) []datadogV2.MetricSeries {
	series := make([]datadogV2.MetricSeries, 0, len(s.reqCounts)+len(s.errCounts)+len(s.recordCounts)+32)

	for status, v := range s.reqCounts {
		if v == 0 {
			continue
		}
		series = append(series, countSeries("matproj.http.requests.total", v, withTags(b.baseTags, "status:"+status), nowUnix))
	}
	for status, v := range s.errCounts {
		if v == 0 {
			continue
		}
		series = append(series, countSeries("matproj.http.errors.total", v, withTags(b.baseTags, "status:"+status), nowUnix))
	}
	for cmd, v := range s.recordCounts {
		if v == 0 {
			continue
		}
		series = append(series, countSeries("matproj.query.records.total", v, withTags(b.baseTags, "command:"+cmd), nowUnix))
	}

	for status, samples := range s.reqDur {
		addPercentiles(&series, withTags(b.baseTags, "status:"+status), "matproj.http.request_duration_seconds", samples, nowUnix)
	}
	for status, samples := range s.respDur {
		addPercentiles(&series, withTags(b.baseTags, "status:"+status), "matproj.http.response_duration_seconds", samples, nowUnix)
	}
	for status, samples := range s.downloadB {
		addPercentiles(&series, withTags(b.baseTags, "status:"+status), "matproj.http.download_bytes", samples, nowUnix)
	}

	return series
}

// addPercentiles appends a fixed set of percentile gauges for a sample set.
// It sorts a copy and does nothing for empty input.
func addPercentiles(series *[]datadogV2.MetricSeries, tags []string, metricPrefix string, samples []float64, nowUnix int64) {
	if len(samples) == 0 {
		return
	}
	cp := append([]float64(nil), samples...)
	sort.Float64s(cp)

	*series = append(*series, gaugeSeries(metricPrefix+".p50", percentileNearestRank(cp, 0.50), tags, nowUnix))
	*series = append(*series, gaugeSeries(metricPrefix+".p90", percentileNearestRank(cp, 0.90), tags, nowUnix))
	*series = append(*series, gaugeSeries(metricPrefix+".p95", percentileNearestRank(cp, 0.95), tags, nowUnix))
	*series = append(*series, gaugeSeries(metricPrefix+".p99", percentileNearestRank(cp, 0.99), tags, nowUnix))
	*series = append(*series, gaugeSeries(metricPrefix+".max", cp[len(cp)-1], tags, nowUnix))
	*series = append(*series, gaugeSeries(metricPrefix+".samples", float64(len(cp)), tags, nowUnix))
}

func countSeries(metric string, value float64, tags []string, nowUnix int64) datadogV2.MetricSeries {
	return datadogV2.MetricSeries{
		Metric: metric,
		Type:   datadogV2.METRICINTAKETYPE_COUNT.Ptr(),
		Points: []datadogV2.MetricPoint{
			{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(value)},
		},
		Tags: tags,
	}
}

func gaugeSeries(metric string, value float64, tags []string, nowUnix int64) datadogV2.MetricSeries {
	return datadogV2.MetricSeries{
		Metric: metric,
		Type:   datadogV2.METRICINTAKETYPE_GAUGE.Ptr(),
		Points: []datadogV2.MetricPoint{
			{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(value)},
		},
		Tags: tags,
	}
}

func withTags(base []string, extras ...string) []string {
	out := make([]string, 0, len(base)+len(extras))
	out = append(out, base...)
	out = append(out, extras...)
	return out
}

func percentileNearestRank(s []float64, p float64) float64 {
	n := len(s)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return s[0]
	}
	if p >= 1 {
		return s[n-1]
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

var _ metrics.Backend = (*Backend)(nil)

// ParseTagsCSV parses comma-separated tags like "env:prod,service:matproj".
func ParseTagsCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
