// Package metrics is a minimal facade over a pluggable metrics backend.
//
// The CLI records query/HTTP activity through package-level helpers; what
// happens to those observations depends on the configured Backend. The
// default backend is a no-op, so commands run with zero metrics overhead
// unless a real backend (e.g. Datadog) is installed at startup.
package metrics

import (
	"strconv"
	"sync"
	"time"
)

// Labels attaches dimensions to a metric observation.
type Labels map[string]string

// Backend receives raw metric observations.
//
// Implementations must be safe for concurrent use; the facade does not
// serialize calls.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
}

// Flusher is implemented by backends that buffer observations.
type Flusher interface {
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs the process-wide backend. Call once during startup,
// before any command work begins.
func SetBackend(b Backend) {
	if b == nil {
		b = nopBackend{}
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush pushes buffered observations out, if the backend buffers at all.
func Flush() error {
	if f, ok := current().(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// IncCounter forwards to the configured backend.
func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

// ObserveHistogram forwards to the configured backend.
func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// RecordHTTP records one remote API request: a request counter, an error
// counter when err is non-nil or the status is not 2xx, and duration/size
// histograms. status 0 means the request never produced a response.
func RecordHTTP(job string, status int, err error, reqDur, respDur time.Duration, downloadBytes int64) {
	labels := Labels{
		"job":    job,
		"status": statusLabel(status),
	}

	IncCounter("http_requests_total", 1, labels)
	if err != nil || status < 200 || status >= 300 {
		IncCounter("http_errors_total", 1, labels)
	}

	if reqDur >= 0 {
		ObserveHistogram("http_request_duration_seconds", reqDur.Seconds(), labels)
	}
	if respDur >= 0 {
		ObserveHistogram("http_response_duration_seconds", respDur.Seconds(), labels)
	}
	if downloadBytes >= 0 {
		ObserveHistogram("http_download_bytes", float64(downloadBytes), labels)
	}
}

// RecordResultRows records how many rows a query command produced.
func RecordResultRows(command string, n int) {
	if n < 0 {
		return
	}
	IncCounter("query_records_total", float64(n), Labels{"command": command})
}

func statusLabel(status int) string {
	if status == 0 {
		return "none"
	}
	return strconv.Itoa(status)
}
