package observability

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Metrics holds the process counters exposed on /metrics. All methods are
// safe on a nil receiver so callers need not check whether metrics are on.
type Metrics struct {
	apiRequests   *CounterVec
	apiLatency    *HistogramVec
	apiInflight   *Gauge
	upstream      *CounterVec
	upstreamLat   *HistogramVec
	cacheLookups  *CounterVec
	validationRej *CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("storysentinel_api_requests_total", "HTTP requests by method, route, status.",
			[]string{"method", "route", "status"}),
		apiLatency: NewHistogramVec("storysentinel_api_request_duration_seconds", "HTTP request latency.",
			[]string{"method", "route"}, nil),
		apiInflight: NewGauge("storysentinel_api_inflight_requests", "HTTP requests currently being served."),
		upstream: NewCounterVec("storysentinel_upstream_requests_total", "Calls to external APIs by client, operation, outcome.",
			[]string{"client", "op", "outcome"}),
		upstreamLat: NewHistogramVec("storysentinel_upstream_request_duration_seconds", "External API latency.",
			[]string{"client", "op"}, []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15}),
		cacheLookups: NewCounterVec("storysentinel_cache_lookups_total", "Infringement cache lookups by result.",
			[]string{"result"}),
		validationRej: NewCounterVec("storysentinel_validation_violations_total", "Registration payload violations by field.",
			[]string{"field"}),
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveUpstream(client, op string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.upstream.Inc(client, op, outcome)
	m.upstreamLat.Observe(dur.Seconds(), client, op)
}

func (m *Metrics) IncCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.Inc("hit")
	} else {
		m.cacheLookups.Inc("miss")
	}
}

// IncViolation counts a rejected field. Entry indexes collapse to "*".
func (m *Metrics) IncViolation(field string) {
	if m == nil {
		return
	}
	m.validationRej.Inc(collapseIndex(field))
}

func collapseIndex(field string) string {
	parts := strings.Split(field, ".")
	for i, p := range parts {
		if _, err := strconv.Atoi(p); err == nil {
			parts[i] = "*"
		}
	}
	return strings.Join(parts, ".")
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.upstream, m.upstreamLat,
		m.cacheLookups, m.validationRej,
	}
	for _, mw := range writers {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}
