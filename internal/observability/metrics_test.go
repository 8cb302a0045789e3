package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsNilSafe(t *testing.T) {
	t.Parallel()
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.APIInflightInc()
	m.IncCacheLookup(true)
	m.IncViolation("id")
	m.ObserveUpstream("yakoa", "get_token", nil, time.Millisecond)
	if err := m.WritePrometheus(&strings.Builder{}); err != nil {
		t.Fatalf("WritePrometheus on nil: %v", err)
	}
}

func TestMetricsExposition(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	m.ObserveAPI("POST", "/api/ip-assets", "201", 30*time.Millisecond)
	m.ObserveAPI("POST", "/api/ip-assets", "201", 70*time.Millisecond)
	m.IncCacheLookup(false)
	m.ObserveUpstream("yakoa", "register_token", errors.New("x"), time.Second)
	m.IncViolation("media.3.hash")
	m.IncViolation("media.12.hash")

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		`storysentinel_api_requests_total{method="POST",route="/api/ip-assets",status="201"} 2`,
		`storysentinel_api_request_duration_seconds_bucket{method="POST",route="/api/ip-assets",le="0.05"} 1`,
		`storysentinel_api_request_duration_seconds_count{method="POST",route="/api/ip-assets"} 2`,
		`storysentinel_cache_lookups_total{result="miss"} 1`,
		`storysentinel_upstream_requests_total{client="yakoa",op="register_token",outcome="error"} 1`,
		`storysentinel_validation_violations_total{field="media.*.hash"} 2`,
		"# TYPE storysentinel_api_inflight_requests gauge",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}

func TestLabelEscaping(t *testing.T) {
	t.Parallel()
	got := labelString([]string{"a", "b"}, []string{`x"y`})
	if want := `{a="x\"y",b="unknown"}`; got != want {
		t.Fatalf("labelString: got=%s want=%s", got, want)
	}
	if got := withLe("", "+Inf"); got != `{le="+Inf"}` {
		t.Fatalf("withLe: got=%s", got)
	}
}

func TestParseHeaders(t *testing.T) {
	t.Parallel()
	got := ParseHeaders(" api-key = abc , bad, x=")
	if len(got) != 1 || got["api-key"] != "abc" {
		t.Fatalf("ParseHeaders: got=%v", got)
	}
	if ParseHeaders("") != nil {
		t.Fatalf("ParseHeaders empty should be nil")
	}
}
