package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsExposeLLMAndBacklogSeries(t *testing.T) {
	m := NewMetrics()
	m.ObserveLLMRequest("generate_epics", "llama", "ok", 2*time.Second, 120, 900)
	m.ObserveLLMRequest("generate_epics", "llama", "error", time.Second, 0, 0)
	m.ObserveBacklogRefresh("ok", 10*time.Millisecond, 4)
	m.AddGenerated("epic", 3)

	if got := testutil.ToFloat64(m.llmRequests.WithLabelValues("generate_epics", "llama", "ok")); got != 1 {
		t.Fatalf("llm ok count: want=1 got=%v", got)
	}
	if got := testutil.ToFloat64(m.generatedArtifacts.WithLabelValues("epic")); got != 3 {
		t.Fatalf("generated: want=3 got=%v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{"productforge_llm_requests_total", "productforge_backlog_refresh_total"} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %s in exposition", want)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ObserveLLMRequest("op", "model", "ok", time.Millisecond, 1, 1)
	m.ObserveBacklogRefresh("error", time.Millisecond, 0)
	m.IncEmptyParse("epic")
}
