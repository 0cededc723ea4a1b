package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHelpers(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordTurn("ok", 2)
	m.RecordToolCall("get_weather", "success", 20*time.Millisecond)
	m.RecordToolCall("get_weather", "error", time.Millisecond)
	m.RecordGeocode("unresolved")

	if got := testutil.ToFloat64(m.TurnsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("turns ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("get_weather", "error")); got != 1 {
		t.Errorf("tool errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.GeocodeTotal.WithLabelValues("unresolved")); got != 1 {
		t.Errorf("geocode unresolved = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordTurn("ok", 1)
	m.RecordToolCall("x", "success", time.Second)
	m.RecordGeocode("resolved")
	m.RecordHTTPRequest("/health", "200", time.Millisecond)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RecordTurn("error", 1)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "tripmate_turns_total") {
		t.Fatalf("metrics output missing turns counter:\n%s", body)
	}
}
