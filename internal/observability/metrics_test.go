package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RecordsObservations(t *testing.T) {
	m := NewMetrics()

	m.ObserveHTTPRequest(http.MethodGet, "GET /matches/{$}", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "GET /matches/{$}", http.StatusOK, 10*time.Millisecond)
	m.ObserveProviderRequest("fixtures", "success", 300*time.Millisecond)
	m.CoinsCredited("login", 100)
	m.CoinsCredited("login", 100)
	m.MirrorAttempt("failure")
	m.ObserveCircuitState("api-football", "open")

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodGet, "GET /matches/{$}", "200")); got != 2 {
		t.Fatalf("expected 2 http requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.providerCalls.WithLabelValues("fixtures", "success")); got != 1 {
		t.Fatalf("expected 1 provider call, got %v", got)
	}
	if got := testutil.ToFloat64(m.coinsAmount.WithLabelValues("login")); got != 200 {
		t.Fatalf("expected 200 credited coins, got %v", got)
	}
	if got := testutil.ToFloat64(m.mirrorAttempts.WithLabelValues("failure")); got != 1 {
		t.Fatalf("expected 1 mirror failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.circuitState.WithLabelValues("api-football")); got != 2 {
		t.Fatalf("expected open circuit gauge, got %v", got)
	}

	m.ObserveCircuitState("api-football", "closed")
	if got := testutil.ToFloat64(m.circuitState.WithLabelValues("api-football")); got != 0 {
		t.Fatalf("expected closed circuit gauge, got %v", got)
	}
}

func TestMetrics_HandlerExposesRegistry(t *testing.T) {
	m := NewMetrics()
	m.CoinsCredited("admin", 10)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `quiniela_coins_credited_total{source="admin"} 10`) {
		t.Fatalf("expected coin counter in exposition, got:\n%s", body)
	}
}
