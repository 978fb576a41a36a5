package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
)

// TestMetrics_Endpoint_Returns200 verifies /metrics serves the Prometheus
// text format
func TestMetrics_Endpoint_Returns200(t *testing.T) {
	e := echo.New()
	e.GET("/metrics", echoprometheus.NewHandler())

	// Touch a collector so the namespace shows up in the scrape
	BufferDepthGauge.Set(0)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 OK, got %d", rec.Code)
	}
	contentType := rec.Header().Get("Content-Type")
	if !strings.Contains(contentType, "text/plain") {
		t.Errorf("expected Content-Type text/plain, got %q", contentType)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected metrics in response body, got empty")
	}
}

// TestMetrics_BufferDepth_Updates verifies the parked-depth gauge is
// visible and tracks its value
func TestMetrics_BufferDepth_Updates(t *testing.T) {
	BufferDepthGauge.Set(0)

	e := echo.New()
	e.GET("/metrics", echoprometheus.NewHandler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "auth_relay_buffer_depth") {
		t.Error("expected auth_relay_buffer_depth metric, not found")
	}

	BufferDepthGauge.Set(5)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "auth_relay_buffer_depth 5") {
		t.Logf("Metrics output:\n%s", rec.Body.String())
		t.Error("expected buffer depth gauge to show value 5")
	}

	BufferDepthGauge.Set(0)
}

// TestMetrics_ParkedCounter_Labels verifies the category-labeled counter
// exposes one series per auth category
func TestMetrics_ParkedCounter_Labels(t *testing.T) {
	ParkedCounter.WithLabelValues("login-required").Inc()
	ParkedCounter.WithLabelValues("missing-parameter").Inc()

	e := echo.New()
	e.GET("/metrics", echoprometheus.NewHandler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `auth_relay_parked_total{category="login-required"}`) {
		t.Error("expected login-required series, not found")
	}
	if !strings.Contains(body, `auth_relay_parked_total{category="missing-parameter"}`) {
		t.Error("expected missing-parameter series, not found")
	}
}
