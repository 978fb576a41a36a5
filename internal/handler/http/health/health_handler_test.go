package health

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/atomic"
)

// TestHealthz_Returns200 verifies the liveness probe always answers 200
func TestHealthz_Returns200(t *testing.T) {
	e := echo.New()
	readiness := atomic.NewBool(false)
	handler := NewHealthHandler(readiness)
	handler.SetupRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "alive") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

// TestReadyz_TracksReadinessFlag verifies the readiness probe follows the
// shared flag through startup and drain
func TestReadyz_TracksReadinessFlag(t *testing.T) {
	e := echo.New()
	readiness := atomic.NewBool(false)
	handler := NewHealthHandler(readiness)
	handler.SetupRoutes(e)

	// Not ready during startup
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before startup completes, got %d", rec.Code)
	}

	// Ready once the server starts accepting traffic
	readiness.Store(true)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 when ready, got %d", rec.Code)
	}

	// Draining again during shutdown
	readiness.Store(false)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 while draining, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "draining") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}
