package health

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/atomic"
)

// HealthHandler serves the Kubernetes liveness and readiness probes.
type HealthHandler struct {
	readiness *atomic.Bool
}

// NewHealthHandler creates a HealthHandler reading the shared readiness flag
func NewHealthHandler(readiness *atomic.Bool) *HealthHandler {
	return &HealthHandler{
		readiness: readiness,
	}
}

// HandleLiveness handles GET /healthz - always 200 while the process runs
func (h *HealthHandler) HandleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "alive"})
}

// HandleReadiness handles GET /readyz - 200 when accepting traffic, 503
// during startup and the shutdown drain window
func (h *HealthHandler) HandleReadiness(c echo.Context) error {
	if h.readiness.Load() {
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	}
	return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "draining"})
}
