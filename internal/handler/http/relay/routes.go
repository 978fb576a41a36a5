package relay

import (
	"github.com/labstack/echo/v4"
)

// SetupRoutes registers the forwarding route with the Echo instance
func (h *RelayHandler) SetupRoutes(e *echo.Echo) {
	e.Any("/relay/*", h.HandleForward)
}
