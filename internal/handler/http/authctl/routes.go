package authctl

import (
	"github.com/labstack/echo/v4"
)

// SetupRoutes registers the auth control routes with the Echo instance
func (h *AuthCtlHandler) SetupRoutes(e *echo.Echo) {
	e.POST("/auth/confirm", h.HandleConfirm)
	e.POST("/auth/cancel", h.HandleCancel)
	e.GET("/auth/pending", h.HandlePending)
}
