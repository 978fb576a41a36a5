package httpiface

import "github.com/labstack/echo/v4"

// HttpRouter is implemented by every HTTP handler so the app can register
// all routes uniformly during startup.
type HttpRouter interface {
	// SetupRoutes registers the handler's HTTP routes with the Echo instance
	SetupRoutes(e *echo.Echo)
}
