package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/atomic"

	"zep-authrelay/internal/authflow"
	"zep-authrelay/internal/bus"
	"zep-authrelay/internal/config"
	"zep-authrelay/internal/handler/http/authctl"
	"zep-authrelay/internal/handler/http/health"
	httpiface "zep-authrelay/internal/handler/http/interface"
	"zep-authrelay/internal/handler/http/relay"
	"zep-authrelay/internal/metrics"
	"zep-authrelay/internal/tokenstore"
	"zep-authrelay/internal/upstream"
	"zep-authrelay/pkg/logger"
)

// App owns the service lifecycle: configuration, auth interception wiring,
// HTTP surface, and graceful shutdown.
type App struct {
	config       *config.Config
	echo         *echo.Echo
	readiness    *atomic.Bool
	httpHandlers []httpiface.HttpRouter

	eventBus    *bus.Bus
	coordinator *authflow.Coordinator
	pipeline    *authflow.Pipeline
	tokens      *tokenstore.Store

	stopObserver func()
	cancel       context.CancelFunc
}

// NewApp creates a new App instance with the given configuration
func NewApp(cfg *config.Config) *App {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	return &App{
		config:    cfg,
		echo:      e,
		readiness: atomic.NewBool(false),
	}
}

// injectDependency builds the auth interception stack and the HTTP handlers.
// Dependency direction is explicit: transport into buffer and pipeline,
// classifier/buffer/bus into both pipeline and coordinator.
func (a *App) injectDependency() {
	a.eventBus = bus.New()
	a.tokens = tokenstore.New()

	transport := upstream.NewClient(time.Duration(a.config.UpstreamTimeoutSeconds) * time.Second)
	classifier := authflow.NewClassifier()
	buffer := authflow.NewBuffer(transport, a.config.ReplayConcurrency)
	a.pipeline = authflow.NewPipeline(classifier, buffer, a.eventBus, transport)
	a.coordinator = authflow.NewCoordinator(classifier, buffer, a.eventBus)

	// Inject the current credential into every forwarded request once one
	// is known, so confirmed sessions don't re-park.
	authHeader := a.config.AuthHeaderName
	a.coordinator.SetRequestFilter(newTokenFilter(a.tokens))
	a.coordinator.SetRequestPreprocessor(newTokenPreprocessor(a.tokens, authHeader))

	a.httpHandlers = []httpiface.HttpRouter{
		health.NewHealthHandler(a.readiness),
		relay.NewRelayHandler(a.config.UpstreamTargetURL, a.pipeline),
		authctl.NewAuthCtlHandler(a.coordinator, a.tokens, authHeader),
	}
}

// preProcess is called before the server starts accepting traffic
func (a *App) preProcess() {
	logger.Info("Preparing to start server...")

	// Log every auth event so operators can follow pending episodes.
	events, cancel := a.eventBus.Subscribe("", a.config.EventBufferSize)
	a.stopObserver = cancel
	go func() {
		for env := range events {
			if env.Event.Rejection != nil {
				logger.Info("auth event %s (category=%s, status=%d)", env.Topic, env.Event.Category, env.Event.Rejection.StatusCode)
			} else {
				logger.Info("auth event %s", env.Topic)
			}
		}
	}()
}

// postProcess is called after a shutdown signal is received
func (a *App) postProcess() {
	logger.Info("Shutting down gracefully...")
}

// Run starts the Echo server and handles graceful shutdown
func (a *App) Run() error {
	_, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.injectDependency()
	a.preProcess()

	go func() {
		e := a.echo
		addr := fmt.Sprintf(":%d", a.config.ServerPort)

		// CORS first so preflight is handled before anything else
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     a.config.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Content-Type", "Authorization", "Accept", "Origin", "User-Agent", "X-Requested-With", "X-Auth-Relay-Ignore"},
			AllowCredentials: true,
		}))

		// Body size limit protects against memory exhaustion
		limit := fmt.Sprintf("%dM", a.config.MaxRequestSizeMB)
		e.Use(middleware.BodyLimit(limit))

		e.Use(middleware.Logger())
		e.Use(middleware.Recover())

		// Readiness gate: reject new work during the shutdown drain window,
		// keeping probes and metrics reachable
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				if !a.readiness.Load() {
					p := c.Request().URL.Path
					if p != "/healthz" && p != "/readyz" && p != "/metrics" {
						logger.Info("readiness=false: reject new request path=%s", p)
						return c.NoContent(http.StatusServiceUnavailable)
					}
				}
				return next(c)
			}
		})

		e.Use(echoprometheus.NewMiddleware("auth_relay"))
		e.GET("/metrics", echoprometheus.NewHandler())

		// Keep the parked-depth gauge fresh even when no buffer operation runs
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				if a.coordinator != nil {
					metrics.BufferDepthGauge.Set(float64(a.coordinator.Pending()))
				}
				return next(c)
			}
		})

		for _, handler := range a.httpHandlers {
			handler.SetupRoutes(e)
		}

		logger.Info("Starting auth relay server on %s", addr)
		a.readiness.Store(true)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	logger.Info("Server ready. Waiting for interrupt signal...")
	<-quit

	a.postProcess()

	// Step 1: stop advertising readiness so load balancers drain us
	a.readiness.Store(false)
	drainDuration := time.Duration(a.config.ShutdownDrainSeconds) * time.Second
	logger.Info("readiness=false: start drain window duration=%v", drainDuration)
	time.Sleep(drainDuration)

	// Step 2: settle whatever is still parked. Leaving entries buffered
	// across shutdown would strand their callers mid-request.
	if pending := a.coordinator.Pending(); pending > 0 {
		logger.Warn("Shutdown with %d request(s) still parked: rejecting", pending)
		a.coordinator.LoginCancelled(context.Background(), nil, fmt.Errorf("server shutting down"))
	}
	if a.stopObserver != nil {
		a.stopObserver()
	}

	// Step 3: shut down the Echo server with timeout
	shutdownTimeout := time.Duration(a.config.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	logger.Info("Shutting down Echo server...")
	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error: %v", err)
		a.cancel()
		return err
	}

	a.cancel()
	logger.Info("Server stopped gracefully")
	return nil
}
