package authctl

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"zep-authrelay/internal/authflow"
	"zep-authrelay/internal/tokenstore"
	"zep-authrelay/pkg/logger"
)

// AuthCtlHandler is the operator-facing surface for resolving a pending
// authentication episode: confirm with a fresh credential (replays parked
// requests with the credential injected) or cancel (rejects or abandons
// them).
type AuthCtlHandler struct {
	coordinator *authflow.Coordinator
	tokens      *tokenstore.Store
	authHeader  string
}

// NewAuthCtlHandler creates an AuthCtlHandler
// authHeader: name of the header the credential is injected into on replay
func NewAuthCtlHandler(coordinator *authflow.Coordinator, tokens *tokenstore.Store, authHeader string) *AuthCtlHandler {
	return &AuthCtlHandler{
		coordinator: coordinator,
		tokens:      tokens,
		authHeader:  authHeader,
	}
}

type confirmRequest struct {
	Token string `json:"token"`
	Data  any    `json:"data"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
	Data   any    `json:"data"`
}

// HandleConfirm handles POST /auth/confirm. It stores the supplied token and
// replays every parked request with the token injected into the configured
// auth header.
func (h *AuthCtlHandler) HandleConfirm(c echo.Context) error {
	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "token is required"})
	}

	h.tokens.Set(req.Token)
	pending := h.coordinator.Pending()

	header := h.authHeader
	token := req.Token
	h.coordinator.LoginConfirmed(c.Request().Context(), req.Data, func(cfg *authflow.RequestConfig) *authflow.RequestConfig {
		if cfg.Header == nil {
			cfg.Header = make(http.Header, 1)
		}
		cfg.Header.Set(header, token)
		return cfg
	})

	logger.Info("authctl: login confirmed, %d request(s) replayed", pending)
	return c.JSON(http.StatusOK, map[string]any{"replayed": pending})
}

// HandleCancel handles POST /auth/cancel. With a reason, every parked
// request is rejected with it; without one, parked callers are abandoned
// (their requests are forgotten without an answer).
func (h *AuthCtlHandler) HandleCancel(c echo.Context) error {
	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	h.tokens.Clear()
	pending := h.coordinator.Pending()

	var reason error
	if req.Reason != "" {
		reason = errors.New(req.Reason)
	}
	h.coordinator.LoginCancelled(c.Request().Context(), req.Data, reason)

	logger.Info("authctl: login cancelled, %d request(s) drained (reason=%q)", pending, req.Reason)
	return c.JSON(http.StatusOK, map[string]any{"drained": pending})
}

// HandlePending handles GET /auth/pending - current parked request count
func (h *AuthCtlHandler) HandlePending(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{"pending": h.coordinator.Pending()})
}
