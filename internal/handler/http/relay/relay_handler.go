package relay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"zep-authrelay/internal/authflow"
	"zep-authrelay/pkg/logger"
)

// ignoreHeader lets a caller opt one request out of auth handling. It is
// consumed here and never forwarded upstream.
const ignoreHeader = "X-Auth-Relay-Ignore"

// RelayHandler forwards incoming requests to the upstream through the auth
// interception pipeline. A request that fails with 400/401 upstream blocks
// here until an operator confirms or cancels the login episode.
type RelayHandler struct {
	targetURL string
	pipeline  *authflow.Pipeline
}

// NewRelayHandler creates a RelayHandler forwarding to targetURL
// targetURL: Upstream base URL the incoming path and query are appended to
func NewRelayHandler(targetURL string, pipeline *authflow.Pipeline) *RelayHandler {
	return &RelayHandler{
		targetURL: strings.TrimRight(targetURL, "/"),
		pipeline:  pipeline,
	}
}

// HandleForward handles any method on /relay/* by replaying the request
// against the upstream via the interception pipeline.
func (h *RelayHandler) HandleForward(c echo.Context) error {
	req := c.Request()

	body, err := io.ReadAll(req.Body)
	if err != nil {
		logger.Error("relay: failed to read request body: %v", err)
		return c.NoContent(http.StatusBadRequest)
	}

	target := h.targetURL + "/" + c.Param("*")
	if req.URL.RawQuery != "" {
		target += "?" + req.URL.RawQuery
	}

	cfg := &authflow.RequestConfig{
		Method: req.Method,
		URL:    target,
		Header: make(http.Header, len(req.Header)),
		Body:   body,
	}
	for key, values := range req.Header {
		if key == ignoreHeader {
			continue
		}
		for _, v := range values {
			cfg.Header.Add(key, v)
		}
	}
	if v := req.Header.Get(ignoreHeader); v == "true" || v == "1" {
		cfg.IgnoreAuthModule = true
	}

	resp, err := h.pipeline.Do(req.Context(), cfg)
	if err != nil {
		var rej *authflow.Rejection
		if errors.As(err, &rej) {
			// Surface the upstream failure as-is.
			return h.write(c, rej.StatusCode, rej.Header, rej.Body)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Caller went away while parked; nothing left to answer.
			return nil
		}
		logger.Error("relay: forwarding %s %s failed: %v", cfg.Method, cfg.URL, err)
		return c.NoContent(http.StatusBadGateway)
	}

	return h.write(c, resp.StatusCode, resp.Header, resp.Body)
}

func (h *RelayHandler) write(c echo.Context, status int, header http.Header, body []byte) error {
	out := c.Response().Header()
	for key, values := range header {
		for _, v := range values {
			out.Add(key, v)
		}
	}
	return c.Blob(status, header.Get("Content-Type"), body)
}
