package upstream

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"zep-authrelay/internal/authflow"
	"zep-authrelay/pkg/logger"
)

// Client issues requests against the upstream over net/http. It implements
// authflow.Transport: any non-2xx response comes back as an
// *authflow.Rejection so the pipeline can classify it, while failures below
// HTTP (dial, TLS, timeout) come back as plain errors.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client with connection pooling tuned for a steady
// stream of small forwarded requests.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          200,
		MaxIdleConnsPerHost:   100,
		MaxConnsPerHost:       200,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Client{
		httpClient: &http.Client{Transport: transport, Timeout: timeout},
	}
}

// isHopByHop reports whether a header must not be forwarded between hops.
func isHopByHop(name string) bool {
	switch strings.ToLower(name) {
	case "connection", "keep-alive", "proxy-authenticate", "proxy-authorization",
		"te", "trailer", "transfer-encoding", "upgrade", "proxy-connection":
		return true
	default:
		return false
	}
}

// Issue sends cfg and buffers the full response.
func (c *Client) Issue(ctx context.Context, cfg *authflow.RequestConfig) (*authflow.Response, error) {
	var body io.Reader
	if len(cfg.Body) > 0 {
		body = bytes.NewReader(cfg.Body)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.Method, cfg.URL, body)
	if err != nil {
		return nil, err
	}
	for key, values := range cfg.Header {
		if isHopByHop(key) {
			continue
		}
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("upstream: %s %s failed: %v", cfg.Method, cfg.URL, err)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Debug("upstream: %s %s returned %s", cfg.Method, cfg.URL, resp.Status)
		return nil, &authflow.Rejection{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Header:     resp.Header.Clone(),
			Body:       respBody,
		}
	}

	return &authflow.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       respBody,
	}, nil
}
