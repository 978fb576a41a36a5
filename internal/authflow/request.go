package authflow

import (
	"context"
	"fmt"
	"net/http"
)

// RequestConfig describes one outbound request: method, URL, headers, body,
// and arbitrary metadata. The interception layer treats it as opaque except
// for IgnoreAuthModule, which opts the request out of all auth handling.
type RequestConfig struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
	Meta   map[string]any

	// IgnoreAuthModule suppresses parking and notifications for this
	// request's failures, regardless of classifier output.
	IgnoreAuthModule bool
}

// Clone returns a deep copy of the config. Replays mutate clones so the
// original config held by a parked entry stays intact.
func (c *RequestConfig) Clone() *RequestConfig {
	if c == nil {
		return nil
	}
	out := &RequestConfig{
		Method:           c.Method,
		URL:              c.URL,
		IgnoreAuthModule: c.IgnoreAuthModule,
	}
	if c.Header != nil {
		out.Header = c.Header.Clone()
	}
	if c.Body != nil {
		out.Body = append([]byte(nil), c.Body...)
	}
	if c.Meta != nil {
		out.Meta = make(map[string]any, len(c.Meta))
		for k, v := range c.Meta {
			out.Meta[k] = v
		}
	}
	return out
}

// Response is a successful upstream result.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Rejection is a failed upstream result. StatusCode is 0 when the failure
// happened below HTTP (connection refused, timeout), in which case Err holds
// the transport error.
type Rejection struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	Err        error
}

func (r *Rejection) Error() string {
	if r.StatusCode == 0 && r.Err != nil {
		return fmt.Sprintf("upstream request failed: %v", r.Err)
	}
	return fmt.Sprintf("upstream returned %s", r.Status)
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// Category is the auth-handling classification of a failed response.
type Category string

const (
	CategoryMissingParameter Category = "missing-parameter"
	CategoryLoginRequired    Category = "login-required"
	CategoryForbidden        Category = "forbidden"
	CategoryUnclassified     Category = "unclassified"
)

// Categorize maps a rejection's status code to its auth category. Transport
// level failures (no status) are never auth-related.
func Categorize(rej *Rejection) Category {
	switch rej.StatusCode {
	case http.StatusBadRequest:
		return CategoryMissingParameter
	case http.StatusUnauthorized:
		return CategoryLoginRequired
	case http.StatusForbidden:
		return CategoryForbidden
	default:
		return CategoryUnclassified
	}
}

// Transport issues a request against the upstream. Implementations return a
// *Rejection error for HTTP-level failures so the pipeline can classify them,
// and any other error for failures below HTTP.
type Transport interface {
	Issue(ctx context.Context, cfg *RequestConfig) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, cfg *RequestConfig) (*Response, error)

func (f TransportFunc) Issue(ctx context.Context, cfg *RequestConfig) (*Response, error) {
	return f(ctx, cfg)
}
