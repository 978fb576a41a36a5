package authflow

import (
	"context"
	"sync"
)

// ResponseErrorFilter decides whether a failed response is subject to auth
// handling at all.
type ResponseErrorFilter func(rej *Rejection) bool

// RequestFilter decides whether an outgoing request should be preprocessed.
type RequestFilter func(cfg *RequestConfig) bool

// RequestPreprocessor enriches an outgoing request before it is sent. It may
// block (e.g. on a credential lookup); returning an error aborts the send.
type RequestPreprocessor func(ctx context.Context, cfg *RequestConfig) (*RequestConfig, error)

// Classifier holds the three pluggable hooks driving scope decisions. Each
// hook can be swapped at any time; a swap affects every decision made after
// it, never one already in flight.
//
// Defaults are deliberately conservative: every error is in scope, but no
// request is preprocessed until the host opts in.
type Classifier struct {
	mu        sync.RWMutex
	errFilter ResponseErrorFilter
	reqFilter RequestFilter
	pre       RequestPreprocessor
}

// NewClassifier returns a classifier with the baseline hooks installed.
func NewClassifier() *Classifier {
	return &Classifier{
		errFilter: func(*Rejection) bool { return true },
		reqFilter: func(*RequestConfig) bool { return false },
		pre: func(_ context.Context, cfg *RequestConfig) (*RequestConfig, error) {
			return cfg, nil
		},
	}
}

// SetResponseErrorFilter installs fn for all subsequent error decisions.
// A nil fn restores the default (every error in scope).
func (c *Classifier) SetResponseErrorFilter(fn ResponseErrorFilter) {
	if fn == nil {
		fn = func(*Rejection) bool { return true }
	}
	c.mu.Lock()
	c.errFilter = fn
	c.mu.Unlock()
}

// SetRequestFilter installs fn for all subsequent request decisions.
// A nil fn restores the default (no request preprocessed).
func (c *Classifier) SetRequestFilter(fn RequestFilter) {
	if fn == nil {
		fn = func(*RequestConfig) bool { return false }
	}
	c.mu.Lock()
	c.reqFilter = fn
	c.mu.Unlock()
}

// SetRequestPreprocessor installs fn for all subsequent preprocessing.
// A nil fn restores the identity preprocessor.
func (c *Classifier) SetRequestPreprocessor(fn RequestPreprocessor) {
	if fn == nil {
		fn = func(_ context.Context, cfg *RequestConfig) (*RequestConfig, error) {
			return cfg, nil
		}
	}
	c.mu.Lock()
	c.pre = fn
	c.mu.Unlock()
}

// hooks snapshots all three hooks so one request is handled by a consistent
// set even if the host swaps hooks mid-flight.
func (c *Classifier) hooks() (ResponseErrorFilter, RequestFilter, RequestPreprocessor) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errFilter, c.reqFilter, c.pre
}
