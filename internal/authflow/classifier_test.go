package authflow

import (
	"context"
	"testing"
)

// TestClassifier_Defaults verifies the baseline hooks: every error in scope,
// no request preprocessed, identity preprocessing
func TestClassifier_Defaults(t *testing.T) {
	c := NewClassifier()
	errFilter, reqFilter, pre := c.hooks()

	if !errFilter(&Rejection{StatusCode: 500}) {
		t.Error("default response error filter must accept every error")
	}
	if reqFilter(&RequestConfig{URL: "http://example.com"}) {
		t.Error("default request filter must decline every request")
	}

	cfg := &RequestConfig{URL: "http://example.com"}
	out, err := pre(context.Background(), cfg)
	if err != nil {
		t.Fatalf("default preprocessor must not fail: %v", err)
	}
	if out != cfg {
		t.Error("default preprocessor must be identity")
	}
}

// TestClassifier_SwapAffectsSubsequentDecisions verifies a hook swap applies
// to every decision made after it
func TestClassifier_SwapAffectsSubsequentDecisions(t *testing.T) {
	c := NewClassifier()

	errFilter, _, _ := c.hooks()
	if !errFilter(&Rejection{StatusCode: 401}) {
		t.Fatal("expected default filter before swap")
	}

	c.SetResponseErrorFilter(func(rej *Rejection) bool {
		return rej.StatusCode == 401
	})
	errFilter, _, _ = c.hooks()
	if errFilter(&Rejection{StatusCode: 400}) {
		t.Error("swapped filter must reject 400")
	}
	if !errFilter(&Rejection{StatusCode: 401}) {
		t.Error("swapped filter must accept 401")
	}
}

// TestClassifier_NilRestoresDefault verifies installing nil hooks falls back
// to the baseline behavior
func TestClassifier_NilRestoresDefault(t *testing.T) {
	c := NewClassifier()
	c.SetResponseErrorFilter(func(*Rejection) bool { return false })
	c.SetRequestFilter(func(*RequestConfig) bool { return true })

	c.SetResponseErrorFilter(nil)
	c.SetRequestFilter(nil)
	c.SetRequestPreprocessor(nil)

	errFilter, reqFilter, pre := c.hooks()
	if !errFilter(&Rejection{StatusCode: 418}) {
		t.Error("nil must restore the accept-all error filter")
	}
	if reqFilter(&RequestConfig{}) {
		t.Error("nil must restore the decline-all request filter")
	}
	cfg := &RequestConfig{}
	if out, err := pre(context.Background(), cfg); err != nil || out != cfg {
		t.Error("nil must restore the identity preprocessor")
	}
}
