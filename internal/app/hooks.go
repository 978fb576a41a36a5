package app

import (
	"context"
	"net/http"

	"zep-authrelay/internal/authflow"
	"zep-authrelay/internal/tokenstore"
)

// newTokenFilter opts a request into preprocessing only while a credential
// is known; with no token there is nothing useful to inject.
func newTokenFilter(tokens *tokenstore.Store) authflow.RequestFilter {
	return func(*authflow.RequestConfig) bool {
		return tokens.Get() != ""
	}
}

// newTokenPreprocessor injects the stored credential into header, leaving
// requests that already carry one alone.
func newTokenPreprocessor(tokens *tokenstore.Store, header string) authflow.RequestPreprocessor {
	return func(_ context.Context, cfg *authflow.RequestConfig) (*authflow.RequestConfig, error) {
		if cfg.Header == nil {
			cfg.Header = make(http.Header, 1)
		}
		if cfg.Header.Get(header) == "" {
			cfg.Header.Set(header, tokens.Get())
		}
		return cfg, nil
	}
}
