package platform

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/mdwiki/pkg/core"
)

// options holds the internal configuration of a workbench.
type options struct {
	client           core.SyncClient
	httpClient       *http.Client
	logger           *slog.Logger
	token            string
	userAgent        string
	timeout          time.Duration
	initialWorkspace int
}

// Option defines a functional option for configuring the client.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{}
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSyncClient injects a transport (e.g. a fake in tests).
// If provided, the HTTP adapter is skipped and HTTP options are ignored.
func WithSyncClient(c core.SyncClient) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithHTTPClient replaces the *http.Client used by the HTTP adapter.
// The default has a 30s timeout and a cookie jar for the session.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithTimeout bounds a single request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithInitialWorkspace starts navigation inside workspace id.
func WithInitialWorkspace(id int) Option {
	return func(o *options) {
		o.initialWorkspace = id
	}
}
