package mdwiki

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/mdwiki/internal/platform"
	"github.com/aretw0/mdwiki/pkg/core"
	"github.com/aretw0/mdwiki/pkg/wiki"
)

// --- Types ---

// Workbench is the set of wiki components sharing one store.
type Workbench = wiki.Workbench

// Config is the on-disk client configuration.
type Config = platform.Config

// --- Configuration ---

// Option defines a functional option for configuring the client.
type Option = platform.Option

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithSyncClient injects a custom transport in place of the HTTP client.
func WithSyncClient(c core.SyncClient) Option {
	return platform.WithSyncClient(c)
}

// WithHTTPClient sets the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return platform.WithHTTPClient(hc)
}

// WithToken authenticates every request with a bearer token.
func WithToken(token string) Option {
	return platform.WithToken(token)
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return platform.WithUserAgent(ua)
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return platform.WithTimeout(d)
}

// WithInitialWorkspace opens a workspace on the first list.
func WithInitialWorkspace(id int) Option {
	return platform.WithInitialWorkspace(id)
}

// --- Factory ---

// New creates a workbench against the backend at baseURL.
func New(baseURL string, opts ...Option) (*Workbench, error) {
	return platform.New(baseURL, opts...)
}

// LoadConfig reads a configuration file, applying environment overrides.
func LoadConfig(path string) (Config, error) {
	return platform.LoadConfig(path)
}

// FindConfig walks up from dir looking for the configuration file.
func FindConfig(dir string) (string, error) {
	return platform.FindConfig(dir)
}
