// Package rest implements core.SyncClient over HTTP.
//
// Every component of the wiki client reaches the backend through [Client].
// It encodes JSON or multipart bodies, keeps the session cookie, attaches an
// optional bearer token and classifies the reply into the three outcome
// classes of the status-code contract:
//   - 2xx: success, the body is returned.
//   - 400 and 409: client errors, reported as *core.StatusError that
//     unwraps to core.ErrMalformed or core.ErrConflict.
//   - anything else, including transport failures: core.ErrSilentFailure.
//
// Nothing is retried.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/mdwiki/pkg/core"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent when no other agent is configured.
const DefaultUserAgent = "mdwiki"

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
	timeout    time.Duration

	mu    sync.RWMutex
	token string

	requests atomic.Uint64
	failures atomic.Uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (30s timeout, cookie jar).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every request. Zero keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithToken sets a bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the backend rooted at baseURL
// (e.g. "https://wiki.example.com/api"). A trailing slash is ignored.
func New(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		logger:    slog.Default(),
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		c.httpClient.Timeout = c.timeout
	}
	return c
}

// SetToken replaces the bearer token. An empty token disables the header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Resolve implements core.Links.
func (c *Client) Resolve(path string) string {
	return c.baseURL + path
}

// Do implements core.SyncClient.
func (c *Client) Do(ctx context.Context, r core.Request) (*core.Response, error) {
	c.requests.Add(1)

	req, err := c.newRequest(ctx, r)
	if err != nil {
		c.failures.Add(1)
		c.logger.Warn("request not sent", "method", r.Method, "path", r.Path, "error", err)
		return nil, fmt.Errorf("%s %s: %w: %w", r.Method, r.Path, core.ErrSilentFailure, err)
	}

	c.logger.Debug("request", "method", r.Method, "path", r.Path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.failures.Add(1)
		c.logger.Warn("request failed", "method", r.Method, "path", r.Path, "error", err)
		return nil, fmt.Errorf("%s %s: %w: %w", r.Method, r.Path, core.ErrSilentFailure, err)
	}
	defer resp.Body.Close()

	if core.Classify(resp.StatusCode) != nil {
		c.failures.Add(1)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		serr := &core.StatusError{Method: r.Method, Path: r.Path, Status: resp.StatusCode, Body: string(body)}
		if errors.Is(serr, core.ErrSilentFailure) {
			c.logger.Warn("request rejected", "method", r.Method, "path", r.Path, "status", resp.StatusCode)
		} else {
			c.logger.Debug("request rejected", "method", r.Method, "path", r.Path, "status", resp.StatusCode)
		}
		return nil, serr
	}

	out := &core.Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		URL:    resp.Request.URL.String(),
	}
	if r.Discard {
		_, _ = io.Copy(io.Discard, resp.Body)
		return out, nil
	}
	out.Body, err = io.ReadAll(resp.Body)
	if err != nil {
		c.failures.Add(1)
		return nil, fmt.Errorf("%s %s: read body: %w: %w", r.Method, r.Path, core.ErrSilentFailure, err)
	}
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, r core.Request) (*http.Request, error) {
	var (
		body        io.Reader
		contentType string
	)
	switch {
	case r.Multipart != nil:
		buf, ct, err := encodeMultipart(r.Multipart)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case r.JSON != nil:
		b, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body, contentType = bytes.NewReader(b), "application/json"
	}

	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func encodeMultipart(m *core.Multipart) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	field := m.FileField
	if field == "" {
		field = "file"
	}
	part, err := w.CreateFormFile(field, m.FileName)
	if err != nil {
		return nil, "", fmt.Errorf("multipart: %w", err)
	}
	if _, err := io.Copy(part, m.Content); err != nil {
		return nil, "", fmt.Errorf("multipart: read %s: %w", m.FileName, err)
	}
	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("multipart: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// ClientState is the introspection snapshot of a Client.
type ClientState struct {
	BaseURL  string `json:"base_url"`
	Token    bool   `json:"token"`
	Requests uint64 `json:"requests"`
	Failures uint64 `json:"failures"`
}

// State implements introspection.Introspectable.
func (c *Client) State() any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ClientState{
		BaseURL:  c.baseURL,
		Token:    c.token != "",
		Requests: c.requests.Load(),
		Failures: c.failures.Load(),
	}
}

// ComponentType implements introspection.Component.
func (c *Client) ComponentType() string {
	return "sync-client"
}

var (
	_ core.SyncClient              = (*Client)(nil)
	_ core.Links                   = (*Client)(nil)
	_ introspection.Introspectable = (*Client)(nil)
)
