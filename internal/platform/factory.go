package platform

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aretw0/mdwiki/pkg/adapters/rest"
	"github.com/aretw0/mdwiki/pkg/core"
	"github.com/aretw0/mdwiki/pkg/wiki"
)

// New wires a workbench against the backend rooted at baseURL.
//
//	wb, err := mdwiki.New("https://wiki.example.com/api", mdwiki.WithToken(tok))
func New(baseURL string, opts ...Option) (*wiki.Workbench, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := validateBaseURL(baseURL); err != nil {
		return nil, err
	}

	var (
		client core.SyncClient
		links  core.Links
	)
	if o.client != nil {
		client = o.client
		if l, ok := o.client.(core.Links); ok {
			links = l
		} else {
			links = baseLinks(strings.TrimRight(baseURL, "/"))
		}
	} else {
		restOpts := []rest.Option{rest.WithLogger(logger)}
		if o.httpClient != nil {
			restOpts = append(restOpts, rest.WithHTTPClient(o.httpClient))
		}
		if o.token != "" {
			restOpts = append(restOpts, rest.WithToken(o.token))
		}
		if o.userAgent != "" {
			restOpts = append(restOpts, rest.WithUserAgent(o.userAgent))
		}
		if o.timeout > 0 {
			restOpts = append(restOpts, rest.WithTimeout(o.timeout))
		}
		rc := rest.New(baseURL, restOpts...)
		client, links = rc, rc
	}

	logger.Debug("workbench ready", "url", baseURL, "initial_workspace", o.initialWorkspace)
	return wiki.NewWorkbench(client, links,
		wiki.WithLogger(logger),
		wiki.WithInitialWorkspace(o.initialWorkspace),
	), nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid backend url %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend url %q: %w", raw, core.Invalid("url", "must be an absolute http(s) URL"))
	}
	return nil
}

type baseLinks string

func (b baseLinks) Resolve(path string) string { return string(b) + path }
