package wiki_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/aretw0/mdwiki/pkg/adapters/rest"
	"github.com/aretw0/mdwiki/pkg/core"
	"github.com/aretw0/mdwiki/pkg/wiki"
	"github.com/aretw0/mdwiki/pkg/wikitest"
)

var quiet = wiki.WithLogger(slog.New(slog.DiscardHandler))

func setup(t *testing.T, opts ...wikitest.Option) (*wikitest.Server, *wiki.Workbench) {
	t.Helper()
	srv := wikitest.NewServer(opts...)
	t.Cleanup(srv.Close)
	c := rest.New(srv.URL, rest.WithLogger(slog.New(slog.DiscardHandler)))
	return srv, wiki.NewWorkbench(c, c, quiet)
}

// scripted is one canned reply. If release is set the call blocks until it
// is closed; started is closed as soon as the call begins.
type scripted struct {
	res     *core.Response
	err     error
	started chan struct{}
	release chan struct{}
}

func reply(body string) *scripted {
	return &scripted{res: &core.Response{Status: 200, Body: []byte(body)}}
}

func (s *scripted) held() *scripted {
	s.started = make(chan struct{})
	s.release = make(chan struct{})
	return s
}

// scriptedClient answers calls in order from a fixed script.
type scriptedClient struct {
	mu     sync.Mutex
	script []*scripted
	calls  []core.Request
}

func (c *scriptedClient) Do(_ context.Context, req core.Request) (*core.Response, error) {
	c.mu.Lock()
	c.calls = append(c.calls, req)
	r := c.script[0]
	c.script = c.script[1:]
	c.mu.Unlock()

	if r.started != nil {
		close(r.started)
	}
	if r.release != nil {
		<-r.release
	}
	return r.res, r.err
}

type staticLinks string

func (l staticLinks) Resolve(path string) string { return string(l) + path }
