package platform

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mdwiki/pkg/core"
	"github.com/aretw0/mdwiki/pkg/wikitest"
)

func TestNew(t *testing.T) {
	srv := wikitest.NewServer(wikitest.WithLoginRequired(), wikitest.WithToken("tok"))
	defer srv.Close()
	ws := srv.SeedWorkspace("Eng", core.VisibilityPrivate)

	wb, err := New(srv.URL,
		WithToken("tok"),
		WithInitialWorkspace(ws),
		WithLogger(slog.New(slog.DiscardHandler)),
	)
	require.NoError(t, err)
	assert.Equal(t, core.Inside(ws), wb.Tree.Navigation())

	list, err := wb.Tree.ListWorkspaces(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, srv.URL+"/download/image/g", wb.Links.Resolve(core.DownloadPath("g")))
}

func TestNew_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "ftp://wiki.example.com", "http://"} {
		_, err := New(raw)
		assert.Error(t, err, raw)
	}
}

type nopClient struct{}

func (nopClient) Do(context.Context, core.Request) (*core.Response, error) {
	return &core.Response{Status: 200, Body: []byte("[]")}, nil
}

func TestNew_InjectedClient(t *testing.T) {
	wb, err := New("https://wiki.example.com/api/", WithSyncClient(nopClient{}))
	require.NoError(t, err)
	assert.Equal(t, "https://wiki.example.com/api/download/image/g", wb.Links.Resolve(core.DownloadPath("g")))
	assert.IsType(t, nopClient{}, wb.Client)
}
