package rest_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mdwiki/pkg/adapters/rest"
	"github.com/aretw0/mdwiki/pkg/core"
	"github.com/aretw0/mdwiki/pkg/wikitest"
)

func TestClient_StatusClasses(t *testing.T) {
	srv := wikitest.NewServer()
	defer srv.Close()
	c := rest.New(srv.URL + "/")
	ctx := context.Background()

	res, err := c.Do(ctx, core.Request{Method: http.MethodPost, Path: "/spaces", JSON: core.WorkspaceRequest{Name: "Eng"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.Status)

	_, err = c.Do(ctx, core.Request{Method: http.MethodPost, Path: "/spaces", JSON: core.WorkspaceRequest{Name: "Eng"}})
	assert.ErrorIs(t, err, core.ErrConflict)

	_, err = c.Do(ctx, core.Request{Method: http.MethodPost, Path: "/spaces", JSON: core.WorkspaceRequest{}})
	assert.ErrorIs(t, err, core.ErrMalformed)

	_, err = c.Do(ctx, core.Request{Method: http.MethodGet, Path: "/spaces/999"})
	assert.ErrorIs(t, err, core.ErrSilentFailure)
	assert.True(t, core.IsNotFound(err))

	srv.FailNext(http.MethodGet, "/spaces", http.StatusInternalServerError)
	_, err = c.Do(ctx, core.Request{Method: http.MethodGet, Path: "/spaces"})
	assert.ErrorIs(t, err, core.ErrSilentFailure)
	assert.Equal(t, http.StatusInternalServerError, core.StatusOf(err))
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := rest.New(url).Do(context.Background(), core.Request{Method: http.MethodGet, Path: "/spaces"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSilentFailure)
	assert.Zero(t, core.StatusOf(err))
}

func TestClient_UnencodableBody(t *testing.T) {
	srv := wikitest.NewServer()
	defer srv.Close()
	c := rest.New(srv.URL)

	_, err := c.Do(context.Background(), core.Request{Method: http.MethodPost, Path: "/spaces", JSON: make(chan int)})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSilentFailure)
	assert.Empty(t, srv.Calls())
	assert.Equal(t, uint64(1), c.State().(rest.ClientState).Failures)
}

func TestClient_SessionCookie(t *testing.T) {
	srv := wikitest.NewServer(wikitest.WithLoginRequired())
	defer srv.Close()
	c := rest.New(srv.URL)
	ctx := context.Background()

	_, err := c.Do(ctx, core.Request{Method: http.MethodGet, Path: "/spaces"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, core.StatusOf(err))

	_, err = c.Do(ctx, core.Request{Method: http.MethodPost, Path: core.LoginPath, JSON: core.Credentials{
		UsernameOrEmail: "ada",
		Password:        wikitest.DefaultPassword,
	}})
	require.NoError(t, err)

	_, err = c.Do(ctx, core.Request{Method: http.MethodGet, Path: "/spaces"})
	assert.NoError(t, err)
}

func TestClient_BearerToken(t *testing.T) {
	srv := wikitest.NewServer(wikitest.WithLoginRequired(), wikitest.WithToken("t0k"))
	defer srv.Close()
	ctx := context.Background()

	c := rest.New(srv.URL, rest.WithToken("t0k"))
	_, err := c.Do(ctx, core.Request{Method: http.MethodGet, Path: "/spaces"})
	require.NoError(t, err)

	c.SetToken("")
	_, err = c.Do(ctx, core.Request{Method: http.MethodGet, Path: "/spaces"})
	assert.Error(t, err)
}

func TestClient_MultipartAndRedirect(t *testing.T) {
	srv := wikitest.NewServer()
	defer srv.Close()
	ws := srv.SeedWorkspace("Eng", core.VisibilityPrivate)
	c := rest.New(srv.URL)
	ctx := context.Background()

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)
	res, err := c.Do(ctx, core.Request{
		Method: http.MethodPost,
		Path:   core.UploadPath(ws),
		Multipart: &core.Multipart{
			FileField: "file",
			FileName:  "logo.png",
			Content:   bytes.NewReader(png),
			Fields:    map[string]string{"thumbnailHeight": "10", "thumbnailWidth": "10"},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, string(res.Body), `"fileGUID"`)

	guid := srv.SeedUpload(ws, "other.png", png)
	res, err = c.Do(ctx, core.Request{Method: http.MethodGet, Path: core.DownloadPath(guid), Discard: true})
	require.NoError(t, err)
	assert.Equal(t, srv.FileURL(guid), res.URL)
	assert.Empty(t, res.Body)
}

func TestClient_LinksAndState(t *testing.T) {
	c := rest.New("https://wiki.example.com/api/")
	assert.Equal(t, "https://wiki.example.com/api/download/image/g1", c.Resolve(core.DownloadPath("g1")))

	st, ok := c.State().(rest.ClientState)
	require.True(t, ok)
	assert.Equal(t, "https://wiki.example.com/api", st.BaseURL)
	assert.False(t, st.Token)
	assert.Equal(t, "sync-client", c.ComponentType())
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := wikitest.NewServer()
	defer srv.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rest.New(srv.URL).Do(ctx, core.Request{Method: http.MethodGet, Path: "/spaces"})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.ErrorIs(t, err, core.ErrSilentFailure)
}
