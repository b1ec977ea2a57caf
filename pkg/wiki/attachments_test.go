package wiki_test

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mdwiki/pkg/core"
	"github.com/aretw0/mdwiki/pkg/wiki"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 24)...)

func TestAttachments_UploadAppendsResolvedReference(t *testing.T) {
	srv, wb := setup(t)
	ctx := context.Background()
	ed, ws, _ := openPage(t, srv, wb)
	ed.SetDraft("Intro")

	att := ed.Attachments()
	att.Open(wiki.ModeUpload)
	require.NoError(t, ed.UploadImage(ctx, "logo.png", bytes.NewReader(pngBytes)))
	assert.False(t, att.IsOpen())

	list, err := att.Browse(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	g1 := list[0].GUID
	assert.Equal(t, "logo.png", list[0].FileName)
	assert.Equal(t, "image/png", list[0].FileType)

	assert.Equal(t, "Intro"+"\n![]("+srv.FileURL(g1)+")", ed.Draft())
	assert.Contains(t, srv.Calls(), "GET "+core.DownloadPath(g1))
	assert.Contains(t, srv.Calls(), "POST "+core.UploadPath(ws))
}

func TestAttachments_UploadFailureIsSilentForTheForm(t *testing.T) {
	srv, wb := setup(t)
	ed, ws, _ := openPage(t, srv, wb)
	ed.SetDraft("Intro")

	att := ed.Attachments()
	att.Open(wiki.ModeUpload)
	srv.FailNext(http.MethodPost, core.UploadPath(ws), http.StatusInternalServerError)

	err := ed.UploadImage(context.Background(), "logo.png", bytes.NewReader(pngBytes))
	assert.ErrorIs(t, err, core.ErrSilentFailure)
	assert.Nil(t, att.FieldError())
	assert.True(t, att.IsOpen())
	assert.Equal(t, "Intro", ed.Draft())
}

func TestAttachments_LinkByURL(t *testing.T) {
	srv, wb := setup(t)
	ed, _, _ := openPage(t, srv, wb)
	att := ed.Attachments()
	srv.ResetCalls()

	for _, bad := range []string{"ftp://10.0.0.1/x.png", "not a url"} {
		att.Open(wiki.ModeLinkByURL)
		_, err := att.LinkByURL(bad)
		assert.ErrorIs(t, err, core.ErrValidation, bad)
		require.NotNil(t, att.FieldError(), bad)
		assert.Equal(t, "path", att.FieldError().Field)
		assert.True(t, att.IsOpen())
	}

	ed.SetDraft("Intro")
	require.NoError(t, ed.LinkImage("https://example.com/a.png"))
	assert.Nil(t, att.FieldError())
	assert.False(t, att.IsOpen())
	assert.Equal(t, "Intro\n![](https://example.com/a.png)", ed.Draft())
	assert.Empty(t, srv.Calls(), "linking never reaches the network")
}

func TestAttachments_SwitchModeClearsError(t *testing.T) {
	srv, wb := setup(t)
	ctx := context.Background()
	ed, ws, _ := openPage(t, srv, wb)
	srv.SeedUpload(ws, "a.png", pngBytes)
	att := ed.Attachments()

	att.Open(wiki.ModeLinkByURL)
	_, _ = att.LinkByURL("nope")
	require.NotNil(t, att.FieldError())

	require.NoError(t, att.SwitchMode(ctx, wiki.ModeBrowse))
	assert.Nil(t, att.FieldError())
	assert.Equal(t, wiki.ModeBrowse, att.Mode())
	assert.Len(t, att.List(), 1)
}

func TestAttachments_InsertAndDelete(t *testing.T) {
	srv, wb := setup(t)
	ctx := context.Background()
	ed, ws, pg := openPage(t, srv, wb)
	guid := srv.SeedUpload(ws, "a.png", pngBytes)
	att := ed.Attachments()

	ed.SetDraft("Intro")
	ed.InsertAttachment(guid)
	want := "Intro\n![](" + srv.URL + "/download/image/" + guid + ")"
	assert.Equal(t, want, ed.Draft())
	require.NoError(t, ed.Save(ctx))

	require.NoError(t, att.Delete(ctx, guid))
	assert.False(t, srv.HasUpload(guid))
	assert.Empty(t, att.List())

	text, ok := srv.Document(pg)
	require.True(t, ok)
	assert.Equal(t, want, text, "existing references are left untouched")
	assert.Equal(t, srv.URL+"/download/thumbnail/"+guid, att.ThumbnailURL(guid))
}

func TestAttachments_UploadGlob(t *testing.T) {
	srv, wb := setup(t)
	ctx := context.Background()
	ed, _, _ := openPage(t, srv, wb)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "shots", "nested"), 0o755))
	for _, name := range []string{"shots/b.png", "shots/nested/a.png", "shots/notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), pngBytes, 0o644))
	}

	frags, err := ed.Attachments().UploadGlob(ctx, filepath.Join(dir, "shots", "**", "*.png"))
	require.NoError(t, err)
	assert.Len(t, frags, 2)

	list, err := ed.Attachments().Browse(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b.png", "a.png"}, []string{list[0].FileName, list[1].FileName})

	_, err = ed.Attachments().UploadGlob(ctx, filepath.Join(dir, "*.gif"))
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestAttachments_InsertUsesLinks(t *testing.T) {
	att := wiki.NewAttachments(nil, staticLinks("https://wiki.example.com/api"), 1, quiet)
	assert.Equal(t, "\n![](https://wiki.example.com/api/download/image/g1)", att.Insert("g1"))
}
