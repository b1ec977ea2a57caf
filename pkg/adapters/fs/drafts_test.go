package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mdwiki/pkg/core"
)

func TestDrafts(t *testing.T) {
	root := t.TempDir()
	d := NewDrafts(Config{Path: root})

	t.Run("missing draft", func(t *testing.T) {
		_, ok, err := d.Read(1, 2)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, d.Remove(1, 2))
	})

	t.Run("write then read", func(t *testing.T) {
		path, err := d.Write(1, 2, "# Hello")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "1", "2.md"), path)

		text, ok, err := d.Read(1, 2)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "# Hello", text)
	})

	t.Run("list skips foreign files", func(t *testing.T) {
		_, err := d.Write(3, 4, "x")
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(root, "1", "notes.txt"), nil, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(root, "1", TempFilePrefix+"5.md"), nil, 0o644))

		refs, err := d.List()
		require.NoError(t, err)
		require.Len(t, refs, 2)
		assert.Equal(t, DraftRef{Workspace: 1, Page: 2, Path: d.File(1, 2)}, refs[0])
		assert.Equal(t, DraftRef{Workspace: 3, Page: 4, Path: d.File(3, 4)}, refs[1])
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, d.Remove(1, 2))
		_, ok, err := d.Read(1, 2)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("list on missing root", func(t *testing.T) {
		refs, err := NewDrafts(Config{Path: filepath.Join(root, "nope")}).List()
		require.NoError(t, err)
		assert.Empty(t, refs)
	})
}

func TestDraftsWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDrafts(Config{Path: t.TempDir()})

	events, err := d.Watch(ctx, 7, 9)
	require.NoError(t, err)
	waitForWatcher(t, d, true)
	assert.Equal(t, d.File(7, 9), d.State().(DraftsState).Watching)

	// Writes to other pages in the same workspace are ignored.
	_, err = d.Write(7, 10, "other")
	require.NoError(t, err)
	_, err = d.Write(7, 9, "first")
	require.NoError(t, err)
	_, err = d.Write(7, 9, "second")
	require.NoError(t, err)

	e := nextEvent(t, events)
	assert.Equal(t, core.EventDraftChanged, e.Type)
	assert.Equal(t, d.File(7, 9), e.Path)

	require.NoError(t, d.Remove(7, 9))
	for e.Type != core.EventDraftRemoved {
		e = nextEvent(t, events)
	}
	assert.Equal(t, d.File(7, 9), e.Path)

	cancel()
	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(5 * time.Second):
		t.Fatal("events channel not closed after cancel")
	}
	waitForWatcher(t, d, false)
}

func nextEvent(t *testing.T, events <-chan core.Event) core.Event {
	t.Helper()
	select {
	case e := <-events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for draft event")
		return core.Event{}
	}
}
