package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mdwiki/pkg/core"
)

func TestReduce_Navigation(t *testing.T) {
	s := core.InitialState()
	assert.Equal(t, core.ModeBrowsing, s.Nav.Mode)

	s = core.Reduce(s, core.Navigated{WorkspaceID: 1})
	s = core.Reduce(s, core.PagesLoaded{WorkspaceID: 1, Pages: []core.Page{{ID: 10, Name: "Intro"}}})
	require.Len(t, s.Pages, 1)

	t.Run("same workspace keeps pages", func(t *testing.T) {
		next := core.Reduce(s, core.Navigated{WorkspaceID: 1})
		assert.Len(t, next.Pages, 1)
	})

	t.Run("other workspace clears pages", func(t *testing.T) {
		next := core.Reduce(s, core.Navigated{WorkspaceID: 2})
		assert.Empty(t, next.Pages)
		assert.True(t, next.Nav.IsInside(2))
	})

	t.Run("pages of a workspace that is not open are dropped", func(t *testing.T) {
		next := core.Reduce(s, core.PagesLoaded{WorkspaceID: 2, Pages: []core.Page{{ID: 99}}})
		assert.Equal(t, 10, next.Pages[0].ID)
	})

	t.Run("back", func(t *testing.T) {
		next := core.Reduce(s, core.WentBack{})
		assert.Equal(t, core.Browsing(), next.Nav)
	})

	t.Run("navigation clears the error", func(t *testing.T) {
		denied := core.Reduce(s, core.ErrorRaised{})
		require.True(t, denied.Error)
		assert.False(t, core.Reduce(denied, core.Navigated{WorkspaceID: 2}).Error)
		assert.False(t, core.Reduce(denied, core.Navigated{WorkspaceID: 1}).Error)
		assert.False(t, core.Reduce(denied, core.WentBack{}).Error)
	})
}

func TestReduce_WorkspaceRemoved(t *testing.T) {
	s := core.InitialState()
	s = core.Reduce(s, core.Navigated{WorkspaceID: 1})
	s = core.Reduce(s, core.WorkspaceNamed{Header: core.Header{Name: "Eng", Visibility: core.VisibilityPrivate}})
	s = core.Reduce(s, core.PagesLoaded{WorkspaceID: 1, Pages: []core.Page{{ID: 10}}})

	other := core.Reduce(s, core.WorkspaceRemoved{ID: 2})
	assert.Equal(t, s.Nav, other.Nav)
	assert.Len(t, other.Pages, 1)

	open := core.Reduce(s, core.WorkspaceRemoved{ID: 1})
	assert.Equal(t, core.Browsing(), open.Nav)
	assert.Empty(t, open.Pages)
	assert.Empty(t, open.Header.Name)
}

func TestReduce_IsPure(t *testing.T) {
	ws := []core.Workspace{{ID: 1, Name: "Eng"}}
	before := core.InitialState()
	after := core.Reduce(before, core.WorkspacesLoaded{Workspaces: ws})

	ws[0].Name = "mutated"
	assert.Empty(t, before.Workspaces)
	assert.Equal(t, "Eng", after.Workspaces[0].Name)
}

func TestReduce_LoggedOutResets(t *testing.T) {
	s := core.Reduce(core.InitialState(), core.LoggedIn{})
	s = core.Reduce(s, core.Navigated{WorkspaceID: 3})
	s = core.Reduce(s, core.ErrorRaised{})
	s = core.Reduce(s, core.EditModeSet{On: true})

	assert.Equal(t, core.InitialState(), core.Reduce(s, core.LoggedOut{}))
}

func TestStore_SnapshotIsolation(t *testing.T) {
	store := core.NewStore(core.InitialState())
	store.Dispatch(core.WorkspacesLoaded{Workspaces: []core.Workspace{{ID: 1, Name: "Eng"}}})

	snap := store.Snapshot()
	snap.Workspaces[0].Name = "changed"

	assert.Equal(t, "Eng", store.Snapshot().Workspaces[0].Name)

	st, ok := store.State().(core.StoreState)
	require.True(t, ok)
	assert.Equal(t, 1, st.Workspaces)
	assert.Equal(t, "browsing", st.Mode)
}

func TestGeneration(t *testing.T) {
	var g core.Generation
	first := g.Next()
	assert.True(t, g.Current(first))

	second := g.Next()
	assert.False(t, g.Current(first))
	assert.True(t, g.Current(second))
}
