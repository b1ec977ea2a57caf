package wiki_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mdwiki/pkg/adapters/rest"
	"github.com/aretw0/mdwiki/pkg/core"
	"github.com/aretw0/mdwiki/pkg/wiki"
)

func TestTree_CreateThenList(t *testing.T) {
	_, wb := setup(t)
	ctx := context.Background()

	cases := []struct {
		name string
		vis  core.Visibility
	}{
		{"Eng", core.VisibilityPrivate},
		{"Company Handbook", core.VisibilityPublic},
		{"ünïcødé", core.VisibilityPrivate},
	}
	for _, tc := range cases {
		require.NoError(t, wb.Tree.CreateOrUpdate(ctx, tc.name, tc.vis, 0))

		list, err := wb.Tree.ListWorkspaces(ctx)
		require.NoError(t, err)
		assert.Contains(t, names(list), tc.name)
		for _, ws := range list {
			if ws.Name == tc.name {
				assert.Equal(t, tc.vis, ws.Visibility)
			}
		}
	}
	assert.Len(t, wb.Tree.Workspaces(), len(cases))
}

func TestTree_DuplicateNameConflict(t *testing.T) {
	srv, wb := setup(t)
	ctx := context.Background()
	srv.SeedWorkspace("Eng", core.VisibilityPublic)

	err := wb.Tree.CreateOrUpdate(ctx, "Eng", core.VisibilityPrivate, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrConflict)

	var fe *core.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "name", fe.Field)

	list, err := wb.Tree.ListWorkspaces(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, core.VisibilityPublic, list[0].Visibility)
}

func TestTree_EmptyNameNeverReachesNetwork(t *testing.T) {
	srv, wb := setup(t)

	err := wb.Tree.CreateOrUpdate(context.Background(), "   ", core.VisibilityPrivate, 0)
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Empty(t, srv.Calls())
}

func TestTree_Update(t *testing.T) {
	srv, wb := setup(t)
	ctx := context.Background()
	id := srv.SeedWorkspace("Eng", core.VisibilityPrivate)

	require.NoError(t, wb.Tree.CreateOrUpdate(ctx, "Engineering", core.VisibilityPublic, id))

	list := wb.Tree.Workspaces()
	require.Len(t, list, 1)
	assert.Equal(t, core.Workspace{ID: id, Name: "Engineering", Visibility: core.VisibilityPublic}, list[0])
}

func TestTree_FormSubmit(t *testing.T) {
	srv, wb := setup(t)
	ctx := context.Background()
	srv.SeedWorkspace("Eng", core.VisibilityPrivate)

	t.Run("conflict keeps the form open with a field message", func(t *testing.T) {
		wb.Tree.UpdateForm(func(f wiki.WorkspaceForm) wiki.WorkspaceForm {
			return f.OpenCreate().WithName("Eng")
		})
		require.Error(t, wb.Tree.Submit(ctx))

		f := wb.Tree.Form()
		assert.True(t, f.Open)
		assert.Equal(t, "name", f.Field)
		assert.NotEmpty(t, f.Error)
	})

	t.Run("other failures show the generic message", func(t *testing.T) {
		srv.FailNext(http.MethodPost, "/spaces", http.StatusInternalServerError)
		wb.Tree.UpdateForm(func(f wiki.WorkspaceForm) wiki.WorkspaceForm { return f.WithName("Ops") })

		err := wb.Tree.Submit(ctx)
		assert.ErrorIs(t, err, core.ErrSilentFailure)
		f := wb.Tree.Form()
		assert.True(t, f.Open)
		assert.Equal(t, wiki.GenericSaveMessage, f.Error)
	})

	t.Run("success closes the form", func(t *testing.T) {
		wb.Tree.UpdateForm(func(f wiki.WorkspaceForm) wiki.WorkspaceForm {
			return f.WithName("Ops").WithVisibility(core.VisibilityPublic)
		})
		require.NoError(t, wb.Tree.Submit(ctx))
		assert.Equal(t, wiki.WorkspaceForm{}, wb.Tree.Form())
		assert.Contains(t, names(wb.Tree.Workspaces()), "Ops")
	})
}

func TestWorkspaceForm_Transitions(t *testing.T) {
	var f wiki.WorkspaceForm
	ws := core.Workspace{ID: 4, Name: "Eng", Visibility: core.VisibilityPublic}

	edit := f.OpenEdit(ws)
	assert.True(t, edit.Editing())
	assert.Equal(t, "Eng", edit.Name)

	failed := edit.Fail(core.Invalid("name", "name is required"))
	assert.Equal(t, "name is required", failed.Error)
	assert.Empty(t, edit.Error, "transitions must not modify the receiver")

	assert.Empty(t, failed.WithName("x").Error)
	assert.False(t, failed.Close().Open)
}

func TestTree_RemoveOpenWorkspace(t *testing.T) {
	srv, wb := setup(t)
	ctx := context.Background()
	eng := srv.SeedWorkspace("Eng", core.VisibilityPrivate)
	ops := srv.SeedWorkspace("Ops", core.VisibilityPrivate)
	srv.SeedPage(eng, 0, "Intro")

	require.NoError(t, wb.Tree.Navigate(ctx, eng))
	require.Len(t, wb.Tree.Pages(), 1)

	require.NoError(t, wb.Tree.Remove(ctx, ops))
	assert.Equal(t, core.Inside(eng), wb.Tree.Navigation())
	assert.Len(t, wb.Tree.Pages(), 1)

	require.NoError(t, wb.Tree.Remove(ctx, eng))
	assert.Equal(t, core.Browsing(), wb.Tree.Navigation())
	assert.Empty(t, wb.Tree.Pages())
	assert.Empty(t, wb.Tree.Workspaces())
}

func TestTree_NavigateNeverShowsOtherWorkspacePages(t *testing.T) {
	srv, wb := setup(t)
	ctx := context.Background()
	eng := srv.SeedWorkspace("Eng", core.VisibilityPrivate)
	ops := srv.SeedWorkspace("Ops", core.VisibilityPrivate)
	srv.SeedPage(eng, 0, "Intro")

	require.NoError(t, wb.Tree.Navigate(ctx, eng))
	require.Len(t, wb.Tree.Pages(), 1)

	srv.FailNext(http.MethodGet, "/spaces", http.StatusInternalServerError)
	require.Error(t, wb.Tree.Navigate(ctx, ops))
	assert.Empty(t, wb.Tree.Pages())
	assert.Equal(t, core.Inside(ops), wb.Tree.Navigation())

	wb.Tree.Back()
	assert.Equal(t, core.Browsing(), wb.Tree.Navigation())
}

func TestTree_PageCRUD(t *testing.T) {
	srv, wb := setup(t)
	ctx := context.Background()
	ws := srv.SeedWorkspace("Eng", core.VisibilityPublic)

	err := wb.Tree.CreatePage(ctx, "Intro", 0)
	assert.ErrorIs(t, err, core.ErrValidation, "no workspace is open")

	require.NoError(t, wb.Tree.Navigate(ctx, ws))
	require.NoError(t, wb.Tree.CreatePage(ctx, "Intro", 0))
	intro := wb.Tree.Pages()[0]
	require.NoError(t, wb.Tree.CreatePage(ctx, "Setup", intro.ID))

	entries := wiki.Flatten(wb.Tree.Pages())
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[1].Depth)
	setupPage := entries[1].Page
	assert.Equal(t, intro.ID, setupPage.ParentID)
	assert.Equal(t, ws, setupPage.WorkspaceID)
	assert.Equal(t, core.VisibilityPrivate, setupPage.Visibility)

	require.NoError(t, wb.Tree.RenamePage(ctx, setupPage.ID, "Install"))
	p, ok := wiki.FindPage(wb.Tree.Pages(), setupPage.ID)
	require.True(t, ok)
	assert.Equal(t, "Install", p.Name)

	require.NoError(t, wb.Tree.RemovePage(ctx, intro.ID))
	assert.Empty(t, wb.Tree.Pages())
}

func TestTree_ListFailureLeavesListEmpty(t *testing.T) {
	srv, wb := setup(t)
	ctx := context.Background()
	srv.SeedWorkspace("Eng", core.VisibilityPrivate)

	_, err := wb.Tree.ListWorkspaces(ctx)
	require.NoError(t, err)
	require.Len(t, wb.Tree.Workspaces(), 1)

	srv.FailNext(http.MethodGet, "/spaces", http.StatusBadGateway)
	_, err = wb.Tree.ListWorkspaces(ctx)
	assert.ErrorIs(t, err, core.ErrSilentFailure)
	assert.Empty(t, wb.Tree.Workspaces())

	calls := 0
	for _, c := range srv.Calls() {
		if c == "GET /spaces" {
			calls++
		}
	}
	assert.Equal(t, 2, calls, "failures are not retried")
}

func TestTree_StaleListIsDropped(t *testing.T) {
	slow := reply(`[{"id":1,"name":"Eng","shared":false}]`).held()
	client := &scriptedClient{script: []*scripted{
		slow,
		reply(`[{"id":1,"name":"Eng","shared":false},{"id":2,"name":"Ops","shared":false}]`),
	}}
	tree := wiki.NewTree(client, core.NewStore(core.InitialState()), quiet)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = tree.ListWorkspaces(ctx)
	}()
	<-slow.started

	_, err := tree.ListWorkspaces(ctx)
	require.NoError(t, err)
	close(slow.release)
	<-done

	assert.Equal(t, []string{"Eng", "Ops"}, names(tree.Workspaces()))
}

func TestTree_InitialWorkspace(t *testing.T) {
	srv, _ := setup(t)
	ws := srv.SeedWorkspace("Eng", core.VisibilityPrivate)
	srv.SeedPage(ws, 0, "Intro")
	c := rest.New(srv.URL)

	wb := wiki.NewWorkbench(c, c, quiet, wiki.WithInitialWorkspace(ws))
	assert.Equal(t, core.Inside(ws), wb.Tree.Navigation())
	assert.Empty(t, wb.Tree.Pages())

	require.NoError(t, wb.Tree.RefreshPages(context.Background()))
	assert.Len(t, wb.Tree.Pages(), 1)
}

func TestVisibilityChoices(t *testing.T) {
	assert.ElementsMatch(t, []core.Visibility{core.VisibilityPublic, core.VisibilityPrivate}, wiki.VisibilityChoices(wiki.ScopeWorkspace))
	assert.Empty(t, wiki.VisibilityChoices(wiki.ScopePage))
}

func names(list []core.Workspace) []string {
	out := make([]string, 0, len(list))
	for _, ws := range list {
		out = append(out, ws.Name)
	}
	return out
}
