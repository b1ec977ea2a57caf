package wiki

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/mdwiki/pkg/core"
	"github.com/aretw0/mdwiki/pkg/typed"
)

// Scope is where a visibility choice is offered.
type Scope int

const (
	ScopeWorkspace Scope = iota
	ScopePage
)

// VisibilityChoices lists the options a form may offer in scope. Pages are
// always private, so no choice is offered for them.
func VisibilityChoices(scope Scope) []core.Visibility {
	if scope == ScopeWorkspace {
		return []core.Visibility{core.VisibilityPublic, core.VisibilityPrivate}
	}
	return nil
}

// Tree is the workspace and page hierarchy.
type Tree struct {
	client core.SyncClient
	store  *core.Store
	logger *slog.Logger
	spaces *typed.Resource[core.Workspace]

	mu   sync.Mutex
	form WorkspaceForm

	listGen  core.Generation
	pagesGen core.Generation
}

// NewTree creates a tree over store. With WithInitialWorkspace the store is
// moved inside that workspace; pages are fetched by RefreshPages.
func NewTree(client core.SyncClient, store *core.Store, opts ...Option) *Tree {
	cfg := newConfig(opts)
	if cfg.initialWorkspace != 0 {
		store.Dispatch(core.Navigated{WorkspaceID: cfg.initialWorkspace})
	}
	return &Tree{
		client: client,
		store:  store,
		logger: cfg.logger,
		spaces: typed.NewResource[core.Workspace](client, core.SpacesPath()),
	}
}

// Workspaces returns the last fetched workspace list.
func (t *Tree) Workspaces() []core.Workspace {
	return t.store.Snapshot().Workspaces
}

// Pages returns the page tree of the open workspace.
func (t *Tree) Pages() []core.Page {
	return t.store.Snapshot().Pages
}

// Navigation returns the current navigation state.
func (t *Tree) Navigation() core.NavigationState {
	return t.store.Snapshot().Nav
}

// ListWorkspaces refetches the workspace list. On failure the list is left
// empty. Nothing is retried.
func (t *Tree) ListWorkspaces(ctx context.Context) ([]core.Workspace, error) {
	ticket := t.listGen.Next()
	list, err := t.spaces.List(ctx, core.DefaultBunch)
	if !t.listGen.Current(ticket) {
		t.logger.Debug("dropping stale workspace list", "ticket", ticket)
		return list, err
	}
	if err != nil {
		t.logger.Warn("list workspaces failed", "error", err)
		t.store.Dispatch(core.WorkspacesLoaded{})
		return nil, wrap("list workspaces", err)
	}
	t.store.Dispatch(core.WorkspacesLoaded{Workspaces: list})
	return list, nil
}

// CreateOrUpdate creates a workspace when editID is 0 and fully replaces
// name and visibility of workspace editID otherwise. The list is refetched
// after success.
//
// An empty name fails with a *core.FieldError before any request. 400 and
// 409 replies are returned as *core.FieldError on "name". Everything else
// is core.ErrSilentFailure.
func (t *Tree) CreateOrUpdate(ctx context.Context, name string, v core.Visibility, editID int) error {
	if err := validateName("name", name); err != nil {
		return err
	}

	req := core.WorkspaceRequest{Name: name, Shared: v.Shared()}
	var err error
	if editID == 0 {
		err = t.spaces.Create(ctx, req)
	} else {
		err = t.spaces.Update(ctx, editID, req)
	}
	if err != nil {
		err = fieldError(err, "name", "invalid workspace name", "a workspace with this name already exists")
		if _, ok := asFieldError(err); !ok {
			t.logger.Warn("save workspace failed", "id", editID, "error", err)
		}
		return wrap("save workspace", err)
	}

	if editID != 0 && t.store.Snapshot().Nav.IsInside(editID) {
		t.store.Dispatch(core.WorkspaceNamed{Header: core.Header{Name: name, Visibility: v}})
	}
	_, _ = t.ListWorkspaces(ctx)
	return nil
}

// Form returns the current workspace form.
func (t *Tree) Form() WorkspaceForm {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.form
}

// UpdateForm applies a pure transition to the form.
func (t *Tree) UpdateForm(fn func(WorkspaceForm) WorkspaceForm) WorkspaceForm {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.form = fn(t.form)
	return t.form
}

// Submit persists the form. The form closes on success and stays open with
// a message otherwise.
func (t *Tree) Submit(ctx context.Context) error {
	f := t.Form()
	if !f.Open {
		return nil
	}
	err := t.CreateOrUpdate(ctx, f.Name, f.Visibility, f.EditID)
	t.UpdateForm(func(cur WorkspaceForm) WorkspaceForm {
		if err != nil {
			return cur.Fail(err)
		}
		return cur.Close()
	})
	return err
}

// Remove deletes workspace id together with its pages, documents and
// attachments. If it was the open workspace, navigation returns to the
// workspace list.
func (t *Tree) Remove(ctx context.Context, id int) error {
	if err := t.spaces.Delete(ctx, id); err != nil {
		t.logger.Warn("remove workspace failed", "id", id, "error", err)
		return wrap("remove workspace", err)
	}
	t.store.Dispatch(core.WorkspaceRemoved{ID: id})
	_, _ = t.ListWorkspaces(ctx)
	return nil
}

// Navigate opens workspace id and fetches its pages. Pages of a previously
// open workspace are never shown in between.
func (t *Tree) Navigate(ctx context.Context, id int) error {
	t.store.Dispatch(core.Navigated{WorkspaceID: id})
	return t.RefreshPages(ctx)
}

// Back returns to the workspace list.
func (t *Tree) Back() {
	t.pagesGen.Next()
	t.store.Dispatch(core.WentBack{})
}

// RefreshPages refetches the page tree of the open workspace.
func (t *Tree) RefreshPages(ctx context.Context) error {
	nav := t.store.Snapshot().Nav
	if nav.Mode != core.ModeInside {
		return nil
	}
	ws := nav.WorkspaceID

	ticket := t.pagesGen.Next()
	pages, err := typed.List[core.Page](ctx, t.client, core.PagesPath(ws), core.DefaultBunch)
	if !t.pagesGen.Current(ticket) {
		t.logger.Debug("dropping stale page list", "workspace", ws, "ticket", ticket)
		return nil
	}
	if err != nil {
		t.logger.Warn("list pages failed", "workspace", ws, "error", err)
		t.store.Dispatch(core.PagesLoaded{WorkspaceID: ws})
		return wrap("list pages", err)
	}
	t.store.Dispatch(core.PagesLoaded{WorkspaceID: ws, Pages: core.Bind(pages, ws, 0)})
	return nil
}

// CreatePage adds a page to the open workspace. parentID 0 creates a
// top-level page. Pages are always created private.
func (t *Tree) CreatePage(ctx context.Context, name string, parentID int) error {
	ws, err := t.openWorkspace()
	if err != nil {
		return err
	}
	if err := validateName("name", name); err != nil {
		return err
	}
	path := core.PagesPath(ws)
	if parentID != 0 {
		path = core.PagePath(ws, parentID)
	}
	req := core.PageRequest{Name: name, Shared: false}
	if err := typed.Exec(ctx, t.client, http.MethodPost, path, req); err != nil {
		return wrap("create page", fieldError(err, "name", "invalid page name", "a page with this name already exists"))
	}
	return t.RefreshPages(ctx)
}

// RenamePage replaces the name of page id, keeping its visibility.
func (t *Tree) RenamePage(ctx context.Context, id int, name string) error {
	ws, err := t.openWorkspace()
	if err != nil {
		return err
	}
	if err := validateName("name", name); err != nil {
		return err
	}
	req := core.PageRequest{Name: name}
	if p, ok := FindPage(t.Pages(), id); ok {
		req.Shared = p.Visibility.Shared()
	}
	if err := typed.Exec(ctx, t.client, http.MethodPut, core.PagePath(ws, id), req); err != nil {
		return wrap("rename page", fieldError(err, "name", "invalid page name", "a page with this name already exists"))
	}
	return t.RefreshPages(ctx)
}

// RemovePage deletes page id and its sub-pages.
func (t *Tree) RemovePage(ctx context.Context, id int) error {
	ws, err := t.openWorkspace()
	if err != nil {
		return err
	}
	if err := typed.Exec(ctx, t.client, http.MethodDelete, core.PagePath(ws, id), nil); err != nil {
		t.logger.Warn("remove page failed", "workspace", ws, "page", id, "error", err)
		return wrap("remove page", err)
	}
	return t.RefreshPages(ctx)
}

func (t *Tree) openWorkspace() (int, error) {
	nav := t.store.Snapshot().Nav
	if nav.Mode != core.ModeInside {
		return 0, core.Invalid("workspace", "no workspace is open")
	}
	return nav.WorkspaceID, nil
}

// Entry is one line of a flattened page tree.
type Entry struct {
	Depth int
	Page  core.Page
}

// Flatten lists pages depth-first, parents before children.
func Flatten(pages []core.Page) []Entry {
	var out []Entry
	var walk func([]core.Page, int)
	walk = func(ps []core.Page, depth int) {
		for _, p := range ps {
			out = append(out, Entry{Depth: depth, Page: p})
			walk(p.Subpages, depth+1)
		}
	}
	walk(pages, 0)
	return out
}

// FindPage searches a page tree for id.
func FindPage(pages []core.Page, id int) (core.Page, bool) {
	for _, e := range Flatten(pages) {
		if e.Page.ID == id {
			return e.Page, true
		}
	}
	return core.Page{}, false
}

// TreeState is the introspection snapshot of a Tree.
type TreeState struct {
	Mode        string `json:"mode"`
	WorkspaceID int    `json:"workspace_id,omitempty"`
	Workspaces  int    `json:"workspaces"`
	Pages       int    `json:"pages"`
	FormOpen    bool   `json:"form_open"`
	FormError   string `json:"form_error,omitempty"`
}

// State implements introspection.Introspectable.
func (t *Tree) State() any {
	s := t.store.Snapshot()
	f := t.Form()
	return TreeState{
		Mode:        s.Nav.Mode.String(),
		WorkspaceID: s.Nav.WorkspaceID,
		Workspaces:  len(s.Workspaces),
		Pages:       len(Flatten(s.Pages)),
		FormOpen:    f.Open,
		FormError:   f.Error,
	}
}

// ComponentType implements introspection.Component.
func (t *Tree) ComponentType() string {
	return "workspace-tree"
}

var _ introspection.Introspectable = (*Tree)(nil)
