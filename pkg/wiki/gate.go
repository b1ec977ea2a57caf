package wiki

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/introspection"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/mdwiki/pkg/core"
	"github.com/aretw0/mdwiki/pkg/typed"
)

// AccessDeniedMessage replaces the content while the gate is closed.
const AccessDeniedMessage = "Not found or access denied"

// Target is the addressed workspace and page. Zero means absent.
type Target struct {
	WorkspaceID int
	PageID      int
}

// Gate decides whether the addressed target may be rendered.
type Gate struct {
	client core.SyncClient
	store  *core.Store
	logger *slog.Logger
	spaces *typed.Resource[core.Workspace]
	gen    core.Generation
}

func NewGate(client core.SyncClient, store *core.Store, opts ...Option) *Gate {
	cfg := newConfig(opts)
	return &Gate{
		client: client,
		store:  store,
		logger: cfg.logger,
		spaces: typed.NewResource[core.Workspace](client, core.SpacesPath()),
	}
}

// Resolve checks every present identifier of t independently. If any of
// them fails the global error is raised and an error wrapping
// core.ErrResolution is returned. Otherwise the error is cleared and the
// display names are cached in the store.
func (g *Gate) Resolve(ctx context.Context, t Target) error {
	ticket := g.gen.Next()

	if t.WorkspaceID == 0 && t.PageID == 0 {
		g.store.Dispatch(core.ErrorCleared{})
		return nil
	}
	if t.WorkspaceID == 0 {
		// A page can not be addressed outside a workspace.
		return g.deny(ticket, t, fmt.Errorf("page %d without workspace", t.PageID))
	}

	var (
		ws   core.Workspace
		page core.Page
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		ws, err = g.spaces.Get(ctx, t.WorkspaceID)
		return err
	})
	if t.PageID != 0 {
		eg.Go(func() error {
			var err error
			page, err = typed.Get[core.Page](ctx, g.client, core.PagePath(t.WorkspaceID, t.PageID), nil)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return g.deny(ticket, t, err)
	}

	if !g.gen.Current(ticket) {
		g.logger.Debug("dropping stale resolution", "workspace", t.WorkspaceID, "page", t.PageID)
		return nil
	}
	g.store.Dispatch(core.ErrorCleared{})
	g.store.Dispatch(core.WorkspaceNamed{Header: core.Header{Name: ws.Name, Visibility: ws.Visibility}})
	if t.PageID != 0 {
		g.store.Dispatch(core.PageNamed{Name: page.Name})
	}
	return nil
}

func (g *Gate) deny(ticket uint64, t Target, cause error) error {
	err := fmt.Errorf("resolve workspace %d page %d: %w: %w", t.WorkspaceID, t.PageID, core.ErrResolution, cause)
	if !g.gen.Current(ticket) {
		g.logger.Debug("dropping stale resolution", "workspace", t.WorkspaceID, "page", t.PageID)
		return err
	}
	g.logger.Debug("access denied", "workspace", t.WorkspaceID, "page", t.PageID, "error", cause)
	g.store.Dispatch(core.ErrorRaised{})
	return err
}

// Denied reports whether content must be replaced by AccessDeniedMessage.
func (g *Gate) Denied() bool {
	return g.store.Snapshot().Error
}

// GateState is the introspection snapshot of a Gate.
type GateState struct {
	Denied    bool   `json:"denied"`
	Workspace string `json:"workspace,omitempty"`
	Page      string `json:"page,omitempty"`
}

// State implements introspection.Introspectable.
func (g *Gate) State() any {
	s := g.store.Snapshot()
	return GateState{Denied: s.Error, Workspace: s.Header.Name, Page: s.PageName}
}

// ComponentType implements introspection.Component.
func (g *Gate) ComponentType() string {
	return "access-gate"
}

var _ introspection.Introspectable = (*Gate)(nil)
