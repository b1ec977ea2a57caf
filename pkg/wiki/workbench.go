package wiki

import (
	"context"
	"log/slog"

	"github.com/aretw0/introspection"

	"github.com/aretw0/mdwiki/pkg/core"
)

// Workbench wires the components around one shared store.
type Workbench struct {
	Client  core.SyncClient
	Links   core.Links
	Store   *core.Store
	Tree    *Tree
	Gate    *Gate
	Session *Session

	opts   []Option
	logger *slog.Logger
}

// NewWorkbench creates every component over client.
func NewWorkbench(client core.SyncClient, links core.Links, opts ...Option) *Workbench {
	cfg := newConfig(opts)
	store := core.NewStore(core.InitialState())
	return &Workbench{
		Client:  client,
		Links:   links,
		Store:   store,
		Tree:    NewTree(client, store, opts...),
		Gate:    NewGate(client, store, opts...),
		Session: NewSession(client, store, opts...),
		opts:    opts,
		logger:  cfg.logger,
	}
}

// Attachments returns a manager for workspace ws.
func (w *Workbench) Attachments(ws int) *Attachments {
	return NewAttachments(w.Client, w.Links, ws, w.opts...)
}

// OpenPage resolves the target through the gate and, only if access is
// granted, mounts an editor with the document loaded.
func (w *Workbench) OpenPage(ctx context.Context, ws, pg int) (*Editor, error) {
	if err := w.Gate.Resolve(ctx, Target{WorkspaceID: ws, PageID: pg}); err != nil {
		return nil, err
	}
	ed := NewEditor(w.Client, w.Store, w.Attachments(ws), ws, pg, w.opts...)
	if err := ed.Load(ctx); err != nil {
		return nil, err
	}
	w.logger.Debug("opened page", "workspace", ws, "page", pg)
	return ed, nil
}

// Inspectable is a component that reports its state and type.
type Inspectable interface {
	introspection.Introspectable
	introspection.Component
}

// Components lists the introspectable parts of the workbench.
func (w *Workbench) Components() []Inspectable {
	out := []Inspectable{w.Store, w.Tree, w.Gate, w.Session}
	if c, ok := w.Client.(Inspectable); ok {
		out = append(out, c)
	}
	return out
}
