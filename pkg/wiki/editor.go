package wiki

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"sync"

	"github.com/aretw0/introspection"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/aretw0/mdwiki/pkg/core"
	"github.com/aretw0/mdwiki/pkg/typed"
)

// EditorMode is the state of the document editor.
type EditorMode int

const (
	Viewing EditorMode = iota
	Editing
)

func (m EditorMode) String() string {
	if m == Editing {
		return "editing"
	}
	return "viewing"
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Editor owns the draft of one page's document. Dropping the Editor drops
// any unsaved draft.
type Editor struct {
	client      core.SyncClient
	store       *core.Store
	attachments *Attachments
	logger      *slog.Logger
	ws, pg      int

	mu     sync.Mutex
	mode   EditorMode
	exists bool
	text   string
	draft  string

	loadGen core.Generation
}

// NewEditor binds an editor to page pg of workspace ws. The editor starts
// in Viewing with an empty draft; call Load to fetch the document.
func NewEditor(client core.SyncClient, store *core.Store, attachments *Attachments, ws, pg int, opts ...Option) *Editor {
	cfg := newConfig(opts)
	return &Editor{
		client:      client,
		store:       store,
		attachments: attachments,
		logger:      cfg.logger,
		ws:          ws,
		pg:          pg,
	}
}

// Page returns the workspace and page the editor is bound to.
func (e *Editor) Page() (ws, pg int) {
	return e.ws, e.pg
}

// Attachments returns the attachment manager of the editor's workspace.
func (e *Editor) Attachments() *Attachments {
	return e.attachments
}

// Load fetches the document. A missing document is not an error: the
// editor remembers it so that the next Save creates it.
func (e *Editor) Load(ctx context.Context) error {
	ticket := e.loadGen.Next()
	doc, err := typed.Get[core.Document](ctx, e.client, core.DocumentPath(e.ws, e.pg), nil)
	if !e.loadGen.Current(ticket) {
		e.logger.Debug("dropping stale document", "page", e.pg, "ticket", ticket)
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case err == nil:
		e.exists = true
		e.text = doc.Text
	case core.IsNotFound(err):
		e.exists = false
		e.text = ""
	default:
		e.logger.Warn("load document failed", "workspace", e.ws, "page", e.pg, "error", err)
		return wrap("load document", err)
	}
	e.draft = e.text
	return nil
}

// OpenEdit switches to Editing. The draft is kept.
func (e *Editor) OpenEdit() {
	e.setMode(Editing)
}

// CloseEdit switches to Viewing. Unsaved changes stay in the draft.
func (e *Editor) CloseEdit() {
	e.setMode(Viewing)
}

func (e *Editor) setMode(m EditorMode) {
	e.mu.Lock()
	e.mode = m
	e.mu.Unlock()
	e.store.Dispatch(core.EditModeSet{On: m == Editing})
}

func (e *Editor) Mode() EditorMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Exists reports whether the backend holds a document for the page.
func (e *Editor) Exists() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exists
}

// Text is the last persisted text.
func (e *Editor) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

func (e *Editor) Draft() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// SetDraft replaces the buffer. No request is made.
func (e *Editor) SetDraft(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = s
}

// Dirty reports whether the draft differs from the persisted text.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft != e.text
}

// InsertImage appends fragment to the end of the draft.
func (e *Editor) InsertImage(fragment string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft += fragment
}

// Save creates the document if it does not exist yet and replaces it
// otherwise, then reloads it. On failure the draft is left intact.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	method := http.MethodPut
	if !e.exists {
		method = http.MethodPost
	}
	body := core.Document{Text: e.draft}
	e.mu.Unlock()

	if err := typed.Exec(ctx, e.client, method, core.DocumentPath(e.ws, e.pg), body); err != nil {
		e.logger.Warn("save document failed", "workspace", e.ws, "page", e.pg, "method", method, "error", err)
		return wrap("save document", err)
	}
	e.mu.Lock()
	e.exists = true
	e.mu.Unlock()
	e.logger.Debug("saved document", "workspace", e.ws, "page", e.pg, "method", method)
	return e.Load(ctx)
}

// UploadImage uploads r and appends the resulting reference to the draft.
func (e *Editor) UploadImage(ctx context.Context, name string, r io.Reader) error {
	frag, err := e.attachments.Upload(ctx, name, r)
	if err != nil {
		return err
	}
	e.InsertImage(frag)
	return nil
}

// LinkImage appends a reference to an external image URL.
func (e *Editor) LinkImage(url string) error {
	frag, err := e.attachments.LinkByURL(url)
	if err != nil {
		return err
	}
	e.InsertImage(frag)
	return nil
}

// InsertAttachment appends a reference to an uploaded attachment.
func (e *Editor) InsertAttachment(guid string) {
	e.InsertImage(e.attachments.Insert(guid))
}

// Shown is the text displayed in the current mode: the draft while
// editing, the persisted text otherwise.
func (e *Editor) Shown() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == Editing {
		return e.draft
	}
	return e.text
}

// Preview renders the shown text as HTML.
func (e *Editor) Preview() (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(e.Shown()), &buf); err != nil {
		return "", fmt.Errorf("render preview: %w", err)
	}
	return buf.String(), nil
}

// References lists the image destinations embedded in the draft, in order
// of appearance.
func (e *Editor) References() []string {
	return ImageReferences(e.Draft())
}

// ImageReferences extracts image destinations from markdown source.
func ImageReferences(src string) []string {
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var refs []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if img, ok := n.(*ast.Image); ok {
			refs = append(refs, string(img.Destination))
		}
		return ast.WalkContinue, nil
	})
	return refs
}

// Export requests the fixed-layout rendering of the page. Options are
// validated before any request is made.
func (e *Editor) Export(ctx context.Context, opts core.ExportOptions) (core.Export, error) {
	if err := opts.Validate(); err != nil {
		return core.Export{}, err
	}
	res, err := e.client.Do(ctx, core.Request{
		Method: http.MethodGet,
		Path:   core.ExportPath(e.ws, e.pg),
		Query:  opts.Query(),
	})
	if err != nil {
		e.logger.Warn("export failed", "workspace", e.ws, "page", e.pg, "error", err)
		return core.Export{}, wrap("export", err)
	}
	return core.Export{FileName: e.exportName(res), Data: res.Body}, nil
}

func (e *Editor) exportName(res *core.Response) string {
	if res.Header != nil {
		if _, params, err := mime.ParseMediaType(res.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
			return params["filename"]
		}
	}
	if name := e.store.Snapshot().PageName; name != "" {
		return name + ".pdf"
	}
	return fmt.Sprintf("page-%d.pdf", e.pg)
}

// EditorState is the introspection snapshot of an Editor.
type EditorState struct {
	Workspace int    `json:"workspace"`
	Page      int    `json:"page"`
	Mode      string `json:"mode"`
	Exists    bool   `json:"exists"`
	Dirty     bool   `json:"dirty"`
	DraftLen  int    `json:"draft_len"`
}

// State implements introspection.Introspectable.
func (e *Editor) State() any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EditorState{
		Workspace: e.ws,
		Page:      e.pg,
		Mode:      e.mode.String(),
		Exists:    e.exists,
		Dirty:     e.draft != e.text,
		DraftLen:  len(e.draft),
	}
}

// ComponentType implements introspection.Component.
func (e *Editor) ComponentType() string {
	return "editor"
}

var _ introspection.Introspectable = (*Editor)(nil)
