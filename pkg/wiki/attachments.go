package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"github.com/aretw0/introspection"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/mdwiki/pkg/core"
	"github.com/aretw0/mdwiki/pkg/typed"
)

// ThumbnailSize is the edge length requested for generated thumbnails.
const ThumbnailSize = 10

// AttachMode is the active tab of the attachment dialog.
type AttachMode int

const (
	ModeUpload AttachMode = iota
	ModeLinkByURL
	ModeBrowse
)

func (m AttachMode) String() string {
	switch m {
	case ModeLinkByURL:
		return "link"
	case ModeBrowse:
		return "browse"
	default:
		return "upload"
	}
}

// Attachments manages the images of one workspace. Every successful
// operation returns the markdown fragment to append to a draft.
type Attachments struct {
	client core.SyncClient
	links  core.Links
	logger *slog.Logger
	ws     int

	mu       sync.Mutex
	open     bool
	mode     AttachMode
	fieldErr *core.FieldError
	list     []core.Attachment

	listGen core.Generation
}

// NewAttachments creates the manager for workspace ws. links resolves the
// fixed download endpoint into absolute URLs.
func NewAttachments(client core.SyncClient, links core.Links, ws int, opts ...Option) *Attachments {
	cfg := newConfig(opts)
	return &Attachments{
		client: client,
		links:  links,
		logger: cfg.logger,
		ws:     ws,
	}
}

// Open shows the dialog in mode.
func (a *Attachments) Open(mode AttachMode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.open = true
	a.mode = mode
	a.fieldErr = nil
}

// Close hides the dialog.
func (a *Attachments) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.open = false
	a.fieldErr = nil
}

func (a *Attachments) IsOpen() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.open
}

func (a *Attachments) Mode() AttachMode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// FieldError returns the message of the link form, if any.
func (a *Attachments) FieldError() *core.FieldError {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fieldErr
}

// SwitchMode changes the active mode and clears the previous mode's error.
// Entering ModeBrowse refetches the list.
func (a *Attachments) SwitchMode(ctx context.Context, mode AttachMode) error {
	a.mu.Lock()
	a.mode = mode
	a.fieldErr = nil
	a.mu.Unlock()

	if mode == ModeBrowse {
		_, err := a.Browse(ctx)
		return err
	}
	return nil
}

// Upload sends one image to the workspace and returns the fragment for its
// resolved download URL. Failures are logged and returned; they set no
// field message.
func (a *Attachments) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	res, err := a.client.Do(ctx, core.Request{
		Method: http.MethodPost,
		Path:   core.UploadPath(a.ws),
		Multipart: &core.Multipart{
			FileField: "file",
			FileName:  name,
			Content:   r,
			Fields: map[string]string{
				"thumbnailHeight": strconv.Itoa(ThumbnailSize),
				"thumbnailWidth":  strconv.Itoa(ThumbnailSize),
			},
		},
	})
	if err != nil {
		a.logger.Warn("upload failed", "workspace", a.ws, "file", name, "error", err)
		return "", wrap("upload "+name, err)
	}

	var att core.Attachment
	if err := json.Unmarshal(res.Body, &att); err != nil || att.GUID == "" {
		a.logger.Warn("upload returned no identifier", "workspace", a.ws, "file", name)
		return "", fmt.Errorf("upload %s: no identifier in reply: %w", name, core.ErrSilentFailure)
	}

	handle, err := a.client.Do(ctx, core.Request{Method: http.MethodGet, Path: core.DownloadPath(att.GUID), Discard: true})
	if err != nil {
		a.logger.Warn("download handle failed", "guid", att.GUID, "error", err)
		return "", wrap("resolve "+att.GUID, err)
	}
	url := handle.URL
	if url == "" {
		url = a.links.Resolve(core.DownloadPath(att.GUID))
	}

	a.Close()
	a.logger.Info("uploaded image", "workspace", a.ws, "file", name, "guid", att.GUID)
	return core.ImageFragment(url), nil
}

// UploadGlob uploads every file matching pattern (doublestar syntax, e.g.
// "shots/**/*.png") in lexical order. It stops at the first failure and
// returns the fragments produced so far.
func (a *Attachments) UploadGlob(ctx context.Context, pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, core.Invalid("pattern", err.Error())
	}
	if len(matches) == 0 {
		return nil, core.Invalid("pattern", fmt.Sprintf("no files match %q", pattern))
	}
	slices.Sort(matches)

	var fragments []string
	for _, path := range matches {
		frag, err := a.uploadFile(ctx, path)
		if err != nil {
			return fragments, err
		}
		fragments = append(fragments, frag)
	}
	return fragments, nil
}

func (a *Attachments) uploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return a.Upload(ctx, filepath.Base(path), f)
}

// LinkByURL accepts an external image URL. Invalid URLs set a field
// message and never reach the network.
func (a *Attachments) LinkByURL(path string) (string, error) {
	if !core.ValidImageURL(path) {
		fe := core.Invalid("path", "enter a valid absolute image URL")
		a.mu.Lock()
		a.fieldErr = fe
		a.mu.Unlock()
		return "", fe
	}
	a.Close()
	return core.ImageFragment(path), nil
}

// Browse refetches the attachment list.
func (a *Attachments) Browse(ctx context.Context) ([]core.Attachment, error) {
	ticket := a.listGen.Next()
	list, err := typed.List[core.Attachment](ctx, a.client, core.UploadsPath(), core.DefaultBunch)
	if !a.listGen.Current(ticket) {
		a.logger.Debug("dropping stale attachment list", "ticket", ticket)
		return list, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.logger.Warn("list attachments failed", "error", err)
		a.list = nil
		return nil, wrap("list attachments", err)
	}
	a.list = list
	return list, nil
}

// List returns the last fetched attachment list.
func (a *Attachments) List() []core.Attachment {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]core.Attachment(nil), a.list...)
}

// Insert returns the fragment referencing attachment guid through the
// download endpoint.
func (a *Attachments) Insert(guid string) string {
	a.Close()
	return core.ImageFragment(a.links.Resolve(core.DownloadPath(guid)))
}

// ThumbnailURL is the preview URL of attachment guid.
func (a *Attachments) ThumbnailURL(guid string) string {
	return a.links.Resolve(core.ThumbnailPath(guid))
}

// Delete removes attachment guid and refetches the list. Documents that
// embed it keep their reference.
func (a *Attachments) Delete(ctx context.Context, guid string) error {
	if err := typed.Exec(ctx, a.client, http.MethodDelete, core.DeleteImagePath(guid), nil); err != nil {
		a.logger.Warn("delete attachment failed", "guid", guid, "error", err)
		return wrap("delete "+guid, err)
	}
	_, _ = a.Browse(ctx)
	return nil
}

// AttachmentsState is the introspection snapshot of Attachments.
type AttachmentsState struct {
	Workspace int    `json:"workspace"`
	Open      bool   `json:"open"`
	Mode      string `json:"mode"`
	Listed    int    `json:"listed"`
	Error     string `json:"error,omitempty"`
}

// State implements introspection.Introspectable.
func (a *Attachments) State() any {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := AttachmentsState{
		Workspace: a.ws,
		Open:      a.open,
		Mode:      a.mode.String(),
		Listed:    len(a.list),
	}
	if a.fieldErr != nil {
		st.Error = a.fieldErr.Message
	}
	return st
}

// ComponentType implements introspection.Component.
func (a *Attachments) ComponentType() string {
	return "attachments"
}

var _ introspection.Introspectable = (*Attachments)(nil)
