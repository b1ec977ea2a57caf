// Package core holds the domain model of the wiki client: workspaces, pages,
// documents, attachments, the navigation state and the error taxonomy.
//
// It has no knowledge of HTTP. Components talk to the backend through the
// SyncClient port, which is implemented by pkg/adapters/rest.
package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Visibility decides whether a workspace (or page) is readable by other users.
type Visibility int

const (
	VisibilityPrivate Visibility = iota
	VisibilityPublic
)

func (v Visibility) String() string {
	if v == VisibilityPublic {
		return "public"
	}
	return "private"
}

// Shared reports the wire representation used by the backend.
func (v Visibility) Shared() bool {
	return v == VisibilityPublic
}

// VisibilityFromShared maps the backend "shared" flag back to a Visibility.
func VisibilityFromShared(shared bool) Visibility {
	if shared {
		return VisibilityPublic
	}
	return VisibilityPrivate
}

// ParseVisibility accepts "public" or "private" (case-insensitive).
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return VisibilityPublic, nil
	case "private", "":
		return VisibilityPrivate, nil
	}
	return VisibilityPrivate, fmt.Errorf("unknown visibility %q: %w", s, ErrValidation)
}

// MarshalText implements encoding.TextMarshaler.
func (v Visibility) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Visibility) UnmarshalText(b []byte) error {
	parsed, err := ParseVisibility(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Workspace is a top-level named container for pages.
type Workspace struct {
	ID         int
	Name       string
	Visibility Visibility
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type workspaceWire struct {
	ID        int       `json:"id,omitempty"`
	Name      string    `json:"name"`
	Shared    bool      `json:"shared"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// MarshalJSON encodes the workspace in the backend's wire format.
func (w Workspace) MarshalJSON() ([]byte, error) {
	return json.Marshal(workspaceWire{
		ID:        w.ID,
		Name:      w.Name,
		Shared:    w.Visibility.Shared(),
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	})
}

// UnmarshalJSON decodes the backend's wire format.
func (w *Workspace) UnmarshalJSON(b []byte) error {
	var wire workspaceWire
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*w = Workspace{
		ID:         wire.ID,
		Name:       wire.Name,
		Visibility: VisibilityFromShared(wire.Shared),
		CreatedAt:  wire.CreatedAt,
		UpdatedAt:  wire.UpdatedAt,
	}
	return nil
}

// WorkspaceRequest is the body of workspace create and update calls.
type WorkspaceRequest struct {
	Name   string `json:"name"`
	Shared bool   `json:"shared"`
}

// Page is a unit of content inside a workspace. Pages nest through Subpages.
//
// WorkspaceID and ParentID are not part of the wire format; the client fills
// them in from the request path and the position in the tree.
type Page struct {
	ID          int
	WorkspaceID int
	ParentID    int
	Name        string
	Visibility  Visibility
	Subpages    []Page
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type pageWire struct {
	ID        int        `json:"id,omitempty"`
	Name      string     `json:"name"`
	Shared    bool       `json:"shared"`
	Subpages  []pageWire `json:"subpages,omitempty"`
	CreatedAt time.Time  `json:"createdAt,omitzero"`
	UpdatedAt time.Time  `json:"updatedAt,omitzero"`
}

func (p Page) wire() pageWire {
	out := pageWire{
		ID:        p.ID,
		Name:      p.Name,
		Shared:    p.Visibility.Shared(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for _, sub := range p.Subpages {
		out.Subpages = append(out.Subpages, sub.wire())
	}
	return out
}

func (w pageWire) page() Page {
	out := Page{
		ID:         w.ID,
		Name:       w.Name,
		Visibility: VisibilityFromShared(w.Shared),
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
	for _, sub := range w.Subpages {
		out.Subpages = append(out.Subpages, sub.page())
	}
	return out
}

// MarshalJSON encodes the page in the backend's wire format.
func (p Page) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.wire())
}

// UnmarshalJSON decodes the backend's wire format.
func (p *Page) UnmarshalJSON(b []byte) error {
	var wire pageWire
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*p = wire.page()
	return nil
}

// Bind stamps the workspace and parent ids onto a page tree received from the backend.
func Bind(pages []Page, workspaceID, parentID int) []Page {
	out := make([]Page, len(pages))
	for i, p := range pages {
		p.WorkspaceID = workspaceID
		p.ParentID = parentID
		p.Subpages = Bind(p.Subpages, workspaceID, p.ID)
		out[i] = p
	}
	return out
}

// PageRequest is the body of page create and update calls.
type PageRequest struct {
	Name   string `json:"name"`
	Shared bool   `json:"shared"`
}

// Document is the markdown body of exactly one page.
type Document struct {
	PageID int    `json:"-"`
	Text   string `json:"text"`
}

// Attachment is an uploaded image, scoped to the workspace it was uploaded to.
type Attachment struct {
	GUID     string `json:"fileGUID"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	Size     int64  `json:"size"`
}

// Person is the identity returned by the whoami call.
type Person struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Enabled  bool   `json:"enabled"`
}

// Credentials is the body of the login call.
type Credentials struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

// EventType represents the kind of change observed on a document draft.
type EventType string

const (
	EventDraftChanged EventType = "DRAFT_CHANGED"
	EventDraftRemoved EventType = "DRAFT_REMOVED"
	EventSaved        EventType = "SAVED"
)

// Event represents a change that the CLI reacts to (e.g. a watched draft file was written).
type Event struct {
	Type      EventType
	Path      string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Path)
}
