package core

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes the shared client state for observability.
type StoreState struct {
	LoggedIn    bool   `json:"logged_in"`
	Mode        string `json:"mode"`
	WorkspaceID int    `json:"workspace_id,omitempty"`
	EditMode    bool   `json:"edit_mode"`
	Workspaces  int    `json:"workspaces"`
	Pages       int    `json:"pages"`
	Header      string `json:"header,omitempty"`
	PageName    string `json:"page_name,omitempty"`
	Error       bool   `json:"error"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StoreState{
		LoggedIn:    s.state.LoggedIn,
		Mode:        s.state.Nav.Mode.String(),
		WorkspaceID: s.state.Nav.WorkspaceID,
		EditMode:    s.state.Nav.EditMode,
		Workspaces:  len(s.state.Workspaces),
		Pages:       len(s.state.Pages),
		Header:      s.state.Header.Name,
		PageName:    s.state.PageName,
		Error:       s.state.Error,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
