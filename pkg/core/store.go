package core

import (
	"slices"
	"sync"
)

// Mode is the top-level navigation mode of the workspace tree.
type Mode int

const (
	ModeBrowsing Mode = iota
	ModeInside
)

func (m Mode) String() string {
	if m == ModeInside {
		return "inside"
	}
	return "browsing"
}

// NavigationState is client-local and never persisted.
type NavigationState struct {
	Mode        Mode
	WorkspaceID int
	EditMode    bool
}

// Browsing is the neutral root state.
func Browsing() NavigationState {
	return NavigationState{Mode: ModeBrowsing}
}

// Inside is the state of having workspace id open.
func Inside(id int) NavigationState {
	return NavigationState{Mode: ModeInside, WorkspaceID: id}
}

// IsInside reports whether workspace id is the open one.
func (n NavigationState) IsInside(id int) bool {
	return n.Mode == ModeInside && n.WorkspaceID == id
}

// Header is the cached display data of the open workspace.
type Header struct {
	Name       string
	Visibility Visibility
}

// State is the whole shared client state.
type State struct {
	LoggedIn   bool
	Workspaces []Workspace
	Header     Header
	Nav        NavigationState
	Pages      []Page
	PageName   string
	Error      bool
}

// InitialState is the state after a fresh start or a logout.
func InitialState() State {
	return State{Header: Header{Visibility: VisibilityPublic}, Nav: Browsing()}
}

// Action is an event applied to State by Reduce.
type Action interface {
	action()
}

type (
	LoggedIn         struct{}
	LoggedOut        struct{}
	WorkspacesLoaded struct{ Workspaces []Workspace }
	WorkspaceNamed   struct{ Header Header }
	Navigated        struct{ WorkspaceID int }
	WentBack         struct{}
	WorkspaceRemoved struct{ ID int }
	PagesLoaded      struct {
		WorkspaceID int
		Pages       []Page
	}
	PageNamed    struct{ Name string }
	ErrorRaised  struct{}
	ErrorCleared struct{}
	EditModeSet  struct{ On bool }
)

func (LoggedIn) action()         {}
func (LoggedOut) action()        {}
func (WorkspacesLoaded) action() {}
func (WorkspaceNamed) action()   {}
func (Navigated) action()        {}
func (WentBack) action()         {}
func (WorkspaceRemoved) action() {}
func (PagesLoaded) action()      {}
func (PageNamed) action()        {}
func (ErrorRaised) action()      {}
func (ErrorCleared) action()     {}
func (EditModeSet) action()      {}

// Reduce is the pure transition function of the client state.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case LoggedIn:
		s.LoggedIn = true
	case LoggedOut:
		return InitialState()
	case WorkspacesLoaded:
		s.Workspaces = slices.Clone(a.Workspaces)
	case WorkspaceNamed:
		s.Header = a.Header
	case Navigated:
		// Entering another workspace never shows the previous one's pages.
		if !s.Nav.IsInside(a.WorkspaceID) {
			s.Pages = nil
		}
		s.Nav = Inside(a.WorkspaceID)
		s.Error = false
	case WentBack:
		s.Nav = Browsing()
		s.Error = false
	case WorkspaceRemoved:
		if s.Nav.IsInside(a.ID) {
			s.Nav = Browsing()
			s.Pages = nil
			s.PageName = ""
			s.Header = InitialState().Header
			s.Error = false
		}
	case PagesLoaded:
		if s.Nav.IsInside(a.WorkspaceID) {
			s.Pages = slices.Clone(a.Pages)
		}
	case PageNamed:
		s.PageName = a.Name
	case ErrorRaised:
		s.Error = true
	case ErrorCleared:
		s.Error = false
	case EditModeSet:
		s.Nav.EditMode = a.On
	}
	return s
}

// Store is the explicit state container shared by the components.
// It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	state State
}

// NewStore creates a store holding state.
func NewStore(state State) *Store {
	return &Store{state: state}
}

// Dispatch applies a to the current state and returns the result.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	return s.state
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Workspaces = slices.Clone(st.Workspaces)
	st.Pages = slices.Clone(st.Pages)
	return st
}
