package wiki

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/mdwiki/pkg/core"
	"github.com/aretw0/mdwiki/pkg/typed"
)

// MinPasswordLength is enforced locally before a login request.
const MinPasswordLength = 6

// Session tracks the caller's identity.
type Session struct {
	client core.SyncClient
	store  *core.Store
	logger *slog.Logger

	mu     sync.Mutex
	person *core.Person
}

func NewSession(client core.SyncClient, store *core.Store, opts ...Option) *Session {
	cfg := newConfig(opts)
	return &Session{client: client, store: store, logger: cfg.logger}
}

// Login authenticates and then resolves the caller's identity.
func (s *Session) Login(ctx context.Context, usernameOrEmail, password string) (core.Person, error) {
	if strings.TrimSpace(usernameOrEmail) == "" {
		return core.Person{}, core.Invalid("usernameOrEmail", "username or email is required")
	}
	if len(password) < MinPasswordLength {
		return core.Person{}, core.Invalid("password", fmt.Sprintf("password must have at least %d characters", MinPasswordLength))
	}

	creds := core.Credentials{UsernameOrEmail: usernameOrEmail, Password: password}
	if err := typed.Exec(ctx, s.client, http.MethodPost, core.LoginPath, creds); err != nil {
		if core.StatusOf(err) == http.StatusUnauthorized {
			err = &core.FieldError{Field: "password", Message: "wrong username or password", Kind: err}
		}
		return core.Person{}, wrap("login", fieldError(err, "usernameOrEmail", "invalid username or email", "account conflict"))
	}
	s.store.Dispatch(core.LoggedIn{})
	return s.WhoAmI(ctx)
}

// WhoAmI resolves the caller's identity. Failure terminates the session:
// the store is reset and core.ErrSessionTerminated is returned.
func (s *Session) WhoAmI(ctx context.Context) (core.Person, error) {
	p, err := typed.Get[core.Person](ctx, s.client, core.WhoAmIPath, nil)
	if err != nil {
		s.logger.Warn("identity resolution failed, terminating session", "error", err)
		s.reset()
		return core.Person{}, fmt.Errorf("%w: %w", core.ErrSessionTerminated, err)
	}
	s.mu.Lock()
	s.person = &p
	s.mu.Unlock()
	s.store.Dispatch(core.LoggedIn{})
	return p, nil
}

// Logout ends the session. Local state is reset even if the request fails.
func (s *Session) Logout(ctx context.Context) error {
	err := typed.Exec(ctx, s.client, http.MethodPost, core.LogoutPath, nil)
	s.reset()
	return wrap("logout", err)
}

// Person returns the resolved identity, if any.
func (s *Session) Person() (core.Person, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.person == nil {
		return core.Person{}, false
	}
	return *s.person, true
}

func (s *Session) reset() {
	s.mu.Lock()
	s.person = nil
	s.mu.Unlock()
	s.store.Dispatch(core.LoggedOut{})
}

// SessionState is the introspection snapshot of a Session.
type SessionState struct {
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Session) State() any {
	st := SessionState{LoggedIn: s.store.Snapshot().LoggedIn}
	if p, ok := s.Person(); ok {
		st.Username = p.Username
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Session) ComponentType() string {
	return "session"
}

var _ introspection.Introspectable = (*Session)(nil)
