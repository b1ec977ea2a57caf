// Package wikitest provides an in-memory wiki backend for tests.
//
// The server speaks the same HTTP contract as the real backend: spaces,
// nested pages, one document per page, image uploads with redirecting
// download handles, PDF export and cookie sessions. Failure knobs let tests
// force specific status codes on the next matching request.
package wikitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/aretw0/mdwiki/pkg/core"
)

// SessionCookie is the name of the cookie set by a successful login.
const SessionCookie = "MDWIKI_SESSION"

// DefaultPassword belongs to the user created by NewServer.
const DefaultPassword = "secret123"

type space struct {
	ws core.Workspace
}

type page struct {
	id     int
	ws     int
	parent int
	name   string
	shared bool
	doc    *string
}

type upload struct {
	att  core.Attachment
	ws   int
	data []byte
}

type failure struct {
	method string
	prefix string
	status int
}

// Server is an httptest server backed by in-memory maps. It is safe for
// concurrent use.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	nextID    int
	spaces    map[int]*space
	order     []int
	pages     map[int]*page
	pageOrder []int
	uploads   map[string]*upload
	upOrder   []string
	user      core.Person
	password  string
	sessions  map[string]bool
	token     string
	requireIn bool
	denied    map[string]bool
	failures  []failure
	calls     []string
}

// Option configures a Server.
type Option func(*Server)

// WithLoginRequired rejects every non-auth request without a session or
// the bearer token with 401.
func WithLoginRequired() Option {
	return func(s *Server) {
		s.requireIn = true
	}
}

// WithToken accepts token as a bearer credential.
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = token
	}
}

// WithUser replaces the default user.
func WithUser(p core.Person, password string) Option {
	return func(s *Server) {
		s.user = p
		s.password = password
	}
}

// NewServer starts a server. Callers must Close it.
func NewServer(opts ...Option) *Server {
	s := &Server{
		spaces:   make(map[int]*space),
		pages:    make(map[int]*page),
		uploads:  make(map[string]*upload),
		sessions: make(map[string]bool),
		denied:   make(map[string]bool),
		user: core.Person{
			ID:       1,
			Username: "ada",
			Name:     "Ada Lovelace",
			Email:    "ada@example.com",
			Enabled:  true,
		},
		password: DefaultPassword,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	router := mux.NewRouter()
	router.Use(s.record, s.inject, s.authenticate)

	router.HandleFunc("/auth/login", s.handleLogin).Methods("POST")
	router.HandleFunc("/auth/whoami", s.handleWhoAmI).Methods("GET")
	router.HandleFunc("/auth/logout", s.handleLogout).Methods("POST")

	router.HandleFunc("/spaces", s.handleListSpaces).Methods("GET")
	router.HandleFunc("/spaces", s.handleCreateSpace).Methods("POST")
	router.HandleFunc("/spaces/{ws:[0-9]+}", s.handleGetSpace).Methods("GET")
	router.HandleFunc("/spaces/{ws:[0-9]+}", s.handleUpdateSpace).Methods("PUT")
	router.HandleFunc("/spaces/{ws:[0-9]+}", s.handleDeleteSpace).Methods("DELETE")

	router.HandleFunc("/spaces/{ws:[0-9]+}/pages", s.handleListPages).Methods("GET")
	router.HandleFunc("/spaces/{ws:[0-9]+}/pages", s.handleCreatePage).Methods("POST")
	router.HandleFunc("/spaces/{ws:[0-9]+}/pages/{pg:[0-9]+}", s.handleGetPage).Methods("GET")
	router.HandleFunc("/spaces/{ws:[0-9]+}/pages/{pg:[0-9]+}", s.handleCreatePage).Methods("POST")
	router.HandleFunc("/spaces/{ws:[0-9]+}/pages/{pg:[0-9]+}", s.handleUpdatePage).Methods("PUT")
	router.HandleFunc("/spaces/{ws:[0-9]+}/pages/{pg:[0-9]+}", s.handleDeletePage).Methods("DELETE")

	router.HandleFunc("/spaces/{ws:[0-9]+}/pages/{pg:[0-9]+}/document", s.handleGetDocument).Methods("GET")
	router.HandleFunc("/spaces/{ws:[0-9]+}/pages/{pg:[0-9]+}/document", s.handleCreateDocument).Methods("POST")
	router.HandleFunc("/spaces/{ws:[0-9]+}/pages/{pg:[0-9]+}/document", s.handleUpdateDocument).Methods("PUT")
	router.HandleFunc("/spaces/{ws:[0-9]+}/pages/{pg:[0-9]+}/document/pdf", s.handleExport).Methods("GET")

	router.HandleFunc("/spaces/{ws:[0-9]+}/upload/image", s.handleUpload).Methods("POST")
	router.HandleFunc("/user/uploads", s.handleListUploads).Methods("GET")
	router.HandleFunc("/download/image/{guid}", s.handleDownload).Methods("GET")
	router.HandleFunc("/download/thumbnail/{guid}", s.handleThumbnail).Methods("GET")
	router.HandleFunc("/files/{guid}", s.handleFile).Methods("GET")
	router.HandleFunc("/delete/image/{guid}", s.handleDeleteUpload).Methods("DELETE")

	return router
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status := 0
		for i, f := range s.failures {
			if f.method == r.Method && strings.HasPrefix(r.URL.Path, f.prefix) {
				status = f.status
				s.failures = append(s.failures[:i], s.failures[i+1:]...)
				break
			}
		}
		denied := r.Method == http.MethodGet && s.denied[r.URL.Path]
		s.mu.Unlock()

		switch {
		case status != 0:
			respondError(w, status, "injected failure")
		case denied:
			respondError(w, http.StatusForbidden, "access denied")
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/auth/") || s.authorized(r) {
			next.ServeHTTP(w, r)
			return
		}
		s.mu.Lock()
		required := s.requireIn
		s.mu.Unlock()
		if required {
			respondError(w, http.StatusUnauthorized, "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorized(r *http.Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" && r.Header.Get("Authorization") == "Bearer "+s.token {
		return true
	}
	c, err := r.Cookie(SessionCookie)
	return err == nil && s.sessions[c.Value]
}

// FailNext makes the next request with method whose path starts with
// prefix fail with status.
func (s *Server) FailNext(method, prefix string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{method: method, prefix: prefix, status: status})
}

// Deny makes GET path answer 403 until Allow is called.
func (s *Server) Deny(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denied[path] = true
}

// Allow reverts Deny.
func (s *Server) Allow(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.denied, path)
}

// Calls returns every request seen so far as "METHOD path".
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// ResetCalls clears the call log.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// SeedWorkspace inserts a workspace directly and returns its id.
func (s *Server) SeedWorkspace(name string, v core.Visibility) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertSpace(name, v.Shared())
}

// SeedPage inserts a page directly and returns its id. parent 0 is top-level.
func (s *Server) SeedPage(ws, parent int, name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertPage(ws, parent, name, false)
}

// SeedDocument stores text for a page directly.
func (s *Server) SeedDocument(pg int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pages[pg]; ok {
		p.doc = &text
	}
}

// Document returns the stored text of a page.
func (s *Server) Document(pg int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[pg]
	if !ok || p.doc == nil {
		return "", false
	}
	return *p.doc, true
}

// SeedUpload stores an attachment directly and returns its guid.
func (s *Server) SeedUpload(ws int, name string, data []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertUpload(ws, name, http.DetectContentType(data), data)
}

// HasUpload reports whether guid is still stored.
func (s *Server) HasUpload(guid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.uploads[guid]
	return ok
}

// FileURL is the final location a download handle redirects to.
func (s *Server) FileURL(guid string) string {
	return s.URL + "/files/" + guid
}

func (s *Server) insertSpace(name string, shared bool) int {
	s.nextID++
	id := s.nextID
	s.spaces[id] = &space{ws: core.Workspace{ID: id, Name: name, Visibility: core.VisibilityFromShared(shared)}}
	s.order = append(s.order, id)
	return id
}

func (s *Server) insertPage(ws, parent int, name string, shared bool) int {
	s.nextID++
	id := s.nextID
	s.pages[id] = &page{id: id, ws: ws, parent: parent, name: name, shared: shared}
	s.pageOrder = append(s.pageOrder, id)
	return id
}

func (s *Server) insertUpload(ws int, name, fileType string, data []byte) string {
	guid := uuid.NewString()
	s.uploads[guid] = &upload{
		att:  core.Attachment{GUID: guid, FileName: name, FileType: fileType, Size: int64(len(data))},
		ws:   ws,
		data: data,
	}
	s.upOrder = append(s.upOrder, guid)
	return guid
}

func (s *Server) String() string {
	return fmt.Sprintf("wikitest(%s)", s.URL)
}
