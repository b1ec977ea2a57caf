package wikitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/aretw0/mdwiki/pkg/core"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds core.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	known := creds.UsernameOrEmail == s.user.Username || creds.UsernameOrEmail == s.user.Email
	if !known || creds.Password != s.password {
		respondError(w, http.StatusUnauthorized, "bad credentials")
		return
	}
	sid := uuid.NewString()
	s.sessions[sid] = true
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: sid, Path: "/", HttpOnly: true})
	respondJSON(w, http.StatusOK, s.user)
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		respondError(w, http.StatusUnauthorized, "not logged in")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	respondJSON(w, http.StatusOK, s.user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSpaces(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Workspace, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.spaces[id].ws)
	}
	respondJSON(w, http.StatusOK, paginate(r, out))
}

func (s *Server) handleCreateSpace(w http.ResponseWriter, r *http.Request) {
	var req core.WorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spaceNamed(req.Name, 0) {
		respondError(w, http.StatusConflict, "space name already in use")
		return
	}
	id := s.insertSpace(req.Name, req.Shared)
	respondJSON(w, http.StatusCreated, s.spaces[id].ws)
}

func (s *Server) handleGetSpace(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.spaces[intVar(r, "ws")]
	if !ok {
		respondError(w, http.StatusNotFound, "space not found")
		return
	}
	respondJSON(w, http.StatusOK, sp.ws)
}

func (s *Server) handleUpdateSpace(w http.ResponseWriter, r *http.Request) {
	var req core.WorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := intVar(r, "ws")
	sp, ok := s.spaces[id]
	if !ok {
		respondError(w, http.StatusNotFound, "space not found")
		return
	}
	if s.spaceNamed(req.Name, id) {
		respondError(w, http.StatusConflict, "space name already in use")
		return
	}
	sp.ws.Name = req.Name
	sp.ws.Visibility = core.VisibilityFromShared(req.Shared)
	respondJSON(w, http.StatusOK, sp.ws)
}

func (s *Server) handleDeleteSpace(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := intVar(r, "ws")
	if _, ok := s.spaces[id]; !ok {
		respondError(w, http.StatusNotFound, "space not found")
		return
	}
	delete(s.spaces, id)
	s.order = slices.DeleteFunc(s.order, func(x int) bool { return x == id })

	for pid, p := range s.pages {
		if p.ws == id {
			delete(s.pages, pid)
		}
	}
	s.pageOrder = slices.DeleteFunc(s.pageOrder, func(x int) bool { _, ok := s.pages[x]; return !ok })

	for guid, u := range s.uploads {
		if u.ws == id {
			delete(s.uploads, guid)
		}
	}
	s.upOrder = slices.DeleteFunc(s.upOrder, func(g string) bool { _, ok := s.uploads[g]; return !ok })

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws := intVar(r, "ws")
	if _, ok := s.spaces[ws]; !ok {
		respondError(w, http.StatusNotFound, "space not found")
		return
	}
	respondJSON(w, http.StatusOK, paginate(r, s.tree(ws, 0)))
}

// handleCreatePage serves both top-level and sub-page creation.
func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	var req core.PageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ws := intVar(r, "ws")
	if _, ok := s.spaces[ws]; !ok {
		respondError(w, http.StatusNotFound, "space not found")
		return
	}
	parent := intVar(r, "pg")
	if parent != 0 {
		if p, ok := s.pages[parent]; !ok || p.ws != ws {
			respondError(w, http.StatusNotFound, "parent page not found")
			return
		}
	}
	id := s.insertPage(ws, parent, req.Name, req.Shared)
	respondJSON(w, http.StatusCreated, s.view(s.pages[id]))
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.page(r)
	if !ok {
		respondError(w, http.StatusNotFound, "page not found")
		return
	}
	respondJSON(w, http.StatusOK, s.view(p))
}

func (s *Server) handleUpdatePage(w http.ResponseWriter, r *http.Request) {
	var req core.PageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.page(r)
	if !ok {
		respondError(w, http.StatusNotFound, "page not found")
		return
	}
	p.name = req.Name
	p.shared = req.Shared
	respondJSON(w, http.StatusOK, s.view(p))
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.page(r)
	if !ok {
		respondError(w, http.StatusNotFound, "page not found")
		return
	}
	s.deletePage(p.id)
	s.pageOrder = slices.DeleteFunc(s.pageOrder, func(x int) bool { _, ok := s.pages[x]; return !ok })
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deletePage(id int) {
	delete(s.pages, id)
	for pid, p := range s.pages {
		if p.parent == id {
			s.deletePage(pid)
		}
	}
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.page(r)
	if !ok || p.doc == nil {
		respondError(w, http.StatusNotFound, "document not found")
		return
	}
	respondJSON(w, http.StatusOK, core.Document{Text: *p.doc})
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	s.writeDocument(w, r, true)
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	s.writeDocument(w, r, false)
}

func (s *Server) writeDocument(w http.ResponseWriter, r *http.Request, create bool) {
	var doc core.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.page(r)
	switch {
	case !ok:
		respondError(w, http.StatusNotFound, "page not found")
		return
	case create && p.doc != nil:
		respondError(w, http.StatusConflict, "document already exists")
		return
	case !create && p.doc == nil:
		respondError(w, http.StatusNotFound, "document not found")
		return
	}
	text := doc.Text
	p.doc = &text
	status := http.StatusOK
	if create {
		status = http.StatusCreated
	}
	respondJSON(w, status, core.Document{Text: text})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := core.ExportOptions{Font: q.Get("font"), Tree: q.Get("tree") == "true"}
	opts.FontSize, _ = strconv.Atoi(q.Get("fontSize"))
	if err := opts.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	p, ok := s.page(r)
	var (
		body strings.Builder
		name string
	)
	if ok {
		name = p.name
		fmt.Fprintf(&body, "%%PDF-1.4\n%% font=%s size=%d\n", opts.Font, opts.FontSize)
		s.render(&body, p, opts.Tree)
		body.WriteString("%%EOF\n")
	}
	s.mu.Unlock()
	if !ok {
		respondError(w, http.StatusNotFound, "page not found")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, name))
	_, _ = io.WriteString(w, body.String())
}

func (s *Server) render(b *strings.Builder, p *page, tree bool) {
	b.WriteString("% " + p.name + "\n")
	if p.doc != nil {
		b.WriteString(*p.doc + "\n")
	}
	if !tree {
		return
	}
	for _, id := range s.pageOrder {
		if child := s.pages[id]; child.parent == p.id {
			s.render(b, child, true)
		}
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ws := intVar(r, "ws")
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable file")
		return
	}
	fileType := header.Header.Get("Content-Type")
	if fileType == "" || fileType == "application/octet-stream" {
		fileType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(fileType, "image/") {
		respondError(w, http.StatusBadRequest, "not an image")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.spaces[ws]; !ok {
		respondError(w, http.StatusNotFound, "space not found")
		return
	}
	guid := s.insertUpload(ws, header.Filename, fileType, data)
	respondJSON(w, http.StatusCreated, s.uploads[guid].att)
}

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Attachment, 0, len(s.upOrder))
	for _, guid := range s.upOrder {
		out = append(out, s.uploads[guid].att)
	}
	respondJSON(w, http.StatusOK, paginate(r, out))
}

// handleDownload redirects to the stored file so that clients observe the
// resolved location of a download handle.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	guid := mux.Vars(r)["guid"]
	if !s.HasUpload(guid) {
		respondError(w, http.StatusNotFound, "image not found")
		return
	}
	http.Redirect(w, r, "/files/"+guid, http.StatusFound)
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	s.handleFile(w, r)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u, ok := s.uploads[mux.Vars(r)["guid"]]
	s.mu.Unlock()
	if !ok {
		respondError(w, http.StatusNotFound, "image not found")
		return
	}
	w.Header().Set("Content-Type", u.att.FileType)
	_, _ = w.Write(u.data)
}

func (s *Server) handleDeleteUpload(w http.ResponseWriter, r *http.Request) {
	guid := mux.Vars(r)["guid"]
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.uploads[guid]; !ok {
		respondError(w, http.StatusNotFound, "image not found")
		return
	}
	delete(s.uploads, guid)
	s.upOrder = slices.DeleteFunc(s.upOrder, func(g string) bool { return g == guid })
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) spaceNamed(name string, except int) bool {
	for id, sp := range s.spaces {
		if id != except && sp.ws.Name == name {
			return true
		}
	}
	return false
}

func (s *Server) page(r *http.Request) (*page, bool) {
	p, ok := s.pages[intVar(r, "pg")]
	if !ok || p.ws != intVar(r, "ws") {
		return nil, false
	}
	return p, true
}

func (s *Server) view(p *page) core.Page {
	return core.Page{
		ID:         p.id,
		Name:       p.name,
		Visibility: core.VisibilityFromShared(p.shared),
		Subpages:   s.tree(p.ws, p.id),
	}
}

func (s *Server) tree(ws, parent int) []core.Page {
	out := []core.Page{}
	for _, id := range s.pageOrder {
		if p := s.pages[id]; p.ws == ws && p.parent == parent {
			out = append(out, s.view(p))
		}
	}
	return out
}

func intVar(r *http.Request, name string) int {
	n, _ := strconv.Atoi(mux.Vars(r)[name])
	return n
}

func paginate[T any](r *http.Request, items []T) []T {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("bunch"))
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil || size <= 0 {
		size = len(items)
	}
	if offset >= len(items) {
		return []T{}
	}
	return items[offset:min(offset+size, len(items))]
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_, _ = w.Write(response)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
