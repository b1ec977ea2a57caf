// Package fs keeps local drafts of page documents on disk so they can be
// edited with any editor, and watches them for changes.
//
// Layout: <root>/<workspace>/<page>.md
package fs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// DraftExt is the extension of draft files.
const DraftExt = ".md"

// Config configures Drafts.
type Config struct {
	// Path is the root directory. It is created on first write.
	Path   string
	Logger *slog.Logger
	// ErrorHandler receives runtime watcher failures.
	ErrorHandler func(error)
}

// Drafts is the on-disk draft store.
type Drafts struct {
	Path   string
	config Config

	mu            sync.RWMutex
	watcherActive bool
	watched       string
}

// NewDrafts creates a store rooted at cfg.Path.
func NewDrafts(cfg Config) *Drafts {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Drafts{Path: cfg.Path, config: cfg}
}

// File returns the draft path of page pg in workspace ws.
func (d *Drafts) File(ws, pg int) string {
	return filepath.Join(d.Path, strconv.Itoa(ws), strconv.Itoa(pg)+DraftExt)
}

// Write stores text as the draft of (ws, pg).
func (d *Drafts) Write(ws, pg int, text string) (string, error) {
	path := d.File(ws, pg)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create draft dir: %w", err)
	}
	if err := WriteFileAtomic(path, strings.NewReader(text), 0o644); err != nil {
		return "", err
	}
	d.config.Logger.Debug("draft written", "path", path, "bytes", len(text))
	return path, nil
}

// Read returns the draft of (ws, pg). ok is false when none exists.
func (d *Drafts) Read(ws, pg int) (text string, ok bool, err error) {
	data, err := os.ReadFile(d.File(ws, pg))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// Remove deletes the draft of (ws, pg). A missing draft is not an error.
func (d *Drafts) Remove(ws, pg int) error {
	err := os.Remove(d.File(ws, pg))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// DraftRef identifies one stored draft.
type DraftRef struct {
	Workspace int
	Page      int
	Path      string
}

// List returns every draft under the root.
func (d *Drafts) List() ([]DraftRef, error) {
	var out []DraftRef
	err := filepath.WalkDir(d.Path, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && path == d.Path {
				return filepath.SkipDir
			}
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if ref, ok := d.parse(path); ok {
			out = append(out, ref)
		}
		return nil
	})
	return out, err
}

// parse maps a file path back to its draft identity.
func (d *Drafts) parse(path string) (DraftRef, bool) {
	rel, err := filepath.Rel(d.Path, path)
	if err != nil {
		return DraftRef{}, false
	}
	dir, file := filepath.Split(rel)
	if strings.HasPrefix(file, TempFilePrefix) || filepath.Ext(file) != DraftExt {
		return DraftRef{}, false
	}
	ws, err := strconv.Atoi(filepath.Clean(dir))
	if err != nil {
		return DraftRef{}, false
	}
	pg, err := strconv.Atoi(strings.TrimSuffix(file, DraftExt))
	if err != nil {
		return DraftRef{}, false
	}
	return DraftRef{Workspace: ws, Page: pg, Path: path}, true
}

func (d *Drafts) setWatcherActive(active bool, path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.watcherActive = active
	d.watched = path
}
