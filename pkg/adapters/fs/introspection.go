package fs

import (
	"github.com/aretw0/introspection"
)

// DraftsState exposes the draft store for observability.
type DraftsState struct {
	Path          string `json:"path"`
	WatcherActive bool   `json:"watcher_active"`
	Watching      string `json:"watching,omitempty"`
}

// State implements introspection.Introspectable.
func (d *Drafts) State() any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return DraftsState{
		Path:          d.Path,
		WatcherActive: d.watcherActive,
		Watching:      d.watched,
	}
}

// ComponentType implements introspection.Component.
func (d *Drafts) ComponentType() string {
	return "drafts"
}

var _ introspection.Introspectable = (*Drafts)(nil)
var _ introspection.Component = (*Drafts)(nil)
