package project

import "sync"

// Tracker owns the current project's name and unsaved-changes flag. It
// implements sequencer.DirtyMarker so the recorder can mark the project
// dirty without a process-wide singleton.
type Tracker struct {
	mu    sync.Mutex
	name  string
	dirty bool
}

// NewTracker creates a tracker for an unnamed, clean project
func NewTracker() *Tracker {
	return &Tracker{}
}

// MarkDirty flags unsaved changes
func (t *Tracker) MarkDirty() {
	t.mu.Lock()
	t.dirty = true
	t.mu.Unlock()
}

// Dirty reports whether there are unsaved changes
func (t *Tracker) Dirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dirty
}

// Name returns the current project name ("" if unnamed)
func (t *Tracker) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name
}

// SetSaved records a successful save under the given project name
func (t *Tracker) SetSaved(name string) {
	t.mu.Lock()
	t.name = name
	t.dirty = false
	t.mu.Unlock()
}
