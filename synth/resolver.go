package synth

import (
	"sync"

	"shapeloop/sequencer"
)

// ShapeResolver is a map-backed sequencer.Resolver. The shape canvas
// registers each drawable's current timbre here as it is edited, and
// playback reads through it so edits are heard on already-recorded notes.
type ShapeResolver struct {
	mu     sync.RWMutex
	shapes map[string]sequencer.Timbre
}

// NewShapeResolver creates an empty resolver
func NewShapeResolver() *ShapeResolver {
	return &ShapeResolver{shapes: make(map[string]sequencer.Timbre)}
}

// Set registers or updates the current timbre for a shape
func (r *ShapeResolver) Set(sourceID string, t sequencer.Timbre) {
	r.mu.Lock()
	r.shapes[sourceID] = t
	r.mu.Unlock()
}

// Remove forgets a deleted shape. Notes that still reference it fall back
// to their recorded snapshot.
func (r *ShapeResolver) Remove(sourceID string) {
	r.mu.Lock()
	delete(r.shapes, sourceID)
	r.mu.Unlock()
}

// Resolve implements sequencer.Resolver
func (r *ShapeResolver) Resolve(sourceID string) (sequencer.Timbre, bool) {
	r.mu.RLock()
	t, ok := r.shapes[sourceID]
	r.mu.RUnlock()
	return t, ok
}
