package sequencer

// Default snapshot capacities. The note sequence keeps a deeper history
// than the shape canvas document.
const (
	SequenceHistoryLimit = 50
	CanvasHistoryLimit   = 20
)

// History is a bounded undo/redo stack of full deep-copy snapshots.
// Linear-history semantics: a fresh SaveState invalidates the redo stack,
// and the oldest snapshot falls off the bottom when over capacity.
type History struct {
	limit int
	undo  [][]NoteEvent
	redo  [][]NoteEvent
}

// NewHistory creates a history with the given snapshot capacity
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{limit: limit}
}

// SaveState deep-copies the current state onto the undo stack. Call this
// before a mutation, not after.
func (h *History) SaveState(current []NoteEvent) {
	h.undo = append(h.undo, cloneEvents(current))
	if len(h.undo) > h.limit {
		// FIFO eviction of the oldest snapshot
		h.undo = h.undo[1:]
	}
	h.redo = nil
}

// Undo returns the most recent snapshot, pushing the current state onto
// the redo stack. The second return is false when there is nothing to undo.
func (h *History) Undo(current []NoteEvent) ([]NoteEvent, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	h.redo = append(h.redo, cloneEvents(current))
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return top, true
}

// Redo is the symmetric inverse of Undo
func (h *History) Redo(current []NoteEvent) ([]NoteEvent, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	h.undo = append(h.undo, cloneEvents(current))
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return top, true
}

// CanUndo reports whether an undo snapshot is available
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo reports whether a redo snapshot is available
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// UndoDepth returns the number of stored undo snapshots
func (h *History) UndoDepth() int {
	return len(h.undo)
}

// Clear drops both stacks (project load, New)
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// cloneEvents deep-copies a note collection. NoteEvent is all value
// fields, so a slice copy preserves SourceID linkage across round-trips.
func cloneEvents(events []NoteEvent) []NoteEvent {
	out := make([]NoteEvent, len(events))
	copy(out, events)
	return out
}
