package sequencer

import "time"

// Timbre is the set of rendering parameters resolved for a note at
// trigger time: either the live state of the source shape, or the note's
// own snapshot when the shape is gone.
type Timbre struct {
	Color    uint32
	SizeHint int
	Velocity float64
	Name     string // current timbre/soundfont selection, drives latency lookup
}

// Synth is the fire-and-forget trigger boundary to whatever is making
// sound. Implementations must return promptly; the core never waits for
// the sound to finish.
type Synth interface {
	Trigger(kind Kind, key int, velocity float64, timbre Timbre, duration time.Duration)
}

// Resolver looks up the current state of the drawable that produced a
// note. Returning false means the shape no longer exists and the caller
// falls back to the note's snapshot fields.
type Resolver interface {
	Resolve(sourceID string) (Timbre, bool)
}

// DirtyMarker is whatever owns the project's unsaved-changes flag
type DirtyMarker interface {
	MarkDirty()
}
