package sequencer

// Kind identifies which drawn-shape instrument produced a note
type Kind int

const (
	KindPiano Kind = iota
	KindGuitar
	KindDrum
	KindSnare
)

func (k Kind) String() string {
	switch k {
	case KindPiano:
		return "piano"
	case KindGuitar:
		return "guitar"
	case KindDrum:
		return "drum"
	case KindSnare:
		return "snare"
	}
	return "unknown"
}

// Percussive reports whether the kind is keyed by PercKey instead of Pitch
func (k Kind) Percussive() bool {
	return k == KindDrum || k == KindSnare
}

// MinDuration is the shortest allowed note, in beats
const MinDuration = 0.125

// NoteEvent is one recorded trigger. Timing is in beats. TimbreColor and
// SizeHint are snapshots of the source shape so the note can be reproduced
// even if the shape is gone; SourceID lets playback prefer the shape's
// current look instead.
type NoteEvent struct {
	Start       float64 `json:"start"`
	Duration    float64 `json:"duration"`
	Kind        Kind    `json:"kind"`
	Pitch       int     `json:"pitch"`
	PercKey     int     `json:"percKey,omitempty"`
	Velocity    float64 `json:"velocity"`
	TimbreColor uint32  `json:"timbreColor"`
	SizeHint    int     `json:"sizeHint,omitempty"`
	SourceID    string  `json:"sourceId,omitempty"`
	Track       int     `json:"track"`
}

// End returns the beat position where the note stops sounding
func (n NoteEvent) End() float64 {
	return n.Start + n.Duration
}

// SetStart moves the note, clamping to the timeline origin
func (n *NoteEvent) SetStart(beat float64) {
	n.Start = clampStart(beat)
}

// SetDuration resizes the note, clamping to the minimum length
func (n *NoteEvent) SetDuration(beats float64) {
	n.Duration = clampDuration(beats)
}

// Normalize re-clamps every field to its valid range. Called on load and
// after construction so out-of-range input never rejects, only corrects.
func (n *NoteEvent) Normalize() {
	n.Start = clampStart(n.Start)
	n.Duration = clampDuration(n.Duration)
	if n.Pitch < 0 {
		n.Pitch = 0
	}
	if n.Pitch > 127 {
		n.Pitch = 127
	}
	if n.Velocity < 0 {
		n.Velocity = 0
	}
	if n.Velocity > 1 {
		n.Velocity = 1
	}
	if n.Track < 0 {
		n.Track = 0
	}
}

func clampStart(beat float64) float64 {
	if beat < 0 {
		return 0
	}
	return beat
}

func clampDuration(beats float64) float64 {
	if beats < MinDuration {
		return MinDuration
	}
	return beats
}
