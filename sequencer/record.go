package sequencer

import (
	"math"
	"time"

	"shapeloop/debug"
)

// RecorderState is the recording state machine position
type RecorderState int

const (
	RecIdle RecorderState = iota
	RecCountingIn
	RecRecording
)

// LiveNote is an externally triggered "instrument played" signal with the
// parameters needed to construct a note event
type LiveNote struct {
	Kind     Kind
	Pitch    int
	PercKey  int
	Velocity float64
	Duration float64 // beats
	Color    uint32
	SizeHint int
	SourceID string
}

// Recorder converts live instrument triggers plus the clock position into
// note events appended to the store. It handles count-in, floor
// quantization on record, and loop-layer bookkeeping.
type Recorder struct {
	store   *Store
	history *History
	clock   *Clock
	synth   Synth
	dirty   DirtyMarker

	state      RecorderState
	gridBeats  float64
	countBeats int
	maxLayers  int

	track      int
	countStart time.Time
	countFired int

	// OnCountTick fires once per count-in beat with the beats remaining
	OnCountTick func(remaining int)
	// OnRecordStart fires when count-in completes and recording begins
	OnRecordStart func()
	// OnLoopRestart fires on the loop downbeat while recording; the
	// recorder owns this signal so layering and audio stay aligned
	OnLoopRestart func()
	// OnAutoStop fires when recording stops itself, with a reason the UI
	// can show (release keys, stop metronome)
	OnAutoStop func(reason string)
}

// NewRecorder creates an idle recorder writing to the given store
func NewRecorder(store *Store, history *History, clock *Clock, synth Synth, dirty DirtyMarker) *Recorder {
	return &Recorder{
		store:      store,
		history:    history,
		clock:      clock,
		synth:      synth,
		dirty:      dirty,
		gridBeats:  0.25,
		countBeats: 4,
		maxLayers:  16,
	}
}

// SetGrid sets the record quantization grid in beats
func (r *Recorder) SetGrid(beats float64) {
	if beats > 0 {
		r.gridBeats = beats
	}
}

// SetCountIn sets the number of lead-in ticks before recording starts
func (r *Recorder) SetCountIn(beats int) {
	if beats >= 0 {
		r.countBeats = beats
	}
}

// SetMaxLayers sets the layer count at which recording auto-stops
func (r *Recorder) SetMaxLayers(n int) {
	if n > 0 {
		r.maxLayers = n
	}
}

// State returns the current state machine position
func (r *Recorder) State() RecorderState {
	return r.state
}

// Recording reports whether notes are currently being captured
func (r *Recorder) Recording() bool {
	return r.state == RecRecording
}

// CountingIn reports whether the lead-in is playing
func (r *Recorder) CountingIn() bool {
	return r.state == RecCountingIn
}

// CountRemaining returns how many count-in ticks are left
func (r *Recorder) CountRemaining() int {
	if r.state != RecCountingIn {
		return 0
	}
	return r.countBeats - r.countFired
}

// Track returns the layer index new notes are being tagged with
func (r *Recorder) Track() int {
	return r.track
}

// StartCountIn begins the lead-in at the current tempo. A recording pass
// already in progress is finalized first.
func (r *Recorder) StartCountIn() {
	if r.state != RecIdle {
		r.Stop()
	}
	if r.countBeats == 0 {
		r.beginRecording()
		return
	}
	r.state = RecCountingIn
	r.countStart = r.clock.now()
	r.countFired = 0
	debug.Log("record", "count-in started, %d beats at %d bpm", r.countBeats, r.clock.Tempo())
}

// Stop cancels the count-in or finalizes recording. Idempotent; canceling
// a count-in has no side effects on the store.
func (r *Recorder) Stop() {
	if r.state == RecIdle {
		return
	}
	debug.Log("record", "stopped (state=%d, track=%d)", r.state, r.track)
	r.state = RecIdle
	r.countFired = 0
}

// Tick advances the state machine. The engine calls this on every
// scheduler tick with the shared clock position and restart edge.
func (r *Recorder) Tick(pos float64, restarted bool) {
	switch r.state {
	case RecCountingIn:
		r.tickCountIn()
	case RecRecording:
		if restarted {
			r.advanceLayer()
		}
	}
}

func (r *Recorder) tickCountIn() {
	beatDur := r.clock.BeatDuration()
	elapsed := r.clock.now().Sub(r.countStart)
	// Fire any lead-in ticks whose beat boundary has passed
	for r.countFired < r.countBeats && elapsed >= time.Duration(r.countFired)*beatDur {
		remaining := r.countBeats - r.countFired - 1
		if r.synth != nil {
			r.synth.Trigger(KindDrum, 0, 0.8, Timbre{}, beatDur/2)
		}
		if r.OnCountTick != nil {
			r.OnCountTick(remaining)
		}
		r.countFired++
	}
	if r.countFired >= r.countBeats && elapsed >= time.Duration(r.countBeats)*beatDur {
		r.beginRecording()
	}
}

func (r *Recorder) beginRecording() {
	next := r.store.NextTrackIndex()
	if next >= r.maxLayers {
		r.state = RecIdle
		r.autoStop("maximum layer count reached")
		return
	}
	r.track = next
	r.state = RecRecording
	r.clock.Start()
	debug.Log("record", "recording started on layer %d", r.track)
	if r.OnRecordStart != nil {
		r.OnRecordStart()
	}
}

// advanceLayer stacks subsequent loop passes on a fresh layer. Earlier
// layers are never cleared - they keep playing under the new pass.
func (r *Recorder) advanceLayer() {
	r.track++
	if r.track >= r.maxLayers {
		r.state = RecIdle
		r.autoStop("maximum layer count reached")
		return
	}
	debug.Log("record", "loop restart, now layering on track %d", r.track)
	if r.OnLoopRestart != nil {
		r.OnLoopRestart()
	}
}

func (r *Recorder) autoStop(reason string) {
	debug.Log("record", "auto-stop: %s", reason)
	if r.OnAutoStop != nil {
		r.OnAutoStop(reason)
	}
}

// RecordTrigger captures a live note at the current clock position,
// floor-snapped to the record grid so played notes land rhythmically
// early rather than late. Returns false when not recording.
func (r *Recorder) RecordTrigger(live LiveNote) bool {
	if r.state != RecRecording {
		return false
	}
	pos, restarted := r.clock.Beats()
	if restarted {
		r.advanceLayer()
		if r.state != RecRecording {
			return false
		}
	}
	start := math.Floor(pos/r.gridBeats) * r.gridBeats

	r.history.SaveState(r.store.events)
	r.store.Add(NoteEvent{
		Start:       start,
		Duration:    live.Duration,
		Kind:        live.Kind,
		Pitch:       live.Pitch,
		PercKey:     live.PercKey,
		Velocity:    live.Velocity,
		TimbreColor: live.Color,
		SizeHint:    live.SizeHint,
		SourceID:    live.SourceID,
		Track:       r.track,
	})
	if r.dirty != nil {
		r.dirty.MarkDirty()
	}
	debug.Log("record", "captured %s at beat %.3f on track %d", live.Kind, start, r.track)
	return true
}
