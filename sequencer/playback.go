package sequencer

import (
	"time"

	"shapeloop/debug"
)

// noFiredBeat is the lastFired sentinel meaning nothing has fired this pass
const noFiredBeat = -1.0

// CompensationFunc returns the inherent playback latency of an
// instrument/timbre combination. Most return zero; a few known-latent
// timbres need their triggers pulled forward.
type CompensationFunc func(kind Kind, timbreName string) time.Duration

// Player dispatches note events to the synth boundary as the clock passes
// them. It scans the half-open window (lastFired, current] anchored to the
// previous tick so every event fires exactly once per loop pass - no
// double-fire from re-entrant ticks, no miss from tick granularity.
type Player struct {
	store    *Store
	clock    *Clock
	synth    Synth
	resolver Resolver
	comp     CompensationFunc

	playing   bool
	lastFired float64

	// suppressRestart is set while the recorder owns the loop edge
	suppressRestart bool

	// OnLoopRestart fires on the loop downbeat during plain playback
	OnLoopRestart func()
}

// NewPlayer creates a stopped player reading from the given store
func NewPlayer(store *Store, clock *Clock, synth Synth, resolver Resolver, comp CompensationFunc) *Player {
	return &Player{
		store:     store,
		clock:     clock,
		synth:     synth,
		resolver:  resolver,
		comp:      comp,
		lastFired: noFiredBeat,
	}
}

// Start arms the player. The caller starts the shared clock.
func (p *Player) Start() {
	p.playing = true
	p.lastFired = noFiredBeat
}

// Stop disarms the player. Idempotent.
func (p *Player) Stop() {
	p.playing = false
	p.lastFired = noFiredBeat
}

// Playing reports whether the player is armed
func (p *Player) Playing() bool {
	return p.playing
}

// SetSuppressRestart hands the loop-restart signal to the recorder while
// recording is active
func (p *Player) SetSuppressRestart(on bool) {
	p.suppressRestart = on
}

// Tick fires every event whose trigger point fell in the window since the
// last tick. The engine passes the shared clock position and restart edge.
func (p *Player) Tick(pos float64, restarted bool) {
	if !p.playing {
		return
	}
	if restarted || pos < p.lastFired {
		p.lastFired = noFiredBeat
		if p.OnLoopRestart != nil && !p.suppressRestart {
			p.OnLoopRestart()
		}
	}
	for _, n := range p.store.events {
		trigger := n.Start - p.compensationBeats(n)
		if trigger > p.lastFired && trigger <= pos {
			p.fire(n)
		}
	}
	p.lastFired = pos
	debug.LogEvery(1000, "play", "tick at beat %.3f", pos)
}

// compensationBeats converts the timbre's inherent latency to beats at
// the current tempo
func (p *Player) compensationBeats(n NoteEvent) float64 {
	if p.comp == nil {
		return 0
	}
	name := ""
	if n.SourceID != "" && p.resolver != nil {
		if t, ok := p.resolver.Resolve(n.SourceID); ok {
			name = t.Name
		}
	}
	d := p.comp(n.Kind, name)
	if d <= 0 {
		return 0
	}
	return p.clock.DurationToBeats(d)
}

// fire dispatches one event, preferring the source shape's current timbre
// over the recorded snapshot so edits are heard on old notes. A shape
// that no longer resolves falls back to the snapshot; the note is never
// dropped.
func (p *Player) fire(n NoteEvent) {
	if p.synth == nil {
		return
	}
	timbre := Timbre{
		Color:    n.TimbreColor,
		SizeHint: n.SizeHint,
		Velocity: n.Velocity,
	}
	velocity := n.Velocity
	if n.SourceID != "" && p.resolver != nil {
		if t, ok := p.resolver.Resolve(n.SourceID); ok {
			timbre = t
			if t.Velocity > 0 {
				velocity = t.Velocity
			}
		}
	}
	key := n.Pitch
	if n.Kind.Percussive() {
		key = n.PercKey
	}
	p.synth.Trigger(n.Kind, key, velocity, timbre, p.clock.BeatsToDuration(n.Duration))
}
