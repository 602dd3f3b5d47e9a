package sequencer

import (
	"sync"
	"time"
)

// Scheduler tick interval. Short enough that the dedup window in the
// player never spans more than a fraction of a beat, independent of any
// audio-device callback.
const tickInterval = 5 * time.Millisecond

// UI refresh rate while transport is running
const uiFPS = 30

// Engine is the single event loop that owns the store. The recorder and
// player state machines run as callbacks on this loop; every external
// mutation is funneled through the command channel, so store access is
// single-writer without fine-grained locks.
type Engine struct {
	store   *Store
	history *History
	clock   *Clock
	rec     *Recorder
	player  *Player
	synth   Synth

	cmds     chan func()
	stop     chan struct{}
	stopOnce sync.Once

	// UpdateChan notifies the UI that state changed; sends never block
	UpdateChan chan struct{}

	// Notifications for UI/metronome collaborators
	OnLoopRestart          func()
	OnRecordingAutoStopped func(reason string)

	lastAutoStop string
}

// NewEngine wires the core components around explicit dependencies: the
// synth trigger boundary, the shape resolver, the latency policy, and the
// dirty-flag owner. Any of them may be nil.
func NewEngine(synth Synth, resolver Resolver, comp CompensationFunc, dirty DirtyMarker) *Engine {
	store := NewStore()
	history := NewHistory(SequenceHistoryLimit)
	clock := NewClock(store.Tempo())
	clock.SetLoop(store.LoopEnabled(), store.LoopBeats())

	e := &Engine{
		store:      store,
		history:    history,
		clock:      clock,
		synth:      synth,
		cmds:       make(chan func()),
		stop:       make(chan struct{}),
		UpdateChan: make(chan struct{}, 1),
	}
	e.rec = NewRecorder(store, history, clock, synth, dirty)
	e.player = NewPlayer(store, clock, synth, resolver, comp)

	store.OnSequenceChanged = e.notifyUpdate
	store.OnSelectionChanged = e.notifyUpdate

	e.rec.OnRecordStart = func() {
		// Performer plays along with already-recorded layers
		e.player.Start()
		e.player.SetSuppressRestart(true)
		e.notifyUpdate()
	}
	e.rec.OnLoopRestart = e.loopRestarted
	e.rec.OnCountTick = func(int) { e.notifyUpdate() }
	e.rec.OnAutoStop = func(reason string) {
		e.player.SetSuppressRestart(false)
		e.lastAutoStop = reason
		if e.OnRecordingAutoStopped != nil {
			e.OnRecordingAutoStopped(reason)
		}
		e.notifyUpdate()
	}
	e.player.OnLoopRestart = e.loopRestarted

	return e
}

// Recorder returns the recording controller for configuration
func (e *Engine) Recorder() *Recorder {
	return e.rec
}

// StartRuntime starts the scheduler loop (call once at startup)
func (e *Engine) StartRuntime() {
	go e.run()
}

// Shutdown stops the scheduler loop. Idempotent.
func (e *Engine) Shutdown() {
	e.stopOnce.Do(func() { close(e.stop) })
}

func (e *Engine) run() {
	ticker := time.NewTicker(tickInterval)
	uiTicker := time.NewTicker(time.Second / uiFPS)
	defer ticker.Stop()
	defer uiTicker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case f := <-e.cmds:
			f()
		case <-ticker.C:
			e.tick()
		case <-uiTicker.C:
			if e.player.Playing() || e.rec.State() != RecIdle {
				e.notifyUpdate()
			}
		}
	}
}

// tick reads the shared clock once and distributes position + restart
// edge to both state machines, so the edge is consumed exactly once
func (e *Engine) tick() {
	pos, restarted := e.clock.Beats()
	e.rec.Tick(pos, restarted)
	e.player.Tick(pos, restarted)
}

// do runs f on the engine loop and waits for it
func (e *Engine) do(f func()) {
	done := make(chan struct{})
	select {
	case e.cmds <- func() { f(); close(done) }:
		<-done
	case <-e.stop:
	}
}

func (e *Engine) notifyUpdate() {
	select {
	case e.UpdateChan <- struct{}{}:
	default:
	}
}

func (e *Engine) loopRestarted() {
	if e.OnLoopRestart != nil {
		e.OnLoopRestart()
	}
	e.notifyUpdate()
}

// syncClock pushes the store's tempo/loop settings into the clock
func (e *Engine) syncClock() {
	e.clock.SetTempo(e.store.Tempo())
	e.clock.SetLoop(e.store.LoopEnabled(), e.store.LoopBeats())
}

// Transport

// Play starts playback of all recorded layers
func (e *Engine) Play() {
	e.do(func() {
		if e.player.Playing() {
			return
		}
		e.syncClock()
		e.clock.Start()
		e.player.Start()
		e.notifyUpdate()
	})
}

// Stop halts playback and recording. Idempotent; releases any pending
// count-in.
func (e *Engine) Stop() {
	e.do(func() {
		e.rec.Stop()
		e.player.Stop()
		e.player.SetSuppressRestart(false)
		e.clock.Stop()
		e.notifyUpdate()
	})
}

// StartRecording begins the count-in, after which recording and playback
// of existing layers run together on the shared clock
func (e *Engine) StartRecording() {
	e.do(func() {
		e.player.Stop()
		e.clock.Stop()
		e.syncClock()
		e.lastAutoStop = ""
		e.rec.StartCountIn()
		e.notifyUpdate()
	})
}

// StopRecording finalizes the current pass. Playback keeps running so the
// performer hears the loop.
func (e *Engine) StopRecording() {
	e.do(func() {
		e.rec.Stop()
		e.player.SetSuppressRestart(false)
		e.notifyUpdate()
	})
}

// LiveTrigger echoes a live note through the synth immediately and
// records it when a recording pass is active
func (e *Engine) LiveTrigger(live LiveNote) {
	e.do(func() {
		if e.synth != nil {
			key := live.Pitch
			if live.Kind.Percussive() {
				key = live.PercKey
			}
			timbre := Timbre{Color: live.Color, SizeHint: live.SizeHint, Velocity: live.Velocity}
			e.synth.Trigger(live.Kind, key, live.Velocity, timbre, e.clock.BeatsToDuration(live.Duration))
		}
		e.rec.RecordTrigger(live)
	})
}

// Settings

func (e *Engine) SetTempo(bpm int) {
	e.do(func() {
		e.store.SetTempo(bpm)
		// Forward-only: elapsed beats keep their old-tempo value
		e.clock.SetTempo(e.store.Tempo())
	})
}

func (e *Engine) SetLoopBeats(beats int) {
	e.do(func() {
		e.store.SetLoopBeats(beats)
		e.clock.SetLoop(e.store.LoopEnabled(), e.store.LoopBeats())
	})
}

func (e *Engine) SetLoopEnabled(on bool) {
	e.do(func() {
		e.store.SetLoopEnabled(on)
		e.clock.SetLoop(e.store.LoopEnabled(), e.store.LoopBeats())
	})
}

// Editing. Each user-level action snapshots history first, so undo undoes
// whole actions - no-op interactions never pollute the history.

func (e *Engine) Quantize(gridBeats float64) {
	e.do(func() {
		if e.store.SelectedCount() == 0 {
			return
		}
		e.history.SaveState(e.store.events)
		e.store.Quantize(gridBeats)
	})
}

func (e *Engine) Duplicate() {
	e.do(func() {
		if e.store.SelectedCount() == 0 {
			return
		}
		e.history.SaveState(e.store.events)
		e.store.Duplicate()
	})
}

func (e *Engine) MoveSelected(deltaBeats float64, deltaRow int) {
	e.do(func() {
		if e.store.SelectedCount() == 0 {
			return
		}
		e.history.SaveState(e.store.events)
		e.store.MoveSelected(deltaBeats, deltaRow)
	})
}

func (e *Engine) RemoveSelected() {
	e.do(func() {
		if e.store.SelectedCount() == 0 {
			return
		}
		e.history.SaveState(e.store.events)
		e.store.RemoveSelected()
	})
}

func (e *Engine) ClearAll() {
	e.do(func() {
		if e.store.Len() == 0 {
			return
		}
		e.history.SaveState(e.store.events)
		e.store.Clear()
	})
}

func (e *Engine) DeleteTrack(track int) {
	e.do(func() {
		e.history.SaveState(e.store.events)
		e.store.DeleteTrack(track)
	})
}

func (e *Engine) Select(indices ...int) {
	e.do(func() { e.store.Select(indices...) })
}

func (e *Engine) SelectAll() {
	e.do(func() { e.store.SelectAll() })
}

func (e *Engine) ClearSelection() {
	e.do(func() { e.store.ClearSelection() })
}

// Undo/redo

func (e *Engine) Undo() {
	e.do(func() {
		if snap, ok := e.history.Undo(e.store.events); ok {
			e.store.ReplaceEvents(snap)
		}
	})
}

func (e *Engine) Redo() {
	e.do(func() {
		if snap, ok := e.history.Redo(e.store.events); ok {
			e.store.ReplaceEvents(snap)
		}
	})
}

// Queries

// Status is an immutable snapshot of engine state for the UI
type Status struct {
	Playing        bool
	RecState       RecorderState
	CountRemaining int
	RecordTrack    int
	Tempo          int
	LoopBeats      int
	LoopEnabled    bool
	Beat           float64
	NoteCount      int
	SelectedCount  int
	TrackCounts    map[int]int
	CanUndo        bool
	CanRedo        bool
	LastAutoStop   string
}

func (e *Engine) Status() Status {
	var st Status
	e.do(func() {
		st = Status{
			Playing:        e.player.Playing(),
			RecState:       e.rec.State(),
			CountRemaining: e.rec.CountRemaining(),
			RecordTrack:    e.rec.Track(),
			Tempo:          e.store.Tempo(),
			LoopBeats:      e.store.LoopBeats(),
			LoopEnabled:    e.store.LoopEnabled(),
			Beat:           e.clock.Peek(),
			NoteCount:      e.store.Len(),
			SelectedCount:  e.store.SelectedCount(),
			TrackCounts:    e.store.TrackCounts(),
			CanUndo:        e.history.CanUndo(),
			CanRedo:        e.history.CanRedo(),
			LastAutoStop:   e.lastAutoStop,
		}
	})
	return st
}

// EventsSnapshot returns an immutable copy of all events, safe to hand to
// the offline renderer on another goroutine
func (e *Engine) EventsSnapshot() []NoteEvent {
	var out []NoteEvent
	e.do(func() { out = e.store.Events() })
	return out
}

// Tempo returns the current tempo
func (e *Engine) Tempo() int {
	var bpm int
	e.do(func() { bpm = e.store.Tempo() })
	return bpm
}

// Persistence

// ToPersistable captures the store for saving
func (e *Engine) ToPersistable() Persistable {
	var p Persistable
	e.do(func() { p = e.store.ToPersistable() })
	return p
}

// LoadPersistable replaces the whole document (Open/New). Transport stops
// and history resets.
func (e *Engine) LoadPersistable(p Persistable) {
	e.do(func() {
		e.rec.Stop()
		e.player.Stop()
		e.clock.Stop()
		e.store.FromPersistable(p)
		e.history.Clear()
		e.syncClock()
		e.notifyUpdate()
	})
}
