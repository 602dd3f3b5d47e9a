package sequencer

import "sort"

// DuplicateOffsetBeats is how far duplicated notes land after their originals
const DuplicateOffsetBeats = 1.0

// Store is the authoritative collection of note events for the current
// project, plus tempo and loop settings. Order is insertion order; playback
// doesn't care but UI listing does. Mutating operations do not snapshot
// history themselves - the caller decides what counts as an undoable action.
type Store struct {
	events    []NoteEvent
	tempo     int
	loopBeats int
	loopOn    bool
	selected  map[int]struct{}

	// Notifications for UI/metronome collaborators
	OnSequenceChanged  func()
	OnSelectionChanged func()
}

// NewStore creates an empty store with default tempo and loop settings
func NewStore() *Store {
	return &Store{
		tempo:     120,
		loopBeats: 8,
		loopOn:    true,
		selected:  make(map[int]struct{}),
	}
}

// Len returns the number of note events
func (s *Store) Len() int {
	return len(s.events)
}

// Events returns a copy of all note events in insertion order
func (s *Store) Events() []NoteEvent {
	out := make([]NoteEvent, len(s.events))
	copy(out, s.events)
	return out
}

// At returns the event at index i
func (s *Store) At(i int) (NoteEvent, bool) {
	if i < 0 || i >= len(s.events) {
		return NoteEvent{}, false
	}
	return s.events[i], true
}

// Add normalizes and appends a note event
func (s *Store) Add(n NoteEvent) {
	n.Normalize()
	s.events = append(s.events, n)
	s.notifySequence()
}

// ReplaceEvents swaps in a whole new collection (undo/redo restore, load).
// Selection is invalidated.
func (s *Store) ReplaceEvents(events []NoteEvent) {
	s.events = make([]NoteEvent, len(events))
	copy(s.events, events)
	for i := range s.events {
		s.events[i].Normalize()
	}
	s.clearSelectionLocked()
	s.notifySequence()
}

// EventsInRange returns events whose start falls in [from, to)
func (s *Store) EventsInRange(from, to float64) []NoteEvent {
	var out []NoteEvent
	for _, n := range s.events {
		if n.Start >= from && n.Start < to {
			out = append(out, n)
		}
	}
	return out
}

// EndBeat returns the end of the last-sounding note, 0 if empty
func (s *Store) EndBeat() float64 {
	var end float64
	for _, n := range s.events {
		if n.End() > end {
			end = n.End()
		}
	}
	return end
}

// Tempo settings

func (s *Store) Tempo() int {
	return s.tempo
}

func (s *Store) SetTempo(bpm int) {
	s.tempo = ClampTempo(bpm)
	s.notifySequence()
}

func (s *Store) LoopBeats() int {
	return s.loopBeats
}

func (s *Store) SetLoopBeats(beats int) {
	s.loopBeats = SnapLoopLength(beats)
	s.notifySequence()
}

func (s *Store) LoopEnabled() bool {
	return s.loopOn
}

func (s *Store) SetLoopEnabled(on bool) {
	s.loopOn = on
	s.notifySequence()
}

// Selection

// Select replaces the selection with the given event indices
func (s *Store) Select(indices ...int) {
	s.selected = make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(s.events) {
			s.selected[i] = struct{}{}
		}
	}
	s.notifySelection()
}

// SelectAll selects every event
func (s *Store) SelectAll() {
	s.selected = make(map[int]struct{}, len(s.events))
	for i := range s.events {
		s.selected[i] = struct{}{}
	}
	s.notifySelection()
}

// ClearSelection deselects everything
func (s *Store) ClearSelection() {
	s.clearSelectionLocked()
	s.notifySelection()
}

func (s *Store) clearSelectionLocked() {
	s.selected = make(map[int]struct{})
}

// SelectedIndices returns the selected event indices in ascending order
func (s *Store) SelectedIndices() []int {
	out := make([]int, 0, len(s.selected))
	for i := range s.selected {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// SelectedCount returns how many events are selected
func (s *Store) SelectedCount() int {
	return len(s.selected)
}

// Selected returns copies of the selected events
func (s *Store) Selected() []NoteEvent {
	idx := s.SelectedIndices()
	out := make([]NoteEvent, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.events[i])
	}
	return out
}

// Editing operations

// Quantize snaps selected note starts to the nearest grid point. Round,
// not floor - this is user-invoked cleanup, unlike the floor-on-record
// policy which keeps live playing feeling early rather than late.
func (s *Store) Quantize(gridBeats float64) {
	if gridBeats <= 0 || len(s.selected) == 0 {
		return
	}
	for i := range s.selected {
		n := &s.events[i]
		steps := float64(int(n.Start/gridBeats + 0.5))
		n.SetStart(steps * gridBeats)
	}
	s.notifySequence()
}

// Duplicate deep-copies selected events offset forward in time, then
// selects only the duplicates
func (s *Store) Duplicate() {
	idx := s.SelectedIndices()
	if len(idx) == 0 {
		return
	}
	first := len(s.events)
	for _, i := range idx {
		dup := s.events[i]
		dup.SetStart(dup.Start + DuplicateOffsetBeats)
		s.events = append(s.events, dup)
	}
	s.selected = make(map[int]struct{}, len(idx))
	for i := first; i < len(s.events); i++ {
		s.selected[i] = struct{}{}
	}
	s.notifySequence()
	s.notifySelection()
}

// MoveSelected translates selected notes in time and across layer rows,
// clamping start to the timeline origin and rows to the existing range
func (s *Store) MoveSelected(deltaBeats float64, deltaRow int) {
	if len(s.selected) == 0 {
		return
	}
	maxRow := s.maxTrack()
	for i := range s.selected {
		n := &s.events[i]
		n.SetStart(n.Start + deltaBeats)
		row := n.Track + deltaRow
		if row < 0 {
			row = 0
		}
		if row > maxRow {
			row = maxRow
		}
		n.Track = row
	}
	s.notifySequence()
}

// RemoveSelected deletes the selected events and invalidates the selection
func (s *Store) RemoveSelected() {
	if len(s.selected) == 0 {
		return
	}
	kept := s.events[:0]
	for i, n := range s.events {
		if _, gone := s.selected[i]; !gone {
			kept = append(kept, n)
		}
	}
	s.events = kept
	s.clearSelectionLocked()
	s.notifySequence()
	s.notifySelection()
}

// Clear removes every event and invalidates the selection
func (s *Store) Clear() {
	s.events = nil
	s.clearSelectionLocked()
	s.notifySequence()
	s.notifySelection()
}

// Layers

// TrackIndices returns the distinct layer indices in ascending order
func (s *Store) TrackIndices() []int {
	seen := make(map[int]struct{})
	for _, n := range s.events {
		seen[n.Track] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}

// TrackCounts returns the number of events per layer index
func (s *Store) TrackCounts() map[int]int {
	counts := make(map[int]int)
	for _, n := range s.events {
		counts[n.Track]++
	}
	return counts
}

// NextTrackIndex returns the layer index a new recording pass should use:
// always appended after existing layers, never overwritten
func (s *Store) NextTrackIndex() int {
	return 1 + s.maxTrack()
}

func (s *Store) maxTrack() int {
	max := -1
	for _, n := range s.events {
		if n.Track > max {
			max = n.Track
		}
	}
	return max
}

// DeleteTrack removes all events on one layer and compacts higher layer
// indices downward so indices stay dense and layer colors stay stable
func (s *Store) DeleteTrack(track int) {
	kept := s.events[:0]
	for _, n := range s.events {
		if n.Track == track {
			continue
		}
		if n.Track > track {
			n.Track--
		}
		kept = append(kept, n)
	}
	s.events = kept
	s.clearSelectionLocked()
	s.notifySequence()
	s.notifySelection()
}

// Persistence

// Persistable is the serializable shape of the store, owned here but
// written/read by the project package
type Persistable struct {
	Tempo     int         `json:"tempo"`
	LoopBeats int         `json:"loopBeats"`
	LoopOn    bool        `json:"loopEnabled"`
	Events    []NoteEvent `json:"notes"`
}

// ToPersistable captures tempo, loop settings and all events
func (s *Store) ToPersistable() Persistable {
	return Persistable{
		Tempo:     s.tempo,
		LoopBeats: s.loopBeats,
		LoopOn:    s.loopOn,
		Events:    s.Events(),
	}
}

// FromPersistable replaces the store's contents, clamping everything back
// into range
func (s *Store) FromPersistable(p Persistable) {
	s.tempo = ClampTempo(p.Tempo)
	s.loopBeats = SnapLoopLength(p.LoopBeats)
	s.loopOn = p.LoopOn
	s.ReplaceEvents(p.Events)
}

func (s *Store) notifySequence() {
	if s.OnSequenceChanged != nil {
		s.OnSequenceChanged()
	}
}

func (s *Store) notifySelection() {
	if s.OnSelectionChanged != nil {
		s.OnSelectionChanged()
	}
}
