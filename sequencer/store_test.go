package sequencer

import (
	"reflect"
	"testing"
)

func TestStoreAddNormalizes(t *testing.T) {
	s := NewStore()
	s.Add(NoteEvent{Start: -2, Duration: 0.01, Pitch: 200, Velocity: 1.5, Track: -1})

	n, ok := s.At(0)
	if !ok {
		t.Fatal("event not stored")
	}
	if n.Start != 0 {
		t.Errorf("Start = %.3f, want 0", n.Start)
	}
	if n.Duration != MinDuration {
		t.Errorf("Duration = %.3f, want %.3f", n.Duration, MinDuration)
	}
	if n.Pitch != 127 {
		t.Errorf("Pitch = %d, want 127", n.Pitch)
	}
	if n.Velocity != 1 {
		t.Errorf("Velocity = %.3f, want 1", n.Velocity)
	}
	if n.Track != 0 {
		t.Errorf("Track = %d, want 0", n.Track)
	}
}

func TestStoreEventsInRange(t *testing.T) {
	s := NewStore()
	for _, start := range []float64{0, 1, 2, 3} {
		s.Add(NoteEvent{Start: start, Duration: 0.5})
	}

	got := s.EventsInRange(1, 3)
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	// Half-open: the start boundary is in, the end boundary out
	if got[0].Start != 1 || got[1].Start != 2 {
		t.Errorf("got starts %.1f, %.1f; want 1, 2", got[0].Start, got[1].Start)
	}
}

func TestStoreQuantizeRounds(t *testing.T) {
	tests := []struct {
		start, want float64
	}{
		{0.37, 0.25},
		{0.4, 0.5},
		{1.0, 1.0},
		{2.6, 2.5},
	}

	for _, tt := range tests {
		s := NewStore()
		s.Add(NoteEvent{Start: tt.start, Duration: 0.5})
		s.SelectAll()
		s.Quantize(0.25)

		n, _ := s.At(0)
		if n.Start != tt.want {
			t.Errorf("Quantize(%.2f) = %.3f, want %.3f", tt.start, n.Start, tt.want)
		}
	}
}

func TestStoreQuantizeOnlySelected(t *testing.T) {
	s := NewStore()
	s.Add(NoteEvent{Start: 0.4, Duration: 0.5})
	s.Add(NoteEvent{Start: 1.4, Duration: 0.5})
	s.Select(0)
	s.Quantize(0.25)

	first, _ := s.At(0)
	second, _ := s.At(1)
	if first.Start != 0.5 {
		t.Errorf("selected note at %.3f, want 0.5", first.Start)
	}
	if second.Start != 1.4 {
		t.Errorf("unselected note moved to %.3f", second.Start)
	}
}

func TestStoreDuplicate(t *testing.T) {
	s := NewStore()
	s.Add(NoteEvent{Start: 1, Duration: 0.5, Pitch: 60, SourceID: "shape-1"})
	s.Add(NoteEvent{Start: 2, Duration: 0.5, Pitch: 64})
	s.SelectAll()
	s.Duplicate()

	if s.Len() != 4 {
		t.Fatalf("got %d events, want 4", s.Len())
	}
	dup, _ := s.At(2)
	if dup.Start != 1+DuplicateOffsetBeats {
		t.Errorf("duplicate start %.3f, want %.3f", dup.Start, 1+DuplicateOffsetBeats)
	}
	if dup.SourceID != "shape-1" {
		t.Errorf("duplicate lost SourceID: %q", dup.SourceID)
	}

	// The duplicates carry the selection so a repeat stacks further out
	if got := s.SelectedIndices(); !reflect.DeepEqual(got, []int{2, 3}) {
		t.Errorf("selection after duplicate = %v, want [2 3]", got)
	}
}

func TestStoreMoveSelectedClamps(t *testing.T) {
	s := NewStore()
	s.Add(NoteEvent{Start: 1, Duration: 0.5, Track: 0})
	s.Add(NoteEvent{Start: 5, Duration: 0.5, Track: 2})
	s.Select(0)

	// Far past the origin: clamps to 0, row clamps within existing layers
	s.MoveSelected(-10, -5)
	n, _ := s.At(0)
	if n.Start != 0 {
		t.Errorf("Start = %.3f, want 0", n.Start)
	}
	if n.Track != 0 {
		t.Errorf("Track = %d, want 0", n.Track)
	}

	s.MoveSelected(0.5, 10)
	n, _ = s.At(0)
	if n.Start != 0.5 {
		t.Errorf("Start = %.3f, want 0.5", n.Start)
	}
	if n.Track != 2 {
		t.Errorf("Track = %d, want clamp to max existing layer 2", n.Track)
	}
}

func TestStoreRemoveSelected(t *testing.T) {
	s := NewStore()
	for i := 0; i < 4; i++ {
		s.Add(NoteEvent{Start: float64(i), Duration: 0.5, Pitch: 60 + i})
	}
	s.Select(1, 3)
	s.RemoveSelected()

	if s.Len() != 2 {
		t.Fatalf("got %d events, want 2", s.Len())
	}
	a, _ := s.At(0)
	b, _ := s.At(1)
	if a.Pitch != 60 || b.Pitch != 62 {
		t.Errorf("kept pitches %d, %d; want 60, 62", a.Pitch, b.Pitch)
	}
	if s.SelectedCount() != 0 {
		t.Error("selection survived removal")
	}
}

func TestStoreNextTrackIndex(t *testing.T) {
	s := NewStore()
	if got := s.NextTrackIndex(); got != 0 {
		t.Errorf("empty store NextTrackIndex = %d, want 0", got)
	}

	s.Add(NoteEvent{Duration: 0.5, Track: 0})
	s.Add(NoteEvent{Duration: 0.5, Track: 3})
	if got := s.NextTrackIndex(); got != 4 {
		t.Errorf("NextTrackIndex = %d, want 4", got)
	}
}

func TestStoreDeleteTrackCompacts(t *testing.T) {
	s := NewStore()
	s.Add(NoteEvent{Duration: 0.5, Pitch: 60, Track: 0})
	s.Add(NoteEvent{Duration: 0.5, Pitch: 62, Track: 1})
	s.Add(NoteEvent{Duration: 0.5, Pitch: 64, Track: 2})

	s.DeleteTrack(1)

	if s.Len() != 2 {
		t.Fatalf("got %d events, want 2", s.Len())
	}
	if got := s.TrackIndices(); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("tracks after delete = %v, want [0 1]", got)
	}
	// The note that was on layer 2 moved down to 1
	moved, _ := s.At(1)
	if moved.Pitch != 64 || moved.Track != 1 {
		t.Errorf("got pitch=%d track=%d, want pitch=64 track=1", moved.Pitch, moved.Track)
	}
}

func TestStorePersistableRoundTrip(t *testing.T) {
	s := NewStore()
	s.SetTempo(90)
	s.SetLoopBeats(16)
	s.SetLoopEnabled(false)
	s.Add(NoteEvent{Start: 1.25, Duration: 0.5, Kind: KindGuitar, Pitch: 55, Velocity: 0.7, SourceID: "shape-9", Track: 1})

	p := s.ToPersistable()

	restored := NewStore()
	restored.FromPersistable(p)

	if restored.Tempo() != 90 || restored.LoopBeats() != 16 || restored.LoopEnabled() {
		t.Errorf("settings lost: tempo=%d loop=%d on=%v", restored.Tempo(), restored.LoopBeats(), restored.LoopEnabled())
	}
	if !reflect.DeepEqual(restored.Events(), s.Events()) {
		t.Error("events lost in round trip")
	}
}

func TestStoreFromPersistableClamps(t *testing.T) {
	s := NewStore()
	s.FromPersistable(Persistable{
		Tempo:     999,
		LoopBeats: 5,
		Events:    []NoteEvent{{Start: -1, Duration: 0}},
	})

	if s.Tempo() != MaxTempo {
		t.Errorf("Tempo = %d, want %d", s.Tempo(), MaxTempo)
	}
	if s.LoopBeats() != 4 {
		t.Errorf("LoopBeats = %d, want 4", s.LoopBeats())
	}
	n, _ := s.At(0)
	if n.Start != 0 || n.Duration != MinDuration {
		t.Errorf("loaded event not normalized: start=%.3f dur=%.3f", n.Start, n.Duration)
	}
}
