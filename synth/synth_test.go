package synth

import (
	"testing"
	"time"

	"shapeloop/sequencer"
)

func TestLatencyTable(t *testing.T) {
	tests := []struct {
		timbre string
		want   time.Duration
	}{
		{"8bit", 90 * time.Millisecond},
		{"distortion", 60 * time.Millisecond},
		{"clean", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := Latency(sequencer.KindGuitar, tt.timbre); got != tt.want {
			t.Errorf("Latency(%q) = %s, want %s", tt.timbre, got, tt.want)
		}
	}
}

func TestShapeResolverLifecycle(t *testing.T) {
	r := NewShapeResolver()

	if _, ok := r.Resolve("shape-1"); ok {
		t.Error("empty resolver resolved something")
	}

	want := sequencer.Timbre{Color: 0xff0000ff, SizeHint: 60, Velocity: 0.7, Name: "distortion"}
	r.Set("shape-1", want)
	got, ok := r.Resolve("shape-1")
	if !ok || got != want {
		t.Errorf("Resolve = %+v ok=%v, want %+v", got, ok, want)
	}

	// Edits replace, deletes fall out
	want.Name = "clean"
	r.Set("shape-1", want)
	if got, _ := r.Resolve("shape-1"); got.Name != "clean" {
		t.Errorf("updated timbre name %q", got.Name)
	}

	r.Remove("shape-1")
	if _, ok := r.Resolve("shape-1"); ok {
		t.Error("removed shape still resolves")
	}
}

func TestRouteChannels(t *testing.T) {
	tests := []struct {
		kind     sequencer.Kind
		key      int
		wantCh   uint8
		wantNote uint8
	}{
		{sequencer.KindPiano, 60, pianoChannel, 60},
		{sequencer.KindGuitar, 55, guitarChannel, 55},
		{sequencer.KindDrum, 0, drumChannel, drumNotes[0]},
		{sequencer.KindDrum, 99, drumChannel, drumNotes[len(drumNotes)-1]},
		{sequencer.KindSnare, 1, drumChannel, snareNotes[1]},
		{sequencer.KindPiano, 200, pianoChannel, 127},
		{sequencer.KindPiano, -5, pianoChannel, 0},
	}
	for _, tt := range tests {
		ch, note, _ := route(tt.kind, tt.key)
		if ch != tt.wantCh || note != tt.wantNote {
			t.Errorf("route(%s, %d) = ch%d note%d, want ch%d note%d",
				tt.kind, tt.key, ch, note, tt.wantCh, tt.wantNote)
		}
	}
}

func TestMIDIVelocity(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{0, 1},
		{1, 127},
		{-1, 1},
		{2, 127},
		{0.5, 64},
	}
	for _, tt := range tests {
		if got := midiVelocity(tt.in); got != tt.want {
			t.Errorf("midiVelocity(%.1f) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
