package render

import (
	"encoding/binary"
	"math"
	"reflect"
	"testing"

	"shapeloop/sequencer"
)

func testEvents() []sequencer.NoteEvent {
	return []sequencer.NoteEvent{
		{Start: 0, Duration: 1, Kind: sequencer.KindPiano, Pitch: 60, Velocity: 0.8, TimbreColor: 0x4da6ffff, SizeHint: 40},
		{Start: 1, Duration: 0.5, Kind: sequencer.KindGuitar, Pitch: 55, Velocity: 0.7, TimbreColor: 0x66cc66ff, SizeHint: 60, Track: 1},
		{Start: 0.5, Duration: 0.25, Kind: sequencer.KindDrum, PercKey: 1, Velocity: 0.9, TimbreColor: 0xff8c1aff, Track: 2},
	}
}

func TestRenderEmptyIsNil(t *testing.T) {
	buf, err := Render(nil, 120, DefaultSampleRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf != nil {
		t.Error("empty render returned a buffer")
	}
}

func TestRenderDeterministic(t *testing.T) {
	events := testEvents()
	a, err := Render(events, 120, DefaultSampleRate)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b, err := Render(events, 120, DefaultSampleRate)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical events rendered different buffers")
	}
}

func TestRenderBufferLength(t *testing.T) {
	// One beat at 120bpm is 500ms, plus the 1000ms tail
	events := []sequencer.NoteEvent{
		{Start: 0, Duration: 1, Kind: sequencer.KindPiano, Pitch: 60, Velocity: 0.8},
	}
	buf, err := Render(events, 120, DefaultSampleRate)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	wantFrames := int(1500 * DefaultSampleRate / 1000)
	if len(buf) != wantFrames*channels {
		t.Errorf("buffer length %d, want %d", len(buf), wantFrames*channels)
	}
}

func TestRenderProducesSignal(t *testing.T) {
	buf, err := Render(testEvents(), 120, DefaultSampleRate)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var peak int16
	for _, s := range buf {
		if s > peak {
			peak = s
		}
	}
	if peak == 0 {
		t.Error("rendered buffer is silent")
	}
}

func TestRenderStereoChannelsMatch(t *testing.T) {
	buf, err := Render(testEvents(), 120, DefaultSampleRate)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for i := 0; i+1 < len(buf); i += 2 {
		if buf[i] != buf[i+1] {
			t.Fatalf("frame %d: L=%d R=%d", i/2, buf[i], buf[i+1])
		}
	}
}

func TestRenderRejectsRunawayLength(t *testing.T) {
	events := []sequencer.NoteEvent{
		{Start: 100000, Duration: 1, Kind: sequencer.KindPiano, Pitch: 60, Velocity: 0.8},
	}
	if _, err := Render(events, 120, DefaultSampleRate); err == nil {
		t.Error("expected an error for an absurdly long timeline")
	}
}

func TestAddClampSaturates(t *testing.T) {
	buf := []int16{30000, -30000, 100}

	addClamp(buf, 0, 10000)
	if buf[0] != math.MaxInt16 {
		t.Errorf("positive overflow gave %d, want %d", buf[0], math.MaxInt16)
	}

	addClamp(buf, 1, -10000)
	if buf[1] != math.MinInt16 {
		t.Errorf("negative overflow gave %d, want %d", buf[1], math.MinInt16)
	}

	addClamp(buf, 2, 50)
	if buf[2] != 150 {
		t.Errorf("in-range add gave %d, want 150", buf[2])
	}
}

func TestNoteFrequency(t *testing.T) {
	tests := []struct {
		name string
		note sequencer.NoteEvent
		want float64
	}{
		{"A4", sequencer.NoteEvent{Kind: sequencer.KindPiano, Pitch: 69}, 440},
		{"A3", sequencer.NoteEvent{Kind: sequencer.KindGuitar, Pitch: 57}, 220},
		{"drum key 0", sequencer.NoteEvent{Kind: sequencer.KindDrum, PercKey: 0}, drumFreqs[0]},
		{"drum key out of range", sequencer.NoteEvent{Kind: sequencer.KindDrum, PercKey: 99}, drumFreqs[len(drumFreqs)-1]},
		{"snare key 1", sequencer.NoteEvent{Kind: sequencer.KindSnare, PercKey: 1}, snareFreqs[1]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := noteFrequency(tt.note)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("got %.3f Hz, want %.3f", got, tt.want)
			}
		})
	}
}

func TestEncodeWAVHeader(t *testing.T) {
	samples := []int16{0, 0, 100, -100, 32767, -32768}
	data := EncodeWAV(samples, 44100, 2)

	if string(data[0:4]) != "RIFF" {
		t.Error("missing RIFF magic")
	}
	if string(data[8:12]) != "WAVE" {
		t.Error("missing WAVE magic")
	}
	if string(data[12:16]) != "fmt " {
		t.Error("missing fmt chunk")
	}

	if got := binary.LittleEndian.Uint16(data[20:22]); got != 1 {
		t.Errorf("audio format %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(data[22:24]); got != 2 {
		t.Errorf("channels %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != 44100 {
		t.Errorf("sample rate %d, want 44100", got)
	}
	if got := binary.LittleEndian.Uint32(data[28:32]); got != 44100*2*2 {
		t.Errorf("byte rate %d, want %d", got, 44100*2*2)
	}
	if got := binary.LittleEndian.Uint16(data[34:36]); got != 16 {
		t.Errorf("bits per sample %d, want 16", got)
	}

	if string(data[36:40]) != "data" {
		t.Error("missing data chunk")
	}
	dataSize := binary.LittleEndian.Uint32(data[40:44])
	if want := uint32(len(samples) * 2); dataSize != want {
		t.Errorf("data size %d, want %d", dataSize, want)
	}
	if len(data) != 44+len(samples)*2 {
		t.Errorf("total size %d, want %d", len(data), 44+len(samples)*2)
	}

	// Payload is little-endian int16
	if got := int16(binary.LittleEndian.Uint16(data[44+4 : 44+6])); got != 100 {
		t.Errorf("sample 2 = %d, want 100", got)
	}
}
