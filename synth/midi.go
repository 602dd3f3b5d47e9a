package synth

import (
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"shapeloop/debug"
	"shapeloop/sequencer"
)

// GM channel/program assignments per instrument kind. Percussion lives on
// the GM drum channel.
const (
	pianoChannel  uint8 = 0
	guitarChannel uint8 = 1
	drumChannel   uint8 = 9
)

const (
	pianoProgram  uint8 = 0
	guitarProgram uint8 = 24
)

// GM drum notes per PercKey (small/medium/large variants)
var drumNotes = []uint8{36, 35, 41}
var snareNotes = []uint8{38, 40, 37}

// MIDISynth dispatches note triggers to a MIDI output port. Ports are
// opened lazily and cached by name.
type MIDISynth struct {
	portName string
	senders  map[string]func(gomidi.Message) error
	mu       sync.RWMutex
	prepared map[uint8]bool // program change sent per channel
}

// NewMIDISynth creates a synth targeting the named output port. An empty
// name means "first available port".
func NewMIDISynth(portName string) *MIDISynth {
	return &MIDISynth{
		portName: portName,
		senders:  make(map[string]func(gomidi.Message) error),
		prepared: make(map[uint8]bool),
	}
}

// Trigger implements sequencer.Synth: fire-and-forget note dispatch with
// a timed note-off after the duration hint
func (s *MIDISynth) Trigger(kind sequencer.Kind, key int, velocity float64, timbre sequencer.Timbre, duration time.Duration) {
	sender := s.getSender()
	if sender == nil {
		return
	}

	ch, note, program := route(kind, key)
	if !s.prepared[ch] && ch != drumChannel {
		sender(gomidi.ProgramChange(ch, program))
		s.prepared[ch] = true
	}

	vel := midiVelocity(velocity)
	sender(gomidi.NoteOn(ch, note, vel))
	debug.Log("synth", "trigger %s ch=%d note=%d vel=%d dur=%s", kind, ch, note, vel, duration)

	if duration <= 0 {
		duration = 100 * time.Millisecond
	}
	go func() {
		time.Sleep(duration)
		sender(gomidi.NoteOff(ch, note))
	}()
}

// route maps an instrument kind and key to a channel, note and program
func route(kind sequencer.Kind, key int) (ch, note, program uint8) {
	switch kind {
	case sequencer.KindPiano:
		return pianoChannel, clampNote(key), pianoProgram
	case sequencer.KindGuitar:
		return guitarChannel, clampNote(key), guitarProgram
	case sequencer.KindDrum:
		return drumChannel, percNote(drumNotes, key), 0
	case sequencer.KindSnare:
		return drumChannel, percNote(snareNotes, key), 0
	}
	return pianoChannel, clampNote(key), pianoProgram
}

func percNote(table []uint8, key int) uint8 {
	if key < 0 {
		key = 0
	}
	if key >= len(table) {
		key = len(table) - 1
	}
	return table[key]
}

func clampNote(n int) uint8 {
	if n < 0 {
		n = 0
	}
	if n > 127 {
		n = 127
	}
	return uint8(n)
}

func midiVelocity(v float64) uint8 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint8(1 + v*126)
}

// getSender returns a sender for the configured port, lazily opening it
func (s *MIDISynth) getSender() func(gomidi.Message) error {
	s.mu.RLock()
	if sender, ok := s.senders[s.portName]; ok {
		s.mu.RUnlock()
		return sender
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if sender, ok := s.senders[s.portName]; ok {
		return sender
	}

	ports := gomidi.GetOutPorts()
	if len(ports) == 0 {
		return nil
	}
	port := ports[0]
	if s.portName != "" {
		found := false
		for _, p := range ports {
			if p.String() == s.portName {
				port = p
				found = true
				break
			}
		}
		if !found {
			return nil
		}
	}

	sender, err := gomidi.SendTo(port)
	if err != nil {
		debug.Log("synth", "open port %q failed: %v", port.String(), err)
		return nil
	}
	s.senders[s.portName] = sender
	return sender
}

// Close releases the MIDI driver and any open ports
func (s *MIDISynth) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.senders = make(map[string]func(gomidi.Message) error)
	gomidi.CloseDriver()
}
