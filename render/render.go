package render

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"shapeloop/sequencer"
)

const (
	// DefaultSampleRate is the export rate when the config doesn't say
	DefaultSampleRate = 44100

	channels      = 2
	tailPaddingMs = 1000
	attackMs      = 8
	releaseMs     = 120

	// maxRenderMinutes guards against a runaway buffer allocation from a
	// note parked absurdly far down the timeline
	maxRenderMinutes = 20
)

// Percussion fundamental frequencies per PercKey (small/medium/large)
var drumFreqs = []float64{110, 80, 55}
var snareFreqs = []float64{220, 185, 150}

// Render synthesizes the whole note collection into a stereo 16-bit PCM
// buffer, independent of the live synth. All layers are mixed; the result
// is deterministic - the same events always produce identical bytes.
//
// A nil buffer with nil error means there was nothing to render.
func Render(events []sequencer.NoteEvent, bpm int, sampleRate int) ([]int16, error) {
	if len(events) == 0 {
		return nil, nil
	}
	bpm = sequencer.ClampTempo(bpm)
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	var endMs float64
	for _, n := range events {
		if ms := beatsToMs(n.End(), bpm); ms > endMs {
			endMs = ms
		}
	}
	totalMs := endMs + tailPaddingMs
	if totalMs > maxRenderMinutes*60*1000 {
		return nil, fmt.Errorf("render length %.1fs exceeds the %d minute limit", totalMs/1000, maxRenderMinutes)
	}

	frames := int(totalMs * float64(sampleRate) / 1000)
	buf := make([]int16, frames*channels)

	for _, n := range events {
		renderNote(buf, n, bpm, sampleRate)
	}
	return buf, nil
}

// renderNote additively mixes one windowed tone into the buffer, with
// hard clamping per accumulated sample to model clipping instead of
// overflow wraparound
func renderNote(buf []int16, n sequencer.NoteEvent, bpm, sampleRate int) {
	startFrame := int(beatsToMs(n.Start, bpm) * float64(sampleRate) / 1000)
	durFrames := int(beatsToMs(n.Duration, bpm) * float64(sampleRate) / 1000)
	if durFrames < 1 {
		durFrames = 1
	}

	freq := noteFrequency(n)
	gain, h2, h3 := timbreShape(n)
	gain *= n.Velocity

	attackFrames := attackMs * sampleRate / 1000
	releaseFrames := releaseMs * sampleRate / 1000
	if releaseFrames > durFrames {
		releaseFrames = durFrames
	}

	percussive := n.Kind.Percussive()
	var phase, phase2, phase3 float64
	for i := 0; i < durFrames; i++ {
		frame := startFrame + i
		if frame*channels+1 >= len(buf) {
			break
		}

		f := freq
		if percussive {
			// Fast pitch drop gives drums their thump
			f = freq * (1 - 0.4*float64(i)/float64(durFrames))
		}
		step := 2 * math.Pi * f / float64(sampleRate)
		phase += step
		phase2 += 2 * step
		phase3 += 3 * step

		env := 1.0
		if attackFrames > 0 && i < attackFrames {
			env = float64(i) / float64(attackFrames)
		}
		if rem := durFrames - i; releaseFrames > 0 && rem < releaseFrames {
			rel := float64(rem) / float64(releaseFrames)
			if rel < env {
				env = rel
			}
		}

		sample := math.Sin(phase) + h2*math.Sin(phase2) + h3*math.Sin(phase3)
		v := int32(sample * env * gain * 32767 / (1 + h2 + h3))

		addClamp(buf, frame*channels, v)
		addClamp(buf, frame*channels+1, v)
	}
}

// noteFrequency derives the fundamental: equal temperament for pitched
// kinds, a fixed per-key table for percussion
func noteFrequency(n sequencer.NoteEvent) float64 {
	if n.Kind == sequencer.KindDrum {
		return percFreq(drumFreqs, n.PercKey)
	}
	if n.Kind == sequencer.KindSnare {
		return percFreq(snareFreqs, n.PercKey)
	}
	return 440 * math.Pow(2, float64(n.Pitch-69)/12)
}

func percFreq(table []float64, key int) float64 {
	if key < 0 {
		key = 0
	}
	if key >= len(table) {
		key = len(table) - 1
	}
	return table[key]
}

// timbreShape turns the note's snapshot color and size into gain and
// harmonic weights: saturation feeds the second partial, hue the third,
// brightness the overall level
func timbreShape(n sequencer.NoteEvent) (gain, h2, h3 float64) {
	c := colorful.Color{
		R: float64(n.TimbreColor>>24&0xff) / 255,
		G: float64(n.TimbreColor>>16&0xff) / 255,
		B: float64(n.TimbreColor>>8&0xff) / 255,
	}
	h, s, v := c.Hsv()

	gain = 0.35 * (0.5 + 0.5*v)
	if n.SizeHint > 0 {
		size := float64(n.SizeHint)
		if size > 100 {
			size = 100
		}
		gain *= 0.8 + 0.4*size/100
	}
	h2 = 0.4 * s
	h3 = 0.25 * h / 360
	return gain, h2, h3
}

func addClamp(buf []int16, i int, v int32) {
	m := int32(buf[i]) + v
	if m > math.MaxInt16 {
		m = math.MaxInt16
	}
	if m < math.MinInt16 {
		m = math.MinInt16
	}
	buf[i] = int16(m)
}

func beatsToMs(beats float64, bpm int) float64 {
	return beats * 60000 / float64(bpm)
}
