package sequencer

import (
	"math"
	"time"
)

// Tempo and loop length limits. Out-of-range values clamp, never error.
const (
	MinTempo = 40
	MaxTempo = 240
)

// LoopLengths are the allowed loop sizes in beats
var LoopLengths = []int{4, 8, 16, 32}

// Clock converts wall-clock time to a fractional beat position at a
// mutable tempo. In loop mode the position wraps at the loop length; the
// wrap is reported as a discrete restart edge exactly once, and callers
// use it to reset dedup cursors and resync the metronome to the downbeat.
type Clock struct {
	now       func() time.Time
	reference time.Time
	baseBeats float64 // beats accrued before the last tempo rebase
	bpm       int
	loopBeats int
	looping   bool
	running   bool
}

// NewClock creates a stopped clock at the given tempo
func NewClock(bpm int) *Clock {
	return &Clock{
		now: time.Now,
		bpm: ClampTempo(bpm),
	}
}

// Start resets the reference time to now and begins counting beats
func (c *Clock) Start() {
	c.reference = c.now()
	c.baseBeats = 0
	c.running = true
}

// Stop halts the clock; Beats reports 0 until the next Start
func (c *Clock) Stop() {
	c.running = false
}

// Running reports whether the clock has been started
func (c *Clock) Running() bool {
	return c.running
}

// Beats returns the current beat position and whether the loop wrapped
// since the previous call. On a wrap the reference time resets to now and
// the reported position is 0.
func (c *Clock) Beats() (pos float64, restarted bool) {
	if !c.running {
		return 0, false
	}
	pos = c.baseBeats + beatsIn(c.now().Sub(c.reference), c.bpm)
	if c.looping && c.loopBeats > 0 && pos >= float64(c.loopBeats) {
		c.reference = c.now()
		c.baseBeats = 0
		return 0, true
	}
	return pos, false
}

// Peek returns the current beat position without consuming the restart
// edge. Safe for status queries between scheduler ticks.
func (c *Clock) Peek() float64 {
	if !c.running {
		return 0
	}
	pos := c.baseBeats + beatsIn(c.now().Sub(c.reference), c.bpm)
	if c.looping && c.loopBeats > 0 {
		pos = math.Mod(pos, float64(c.loopBeats))
	}
	return pos
}

// Tempo returns the current tempo in BPM
func (c *Clock) Tempo() int {
	return c.bpm
}

// SetTempo changes the tempo. Elapsed time keeps the beats it already
// earned at the old tempo; only the conversion going forward changes.
func (c *Clock) SetTempo(bpm int) {
	bpm = ClampTempo(bpm)
	if c.running {
		now := c.now()
		c.baseBeats += beatsIn(now.Sub(c.reference), c.bpm)
		c.reference = now
	}
	c.bpm = bpm
}

// SetLoop configures loop mode. Length snaps to the nearest allowed loop
// size and takes effect at the next wrap check, not retroactively.
func (c *Clock) SetLoop(enabled bool, lengthBeats int) {
	c.looping = enabled
	c.loopBeats = SnapLoopLength(lengthBeats)
}

// LoopBeats returns the loop length in beats
func (c *Clock) LoopBeats() int {
	return c.loopBeats
}

// Looping reports whether loop mode is active
func (c *Clock) Looping() bool {
	return c.looping
}

// BeatDuration returns the wall-clock length of one beat at the current tempo
func (c *Clock) BeatDuration() time.Duration {
	return time.Duration(float64(time.Minute) / float64(c.bpm))
}

// DurationToBeats converts a wall-clock duration to beats at the current tempo
func (c *Clock) DurationToBeats(d time.Duration) float64 {
	return beatsIn(d, c.bpm)
}

// BeatsToDuration converts beats to a wall-clock duration at the current tempo
func (c *Clock) BeatsToDuration(beats float64) time.Duration {
	return time.Duration(beats * float64(time.Minute) / float64(c.bpm))
}

func beatsIn(d time.Duration, bpm int) float64 {
	return float64(d.Milliseconds()) * float64(bpm) / 60000.0
}

// ClampTempo normalizes a BPM value into the allowed range
func ClampTempo(bpm int) int {
	if bpm < MinTempo {
		return MinTempo
	}
	if bpm > MaxTempo {
		return MaxTempo
	}
	return bpm
}

// SnapLoopLength normalizes a loop length to the nearest allowed size
func SnapLoopLength(beats int) int {
	best := LoopLengths[0]
	bestDist := beats - best
	if bestDist < 0 {
		bestDist = -bestDist
	}
	for _, l := range LoopLengths[1:] {
		dist := beats - l
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			best = l
			bestDist = dist
		}
	}
	return best
}
