package synth

import (
	"time"

	"shapeloop/sequencer"
)

// latencies is the explicit timbre-latency table. Most timbres have no
// inherent playback latency; the ones listed here trigger audibly late
// and need their scheduled trigger pulled forward. Keyed by the timbre
// name the resolver reports.
var latencies = map[string]time.Duration{
	"8bit":       90 * time.Millisecond,
	"distortion": 60 * time.Millisecond,
}

// Latency implements sequencer.CompensationFunc. It is a pure function of
// instrument kind and the currently-selected timbre, never of the clock.
func Latency(kind sequencer.Kind, timbreName string) time.Duration {
	if d, ok := latencies[timbreName]; ok {
		return d
	}
	return 0
}
