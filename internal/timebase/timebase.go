// Package timebase provides conversions between musical and wall-clock time.
// All scheduling math in the engine goes through these functions so that beat
// and second quantities never mix without an explicit conversion.
package timebase

import "math"

// Beats is a tempo-relative time value. One beat lasts 60/BPM seconds.
type Beats float64

// Seconds is a wall-clock time value.
type Seconds float64

// BPM bounds match the transport's accepted tempo range. Conversions clamp
// into this range so a zero or negative tempo can never divide to NaN/Inf.
const (
	MinBPM = 20.0
	MaxBPM = 999.0
)

// ClampBPM clamps a tempo into [MinBPM, MaxBPM]. NaN clamps to MinBPM.
func ClampBPM(bpm float64) float64 {
	if math.IsNaN(bpm) || bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}

// BeatsToSeconds converts beats to seconds at the given tempo.
func BeatsToSeconds(beats Beats, bpm float64) Seconds {
	return Seconds(float64(beats) * 60.0 / ClampBPM(bpm))
}

// SecondsToBeats converts seconds to beats at the given tempo.
func SecondsToBeats(sec Seconds, bpm float64) Beats {
	return Beats(float64(sec) * ClampBPM(bpm) / 60.0)
}

// QuantizeToGrid rounds a beat position to the nearest multiple of grid.
// A non-positive grid is invalid and acts as identity.
func QuantizeToGrid(beat Beats, grid Beats) Beats {
	if grid <= 0 {
		return beat
	}
	return Beats(math.Round(float64(beat)/float64(grid))) * grid
}

// Quantization selects the launch grid for clip starts and stops.
type Quantization int

const (
	// QuantNone launches immediately, without waiting for a boundary.
	QuantNone Quantization = iota
	// QuantGlobal defers to the scheduler's global default. Callers resolve
	// it before boundary math; unresolved it behaves like QuantNone.
	QuantGlobal
	QuantSixteenth
	QuantEighth
	QuantBeat
	QuantHalfBar
	QuantBar
	Quant2Bars
	Quant4Bars
	Quant8Bars
)

// The session grid assumes common time. Meter-aware grids live in the host.
const beatsPerBar = 4.0

// BeatSpan returns the width of one grid unit in beats. Zero means no grid.
func (q Quantization) BeatSpan() Beats {
	switch q {
	case QuantSixteenth:
		return beatsPerBar / 16
	case QuantEighth:
		return beatsPerBar / 8
	case QuantBeat:
		return 1
	case QuantHalfBar:
		return beatsPerBar / 2
	case QuantBar:
		return beatsPerBar
	case Quant2Bars:
		return 2 * beatsPerBar
	case Quant4Bars:
		return 4 * beatsPerBar
	case Quant8Bars:
		return 8 * beatsPerBar
	default:
		return 0
	}
}

func (q Quantization) String() string {
	switch q {
	case QuantNone:
		return "none"
	case QuantGlobal:
		return "global"
	case QuantSixteenth:
		return "1/16"
	case QuantEighth:
		return "1/8"
	case QuantBeat:
		return "1/4"
	case QuantHalfBar:
		return "1/2 bar"
	case QuantBar:
		return "1 bar"
	case Quant2Bars:
		return "2 bars"
	case Quant4Bars:
		return "4 bars"
	case Quant8Bars:
		return "8 bars"
	default:
		return "unknown"
	}
}

// ParseQuantization converts a grid name as used in project files and the
// CLI. Unknown names report false.
func ParseQuantization(name string) (Quantization, bool) {
	switch name {
	case "none":
		return QuantNone, true
	case "global":
		return QuantGlobal, true
	case "1/16":
		return QuantSixteenth, true
	case "1/8":
		return QuantEighth, true
	case "1/4", "beat":
		return QuantBeat, true
	case "1/2 bar":
		return QuantHalfBar, true
	case "1 bar", "bar":
		return QuantBar, true
	case "2 bars":
		return Quant2Bars, true
	case "4 bars":
		return Quant4Bars, true
	case "8 bars":
		return Quant8Bars, true
	default:
		return QuantNone, false
	}
}

// NextQuantizedBoundary returns the next beat position at or after current
// that lies on the quantization grid. QuantNone (and an unresolved
// QuantGlobal) return current unchanged, meaning an immediate launch. A beat
// already on a boundary is its own boundary, so the result is a fixed point.
func NextQuantizedBoundary(current Beats, q Quantization) Beats {
	span := q.BeatSpan()
	if span <= 0 {
		return current
	}
	return Beats(math.Ceil(float64(current)/float64(span))) * span
}
