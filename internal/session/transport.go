package session

import "github.com/warpgrid/warpgrid/internal/timebase"

// Transport supplies the beat clock the scheduler reads each tick. The
// scheduler never owns transport state.
type Transport interface {
	CurrentBeat() timebase.Beats
	BPM() float64
}

// ManualTransport is a hand-advanced transport for tests and offline
// bounces.
type ManualTransport struct {
	beat timebase.Beats
	bpm  float64
}

var _ Transport = (*ManualTransport)(nil)

// NewManualTransport creates a transport at beat 0.
func NewManualTransport(bpm float64) *ManualTransport {
	return &ManualTransport{bpm: timebase.ClampBPM(bpm)}
}

// CurrentBeat returns the current position.
func (t *ManualTransport) CurrentBeat() timebase.Beats {
	return t.beat
}

// BPM returns the current tempo.
func (t *ManualTransport) BPM() float64 {
	return t.bpm
}

// SetBeat jumps the transport to an absolute position.
func (t *ManualTransport) SetBeat(beat timebase.Beats) {
	t.beat = beat
}

// Advance moves the transport forward by delta beats.
func (t *ManualTransport) Advance(delta timebase.Beats) {
	t.beat += delta
}

// SetBPM changes the tempo, clamped to the valid range.
func (t *ManualTransport) SetBPM(bpm float64) {
	t.bpm = timebase.ClampBPM(bpm)
}
