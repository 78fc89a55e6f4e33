package driver

import (
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/warpgrid/warpgrid/internal/timebase"
)

// ClockTransport derives the beat position from wall-clock time and the
// current tempo. Tempo changes re-anchor the position so the beat count
// never jumps.
type ClockTransport struct {
	clock clock.Clock

	mu         sync.Mutex
	anchor     time.Time
	anchorBeat timebase.Beats
	bpm        float64
	running    bool
}

// NewClockTransport creates a stopped transport at beat 0.
func NewClockTransport(bpm float64, cl clock.Clock) *ClockTransport {
	if cl == nil {
		cl = clock.RealClock{}
	}
	return &ClockTransport{
		clock: cl,
		bpm:   timebase.ClampBPM(bpm),
	}
}

// Start anchors the transport at the current wall-clock time. Starting a
// running transport is a no-op.
func (t *ClockTransport) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.anchor = t.clock.Now()
	t.running = true
}

// Stop freezes the beat position.
func (t *ClockTransport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.anchorBeat = t.beatLocked()
	t.running = false
}

// CurrentBeat returns the current position.
func (t *ClockTransport) CurrentBeat() timebase.Beats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.beatLocked()
}

// BPM returns the current tempo.
func (t *ClockTransport) BPM() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bpm
}

// SetBPM changes the tempo. The position is re-anchored first so beats
// already elapsed keep their old duration.
func (t *ClockTransport) SetBPM(bpm float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.anchorBeat = t.beatLocked()
	t.anchor = t.clock.Now()
	t.bpm = timebase.ClampBPM(bpm)
}

// SeekBeat jumps to an absolute position.
func (t *ClockTransport) SeekBeat(beat timebase.Beats) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.anchorBeat = beat
	t.anchor = t.clock.Now()
}

// IsRunning reports whether the transport advances with the clock.
func (t *ClockTransport) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *ClockTransport) beatLocked() timebase.Beats {
	if !t.running {
		return t.anchorBeat
	}
	elapsed := t.clock.Since(t.anchor)
	return t.anchorBeat + timebase.Beats(elapsed.Seconds()*t.bpm/60.0)
}
