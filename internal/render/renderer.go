// Package render is the audio playback boundary. The scheduler hands
// region playbacks to an AudioRenderer; the engine ships an offline
// implementation for bounces and a mock for tests. A real-time host
// supplies its own.
package render

import (
	"github.com/google/uuid"

	"github.com/warpgrid/warpgrid/internal/clip"
	"github.com/warpgrid/warpgrid/internal/pcm"
	"github.com/warpgrid/warpgrid/internal/timebase"
)

// Handle identifies one scheduled playback for later cancellation.
type Handle struct {
	id uuid.UUID
}

// NewHandle allocates a fresh playback handle.
func NewHandle() Handle {
	return Handle{id: uuid.New()}
}

// IsZero reports whether the handle was never allocated.
func (h Handle) IsZero() bool {
	return h.id == uuid.Nil
}

// String returns the handle's ID for logging.
func (h Handle) String() string {
	return h.id.String()
}

// Playback describes one buffer placement on the output timeline.
type Playback struct {
	Buffer       *pcm.Buffer
	StartTime    timebase.Seconds // absolute transport time
	BufferOffset timebase.Seconds // skip into the buffer
	Duration     timebase.Seconds // 0 means play to the end of the buffer
	Loop         *clip.LoopRegion // optional sustain loop, in buffer seconds
	Gain         float64          // linear amplitude
	Rate         float64          // playback rate multiplier, 1.0 is nominal
}

// AudioRenderer starts and stops buffer playbacks. Implementations
// never fail: a playback that cannot sound is silently dropped,
// keeping the scheduling path free of error handling.
type AudioRenderer interface {
	// SchedulePlayback queues pb and returns a handle for stopping it.
	SchedulePlayback(pb Playback) Handle
	// StopPlayback truncates the playback at the given absolute time.
	StopPlayback(h Handle, at timebase.Seconds)
}
