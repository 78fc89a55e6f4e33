// Package midiout is the note dispatch surface of the scheduler.
// Outputs receive note-on and note-off events stamped with the
// transport beat they fired on.
package midiout

import (
	"sync"

	"github.com/warpgrid/warpgrid/internal/timebase"
)

// Output receives note events as the scheduler dispatches them.
type Output interface {
	NoteOn(beat timebase.Beats, channel, note, velocity uint8)
	NoteOff(beat timebase.Beats, channel, note uint8)
}

// Nop discards all events.
type Nop struct{}

func (Nop) NoteOn(timebase.Beats, uint8, uint8, uint8) {}

func (Nop) NoteOff(timebase.Beats, uint8, uint8) {}

// Event is one recorded note transition.
type Event struct {
	Beat     timebase.Beats
	On       bool
	Channel  uint8
	Note     uint8
	Velocity uint8
}

// Recorder captures every dispatched event in order. It backs the SMF
// capture path and doubles as the scheduler's test output.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{events: make([]Event, 0)}
}

// NoteOn records a note-on event.
func (r *Recorder) NoteOn(beat timebase.Beats, channel, note, velocity uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Beat: beat, On: true, Channel: channel, Note: note, Velocity: velocity})
}

// NoteOff records a note-off event.
func (r *Recorder) NoteOff(beat timebase.Beats, channel, note uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Beat: beat, On: false, Channel: channel, Note: note})
}

// Events returns a copy of all recorded events (thread-safe).
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]Event, len(r.events))
	copy(result, r.events)
	return result
}

// Reset clears all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = r.events[:0]
}
