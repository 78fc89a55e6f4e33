package midiout

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ticksPerQuarter is the capture resolution, one quarter note per beat.
const ticksPerQuarter = 480

// SMFWriter records dispatched events and serializes them to a
// single-track Standard MIDI File.
type SMFWriter struct {
	*Recorder
	name string
	bpm  float64
}

// NewSMFWriter creates a capture writer for the given tempo.
func NewSMFWriter(name string, bpm float64) *SMFWriter {
	if bpm <= 0 {
		bpm = 120
	}
	return &SMFWriter{
		Recorder: NewRecorder(),
		name:     name,
		bpm:      bpm,
	}
}

// Bytes serializes everything captured so far as a Type 0 SMF.
func (w *SMFWriter) Bytes() ([]byte, error) {
	events := w.Events()

	// Note-offs sort ahead of note-ons at the same beat so retriggers
	// of the same pitch survive the round trip.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Beat != events[j].Beat {
			return events[i].Beat < events[j].Beat
		}
		return !events[i].On && events[j].On
	})

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var track smf.Track
	if w.name != "" {
		track.Add(0, smf.MetaTrackSequenceName(w.name))
	}
	track.Add(0, smf.MetaTempo(w.bpm))
	track.Add(0, smf.MetaTimeSig(4, 2, 24, 8))

	var lastTick uint32
	for _, ev := range events {
		absoluteTick := beatsToTicks(float64(ev.Beat))
		deltaTick := absoluteTick - lastTick
		lastTick = absoluteTick

		if ev.On {
			track.Add(deltaTick, midi.NoteOn(ev.Channel, ev.Note, ev.Velocity))
		} else {
			track.Add(deltaTick, midi.NoteOff(ev.Channel, ev.Note))
		}
	}
	track.Close(0)
	s.Add(track)

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI file: %w", err)
	}
	return buf.Bytes(), nil
}

// beatsToTicks converts a beat position to MIDI ticks.
func beatsToTicks(beats float64) uint32 {
	if beats < 0 {
		return 0
	}
	return uint32(math.Round(beats * ticksPerQuarter))
}
