package clip

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/warpgrid/warpgrid/internal/timebase"
)

// pendingNote tracks an unmatched note-on while scanning a track.
type pendingNote struct {
	startTick uint32
	velocity  uint8
}

// FromSMF parses a Standard MIDI File and builds a MIDI clip from its
// note events. Positions come straight from the tick grid, so the
// file's tempo map does not affect the result. The clip length rounds
// up to the next whole bar so the import loops cleanly.
func FromSMF(data []byte, name string) (*Clip, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI file: %w", err)
	}

	ticksPerQuarter := uint32(480)
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		ticksPerQuarter = uint32(mt)
	}
	if ticksPerQuarter == 0 {
		ticksPerQuarter = 480
	}

	var notes []Note
	for _, track := range s.Tracks {
		var absoluteTick uint32
		open := make(map[[2]uint8][]pendingNote)

		for _, ev := range track {
			absoluteTick += ev.Delta

			var channel, note, velocity uint8
			if ev.Message.GetNoteOn(&channel, &note, &velocity) {
				key := [2]uint8{channel, note}
				if velocity > 0 {
					open[key] = append(open[key], pendingNote{startTick: absoluteTick, velocity: velocity})
					continue
				}
				// Note-on with velocity 0 closes the earliest open note.
				notes = closeNote(notes, open, key, absoluteTick, ticksPerQuarter)
				continue
			}
			if ev.Message.GetNoteOff(&channel, &note, &velocity) {
				key := [2]uint8{channel, note}
				notes = closeNote(notes, open, key, absoluteTick, ticksPerQuarter)
			}
		}

		// Notes left open at end of track get a one tick tail.
		for key, pendings := range open {
			for _, p := range pendings {
				notes = append(notes, makeNote(key, p, p.startTick+1, ticksPerQuarter))
			}
		}
	}

	sort.Slice(notes, func(i, j int) bool {
		if notes[i].StartBeat != notes[j].StartBeat {
			return notes[i].StartBeat < notes[j].StartBeat
		}
		return notes[i].Note < notes[j].Note
	})

	barSpan := timebase.QuantBar.BeatSpan()
	var maxEnd timebase.Beats
	for _, n := range notes {
		if end := n.StartBeat + n.LengthBeats; end > maxEnd {
			maxEnd = end
		}
	}
	length := timebase.Beats(math.Ceil(float64(maxEnd)/float64(barSpan))) * barSpan
	if length <= 0 {
		length = barSpan
	}

	return NewMIDIClip(name, length, &MIDISource{Notes: notes}), nil
}

func closeNote(notes []Note, open map[[2]uint8][]pendingNote, key [2]uint8, endTick, ticksPerQuarter uint32) []Note {
	pendings := open[key]
	if len(pendings) == 0 {
		return notes
	}
	p := pendings[0]
	if len(pendings) == 1 {
		delete(open, key)
	} else {
		open[key] = pendings[1:]
	}
	return append(notes, makeNote(key, p, endTick, ticksPerQuarter))
}

func makeNote(key [2]uint8, p pendingNote, endTick, ticksPerQuarter uint32) Note {
	if endTick <= p.startTick {
		endTick = p.startTick + 1
	}
	start := ticksToBeats(p.startTick, ticksPerQuarter)
	end := ticksToBeats(endTick, ticksPerQuarter)
	return Note{
		Note:        key[1],
		Velocity:    p.velocity,
		Channel:     key[0],
		StartBeat:   start,
		LengthBeats: end - start,
	}
}

// ticksToBeats converts an absolute tick position to beats. One
// quarter note is one beat.
func ticksToBeats(ticks, ticksPerQuarter uint32) timebase.Beats {
	return timebase.Beats(float64(ticks) / float64(ticksPerQuarter))
}
