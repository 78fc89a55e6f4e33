// Package clip defines the session clip model: audio and MIDI clip
// content, loop and quantization settings, and follow action chains.
package clip

import (
	"github.com/google/uuid"

	"github.com/warpgrid/warpgrid/internal/timebase"
	"github.com/warpgrid/warpgrid/internal/warp"
)

// State tracks where a clip slot is in its launch lifecycle.
type State int

const (
	// StateStopped means the slot is idle.
	StateStopped State = iota
	// StateTriggered means a launch is scheduled for an upcoming quantization boundary.
	StateTriggered
	// StatePlaying means the clip is audible and advancing.
	StatePlaying
	// StateStopping means a stop is scheduled for an upcoming quantization boundary.
	StateStopping
	// StateRecording is reserved for session capture; the scheduler never enters it.
	StateRecording
)

// String returns the lifecycle state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateTriggered:
		return "triggered"
	case StatePlaying:
		return "playing"
	case StateStopping:
		return "stopping"
	case StateRecording:
		return "recording"
	default:
		return "unknown"
	}
}

// Clip validation errors
type ClipError string

func (e ClipError) Error() string { return string(e) }

const (
	ErrClipInvalidLength      ClipError = "clip: length_beats must be greater than 0"
	ErrClipMissingSource      ClipError = "clip: source is required"
	ErrClipInvalidNote        ClipError = "clip: note must be between 0 and 127"
	ErrClipInvalidVelocity    ClipError = "clip: velocity must be between 1 and 127"
	ErrClipInvalidChannel     ClipError = "clip: channel must be between 0 and 15"
	ErrClipInvalidNoteStart   ClipError = "clip: note start_beat must be non-negative"
	ErrClipInvalidNoteLength  ClipError = "clip: note length_beats must be greater than 0"
	ErrClipMissingSampleID    ClipError = "clip: region sample_id is required"
	ErrClipInvalidRegionStart ClipError = "clip: region start_beat must be non-negative"
	ErrClipInvalidOffset      ClipError = "clip: region buffer_offset must be non-negative"
	ErrClipInvalidDuration    ClipError = "clip: region duration must be non-negative"
	ErrClipInvalidGain        ClipError = "clip: region gain must be non-negative"
	ErrClipInvalidLoopRegion  ClipError = "clip: loop region end must be greater than start"
)

// Source is the content payload of a clip. Exactly two implementations
// exist, AudioSource and MIDISource; the scheduler switches on the
// concrete type and treats anything else as an empty slot.
type Source interface {
	isSource()
}

// AudioSource holds sample regions plus the warp settings that map
// them onto the beat grid.
type AudioSource struct {
	Regions []Region
	Warp    *warp.Settings
}

func (*AudioSource) isSource() {}

// MIDISource holds the note events of a MIDI clip.
type MIDISource struct {
	Notes []Note
}

func (*MIDISource) isSource() {}

// LoopRegion restricts playback of a region to a sub-range of its
// sample, in source seconds.
type LoopRegion struct {
	Start timebase.Seconds
	End   timebase.Seconds
}

// Region places a slice of a registered sample on the clip's local
// beat timeline.
type Region struct {
	SampleID     string            // key into the sample store
	StartBeat    timebase.Beats    // position within the clip
	BufferOffset timebase.Seconds  // skip into the source sample
	Duration     timebase.Seconds  // 0 means play to the end of the sample
	Gain         float64           // linear amplitude, 1.0 is unity
	Loop         *LoopRegion       // optional sustain loop within the sample
}

// Validate checks the region's placement and gain.
func (r *Region) Validate() error {
	if r.SampleID == "" {
		return ErrClipMissingSampleID
	}
	if r.StartBeat < 0 {
		return ErrClipInvalidRegionStart
	}
	if r.BufferOffset < 0 {
		return ErrClipInvalidOffset
	}
	if r.Duration < 0 {
		return ErrClipInvalidDuration
	}
	if r.Gain < 0 {
		return ErrClipInvalidGain
	}
	if r.Loop != nil && r.Loop.End <= r.Loop.Start {
		return ErrClipInvalidLoopRegion
	}
	return nil
}

// Note is a single MIDI note within a clip, positioned in beats
// relative to the clip start.
type Note struct {
	Note        uint8
	Velocity    uint8
	Channel     uint8
	StartBeat   timebase.Beats
	LengthBeats timebase.Beats
}

// Validate checks the note's MIDI ranges and timing.
func (n *Note) Validate() error {
	if n.Note > 127 {
		return ErrClipInvalidNote
	}
	if n.Velocity == 0 || n.Velocity > 127 {
		return ErrClipInvalidVelocity
	}
	if n.Channel > 15 {
		return ErrClipInvalidChannel
	}
	if n.StartBeat < 0 {
		return ErrClipInvalidNoteStart
	}
	if n.LengthBeats <= 0 {
		return ErrClipInvalidNoteLength
	}
	return nil
}

// Clip is one launchable cell in the session grid.
type Clip struct {
	ID           uuid.UUID
	Name         string
	LengthBeats  timebase.Beats
	Loop         bool
	Quantization timebase.Quantization
	Legato       bool
	Follow       *FollowActionPair
	Source       Source
}

// NewAudioClip builds a looping audio clip with session defaults.
func NewAudioClip(name string, lengthBeats timebase.Beats, src *AudioSource) *Clip {
	return &Clip{
		ID:           uuid.New(),
		Name:         name,
		LengthBeats:  lengthBeats,
		Loop:         true,
		Quantization: timebase.QuantGlobal,
		Source:       src,
	}
}

// NewMIDIClip builds a looping MIDI clip with session defaults.
func NewMIDIClip(name string, lengthBeats timebase.Beats, src *MIDISource) *Clip {
	return &Clip{
		ID:           uuid.New(),
		Name:         name,
		LengthBeats:  lengthBeats,
		Loop:         true,
		Quantization: timebase.QuantGlobal,
		Source:       src,
	}
}

// IsAudio reports whether the clip carries audio content.
func (c *Clip) IsAudio() bool {
	_, ok := c.Source.(*AudioSource)
	return ok
}

// IsMIDI reports whether the clip carries MIDI content.
func (c *Clip) IsMIDI() bool {
	_, ok := c.Source.(*MIDISource)
	return ok
}

// Validate checks the clip and its content recursively.
func (c *Clip) Validate() error {
	if c.LengthBeats <= 0 {
		return ErrClipInvalidLength
	}
	if c.Source == nil {
		return ErrClipMissingSource
	}
	switch src := c.Source.(type) {
	case *AudioSource:
		for i := range src.Regions {
			if err := src.Regions[i].Validate(); err != nil {
				return err
			}
		}
		if src.Warp != nil {
			if err := src.Warp.Validate(); err != nil {
				return err
			}
		}
	case *MIDISource:
		for i := range src.Notes {
			if err := src.Notes[i].Validate(); err != nil {
				return err
			}
		}
	}
	if c.Follow != nil {
		if err := c.Follow.Validate(); err != nil {
			return err
		}
	}
	return nil
}
