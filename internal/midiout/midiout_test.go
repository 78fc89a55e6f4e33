package midiout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warpgrid/warpgrid/internal/clip"
)

func TestRecorderCapturesOrder(t *testing.T) {
	rec := NewRecorder()
	rec.NoteOn(0, 0, 60, 100)
	rec.NoteOn(0.5, 0, 64, 90)
	rec.NoteOff(1, 0, 60)

	events := rec.Events()
	require.Len(t, events, 3)
	assert.True(t, events[0].On)
	assert.Equal(t, uint8(60), events[0].Note)
	assert.True(t, events[1].On)
	assert.Equal(t, uint8(64), events[1].Note)
	assert.False(t, events[2].On)
	assert.Equal(t, uint8(60), events[2].Note)
}

func TestRecorderEventsIsACopy(t *testing.T) {
	rec := NewRecorder()
	rec.NoteOn(0, 0, 60, 100)

	events := rec.Events()
	events[0].Note = 72

	assert.Equal(t, uint8(60), rec.Events()[0].Note)
}

func TestRecorderReset(t *testing.T) {
	rec := NewRecorder()
	rec.NoteOn(0, 0, 60, 100)
	rec.Reset()
	assert.Empty(t, rec.Events())
}

func TestSMFWriterRoundTrip(t *testing.T) {
	w := NewSMFWriter("capture", 120)
	w.NoteOn(0, 0, 60, 100)
	w.NoteOff(1, 0, 60)
	w.NoteOn(1, 0, 62, 90)
	w.NoteOff(2, 0, 62)

	data, err := w.Bytes()
	require.NoError(t, err)

	c, err := clip.FromSMF(data, "roundtrip")
	require.NoError(t, err)

	notes := c.Source.(*clip.MIDISource).Notes
	require.Len(t, notes, 2)

	assert.Equal(t, uint8(60), notes[0].Note)
	assert.InDelta(t, 0.0, float64(notes[0].StartBeat), 1e-6)
	assert.InDelta(t, 1.0, float64(notes[0].LengthBeats), 1e-6)

	assert.Equal(t, uint8(62), notes[1].Note)
	assert.InDelta(t, 1.0, float64(notes[1].StartBeat), 1e-6)
	assert.InDelta(t, 1.0, float64(notes[1].LengthBeats), 1e-6)
}

func TestSMFWriterRetriggerSamePitch(t *testing.T) {
	w := NewSMFWriter("", 120)
	// Scheduler dispatches the off and the retrigger at the same beat.
	w.NoteOn(0, 0, 60, 100)
	w.NoteOn(1, 0, 60, 100)
	w.NoteOff(1, 0, 60)
	w.NoteOff(2, 0, 60)

	data, err := w.Bytes()
	require.NoError(t, err)

	c, err := clip.FromSMF(data, "retrigger")
	require.NoError(t, err)

	notes := c.Source.(*clip.MIDISource).Notes
	require.Len(t, notes, 2)
	assert.InDelta(t, 1.0, float64(notes[0].LengthBeats), 1e-6)
	assert.InDelta(t, 1.0, float64(notes[1].LengthBeats), 1e-6)
}

func TestSMFWriterEmptyCapture(t *testing.T) {
	w := NewSMFWriter("empty", 0)
	data, err := w.Bytes()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestNopImplementsOutput(t *testing.T) {
	var out Output = Nop{}
	out.NoteOn(0, 0, 60, 100)
	out.NoteOff(1, 0, 60)
}
