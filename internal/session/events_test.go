package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warpgrid/warpgrid/internal/clip"
)

func TestBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.Subscribe(func(e Event) { order = append(order, "first:"+e.TrackID) })
	bus.Subscribe(func(e Event) { order = append(order, "second:"+e.TrackID) })

	bus.publish(Event{Type: EventClipStarted, TrackID: "t1"})
	bus.publish(Event{Type: EventClipStopped, TrackID: "t2"})

	require.Len(t, order, 4)
	assert.Equal(t, []string{"first:t1", "second:t1", "first:t2", "second:t2"}, order)
	assert.Equal(t, int64(2), bus.Published())
}

func TestBusIgnoresNilSubscriber(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(nil)

	// Publishing must not panic with a nil subscriber dropped.
	bus.publish(Event{Type: EventClipStarted})
	assert.Equal(t, int64(1), bus.Published())
}

func TestEventTypeStrings(t *testing.T) {
	tests := []struct {
		eventType EventType
		expected  string
	}{
		{EventClipStarted, "clip-started"},
		{EventClipStopped, "clip-stopped"},
		{EventClipLooped, "clip-looped"},
		{EventFollowAction, "follow-action"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.eventType.String())
	}
}

func TestManualTransport(t *testing.T) {
	tr := NewManualTransport(120)
	assert.InDelta(t, 0.0, float64(tr.CurrentBeat()), 1e-9)
	assert.InDelta(t, 120.0, tr.BPM(), 1e-9)

	tr.SetBeat(3.5)
	assert.InDelta(t, 3.5, float64(tr.CurrentBeat()), 1e-9)

	tr.Advance(0.5)
	assert.InDelta(t, 4.0, float64(tr.CurrentBeat()), 1e-9)

	tr.SetBPM(90)
	assert.InDelta(t, 90.0, tr.BPM(), 1e-9)

	// Nonsense tempos clamp instead of propagating.
	tr.SetBPM(-10)
	assert.Greater(t, tr.BPM(), 0.0)
}

func TestGridTopologyAdjacency(t *testing.T) {
	a := clip.NewMIDIClip("a", 4, &clip.MIDISource{})
	b := clip.NewMIDIClip("b", 4, &clip.MIDISource{})

	grid := NewGridTopology()
	grid.SetTrack("t1", []*clip.Clip{a, nil, b})

	ref, ok := grid.AdjacentSlot("t1", 1, +1)
	require.True(t, ok)
	assert.Equal(t, 2, ref.SlotIndex)
	assert.Same(t, b, ref.Clip)

	ref, ok = grid.AdjacentSlot("t1", 1, -1)
	require.True(t, ok)
	assert.Equal(t, 0, ref.SlotIndex)
	assert.Same(t, a, ref.Clip)

	// Empty cells and edges do not resolve.
	_, ok = grid.AdjacentSlot("t1", 0, +1)
	assert.False(t, ok)
	_, ok = grid.AdjacentSlot("t1", 0, -1)
	assert.False(t, ok)
	_, ok = grid.AdjacentSlot("t1", 2, +1)
	assert.False(t, ok)
	_, ok = grid.AdjacentSlot("missing", 0, +1)
	assert.False(t, ok)

	c, ok := grid.ClipAt("t1", 2)
	require.True(t, ok)
	assert.Same(t, b, c)
	_, ok = grid.ClipAt("t1", 1)
	assert.False(t, ok)
	_, ok = grid.ClipAt("t1", 99)
	assert.False(t, ok)
}
