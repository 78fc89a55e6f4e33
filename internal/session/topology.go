package session

import "github.com/warpgrid/warpgrid/internal/clip"

// SlotRef points at one clip slot in the session grid.
type SlotRef struct {
	SlotIndex int
	Clip      *clip.Clip
}

// SessionTopology gives the scheduler the slot neighborhood it needs
// for next/previous/jump follow actions. The scheduler itself has no
// grid model; without an injected topology those actions are no-ops.
type SessionTopology interface {
	// AdjacentSlot returns the slot direction steps away from slot on
	// the given track. Direction is +1 for next, -1 for previous.
	AdjacentSlot(trackID string, slot, direction int) (SlotRef, bool)
	// ClipAt returns the clip in an absolute slot, for jump actions.
	ClipAt(trackID string, slot int) (*clip.Clip, bool)
}

// GridTopology is a SessionTopology backed by a static map of tracks
// to clip rows. Empty slots hold nil.
type GridTopology struct {
	tracks map[string][]*clip.Clip
}

var _ SessionTopology = (*GridTopology)(nil)

// NewGridTopology creates an empty grid.
func NewGridTopology() *GridTopology {
	return &GridTopology{tracks: make(map[string][]*clip.Clip)}
}

// SetTrack replaces the clip row for a track.
func (g *GridTopology) SetTrack(trackID string, clips []*clip.Clip) {
	g.tracks[trackID] = clips
}

// AdjacentSlot steps along the track's row, skipping nothing: an empty
// neighbor slot means the lookup fails.
func (g *GridTopology) AdjacentSlot(trackID string, slot, direction int) (SlotRef, bool) {
	row, ok := g.tracks[trackID]
	if !ok {
		return SlotRef{}, false
	}
	target := slot + direction
	if target < 0 || target >= len(row) || row[target] == nil {
		return SlotRef{}, false
	}
	return SlotRef{SlotIndex: target, Clip: row[target]}, true
}

// ClipAt returns the clip at an absolute slot index.
func (g *GridTopology) ClipAt(trackID string, slot int) (*clip.Clip, bool) {
	row, ok := g.tracks[trackID]
	if !ok || slot < 0 || slot >= len(row) || row[slot] == nil {
		return nil, false
	}
	return row[slot], true
}
