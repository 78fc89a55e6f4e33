package clip

import "github.com/warpgrid/warpgrid/internal/timebase"

// FollowActionType names what happens on a slot's track when a clip's
// follow action fires.
type FollowActionType int

const (
	// FollowNone leaves the clip looping.
	FollowNone FollowActionType = iota
	// FollowStop stops the clip immediately at the loop boundary.
	FollowStop
	// FollowPlayAgain retriggers the same clip.
	FollowPlayAgain
	// FollowNext launches the next clip down the track.
	FollowNext
	// FollowPrevious launches the previous clip up the track.
	FollowPrevious
	// FollowJump launches the clip at JumpTarget on the same track.
	FollowJump
)

// String returns the follow action name.
func (t FollowActionType) String() string {
	switch t {
	case FollowNone:
		return "none"
	case FollowStop:
		return "stop"
	case FollowPlayAgain:
		return "play_again"
	case FollowNext:
		return "next"
	case FollowPrevious:
		return "previous"
	case FollowJump:
		return "jump"
	default:
		return "unknown"
	}
}

// Follow action validation errors
const (
	ErrFollowInvalidChance ClipError = "clip: follow action chance must be between 0 and 1"
	ErrFollowInvalidTarget ClipError = "clip: follow action jump_target must be non-negative"
	ErrFollowInvalidTime   ClipError = "clip: follow action time must be non-negative"
)

// FollowAction is one arm of a follow action pair.
type FollowAction struct {
	Type       FollowActionType
	Chance     float64 // selection weight for this arm, 0..1
	JumpTarget int     // slot index on the same track, FollowJump only
}

// Validate checks the action's chance and jump target.
func (a *FollowAction) Validate() error {
	if a.Chance < 0 || a.Chance > 1 {
		return ErrFollowInvalidChance
	}
	if a.Type == FollowJump && a.JumpTarget < 0 {
		return ErrFollowInvalidTarget
	}
	return nil
}

// FollowActionPair is the A/B action choice evaluated when a clip
// completes a loop pass. The scheduler draws r in [0,1) and executes
// A when r <= A.Chance, otherwise B.
type FollowActionPair struct {
	A      FollowAction
	B      FollowAction
	Time   timebase.Beats // loop span between evaluations, 0 means the clip length
	Linked bool           // Time follows the clip length when the clip is resized
}

// Validate checks both arms and the evaluation interval.
func (p *FollowActionPair) Validate() error {
	if err := p.A.Validate(); err != nil {
		return err
	}
	if err := p.B.Validate(); err != nil {
		return err
	}
	if p.Time < 0 {
		return ErrFollowInvalidTime
	}
	return nil
}
