package session

import (
	"github.com/warpgrid/warpgrid/internal/clip"
	"github.com/warpgrid/warpgrid/internal/timebase"
)

// EventType names a clip lifecycle transition.
type EventType int

const (
	// EventClipStarted fires when a clip enters the playing state.
	EventClipStarted EventType = iota
	// EventClipStopped fires when a clip is fully stopped and removed.
	EventClipStopped
	// EventClipLooped fires on each loop boundary crossing.
	EventClipLooped
	// EventFollowAction fires when a non-none follow action executes.
	EventFollowAction
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventClipStarted:
		return "clip-started"
	case EventClipStopped:
		return "clip-stopped"
	case EventClipLooped:
		return "clip-looped"
	case EventFollowAction:
		return "follow-action"
	default:
		return "unknown"
	}
}

// Event is one lifecycle notification from the scheduler.
type Event struct {
	Type      EventType
	TrackID   string
	SlotIndex int
	Beat      timebase.Beats

	// LoopCount is set on clip-looped events.
	LoopCount int
	// Action is set on follow-action events.
	Action clip.FollowActionType
}

// Bus delivers scheduler events to subscribers synchronously, in
// subscription order. Like the scheduler itself it is single-threaded:
// Subscribe and publish must run on the tick thread.
type Bus struct {
	subs      []func(Event)
	published int64
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for every future event. Subscribers cannot be
// removed; a host that needs filtering wraps fn.
func (b *Bus) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	b.subs = append(b.subs, fn)
}

// Published returns how many events have been delivered so far.
func (b *Bus) Published() int64 {
	return b.published
}

func (b *Bus) publish(e Event) {
	b.published++
	for _, fn := range b.subs {
		fn(e)
	}
}
