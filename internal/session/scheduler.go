// Package session implements the clip launcher: a single-threaded,
// tick-driven scheduler that resolves quantized launch and stop
// requests against the transport's beat clock, enforces per-track
// exclusivity, fires loop and follow-action behavior, and dispatches
// audio playbacks and MIDI notes to the host's collaborators.
package session

import (
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warpgrid/warpgrid/internal/clip"
	"github.com/warpgrid/warpgrid/internal/logger"
	"github.com/warpgrid/warpgrid/internal/metrics"
	"github.com/warpgrid/warpgrid/internal/midiout"
	"github.com/warpgrid/warpgrid/internal/render"
	"github.com/warpgrid/warpgrid/internal/store"
	"github.com/warpgrid/warpgrid/internal/stretch"
	"github.com/warpgrid/warpgrid/internal/timebase"
	"github.com/warpgrid/warpgrid/internal/warp"
)

// ScheduledMIDIEvent is one note on/off pair pinned to absolute beat
// positions, derived from a clip's beat-relative notes at launch and
// regenerated each loop pass.
type ScheduledMIDIEvent struct {
	NoteID    uuid.UUID
	Note      uint8
	Velocity  uint8
	Channel   uint8
	StartBeat timebase.Beats
	EndBeat   timebase.Beats
	Triggered bool

	done bool
}

// ScheduledClip is the runtime instance of a launched clip on one
// track. At most one ScheduledClip per track occupies each of the
// triggered, playing and stopping roles.
type ScheduledClip struct {
	ID         uuid.UUID
	TrackID    string
	SlotIndex  int
	Clip       *clip.Clip
	State      clip.State
	LaunchBeat timebase.Beats
	StopBeat   *timebase.Beats
	LoopCount  int

	audioHandles []render.Handle
	midiEvents   []*ScheduledMIDIEvent
}

// ClipRef is a read-only snapshot of a scheduled clip for queries.
type ClipRef struct {
	TrackID    string
	SlotIndex  int
	ClipID     uuid.UUID
	Name       string
	State      clip.State
	LaunchBeat timebase.Beats
	LoopCount  int
}

// SceneClip names one (track, slot, clip) cell of a scene launch.
type SceneClip struct {
	TrackID   string
	SlotIndex int
	Clip      *clip.Clip
}

// trackState holds the three lifecycle roles a track's clips can
// occupy. Keeping them as separate slots makes the per-track playing
// exclusivity invariant structural.
type trackState struct {
	pending  *ScheduledClip // triggered, waiting for its launch beat
	playing  *ScheduledClip
	stopping *ScheduledClip // still sounding, waiting for its stop beat
}

func (ts *trackState) empty() bool {
	return ts.pending == nil && ts.playing == nil && ts.stopping == nil
}

// Scheduler coordinates clip lifecycle across tracks. All methods must
// be called from the single thread that drives Tick; external threads
// marshal their launch/stop requests onto that thread.
type Scheduler struct {
	transport   Transport
	renderer    render.AudioRenderer
	samples     store.Store
	midi        midiout.Output
	topology    SessionTopology
	bus         *Bus
	rng         *rand.Rand
	globalQuant timebase.Quantization
	tracks      map[string]*trackState
}

// NewScheduler creates a scheduler reading the given transport. Audio
// and MIDI collaborators start unset; without them the scheduler still
// runs full lifecycle timing.
func NewScheduler(transport Transport) *Scheduler {
	return &Scheduler{
		transport:   transport,
		midi:        midiout.Nop{},
		bus:         NewBus(),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		globalQuant: timebase.QuantBar,
		tracks:      make(map[string]*trackState),
	}
}

// SetRenderer wires the audio playback collaborator.
func (s *Scheduler) SetRenderer(r render.AudioRenderer) {
	s.renderer = r
}

// SetSampleStore wires the sample lookup used when starting audio clips.
func (s *Scheduler) SetSampleStore(st store.Store) {
	s.samples = st
}

// SetMIDIOutput wires the note dispatch target.
func (s *Scheduler) SetMIDIOutput(out midiout.Output) {
	if out == nil {
		out = midiout.Nop{}
	}
	s.midi = out
}

// SetTopology wires the session grid lookup used by next/previous/jump
// follow actions.
func (s *Scheduler) SetTopology(t SessionTopology) {
	s.topology = t
}

// SetRandSeed makes follow-action draws reproducible.
func (s *Scheduler) SetRandSeed(seed int64) {
	s.rng = rand.New(rand.NewSource(seed))
}

// SetGlobalQuantization changes the boundary used by clips launched
// with the global quantization setting.
func (s *Scheduler) SetGlobalQuantization(q timebase.Quantization) {
	if q == timebase.QuantGlobal {
		logger.Warn("global quantization cannot reference itself",
			zap.String("current", s.globalQuant.String()))
		return
	}
	s.globalQuant = q
}

// GlobalQuantization returns the current global launch quantization.
func (s *Scheduler) GlobalQuantization() timebase.Quantization {
	return s.globalQuant
}

// Subscribe registers a lifecycle event listener. Delivery is
// synchronous and in subscription order.
func (s *Scheduler) Subscribe(fn func(Event)) {
	s.bus.Subscribe(fn)
}

// LaunchClip requests that c start on the given track and slot at the
// next boundary of the resolved quantization. A nil clip is a no-op.
func (s *Scheduler) LaunchClip(trackID string, slot int, c *clip.Clip, quant timebase.Quantization) {
	if c == nil {
		return
	}
	currentBeat := s.transport.CurrentBeat()
	bpm := s.transport.BPM()
	s.launchAt(trackID, slot, c, quant, currentBeat, bpm)
}

// LaunchScene launches every supplied cell using launch boundaries
// computed from a single transport snapshot.
func (s *Scheduler) LaunchScene(cells []SceneClip, quant timebase.Quantization) {
	currentBeat := s.transport.CurrentBeat()
	bpm := s.transport.BPM()
	for _, cell := range cells {
		if cell.Clip == nil {
			continue
		}
		s.launchAt(cell.TrackID, cell.SlotIndex, cell.Clip, quant, currentBeat, bpm)
	}
}

// StopClip requests a stop on the track at the next boundary of the
// resolved quantization. A pending trigger on the track is cancelled
// unconditionally. An unknown track is a no-op.
func (s *Scheduler) StopClip(trackID string, quant timebase.Quantization) {
	ts, ok := s.tracks[trackID]
	if !ok {
		return
	}
	currentBeat := s.transport.CurrentBeat()
	bpm := s.transport.BPM()

	// Cancelling a not-yet-started clip needs no quantized delay and
	// produces no event.
	ts.pending = nil

	if ts.playing != nil {
		eff := s.effectiveQuant(quant)
		stopBeat := timebase.NextQuantizedBoundary(currentBeat, eff)
		if ts.stopping != nil {
			s.finalizeStopping(ts, currentBeat, bpm)
		}
		sc := ts.playing
		ts.playing = nil
		sc.State = clip.StateStopping
		sb := stopBeat
		sc.StopBeat = &sb
		ts.stopping = sc
		if eff == timebase.QuantNone || stopBeat <= currentBeat {
			s.finalizeStopping(ts, currentBeat, bpm)
		}
		return
	}

	if ts.stopping != nil {
		eff := s.effectiveQuant(quant)
		stopBeat := timebase.NextQuantizedBoundary(currentBeat, eff)
		if eff == timebase.QuantNone || stopBeat <= currentBeat {
			s.finalizeStopping(ts, currentBeat, bpm)
		} else if ts.stopping.StopBeat == nil || stopBeat < *ts.stopping.StopBeat {
			sb := stopBeat
			ts.stopping.StopBeat = &sb
		}
	}
}

// StopAll force-finalizes every clip at the current beat. The host's
// transport-stop handler calls this; nothing stays pending afterwards.
func (s *Scheduler) StopAll() {
	currentBeat := s.transport.CurrentBeat()
	bpm := s.transport.BPM()

	for _, id := range s.sortedTrackIDs() {
		ts := s.tracks[id]
		ts.pending = nil
		if ts.playing != nil {
			s.finalizePlaying(ts, currentBeat, bpm)
		}
		if ts.stopping != nil {
			s.finalizeStopping(ts, currentBeat, bpm)
		}
	}
	s.tracks = make(map[string]*trackState)
	logger.Info("all clips stopped", logger.WithBeat(float64(currentBeat)))
}

// Tick advances the scheduler against the transport's current
// position. The host calls this once per scheduling quantum.
func (s *Scheduler) Tick() {
	currentBeat := s.transport.CurrentBeat()
	bpm := s.transport.BPM()
	metrics.Get().SchedulerTicks.Inc()

	ids := s.sortedTrackIDs()
	for _, id := range ids {
		ts := s.tracks[id]
		if ts.pending != nil && currentBeat >= ts.pending.LaunchBeat {
			s.startPending(ts, bpm)
		}
		if ts.stopping != nil && ts.stopping.StopBeat != nil && currentBeat >= *ts.stopping.StopBeat {
			s.finalizeStopping(ts, currentBeat, bpm)
		}
		if ts.playing != nil {
			s.advancePlaying(ts, currentBeat, bpm)
		}
		s.dispatchMIDI(ts.stopping, currentBeat)
		s.dispatchMIDI(ts.playing, currentBeat)
	}

	// Emptied tracks are collected after the scan completes.
	for _, id := range ids {
		if ts, ok := s.tracks[id]; ok && ts.empty() {
			delete(s.tracks, id)
		}
	}
}

// ClipState reports the lifecycle state of a slot. Unknown tracks and
// slots report stopped.
func (s *Scheduler) ClipState(trackID string, slot int) clip.State {
	ts, ok := s.tracks[trackID]
	if !ok {
		return clip.StateStopped
	}
	for _, sc := range []*ScheduledClip{ts.pending, ts.playing, ts.stopping} {
		if sc != nil && sc.SlotIndex == slot {
			return sc.State
		}
	}
	return clip.StateStopped
}

// IsTrackPlaying reports whether a clip is in the playing state on the
// track.
func (s *Scheduler) IsTrackPlaying(trackID string) bool {
	ts, ok := s.tracks[trackID]
	return ok && ts.playing != nil
}

// PlayingClip returns a snapshot of the track's playing clip, or nil.
func (s *Scheduler) PlayingClip(trackID string) *ClipRef {
	ts, ok := s.tracks[trackID]
	if !ok || ts.playing == nil {
		return nil
	}
	sc := ts.playing
	return &ClipRef{
		TrackID:    sc.TrackID,
		SlotIndex:  sc.SlotIndex,
		ClipID:     sc.Clip.ID,
		Name:       sc.Clip.Name,
		State:      sc.State,
		LaunchBeat: sc.LaunchBeat,
		LoopCount:  sc.LoopCount,
	}
}

// StoppingClip returns a snapshot of the track's stopping clip, or nil.
func (s *Scheduler) StoppingClip(trackID string) *ClipRef {
	ts, ok := s.tracks[trackID]
	if !ok || ts.stopping == nil {
		return nil
	}
	sc := ts.stopping
	return &ClipRef{
		TrackID:    sc.TrackID,
		SlotIndex:  sc.SlotIndex,
		ClipID:     sc.Clip.ID,
		Name:       sc.Clip.Name,
		State:      sc.State,
		LaunchBeat: sc.LaunchBeat,
		LoopCount:  sc.LoopCount,
	}
}

// StopBeat returns the pending stop boundary for the track's stopping
// clip, if any.
func (s *Scheduler) StopBeat(trackID string) (timebase.Beats, bool) {
	ts, ok := s.tracks[trackID]
	if !ok || ts.stopping == nil || ts.stopping.StopBeat == nil {
		return 0, false
	}
	return *ts.stopping.StopBeat, true
}

func (s *Scheduler) sortedTrackIDs() []string {
	ids := make([]string, 0, len(s.tracks))
	for id := range s.tracks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Scheduler) track(trackID string) *trackState {
	ts, ok := s.tracks[trackID]
	if !ok {
		ts = &trackState{}
		s.tracks[trackID] = ts
	}
	return ts
}

func (s *Scheduler) effectiveQuant(q timebase.Quantization) timebase.Quantization {
	if q == timebase.QuantGlobal {
		return s.globalQuant
	}
	return q
}

// launchAt runs the launch state transitions against one transport
// snapshot, so scene launches on many tracks share a boundary.
func (s *Scheduler) launchAt(trackID string, slot int, c *clip.Clip, quant timebase.Quantization, currentBeat timebase.Beats, bpm float64) {
	ts := s.track(trackID)

	// A new launch supersedes any pending trigger on the track.
	ts.pending = nil

	eff := s.effectiveQuant(quant)
	launchBeat := timebase.NextQuantizedBoundary(currentBeat, eff)

	legato := c.Legato && ts.playing != nil
	if legato {
		launchBeat = currentBeat
	}

	sc := &ScheduledClip{
		ID:         uuid.New(),
		TrackID:    trackID,
		SlotIndex:  slot,
		Clip:       c,
		State:      clip.StateTriggered,
		LaunchBeat: launchBeat,
	}

	if ts.playing != nil {
		// The playing clip hands over at the new clip's boundary. A
		// clip already stopping has to clear the slot first.
		if ts.stopping != nil {
			s.finalizeStopping(ts, currentBeat, bpm)
		}
		prev := ts.playing
		ts.playing = nil
		prev.State = clip.StateStopping
		sb := launchBeat
		prev.StopBeat = &sb
		ts.stopping = prev
	} else if ts.stopping != nil && ts.stopping.StopBeat != nil && launchBeat < *ts.stopping.StopBeat {
		// The new launch pulls an already scheduled stop earlier.
		sb := launchBeat
		ts.stopping.StopBeat = &sb
	}

	ts.pending = sc
	logger.Debug("clip launch scheduled",
		logger.WithTrack(trackID),
		logger.WithSlot(slot),
		logger.WithClipID(c.ID.String()),
		logger.WithBeat(float64(launchBeat)),
		zap.String("quantization", eff.String()),
		zap.Bool("legato", legato))

	if eff == timebase.QuantNone || launchBeat <= currentBeat {
		s.startPending(ts, bpm)
	}
}

// startPending promotes the track's triggered clip to playing and
// dispatches its content.
func (s *Scheduler) startPending(ts *trackState, bpm float64) {
	sc := ts.pending
	ts.pending = nil
	sc.State = clip.StatePlaying
	ts.playing = sc

	switch src := sc.Clip.Source.(type) {
	case *clip.AudioSource:
		s.startAudio(sc, src, bpm)
	case *clip.MIDISource:
		sc.midiEvents = buildMIDISchedule(src.Notes, sc.LaunchBeat)
	default:
		// A clip without content still runs its timing lifecycle.
	}

	metrics.Get().ClipLaunches.WithLabelValues(sc.TrackID).Inc()
	s.publish(Event{
		Type:      EventClipStarted,
		TrackID:   sc.TrackID,
		SlotIndex: sc.SlotIndex,
		Beat:      sc.LaunchBeat,
	})
	logger.Info("clip started",
		logger.WithTrack(sc.TrackID),
		logger.WithSlot(sc.SlotIndex),
		logger.WithClipID(sc.Clip.ID.String()),
		logger.WithBeat(float64(sc.LaunchBeat)))
}

// startAudio schedules one playback per resolvable region. Regions
// whose samples are missing are skipped, not errors.
func (s *Scheduler) startAudio(sc *ScheduledClip, src *clip.AudioSource, bpm float64) {
	if s.renderer == nil || s.samples == nil {
		return
	}

	rate := 1.0
	if w := src.Warp; w != nil && w.Enabled && w.Mode == warp.ModeRepitch {
		rate = stretch.Rate(w.OriginalBPM, bpm)
	}

	for i := range src.Regions {
		r := &src.Regions[i]
		buf, err := s.samples.Sample(r.SampleID)
		if err != nil {
			logger.Warn("region sample unresolved, skipping",
				logger.WithTrack(sc.TrackID),
				logger.WithSlot(sc.SlotIndex),
				logger.WithSample(r.SampleID),
				zap.Error(err))
			continue
		}
		gain := r.Gain
		if gain == 0 {
			// Zero value means the region never set a gain.
			gain = 1.0
		}
		h := s.renderer.SchedulePlayback(render.Playback{
			Buffer:       buf,
			StartTime:    timebase.BeatsToSeconds(sc.LaunchBeat+r.StartBeat, bpm),
			BufferOffset: r.BufferOffset,
			Duration:     r.Duration,
			Loop:         r.Loop,
			Gain:         gain,
			Rate:         rate,
		})
		sc.audioHandles = append(sc.audioHandles, h)
	}
}

// advancePlaying handles loop boundary crossings and natural clip ends.
// A single tick can cross several boundaries when the transport jumps.
func (s *Scheduler) advancePlaying(ts *trackState, currentBeat timebase.Beats, bpm float64) {
	sc := ts.playing
	rel := currentBeat - sc.LaunchBeat

	if !sc.Clip.Loop {
		if rel >= sc.Clip.LengthBeats {
			s.finalizePlaying(ts, sc.LaunchBeat+sc.Clip.LengthBeats, bpm)
		}
		return
	}

	loopLen := sc.Clip.LengthBeats
	if loopLen <= 0 {
		return
	}
	for rel >= loopLen*timebase.Beats(sc.LoopCount+1) {
		sc.LoopCount++
		boundary := sc.LaunchBeat + loopLen*timebase.Beats(sc.LoopCount)

		metrics.Get().ClipLoops.WithLabelValues(sc.TrackID).Inc()
		s.publish(Event{
			Type:      EventClipLooped,
			TrackID:   sc.TrackID,
			SlotIndex: sc.SlotIndex,
			Beat:      boundary,
			LoopCount: sc.LoopCount,
		})

		if sc.Clip.Follow != nil {
			s.evaluateFollow(ts, sc, boundary, bpm)
		}
		if ts.playing != sc {
			// A follow action stopped or replaced the clip.
			return
		}
		s.rescheduleMIDI(sc, boundary)
	}
}

// evaluateFollow draws one of the clip's two follow actions and
// executes it at the loop boundary.
func (s *Scheduler) evaluateFollow(ts *trackState, sc *ScheduledClip, boundary timebase.Beats, bpm float64) {
	pair := sc.Clip.Follow
	action := pair.B
	if s.rng.Float64() <= pair.A.Chance {
		action = pair.A
	}
	if action.Type == clip.FollowNone {
		return
	}

	metrics.Get().FollowActions.WithLabelValues(action.Type.String()).Inc()
	s.publish(Event{
		Type:      EventFollowAction,
		TrackID:   sc.TrackID,
		SlotIndex: sc.SlotIndex,
		Beat:      boundary,
		Action:    action.Type,
	})

	switch action.Type {
	case clip.FollowStop:
		s.finalizePlaying(ts, boundary, bpm)
	case clip.FollowPlayAgain:
		// The loop already continues.
	case clip.FollowNext:
		s.launchAdjacent(ts, sc, boundary, bpm, +1)
	case clip.FollowPrevious:
		s.launchAdjacent(ts, sc, boundary, bpm, -1)
	case clip.FollowJump:
		if s.topology == nil {
			return
		}
		target, ok := s.topology.ClipAt(sc.TrackID, action.JumpTarget)
		if !ok {
			return
		}
		s.launchAt(sc.TrackID, action.JumpTarget, target, timebase.QuantNone, boundary, bpm)
	}
}

// launchAdjacent resolves a next/previous follow action through the
// session topology. Without a topology the action is a no-op.
func (s *Scheduler) launchAdjacent(ts *trackState, sc *ScheduledClip, boundary timebase.Beats, bpm float64, direction int) {
	if s.topology == nil {
		return
	}
	ref, ok := s.topology.AdjacentSlot(sc.TrackID, sc.SlotIndex, direction)
	if !ok || ref.Clip == nil {
		return
	}
	s.launchAt(sc.TrackID, ref.SlotIndex, ref.Clip, timebase.QuantNone, boundary, bpm)
}

// rescheduleMIDI closes notes hanging over the boundary and rebuilds
// the schedule for the next loop pass.
func (s *Scheduler) rescheduleMIDI(sc *ScheduledClip, base timebase.Beats) {
	src, ok := sc.Clip.Source.(*clip.MIDISource)
	if !ok {
		return
	}
	s.flushMIDIOffs(sc, base)
	sc.midiEvents = buildMIDISchedule(src.Notes, base)
}

// dispatchMIDI fires due note events. Offs go first so a same-beat
// retrigger of one pitch arrives off-then-on.
func (s *Scheduler) dispatchMIDI(sc *ScheduledClip, currentBeat timebase.Beats) {
	if sc == nil || len(sc.midiEvents) == 0 {
		return
	}

	for _, ev := range sc.midiEvents {
		if ev.Triggered && !ev.done && currentBeat >= ev.EndBeat {
			s.midi.NoteOff(ev.EndBeat, ev.Channel, ev.Note)
			ev.done = true
		}
	}
	for _, ev := range sc.midiEvents {
		if !ev.Triggered && currentBeat >= ev.StartBeat {
			s.midi.NoteOn(ev.StartBeat, ev.Channel, ev.Note, ev.Velocity)
			ev.Triggered = true
			if currentBeat >= ev.EndBeat && !ev.done {
				s.midi.NoteOff(ev.EndBeat, ev.Channel, ev.Note)
				ev.done = true
			}
		}
	}

	remaining := sc.midiEvents[:0]
	for _, ev := range sc.midiEvents {
		if !ev.done {
			remaining = append(remaining, ev)
		}
	}
	sc.midiEvents = remaining
}

// flushMIDIOffs closes every sounding note at atBeat.
func (s *Scheduler) flushMIDIOffs(sc *ScheduledClip, atBeat timebase.Beats) {
	for _, ev := range sc.midiEvents {
		if ev.Triggered && !ev.done {
			s.midi.NoteOff(atBeat, ev.Channel, ev.Note)
			ev.done = true
		}
	}
}

// stopDispatch releases a clip's live audio and MIDI at atBeat.
func (s *Scheduler) stopDispatch(sc *ScheduledClip, atBeat timebase.Beats, bpm float64) {
	if s.renderer != nil {
		at := timebase.BeatsToSeconds(atBeat, bpm)
		for _, h := range sc.audioHandles {
			s.renderer.StopPlayback(h, at)
		}
	}
	sc.audioHandles = nil
	s.flushMIDIOffs(sc, atBeat)
	sc.midiEvents = nil
}

// finalizePlaying stops the track's playing clip at atBeat.
func (s *Scheduler) finalizePlaying(ts *trackState, atBeat timebase.Beats, bpm float64) {
	sc := ts.playing
	ts.playing = nil
	s.stopDispatch(sc, atBeat, bpm)
	sc.State = clip.StateStopped

	metrics.Get().ClipStops.WithLabelValues(sc.TrackID).Inc()
	s.publish(Event{
		Type:      EventClipStopped,
		TrackID:   sc.TrackID,
		SlotIndex: sc.SlotIndex,
		Beat:      atBeat,
	})
	logger.Info("clip stopped",
		logger.WithTrack(sc.TrackID),
		logger.WithSlot(sc.SlotIndex),
		logger.WithBeat(float64(atBeat)))
}

// finalizeStopping clears the track's stopping clip. The stop lands on
// the scheduled boundary when it has passed, or on the current beat
// when the clip is displaced early.
func (s *Scheduler) finalizeStopping(ts *trackState, currentBeat timebase.Beats, bpm float64) {
	sc := ts.stopping
	ts.stopping = nil

	atBeat := currentBeat
	if sc.StopBeat != nil && *sc.StopBeat <= currentBeat {
		atBeat = *sc.StopBeat
	}
	s.stopDispatch(sc, atBeat, bpm)
	sc.State = clip.StateStopped

	metrics.Get().ClipStops.WithLabelValues(sc.TrackID).Inc()
	s.publish(Event{
		Type:      EventClipStopped,
		TrackID:   sc.TrackID,
		SlotIndex: sc.SlotIndex,
		Beat:      atBeat,
	})
	logger.Info("clip stopped",
		logger.WithTrack(sc.TrackID),
		logger.WithSlot(sc.SlotIndex),
		logger.WithBeat(float64(atBeat)))
}

func (s *Scheduler) publish(e Event) {
	metrics.Get().EventsPublished.WithLabelValues(e.Type.String()).Inc()
	s.bus.publish(e)
}

// buildMIDISchedule pins a clip's beat-relative notes to absolute
// positions starting at base.
func buildMIDISchedule(notes []clip.Note, base timebase.Beats) []*ScheduledMIDIEvent {
	events := make([]*ScheduledMIDIEvent, 0, len(notes))
	for _, n := range notes {
		events = append(events, &ScheduledMIDIEvent{
			NoteID:    uuid.New(),
			Note:      n.Note,
			Velocity:  n.Velocity,
			Channel:   n.Channel,
			StartBeat: base + n.StartBeat,
			EndBeat:   base + n.StartBeat + n.LengthBeats,
		})
	}
	return events
}
