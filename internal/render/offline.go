package render

import (
	"math"
	"sync"

	"github.com/warpgrid/warpgrid/internal/pcm"
	"github.com/warpgrid/warpgrid/internal/timebase"
)

// Offline collects playbacks and mixes them into a single buffer on
// demand. It backs the bounce path: run the scheduler over a beat
// range with an Offline renderer, then call Mixdown.
type Offline struct {
	mu         sync.Mutex
	sampleRate int
	channels   int
	records    []*playbackRecord
	byHandle   map[Handle]*playbackRecord
}

var _ AudioRenderer = (*Offline)(nil)

type playbackRecord struct {
	pb     Playback
	stopAt timebase.Seconds
}

// NewOffline creates a mixdown renderer producing buffers with the
// given format.
func NewOffline(channels, sampleRate int) *Offline {
	if channels < 1 {
		channels = 2
	}
	if sampleRate <= 0 {
		sampleRate = pcm.DefaultSampleRate
	}
	return &Offline{
		sampleRate: sampleRate,
		channels:   channels,
		byHandle:   make(map[Handle]*playbackRecord),
	}
}

// SchedulePlayback records pb for the next mixdown.
func (o *Offline) SchedulePlayback(pb Playback) Handle {
	h := NewHandle()
	rec := &playbackRecord{pb: pb, stopAt: timebase.Seconds(math.Inf(1))}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, rec)
	o.byHandle[h] = rec
	return h
}

// StopPlayback truncates the playback at the given absolute time. A
// stop before the playback's start silences it entirely.
func (o *Offline) StopPlayback(h Handle, at timebase.Seconds) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if rec, ok := o.byHandle[h]; ok {
		rec.stopAt = at
	}
}

// Reset discards all recorded playbacks.
func (o *Offline) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = nil
	o.byHandle = make(map[Handle]*playbackRecord)
}

// Mixdown sums every recorded playback into a buffer spanning length
// seconds from transport time zero.
func (o *Offline) Mixdown(length timebase.Seconds) *pcm.Buffer {
	o.mu.Lock()
	defer o.mu.Unlock()

	frames := int(math.Round(float64(length) * float64(o.sampleRate)))
	out := pcm.New(o.channels, frames, o.sampleRate)
	for _, rec := range o.records {
		o.mixPlayback(out, rec)
	}
	return out
}

func (o *Offline) mixPlayback(out *pcm.Buffer, rec *playbackRecord) {
	pb := rec.pb
	if pb.Buffer == nil || pb.Buffer.Frames() == 0 {
		return
	}

	outRate := float64(o.sampleRate)
	srcRate := float64(pb.Buffer.SampleRate)
	srcFrames := pb.Buffer.Frames()

	limit := rec.stopAt
	if pb.Duration > 0 {
		if end := pb.StartTime + pb.Duration; end < limit {
			limit = end
		}
	}
	if limit <= pb.StartTime {
		return
	}

	startFrame := int(math.Round(float64(pb.StartTime) * outRate))
	endFrame := out.Frames()
	if !math.IsInf(float64(limit), 1) {
		if lf := int(math.Round(float64(limit) * outRate)); lf < endFrame {
			endFrame = lf
		}
	}
	if startFrame >= endFrame {
		return
	}
	if startFrame < 0 {
		startFrame = 0
	}

	rate := pb.Rate
	if rate <= 0 {
		rate = 1.0
	}
	step := rate * srcRate / outRate

	var loopStart, loopEnd float64
	if pb.Loop != nil {
		loopStart = float64(pb.Loop.Start) * srcRate
		loopEnd = float64(pb.Loop.End) * srcRate
		if loopEnd > float64(srcFrames) {
			loopEnd = float64(srcFrames)
		}
		if loopEnd <= loopStart {
			pb.Loop = nil
		}
	}

	srcPos := float64(pb.BufferOffset) * srcRate
	for f := startFrame; f < endFrame; f++ {
		if pb.Loop != nil {
			for srcPos >= loopEnd {
				srcPos -= loopEnd - loopStart
			}
		} else if srcPos >= float64(srcFrames-1) {
			break
		}
		if srcPos >= 0 {
			for c := 0; c < out.NumChannels(); c++ {
				sc := c
				if sc >= pb.Buffer.NumChannels() {
					sc = pb.Buffer.NumChannels() - 1
				}
				out.Channels[c][f] += interpolatedSample(pb.Buffer.Channels[sc], srcPos) * pb.Gain
			}
		}
		srcPos += step
	}
}

// interpolatedSample reads samples at a fractional frame position with
// linear interpolation.
func interpolatedSample(samples []float64, pos float64) float64 {
	lo := int(math.Floor(pos))
	if lo < 0 {
		return 0
	}
	if lo >= len(samples)-1 {
		return samples[len(samples)-1]
	}
	frac := pos - float64(lo)
	return samples[lo] + (samples[lo+1]-samples[lo])*frac
}
