// Package stretch resamples audio to a target duration. The granular and
// overlap-add paths preserve pitch; repitch leaves resampling to the
// renderer's playback rate. Processing is synchronous and CPU-bound, so
// callers keep it off the real-time path (the render queue runs it on
// background workers).
package stretch

import (
	"math"
	"math/rand"
	"time"

	"github.com/warpgrid/warpgrid/internal/pcm"
	"github.com/warpgrid/warpgrid/internal/timebase"
	"github.com/warpgrid/warpgrid/internal/warp"
)

// Engine stretches one clip's source buffer according to its warp settings.
// Each engine owns its buffers; distinct engines may run concurrently.
type Engine struct {
	settings *warp.Settings
	source   *pcm.Buffer
	windows  *windowTable
	rng      *rand.Rand
}

// NewEngine builds an engine for the given warp settings. The Hann window
// table is precomputed here and never mutated afterwards.
func NewEngine(settings *warp.Settings) *Engine {
	if settings == nil {
		settings = warp.NewSettings(120)
	}
	return &Engine{
		settings: settings,
		windows:  newWindowTable(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRandSeed makes randomized grain placement reproducible.
func (e *Engine) SetRandSeed(seed int64) {
	e.rng = rand.New(rand.NewSource(seed))
}

// SetSource attaches the audio to stretch.
func (e *Engine) SetSource(buf *pcm.Buffer) {
	e.source = buf
}

// Source returns the attached audio, if any.
func (e *Engine) Source() *pcm.Buffer {
	return e.source
}

// Rate returns the playback-rate multiplier a renderer applies to play
// material recorded at originalBPM back at targetBPM without any DSP.
func Rate(originalBPM, targetBPM float64) float64 {
	return timebase.ClampBPM(targetBPM) / timebase.ClampBPM(originalBPM)
}

// RepitchRate returns the playback-rate multiplier a renderer applies in
// repitch mode at the given target tempo.
func (e *Engine) RepitchRate(targetBPM float64) float64 {
	return Rate(e.settings.OriginalBPM, targetBPM)
}

// Process resamples the source to the target duration and returns a new
// buffer, or the source itself in the modes that perform no DSP. It returns
// nil when no source is loaded. Degenerate targets are not validated: a tiny
// or non-positive duration yields a short or empty buffer, never a panic.
func (e *Engine) Process(targetDuration timebase.Seconds) *pcm.Buffer {
	if e.source == nil || e.source.Frames() == 0 {
		return nil
	}

	switch e.settings.Mode {
	case warp.ModeOff, warp.ModeRepitch:
		return e.source
	}

	srcDur := float64(e.source.Duration())
	if srcDur <= 0 {
		return nil
	}
	ratio := float64(targetDuration) / srcDur

	switch e.settings.Mode {
	case warp.ModeBeats:
		return e.stretchBeats(ratio)
	case warp.ModeTones, warp.ModeComplex:
		return e.stretchTones(ratio)
	case warp.ModeTexture:
		return e.granularWhole(ratio, textureOpt)
	default:
		return e.source
	}
}

// grainSamples derives the grain length from GrainSizeMs at the fixed
// internal reference rate, snapped to a precomputed window size.
func (e *Engine) grainSamples() int {
	ms := e.settings.GrainSizeMs
	if ms <= 0 {
		ms = 60
	}
	requested := int(ms / 1000.0 * float64(pcm.DefaultSampleRate))
	return e.windows.closestSize(requested)
}

func (e *Engine) granularWhole(ratio float64, opt granularOpt) *pcm.Buffer {
	grain := e.grainSamples()
	outFrames := int(math.Round(float64(e.source.Frames()) * ratio))
	return granularRender(e.source, outFrames, grain, e.windows.get(grain), opt, e.rng)
}

// stretchTones is the phase-vocoder-style overlap-add path: fixed 2048
// sample frames, quarter-frame input hop, output hop scaled by the ratio.
// Phase is not reconstructed; the approximation level is intentional.
func (e *Engine) stretchTones(ratio float64) *pcm.Buffer {
	const frame = 2048
	outFrames := int(math.Round(float64(e.source.Frames()) * ratio))
	return granularRender(e.source, outFrames, frame, e.windows.get(frame), granularOpt{}, e.rng)
}

// stretchBeats stretches independently between consecutive marker pairs so
// transients stay aligned at marker boundaries. Each marker's output offset
// is its beat time converted to seconds at the original tempo and scaled by
// the ratio. Audio outside the marker range stretches as head/tail segments.
func (e *Engine) stretchBeats(ratio float64) *pcm.Buffer {
	src := e.source
	markers := e.settings.Markers
	if len(markers) < 2 {
		return e.granularWhole(ratio, granularOpt{})
	}

	grain := e.grainSamples()
	win := e.windows.get(grain)
	rate := float64(src.SampleRate)
	outFrames := int(math.Round(float64(src.Frames()) * ratio))
	out := pcm.New(src.NumChannels(), outFrames, src.SampleRate)

	outOffset := func(m warp.Marker) int {
		sec := float64(timebase.BeatsToSeconds(m.BeatTime, e.settings.OriginalBPM)) * ratio
		return int(math.Round(sec * rate))
	}
	srcFrame := func(t timebase.Seconds) int {
		return int(math.Round(float64(t) * rate))
	}

	type segment struct {
		srcStart, srcEnd, outStart, outEnd int
	}
	var segs []segment

	if f := srcFrame(markers[0].SampleTime); f > 0 {
		segs = append(segs, segment{0, f, 0, outOffset(markers[0])})
	}
	for i := 0; i < len(markers)-1; i++ {
		segs = append(segs, segment{
			srcStart: srcFrame(markers[i].SampleTime),
			srcEnd:   srcFrame(markers[i+1].SampleTime),
			outStart: outOffset(markers[i]),
			outEnd:   outOffset(markers[i+1]),
		})
	}
	last := markers[len(markers)-1]
	if f := srcFrame(last.SampleTime); f < src.Frames() {
		segs = append(segs, segment{f, src.Frames(), outOffset(last), outFrames})
	}

	for _, seg := range segs {
		if seg.srcStart < 0 {
			seg.srcStart = 0
		}
		if seg.srcEnd > src.Frames() {
			seg.srcEnd = src.Frames()
		}
		if seg.outStart < 0 {
			seg.outStart = 0
		}
		if seg.outEnd > outFrames {
			seg.outEnd = outFrames
		}
		if seg.srcEnd <= seg.srcStart || seg.outEnd <= seg.outStart {
			continue
		}

		segSrc := &pcm.Buffer{
			SampleRate: src.SampleRate,
			Channels:   make([][]float64, src.NumChannels()),
		}
		for c, ch := range src.Channels {
			segSrc.Channels[c] = ch[seg.srcStart:seg.srcEnd]
		}

		rendered := granularRender(segSrc, seg.outEnd-seg.outStart, grain, win, granularOpt{}, e.rng)
		for c := range out.Channels {
			copy(out.Channels[c][seg.outStart:seg.outEnd], rendered.Channels[c])
		}
	}
	return out
}
