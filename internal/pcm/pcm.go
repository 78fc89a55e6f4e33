// Package pcm holds the engine's audio buffer primitive: planar float64
// sample data plus a rate, with bridges to the go-audio interchange types
// used for WAV decode/encode.
package pcm

import (
	"math"

	"github.com/go-audio/audio"

	"github.com/warpgrid/warpgrid/internal/timebase"
)

// DefaultSampleRate is the engine's internal reference rate. Grain sizing in
// the stretch engine is derived against this rate.
const DefaultSampleRate = 44100

// Buffer is planar PCM: one []float64 per channel, all the same length.
// Samples are nominally in [-1, 1]; DSP stages may overshoot and normalize.
type Buffer struct {
	SampleRate int
	Channels   [][]float64
}

// New allocates a silent buffer.
func New(numChannels, frames, sampleRate int) *Buffer {
	if numChannels < 1 {
		numChannels = 1
	}
	if frames < 0 {
		frames = 0
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	chs := make([][]float64, numChannels)
	for i := range chs {
		chs[i] = make([]float64, frames)
	}
	return &Buffer{SampleRate: sampleRate, Channels: chs}
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	return len(b.Channels)
}

// Frames returns the per-channel sample count.
func (b *Buffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() timebase.Seconds {
	if b.SampleRate <= 0 {
		return 0
	}
	return timebase.Seconds(float64(b.Frames()) / float64(b.SampleRate))
}

// Mono returns channel 0, the channel transient analysis reads.
func (b *Buffer) Mono() []float64 {
	if len(b.Channels) == 0 {
		return nil
	}
	return b.Channels[0]
}

// Clone deep-copies the buffer.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{SampleRate: b.SampleRate, Channels: make([][]float64, len(b.Channels))}
	for i, ch := range b.Channels {
		out.Channels[i] = make([]float64, len(ch))
		copy(out.Channels[i], ch)
	}
	return out
}

// PeakAbs returns the largest absolute sample value across all channels.
func (b *Buffer) PeakAbs() float64 {
	peak := 0.0
	for _, ch := range b.Channels {
		for _, s := range ch {
			if a := math.Abs(s); a > peak {
				peak = a
			}
		}
	}
	return peak
}

// NormalizePeak divides every sample by the peak absolute value, in place,
// when that peak exceeds 1.0. This trades overall level for clip safety; it
// is not loudness-preserving.
func (b *Buffer) NormalizePeak() {
	peak := b.PeakAbs()
	if peak <= 1.0 {
		return
	}
	inv := 1.0 / peak
	for _, ch := range b.Channels {
		for i := range ch {
			ch[i] *= inv
		}
	}
}

// FromIntBuffer converts an interleaved go-audio int buffer (as produced by
// the WAV decoder) into a planar float buffer scaled to [-1, 1].
func FromIntBuffer(ib *audio.IntBuffer) *Buffer {
	if ib == nil || ib.Format == nil || ib.Format.NumChannels < 1 {
		return nil
	}
	numCh := ib.Format.NumChannels
	frames := len(ib.Data) / numCh

	bitDepth := ib.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))

	out := New(numCh, frames, ib.Format.SampleRate)
	for f := 0; f < frames; f++ {
		for c := 0; c < numCh; c++ {
			out.Channels[c][f] = float64(ib.Data[f*numCh+c]) * scale
		}
	}
	return out
}

// IntBuffer converts back to an interleaved go-audio int buffer at the given
// bit depth, clamping out-of-range samples. Used on the WAV encode path.
func (b *Buffer) IntBuffer(bitDepth int) *audio.IntBuffer {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	numCh := b.NumChannels()
	frames := b.Frames()
	scale := float64(int64(1)<<(bitDepth-1)) - 1

	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numCh, SampleRate: b.SampleRate},
		Data:           make([]int, numCh*frames),
		SourceBitDepth: bitDepth,
	}
	for f := 0; f < frames; f++ {
		for c := 0; c < numCh; c++ {
			s := b.Channels[c][f]
			if s > 1.0 {
				s = 1.0
			} else if s < -1.0 {
				s = -1.0
			}
			ib.Data[f*numCh+c] = int(math.Round(s * scale))
		}
	}
	return ib
}
