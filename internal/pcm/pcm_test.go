package pcm

import (
	"math"
	"testing"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuffer(t *testing.T) {
	b := New(2, 100, 48000)
	assert.Equal(t, 2, b.NumChannels())
	assert.Equal(t, 100, b.Frames())
	assert.Equal(t, 48000, b.SampleRate)
	assert.InDelta(t, 100.0/48000.0, float64(b.Duration()), 1e-12)
}

func TestNewBufferDefaults(t *testing.T) {
	b := New(0, -5, 0)
	assert.Equal(t, 1, b.NumChannels())
	assert.Equal(t, 0, b.Frames())
	assert.Equal(t, DefaultSampleRate, b.SampleRate)
}

func TestFromIntBufferScaling(t *testing.T) {
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 44100},
		Data:           []int{16384, -16384, 32767, -32768},
		SourceBitDepth: 16,
	}
	b := FromIntBuffer(ib)
	require.NotNil(t, b)
	assert.Equal(t, 2, b.NumChannels())
	assert.Equal(t, 2, b.Frames())

	// Interleaved LRLR becomes planar per channel.
	assert.InDelta(t, 0.5, b.Channels[0][0], 1e-4)
	assert.InDelta(t, -0.5, b.Channels[1][0], 1e-4)
	assert.InDelta(t, 1.0, b.Channels[0][1], 1e-3)
	assert.InDelta(t, -1.0, b.Channels[1][1], 1e-3)
}

func TestFromIntBufferNil(t *testing.T) {
	assert.Nil(t, FromIntBuffer(nil))
	assert.Nil(t, FromIntBuffer(&audio.IntBuffer{}))
}

func TestIntBufferRoundTrip(t *testing.T) {
	b := New(1, 4, 44100)
	b.Channels[0] = []float64{0, 0.25, -0.5, 1.0}

	ib := b.IntBuffer(16)
	require.Equal(t, 4, len(ib.Data))

	back := FromIntBuffer(ib)
	for i := range b.Channels[0] {
		assert.InDelta(t, b.Channels[0][i], back.Channels[0][i], 1.0/32768.0+1e-9)
	}
}

func TestIntBufferClamps(t *testing.T) {
	b := New(1, 2, 44100)
	b.Channels[0] = []float64{2.0, -3.0}

	ib := b.IntBuffer(16)
	assert.Equal(t, 32767, ib.Data[0])
	assert.Equal(t, -32767, ib.Data[1])
}

func TestCloneIsIndependent(t *testing.T) {
	b := New(1, 3, 44100)
	b.Channels[0] = []float64{0.1, 0.2, 0.3}

	c := b.Clone()
	c.Channels[0][0] = 9.9

	assert.Equal(t, 0.1, b.Channels[0][0])
	assert.Equal(t, 9.9, c.Channels[0][0])
}

func TestNormalizePeak(t *testing.T) {
	b := New(1, 3, 44100)
	b.Channels[0] = []float64{0.5, -2.0, 1.0}

	b.NormalizePeak()

	assert.InDelta(t, 1.0, b.PeakAbs(), 1e-12)
	assert.InDelta(t, 0.25, b.Channels[0][0], 1e-12)
	assert.InDelta(t, -1.0, b.Channels[0][1], 1e-12)
}

func TestNormalizePeakLeavesQuietBufferAlone(t *testing.T) {
	b := New(1, 2, 44100)
	b.Channels[0] = []float64{0.5, -0.25}

	b.NormalizePeak()

	assert.Equal(t, []float64{0.5, -0.25}, b.Channels[0])
}

func TestFadeInEndpoints(t *testing.T) {
	b := New(1, 100, 44100)
	for i := range b.Channels[0] {
		b.Channels[0][i] = 1.0
	}

	b.FadeIn(50)

	assert.InDelta(t, 0.0, b.Channels[0][0], 1e-12)
	assert.InDelta(t, 1.0, b.Channels[0][49], 1e-12)
	assert.Equal(t, 1.0, b.Channels[0][99], "tail untouched")

	// Monotonic ramp.
	for i := 1; i < 50; i++ {
		assert.GreaterOrEqual(t, b.Channels[0][i], b.Channels[0][i-1])
	}
}

func TestFadeOutEndpoints(t *testing.T) {
	b := New(1, 100, 44100)
	for i := range b.Channels[0] {
		b.Channels[0][i] = 1.0
	}

	b.FadeOut(50)

	assert.Equal(t, 1.0, b.Channels[0][0], "head untouched")
	assert.InDelta(t, 1.0, b.Channels[0][50], 1e-12)
	assert.InDelta(t, 0.0, b.Channels[0][99], 1e-12)
}

func TestDeclick(t *testing.T) {
	b := New(2, 4410, 44100)
	for _, ch := range b.Channels {
		for i := range ch {
			ch[i] = 0.8
		}
	}

	b.Declick(5) // 5ms = 220 frames each end

	for _, ch := range b.Channels {
		assert.InDelta(t, 0.0, ch[0], 1e-12)
		assert.InDelta(t, 0.0, ch[len(ch)-1], 1e-12)
		assert.Equal(t, 0.8, ch[2205], "middle untouched")
	}
}

func TestFadeLongerThanBuffer(t *testing.T) {
	b := New(1, 10, 44100)
	for i := range b.Channels[0] {
		b.Channels[0][i] = 1.0
	}

	b.FadeIn(1000)

	assert.InDelta(t, 0.0, b.Channels[0][0], 1e-12)
	assert.False(t, math.IsNaN(b.Channels[0][5]))
}
