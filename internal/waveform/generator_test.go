package waveform

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warpgrid/warpgrid/internal/pcm"
	"github.com/warpgrid/warpgrid/internal/timebase"
)

func sineBuffer(seconds float64) *pcm.Buffer {
	frames := int(seconds * pcm.DefaultSampleRate)
	buf := pcm.New(2, frames, pcm.DefaultSampleRate)
	for i := 0; i < frames; i++ {
		s := 0.8 * math.Sin(2*math.Pi*220*float64(i)/pcm.DefaultSampleRate)
		buf.Channels[0][i] = s
		buf.Channels[1][i] = s
	}
	return buf
}

func sameColor(t *testing.T, want, got color.Color) {
	t.Helper()
	wr, wg, wb, wa := want.RGBA()
	gr, gg, gb, ga := got.RGBA()
	assert.Equal(t, [4]uint32{wr, wg, wb, wa}, [4]uint32{gr, gg, gb, ga})
}

func TestRenderPNGProducesDecodableImage(t *testing.T) {
	g := NewGenerator()

	data, err := g.RenderPNG(sineBuffer(1.0))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, g.Width, img.Bounds().Dx())
	assert.Equal(t, g.Height, img.Bounds().Dy())
}

func TestRenderPNGEmptyBufferFails(t *testing.T) {
	g := NewGenerator()

	_, err := g.RenderPNG(nil)
	assert.Error(t, err)

	_, err = g.RenderPNG(pcm.New(2, 0, pcm.DefaultSampleRate))
	assert.Error(t, err)
}

func TestSetDimensionsControlsOutputSize(t *testing.T) {
	g := NewGenerator()
	g.SetDimensions(300, 80)

	data, err := g.RenderPNG(sineBuffer(0.5))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())

	g.SetDimensions(0, -10)
	assert.Equal(t, 300, g.Width)
	assert.Equal(t, 80, g.Height)
}

func TestSilenceRendersCenterLineOnly(t *testing.T) {
	g := NewGenerator()
	g.SetDimensions(100, 50)

	img := g.generateImage(pcm.New(1, 1000, pcm.DefaultSampleRate), nil)

	sameColor(t, g.Background, img.At(10, 2))
	sameColor(t, g.Foreground, img.At(10, g.Height/2))
}

func TestLoudSignalFillsColumns(t *testing.T) {
	g := NewGenerator()
	g.SetDimensions(100, 50)

	img := g.generateImage(sineBuffer(0.2), nil)

	// A 0.8 amplitude sine has RMS well above half scale.
	sameColor(t, g.Foreground, img.At(50, g.Height/2-10))
	sameColor(t, g.Foreground, img.At(50, g.Height/2+10))
}

func TestMarkersDrawFullHeightLines(t *testing.T) {
	g := NewGenerator()
	g.SetDimensions(200, 60)

	img := g.generateImage(sineBuffer(1.0), []timebase.Seconds{0.5, 2.0})

	sameColor(t, g.MarkerInk, img.At(100, 0))
	sameColor(t, g.MarkerInk, img.At(100, 59))
}

func TestSetColorsOverridesPalette(t *testing.T) {
	g := NewGenerator()
	black := color.RGBA{0, 0, 0, 255}
	white := color.RGBA{255, 255, 255, 255}

	g.SetColors(black, white)

	img := g.generateImage(pcm.New(1, 100, pcm.DefaultSampleRate), nil)
	sameColor(t, black, img.At(0, 0))
}
