// Package waveform renders clip-view waveform images from PCM buffers.
package waveform

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/warpgrid/warpgrid/internal/pcm"
	"github.com/warpgrid/warpgrid/internal/timebase"
)

// Generator draws RMS waveform images. One vertical bar per pixel column,
// mirrored around the center line.
type Generator struct {
	Width      int
	Height     int
	Background color.Color
	Foreground color.Color
	MarkerInk  color.Color
}

// NewGenerator creates a generator with clip-view defaults.
func NewGenerator() *Generator {
	return &Generator{
		Width:      1200,
		Height:     200,
		Background: color.RGBA{38, 38, 44, 255},
		Foreground: color.RGBA{180, 228, 255, 255},
		MarkerInk:  color.RGBA{255, 196, 87, 255},
	}
}

// RenderPNG renders the buffer as a PNG image.
func (g *Generator) RenderPNG(buf *pcm.Buffer) ([]byte, error) {
	return g.RenderPNGWithMarkers(buf, nil)
}

// RenderPNGWithMarkers renders the buffer with a vertical line at each
// marker time. Markers outside the buffer are skipped.
func (g *Generator) RenderPNGWithMarkers(buf *pcm.Buffer, at []timebase.Seconds) ([]byte, error) {
	if buf == nil || buf.Frames() == 0 {
		return nil, fmt.Errorf("empty audio buffer")
	}

	img := g.generateImage(buf, at)

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return pngBuf.Bytes(), nil
}

func (g *Generator) generateImage(buf *pcm.Buffer, at []timebase.Seconds) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			img.Set(x, y, g.Background)
		}
	}

	frames := buf.Frames()
	samplesPerPixel := frames / g.Width
	if samplesPerPixel < 1 {
		samplesPerPixel = 1
	}

	centerY := g.Height / 2

	for x := 0; x < g.Width; x++ {
		startFrame := x * samplesPerPixel
		endFrame := startFrame + samplesPerPixel
		if endFrame > frames {
			endFrame = frames
		}
		if startFrame >= frames {
			break
		}

		// RMS across every channel in the column's frame range.
		var sum float64
		count := 0
		for _, ch := range buf.Channels {
			for i := startFrame; i < endFrame; i++ {
				sum += ch[i] * ch[i]
				count++
			}
		}
		if count == 0 {
			continue
		}

		rms := math.Sqrt(sum / float64(count))
		if rms > 1.0 {
			rms = 1.0
		}

		barHeight := int(rms * float64(g.Height/2))
		for y := centerY - barHeight; y <= centerY+barHeight; y++ {
			if y >= 0 && y < g.Height {
				img.Set(x, y, g.Foreground)
			}
		}
	}

	duration := float64(buf.Duration())
	if duration <= 0 {
		return img
	}
	for _, t := range at {
		x := int(float64(t) / duration * float64(g.Width))
		if x < 0 || x >= g.Width {
			continue
		}
		for y := 0; y < g.Height; y++ {
			img.Set(x, y, g.MarkerInk)
		}
	}

	return img
}

// SetColors overrides the background and foreground colors.
func (g *Generator) SetColors(background, foreground color.Color) {
	g.Background = background
	g.Foreground = foreground
}

// SetDimensions overrides the image dimensions.
func (g *Generator) SetDimensions(width, height int) {
	if width > 0 {
		g.Width = width
	}
	if height > 0 {
		g.Height = height
	}
}
