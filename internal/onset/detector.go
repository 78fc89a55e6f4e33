// Package onset detects transients in audio using spectral flux. Warp marker
// auto-detection runs it over channel 0 of a clip's source buffer; hosts can
// reuse it for drum-to-MIDI style analysis.
package onset

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/warpgrid/warpgrid/internal/timebase"
)

// Config controls spectral-flux detection.
type Config struct {
	// FrameSize is the analysis window in samples.
	FrameSize int
	// HopSize is the distance between consecutive frames in samples.
	HopSize int
	// MinGapMs is the minimum spacing between reported onsets.
	MinGapMs float64
	// Sensitivity in [0,1] scales the flux threshold; higher reports more.
	Sensitivity float64
}

// DefaultConfig matches the warp engine's transient analysis parameters.
func DefaultConfig() Config {
	return Config{
		FrameSize:   512,
		HopSize:     128,
		MinGapMs:    50,
		Sensitivity: 0.5,
	}
}

// Detector computes onset times from mono PCM. Construct once and reuse; the
// FFT plan and window are fixed per frame size.
type Detector struct {
	cfg    Config
	fft    *fourier.FFT
	window []float64
}

// NewDetector builds a detector, patching invalid config fields back to the
// defaults.
func NewDetector(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = def.FrameSize
	}
	if cfg.HopSize <= 0 || cfg.HopSize > cfg.FrameSize {
		cfg.HopSize = cfg.FrameSize / 4
	}
	if cfg.MinGapMs < 0 {
		cfg.MinGapMs = def.MinGapMs
	}
	if cfg.Sensitivity < 0 {
		cfg.Sensitivity = 0
	} else if cfg.Sensitivity > 1 {
		cfg.Sensitivity = 1
	}
	return &Detector{
		cfg:    cfg,
		fft:    fourier.NewFFT(cfg.FrameSize),
		window: hannWindow(cfg.FrameSize),
	}
}

// Detect returns onset times in seconds, ascending. Signals shorter than one
// frame yield no onsets.
func (d *Detector) Detect(samples []float64, sampleRate int) []timebase.Seconds {
	frame := d.cfg.FrameSize
	hop := d.cfg.HopSize
	if len(samples) < frame || sampleRate <= 0 {
		return nil
	}

	numFrames := 1 + (len(samples)-frame)/hop
	flux := d.spectralFlux(samples, numFrames)

	threshold := fluxThreshold(flux, d.cfg.Sensitivity)

	minGapFrames := int(math.Round(d.cfg.MinGapMs / 1000.0 * float64(sampleRate) / float64(hop)))
	if minGapFrames < 1 {
		minGapFrames = 1
	}

	var onsets []timebase.Seconds
	lastFrame := -minGapFrames
	for f := 1; f < numFrames-1; f++ {
		if flux[f] <= threshold {
			continue
		}
		// Local maximum, ties broken toward the earlier frame.
		if flux[f] > flux[f-1] && flux[f] >= flux[f+1] && f-lastFrame >= minGapFrames {
			onsets = append(onsets, timebase.Seconds(float64(f*hop)/float64(sampleRate)))
			lastFrame = f
		}
	}
	return onsets
}

// spectralFlux computes, per frame, the sum of positive magnitude increases
// across bins relative to the previous frame.
func (d *Detector) spectralFlux(samples []float64, numFrames int) []float64 {
	frame := d.cfg.FrameSize
	hop := d.cfg.HopSize
	bins := frame/2 + 1

	flux := make([]float64, numFrames)
	prev := make([]float64, bins)
	curr := make([]float64, bins)
	windowed := make([]float64, frame)
	coeffs := make([]complex128, bins)

	for f := 0; f < numFrames; f++ {
		start := f * hop
		for i := 0; i < frame; i++ {
			windowed[i] = samples[start+i] * d.window[i]
		}
		coeffs = d.fft.Coefficients(coeffs, windowed)
		for i := range coeffs {
			curr[i] = cmplx.Abs(coeffs[i])
		}
		if f > 0 {
			sum := 0.0
			for i := range curr {
				if diff := curr[i] - prev[i]; diff > 0 {
					sum += diff
				}
			}
			flux[f] = sum
		}
		prev, curr = curr, prev
	}
	return flux
}

// fluxThreshold derives the detection threshold from the flux statistics.
// Sensitivity 1 keeps everything above the mean; sensitivity 0 requires two
// standard deviations above it.
func fluxThreshold(flux []float64, sensitivity float64) float64 {
	if len(flux) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range flux {
		mean += v
	}
	mean /= float64(len(flux))

	variance := 0.0
	for _, v := range flux {
		diff := v - mean
		variance += diff * diff
	}
	std := math.Sqrt(variance / float64(len(flux)))

	return mean + 2.0*(1.0-sensitivity)*std
}

func hannWindow(size int) []float64 {
	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(size-1)))
	}
	return window
}
