package onset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 44100

// burstSignal renders a silent buffer with sharp decaying sine bursts at the
// given onset times.
func burstSignal(durSec float64, onsets []float64) []float64 {
	signal := make([]float64, int(durSec*testRate))
	for _, at := range onsets {
		start := int(at * testRate)
		for i := 0; i < 2048 && start+i < len(signal); i++ {
			decay := math.Exp(-float64(i) / 220.0) // ~5ms tail
			signal[start+i] += 0.9 * decay * math.Sin(2.0*math.Pi*3000.0*float64(i)/testRate)
		}
	}
	return signal
}

func TestDetectFindsBursts(t *testing.T) {
	expected := []float64{0.5, 1.0, 1.5}
	signal := burstSignal(2.0, expected)

	d := NewDetector(DefaultConfig())
	onsets := d.Detect(signal, testRate)

	require.Len(t, onsets, 3)
	for i, want := range expected {
		assert.InDelta(t, want, float64(onsets[i]), 0.03, "onset %d", i)
	}
}

func TestDetectSilence(t *testing.T) {
	d := NewDetector(DefaultConfig())
	assert.Empty(t, d.Detect(make([]float64, testRate), testRate))
}

func TestDetectShortSignal(t *testing.T) {
	d := NewDetector(DefaultConfig())
	assert.Empty(t, d.Detect(make([]float64, 100), testRate))
	assert.Empty(t, d.Detect(nil, testRate))
}

func TestMinimumGapSuppression(t *testing.T) {
	// Two bursts 10ms apart must collapse into a single onset at the 50ms
	// minimum gap.
	signal := burstSignal(1.0, []float64{0.4, 0.41})

	d := NewDetector(DefaultConfig())
	onsets := d.Detect(signal, testRate)

	require.Len(t, onsets, 1)
	assert.InDelta(t, 0.4, float64(onsets[0]), 0.03)
}

func TestSensitivityOrdering(t *testing.T) {
	signal := burstSignal(2.0, []float64{0.25, 0.75, 1.25, 1.75})

	low := NewDetector(Config{FrameSize: 512, HopSize: 128, MinGapMs: 50, Sensitivity: 0})
	high := NewDetector(Config{FrameSize: 512, HopSize: 128, MinGapMs: 50, Sensitivity: 1})

	assert.LessOrEqual(t, len(low.Detect(signal, testRate)), len(high.Detect(signal, testRate)))
}

func TestConfigPatching(t *testing.T) {
	d := NewDetector(Config{FrameSize: -1, HopSize: 0, MinGapMs: -5, Sensitivity: 7})
	assert.Equal(t, 512, d.cfg.FrameSize)
	assert.Equal(t, 128, d.cfg.HopSize)
	assert.Equal(t, 50.0, d.cfg.MinGapMs)
	assert.Equal(t, 1.0, d.cfg.Sensitivity)
}

func TestOnsetsAscending(t *testing.T) {
	signal := burstSignal(3.0, []float64{0.3, 0.9, 1.4, 2.2, 2.8})

	d := NewDetector(DefaultConfig())
	onsets := d.Detect(signal, testRate)

	for i := 1; i < len(onsets); i++ {
		assert.Greater(t, float64(onsets[i]), float64(onsets[i-1]))
	}
}
