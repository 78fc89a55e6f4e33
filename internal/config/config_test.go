package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warpgrid/warpgrid/internal/pcm"
	"github.com/warpgrid/warpgrid/internal/timebase"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"WARPGRID_BPM", "WARPGRID_TICK_INTERVAL", "WARPGRID_SAMPLE_DIR",
		"WARPGRID_QUANT", "WARPGRID_SAMPLE_RATE", "WARPGRID_CHANNELS",
		"WARPGRID_METRICS_ADDR", "ENVIRONMENT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.InDelta(t, 120.0, cfg.BPM, 1e-9)
	assert.Equal(t, 5*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "./samples", cfg.SampleDir)
	assert.Equal(t, timebase.QuantBar, cfg.Quantization)
	assert.Equal(t, pcm.DefaultSampleRate, cfg.SampleRate)
	assert.Equal(t, 2, cfg.Channels)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("WARPGRID_BPM", "98.5")
	t.Setenv("WARPGRID_TICK_INTERVAL", "2ms")
	t.Setenv("WARPGRID_SAMPLE_DIR", "/var/lib/warpgrid/samples")
	t.Setenv("WARPGRID_QUANT", "1/4")
	t.Setenv("WARPGRID_SAMPLE_RATE", "48000")
	t.Setenv("WARPGRID_CHANNELS", "1")
	t.Setenv("WARPGRID_METRICS_ADDR", ":9090")
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()
	assert.InDelta(t, 98.5, cfg.BPM, 1e-9)
	assert.Equal(t, 2*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "/var/lib/warpgrid/samples", cfg.SampleDir)
	assert.Equal(t, timebase.QuantBeat, cfg.Quantization)
	assert.Equal(t, 48000, cfg.SampleRate)
	assert.Equal(t, 1, cfg.Channels)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoadFallsBackOnUnparsableValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("WARPGRID_BPM", "not-a-number")
	t.Setenv("WARPGRID_TICK_INTERVAL", "soon")
	t.Setenv("WARPGRID_SAMPLE_RATE", "44.1k")

	cfg := Load()
	assert.InDelta(t, 120.0, cfg.BPM, 1e-9)
	assert.Equal(t, 5*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, pcm.DefaultSampleRate, cfg.SampleRate)
}

func TestLoadQuantizationNames(t *testing.T) {
	clearEnv(t)

	t.Setenv("WARPGRID_QUANT", "bar")
	assert.Equal(t, timebase.QuantBar, Load().Quantization)

	t.Setenv("WARPGRID_QUANT", "2 bars")
	assert.Equal(t, timebase.Quant2Bars, Load().Quantization)

	// The global grid cannot delegate to itself.
	t.Setenv("WARPGRID_QUANT", "global")
	assert.Equal(t, timebase.QuantBar, Load().Quantization)

	t.Setenv("WARPGRID_QUANT", "whenever")
	assert.Equal(t, timebase.QuantBar, Load().Quantization)
}
