// Package config loads engine settings from environment variables. Every
// value has a default so a bare environment still boots; .env loading is
// the binary's job, not this package's.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/warpgrid/warpgrid/internal/pcm"
	"github.com/warpgrid/warpgrid/internal/timebase"
)

// Config holds the engine runtime settings
type Config struct {
	// BPM is the transport's starting tempo
	BPM float64

	// TickInterval is the scheduler tick period
	TickInterval time.Duration

	// SampleDir is the directory the sample store loads WAV files from
	SampleDir string

	// Quantization is the session's global launch grid
	Quantization timebase.Quantization

	// SampleRate and Channels shape offline render output
	SampleRate int
	Channels   int

	// MetricsAddr serves Prometheus metrics when non-empty (e.g. ":9090")
	MetricsAddr string

	// Environment is "development" or "production"
	Environment string
}

// Load reads the configuration from environment variables, falling back
// to defaults for anything unset or unparsable.
func Load() *Config {
	cfg := &Config{
		BPM:          floatEnvOrDefault("WARPGRID_BPM", 120),
		TickInterval: durationEnvOrDefault("WARPGRID_TICK_INTERVAL", 5*time.Millisecond),
		SampleDir:    getEnvOrDefault("WARPGRID_SAMPLE_DIR", "./samples"),
		Quantization: timebase.QuantBar,
		SampleRate:   intEnvOrDefault("WARPGRID_SAMPLE_RATE", pcm.DefaultSampleRate),
		Channels:     intEnvOrDefault("WARPGRID_CHANNELS", 2),
		MetricsAddr:  os.Getenv("WARPGRID_METRICS_ADDR"),
		Environment:  getEnvOrDefault("ENVIRONMENT", "development"),
	}

	if q, ok := timebase.ParseQuantization(os.Getenv("WARPGRID_QUANT")); ok && q != timebase.QuantGlobal {
		cfg.Quantization = q
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func floatEnvOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func intEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func durationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
