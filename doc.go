// Package warpgrid provides the session clip launcher and warp engine.
//
// This package contains module-level documentation only. The implementation
// is organized into subpackages:
//
//   - internal/session: clip launch scheduling, lifecycle events, queries
//   - internal/timebase: beat/second conversion and quantization grids
//   - internal/warp: warp markers and sample-time/beat-time mapping
//   - internal/stretch: granular and overlap-add time stretching
//   - internal/onset: spectral-flux transient detection
//   - internal/clip: clip, region and note models, SMF import
//   - internal/pcm: audio buffer primitives and WAV interchange
//   - internal/store: sample buffer stores
//   - internal/render: audio renderer interface and offline mixdown
//   - internal/midiout: MIDI output interface and SMF capture
//   - internal/waveform: waveform image rendering for clip views
//   - internal/queue: background stretch-render jobs
//   - internal/driver: tick loop and call marshalling
//   - internal/config: environment-driven configuration
//   - internal/logger: structured logging
//   - internal/metrics: Prometheus instrumentation
//
// See the individual package documentation for detailed API reference.
package warpgrid
