package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the engine
type Metrics struct {
	// Scheduler metrics
	SchedulerTicks  prometheus.Counter
	ClipLaunches    prometheus.CounterVec
	ClipStops       prometheus.CounterVec
	ClipLoops       prometheus.CounterVec
	FollowActions   prometheus.CounterVec
	EventsPublished prometheus.CounterVec

	// Render queue metrics
	StretchDuration  prometheus.HistogramVec
	RenderJobsTotal  prometheus.CounterVec
	RenderQueueDepth prometheus.Gauge

	// Sample store metrics
	SamplesDecoded prometheus.Counter

	// Analysis metrics
	OnsetsDetected prometheus.Counter
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			SchedulerTicks: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "scheduler_ticks_total",
					Help: "Total number of scheduler ticks processed",
				},
			),
			ClipLaunches: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "clip_launches_total",
					Help: "Total number of clips started",
				},
				[]string{"track_id"},
			),
			ClipStops: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "clip_stops_total",
					Help: "Total number of clips stopped",
				},
				[]string{"track_id"},
			),
			ClipLoops: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "clip_loops_total",
					Help: "Total number of loop boundary crossings",
				},
				[]string{"track_id"},
			),
			FollowActions: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "follow_actions_total",
					Help: "Total number of executed follow actions",
				},
				[]string{"action"},
			),
			EventsPublished: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "scheduler_events_published_total",
					Help: "Total number of lifecycle events delivered to subscribers",
				},
				[]string{"type"},
			),
			StretchDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "stretch_duration_seconds",
					Help:    "Wall time spent in time-stretch processing",
					Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
				},
				[]string{"mode"},
			),
			RenderJobsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "render_jobs_total",
					Help: "Total number of render queue jobs by outcome",
				},
				[]string{"status"},
			),
			RenderQueueDepth: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "render_queue_depth",
					Help: "Number of render jobs waiting or in flight",
				},
			),
			SamplesDecoded: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "samples_decoded_total",
					Help: "Total number of WAV files decoded into the sample store",
				},
			),
			OnsetsDetected: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "onsets_detected_total",
					Help: "Total number of transients found by marker auto-detection",
				},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}
