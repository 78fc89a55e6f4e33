// Package driver runs the scheduler against real time. A single goroutine
// owns every scheduler call: the tick loop fires on a clock interval and
// external commands are marshalled onto the same loop through a channel,
// which is what lets the scheduler itself stay lock-free.
package driver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/warpgrid/warpgrid/internal/clip"
	"github.com/warpgrid/warpgrid/internal/logger"
	"github.com/warpgrid/warpgrid/internal/session"
	"github.com/warpgrid/warpgrid/internal/timebase"
)

// DefaultTickInterval is roughly one tick per 5ms, fine enough that
// quantized launches land within a millisecond-scale window of their beat.
const DefaultTickInterval = 5 * time.Millisecond

var _ session.Transport = (*ClockTransport)(nil)

// Driver owns the tick loop.
type Driver struct {
	scheduler *session.Scheduler
	transport *ClockTransport
	clock     clock.WithTicker
	interval  time.Duration
	commands  chan func()
	ctx       context.Context
	cancel    context.CancelFunc

	// For testing: signals each completed tick
	ticked chan struct{}
}

// NewDriver builds a transport and scheduler pair driven at the given
// interval. Collaborator wiring (renderer, store, MIDI output) must happen
// through Scheduler() before Start.
func NewDriver(bpm float64, interval time.Duration, cl clock.WithTicker) *Driver {
	if cl == nil {
		cl = clock.RealClock{}
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	transport := NewClockTransport(bpm, cl)
	ctx, cancel := context.WithCancel(context.Background())

	return &Driver{
		scheduler: session.NewScheduler(transport),
		transport: transport,
		clock:     cl,
		interval:  interval,
		commands:  make(chan func(), 64),
		ctx:       ctx,
		cancel:    cancel,
		ticked:    make(chan struct{}, 1),
	}
}

// Scheduler exposes the scheduler for wiring before Start. After Start,
// reach it only through Do or the launch/stop wrappers.
func (d *Driver) Scheduler() *session.Scheduler {
	return d.scheduler
}

// Transport returns the clock transport. Its methods are safe to call
// from any goroutine.
func (d *Driver) Transport() *ClockTransport {
	return d.transport
}

// Start begins the transport and the tick loop.
func (d *Driver) Start() {
	logger.Info("Starting session driver",
		zap.Duration("interval", d.interval),
		zap.Float64("bpm", d.transport.BPM()))

	d.transport.Start()
	go d.run()
}

// Stop halts the tick loop and freezes the transport.
func (d *Driver) Stop() {
	d.cancel()
	d.transport.Stop()
}

// Do marshals fn onto the tick goroutine. It returns an error when the
// command queue is full or the driver has stopped, never blocks.
func (d *Driver) Do(fn func()) error {
	select {
	case <-d.ctx.Done():
		return fmt.Errorf("driver stopped")
	default:
	}

	select {
	case d.commands <- fn:
		return nil
	default:
		return fmt.Errorf("driver command queue is full")
	}
}

// LaunchClip marshals a clip launch onto the tick goroutine.
func (d *Driver) LaunchClip(trackID string, slot int, c *clip.Clip, quant timebase.Quantization) error {
	return d.Do(func() {
		d.scheduler.LaunchClip(trackID, slot, c, quant)
	})
}

// StopClip marshals a clip stop onto the tick goroutine.
func (d *Driver) StopClip(trackID string, quant timebase.Quantization) error {
	return d.Do(func() {
		d.scheduler.StopClip(trackID, quant)
	})
}

// LaunchScene marshals a scene launch onto the tick goroutine.
func (d *Driver) LaunchScene(cells []session.SceneClip, quant timebase.Quantization) error {
	return d.Do(func() {
		d.scheduler.LaunchScene(cells, quant)
	})
}

// StopAll marshals a global stop onto the tick goroutine.
func (d *Driver) StopAll() error {
	return d.Do(d.scheduler.StopAll)
}

// WaitForTick blocks until the loop completes a tick (for testing)
func (d *Driver) WaitForTick(timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-d.ticked:
		return nil
	case <-timer.C:
		return fmt.Errorf("timeout waiting for tick")
	case <-d.ctx.Done():
		return fmt.Errorf("driver stopped")
	}
}

// run is the tick loop. Commands and ticks interleave on this one
// goroutine; nothing else touches the scheduler.
func (d *Driver) run() {
	ticker := d.clock.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case fn := <-d.commands:
			fn()

		case <-ticker.C():
			d.scheduler.Tick()
			d.signalTick()

		case <-d.ctx.Done():
			logger.Info("Session driver shutting down")
			return
		}
	}
}

// signalTick signals a completed tick (for testing)
func (d *Driver) signalTick() {
	select {
	case d.ticked <- struct{}{}:
	default:
		// Channel full, don't block
	}
}
