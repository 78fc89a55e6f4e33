package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warpgrid/warpgrid/internal/config"
	"github.com/warpgrid/warpgrid/internal/driver"
	"github.com/warpgrid/warpgrid/internal/logger"
	"github.com/warpgrid/warpgrid/internal/metrics"
	"github.com/warpgrid/warpgrid/internal/session"
	"github.com/warpgrid/warpgrid/internal/store"
	"github.com/warpgrid/warpgrid/internal/timebase"
)

var runCmd = &cobra.Command{
	Use:   "run [samples-dir]",
	Short: "Drive a session in real time until interrupted",
	Long: `Launch one looping clip per WAV file in the directory and let the
real-time driver tick the session until Ctrl-C. Tempo, tick interval,
quantization and the metrics listener come from the environment (see
WARPGRID_* variables).

The process itself owns no audio device; lifecycle events are logged and
exported as metrics, and embedding hosts attach their own renderer.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) > 0 {
			dir = args[0]
		}
		return runSession(dir)
	},
}

func runSession(dir string) error {
	cfg := config.Load()
	if dir == "" {
		dir = cfg.SampleDir
	}

	cells, err := sceneFromDir(dir, cfg.BPM)
	if err != nil {
		return err
	}

	d := driver.NewDriver(cfg.BPM, cfg.TickInterval, nil)
	d.Scheduler().SetSampleStore(store.NewDirStore(dir))
	d.Scheduler().SetGlobalQuantization(cfg.Quantization)
	d.Scheduler().Subscribe(func(e session.Event) {
		logger.Info("session event",
			zap.String("event", e.Type.String()),
			logger.WithTrack(e.TrackID),
			logger.WithBeat(float64(e.Beat)),
		)
	})

	if cfg.MetricsAddr != "" {
		metrics.Initialize()
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Infof("Serving metrics on http://%s/metrics", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Errorf("Metrics server failed: %v", err)
			}
		}()
	}

	d.Start()
	defer d.Stop()

	if err := d.LaunchScene(cells, timebase.QuantNone); err != nil {
		return err
	}
	fmt.Printf("session running: %d tracks at %g bpm, tick %s (Ctrl-C to stop)\n",
		len(cells), cfg.BPM, cfg.TickInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nstopping session")
	if err := d.StopAll(); err != nil {
		logger.Errorf("Stop-all on shutdown failed: %v", err)
	}
	// Give the tick loop a moment to finalize stops before teardown.
	time.Sleep(2 * cfg.TickInterval)
	logger.Info("session stopped", logger.WithBeat(float64(d.Transport().CurrentBeat())))
	return logger.Close()
}
