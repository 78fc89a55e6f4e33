package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/warpgrid/warpgrid/internal/store"
	"github.com/warpgrid/warpgrid/internal/timebase"
	"github.com/warpgrid/warpgrid/internal/warp"
	"github.com/warpgrid/warpgrid/internal/waveform"
)

var (
	waveformOut     string
	waveformWidth   int     = 1200
	waveformHeight  int     = 200
	waveformMarkers bool    = false
	waveformBPM     float64 = 120
	waveformSens    float64 = 0.5
)

var waveformCmd = &cobra.Command{
	Use:   "waveform <file.wav>",
	Short: "Render a clip-view waveform image from a WAV file",
	Long: `Render the file's RMS waveform to a PNG. With --markers, warp markers
are detected from transients and drawn over the waveform.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return renderWaveform(args[0])
	},
}

func init() {
	waveformCmd.Flags().StringVarP(&waveformOut, "out", "o", "", "Output PNG path (default: input name with .png)")
	waveformCmd.Flags().IntVar(&waveformWidth, "width", waveformWidth, "Image width in pixels")
	waveformCmd.Flags().IntVar(&waveformHeight, "height", waveformHeight, "Image height in pixels")
	waveformCmd.Flags().BoolVar(&waveformMarkers, "markers", false, "Overlay detected warp markers")
	waveformCmd.Flags().Float64Var(&waveformBPM, "bpm", waveformBPM, "Tempo used for marker detection")
	waveformCmd.Flags().Float64Var(&waveformSens, "sensitivity", waveformSens, "Transient sensitivity for marker detection (0-1)")
}

func renderWaveform(path string) error {
	buf, err := store.LoadWAV(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	var markerTimes []timebase.Seconds
	if waveformMarkers {
		settings := warp.NewSettings(waveformBPM)
		settings.TransientSensitivity = waveformSens
		for _, m := range settings.AutoDetectMarkers(buf) {
			markerTimes = append(markerTimes, m.SampleTime)
		}
	}

	g := waveform.NewGenerator()
	g.SetDimensions(waveformWidth, waveformHeight)
	data, err := g.RenderPNGWithMarkers(buf, markerTimes)
	if err != nil {
		return err
	}

	out := waveformOut
	if out == "" {
		out = strings.TrimSuffix(path, ".wav") + ".png"
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	fmt.Printf("rendered %s (%.2fs) -> %s (%dx%d", path, float64(buf.Duration()), out, waveformWidth, waveformHeight)
	if waveformMarkers {
		fmt.Printf(", %d markers", len(markerTimes))
	}
	fmt.Println(")")
	return nil
}
