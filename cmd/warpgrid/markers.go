package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/warpgrid/warpgrid/internal/store"
	"github.com/warpgrid/warpgrid/internal/warp"
)

var (
	markersBPM         float64 = 120
	markersSensitivity float64 = 0.5
)

var markersCmd = &cobra.Command{
	Use:   "markers <file.wav>",
	Short: "Detect warp markers in an audio file",
	Long: `Analyze an audio file for transients and print the warp markers that
beat-based stretching anchors to.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return detectMarkers(args[0])
	},
}

func init() {
	markersCmd.Flags().Float64Var(&markersBPM, "bpm", markersBPM, "Original tempo of the material")
	markersCmd.Flags().Float64Var(&markersSensitivity, "sensitivity", markersSensitivity, "Transient sensitivity between 0 and 1")
}

func detectMarkers(path string) error {
	buf, err := store.LoadWAV(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	settings := warp.NewSettings(markersBPM)
	settings.TransientSensitivity = markersSensitivity
	markers := settings.AutoDetectMarkers(buf)

	fmt.Printf("%s: %d frames, %d channels, %d Hz, %.3fs\n",
		filepath.Base(path), buf.Frames(), buf.NumChannels(), buf.SampleRate, float64(buf.Duration()))
	fmt.Printf("%d markers at %g bpm, sensitivity %.2f\n\n", len(markers), markersBPM, markersSensitivity)

	fmt.Println("      beat      time")
	for _, m := range markers {
		fmt.Printf("  %8.3f  %7.3fs\n", float64(m.BeatTime), float64(m.SampleTime))
	}
	return nil
}
