package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/warpgrid/warpgrid/internal/clip"
	"github.com/warpgrid/warpgrid/internal/config"
	"github.com/warpgrid/warpgrid/internal/midiout"
	"github.com/warpgrid/warpgrid/internal/render"
	"github.com/warpgrid/warpgrid/internal/session"
	"github.com/warpgrid/warpgrid/internal/store"
	"github.com/warpgrid/warpgrid/internal/timebase"
	"github.com/warpgrid/warpgrid/internal/warp"
)

var (
	bounceBars int     = 8
	bounceBPM  float64 = 120
	bounceOut  string  = "bounce.wav"
	bounceMIDI string
)

var bounceCmd = &cobra.Command{
	Use:   "bounce <samples-dir>",
	Short: "Offline-render a looped scene built from a directory of samples",
	Long: `Build one looping clip per WAV file in the directory, launch them all
as a scene, and render the session offline to a single mixdown. With
--midi a metronome track joins the scene and its output is captured to a
standard MIDI file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return bounceScene(args[0])
	},
}

func init() {
	bounceCmd.Flags().IntVar(&bounceBars, "bars", bounceBars, "Number of 4/4 bars to render")
	bounceCmd.Flags().Float64Var(&bounceBPM, "bpm", bounceBPM, "Session tempo")
	bounceCmd.Flags().StringVarP(&bounceOut, "out", "o", bounceOut, "Output WAV path")
	bounceCmd.Flags().StringVar(&bounceMIDI, "midi", "", "Also capture a metronome track to this MIDI file")
}

// sceneFromDir builds one looping four-beat clip per WAV file, each on its
// own track.
func sceneFromDir(dir string, bpm float64) ([]session.SceneClip, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var cells []session.SceneClip
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		c := clip.NewAudioClip(id, 4, &clip.AudioSource{
			Regions: []clip.Region{{SampleID: id, Gain: 1.0}},
			Warp:    warp.NewSettings(bpm),
		})
		cells = append(cells, session.SceneClip{
			TrackID:   fmt.Sprintf("track-%02d", len(cells)+1),
			SlotIndex: 0,
			Clip:      c,
		})
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("no .wav files in %s", dir)
	}
	return cells, nil
}

func metronomeClip() *clip.Clip {
	notes := []clip.Note{{Note: 76, Velocity: 110, StartBeat: 0, LengthBeats: 0.25}}
	for b := 1; b < 4; b++ {
		notes = append(notes, clip.Note{
			Note: 77, Velocity: 90,
			StartBeat: timebase.Beats(b), LengthBeats: 0.25,
		})
	}
	return clip.NewMIDIClip("metronome", 4, &clip.MIDISource{Notes: notes})
}

func bounceScene(dir string) error {
	cfg := config.Load()

	cells, err := sceneFromDir(dir, bounceBPM)
	if err != nil {
		return err
	}

	transport := session.NewManualTransport(bounceBPM)
	renderer := render.NewOffline(cfg.Channels, cfg.SampleRate)
	sched := session.NewScheduler(transport)
	sched.SetRenderer(renderer)
	sched.SetSampleStore(store.NewDirStore(dir))

	var smf *midiout.SMFWriter
	if bounceMIDI != "" {
		smf = midiout.NewSMFWriter(filepath.Base(dir), bounceBPM)
		sched.SetMIDIOutput(smf)
		cells = append(cells, session.SceneClip{
			TrackID:   "metronome",
			SlotIndex: 0,
			Clip:      metronomeClip(),
		})
	}

	launched := 0
	sched.Subscribe(func(e session.Event) {
		if e.Type == session.EventClipStarted {
			launched++
		}
	})

	sched.LaunchScene(cells, timebase.QuantNone)

	// Sixteenth-note ticks keep loop boundaries and note offs sharp.
	total := timebase.Beats(float64(bounceBars) * 4)
	for b := timebase.Beats(0); b <= total; b += 0.25 {
		transport.SetBeat(b)
		sched.Tick()
	}
	sched.StopAll()

	length := timebase.BeatsToSeconds(total, bounceBPM)
	mix := renderer.Mixdown(length)
	mix.NormalizePeak()
	mix.Declick(5)

	if err := store.SaveWAV(bounceOut, mix); err != nil {
		return fmt.Errorf("writing %s: %w", bounceOut, err)
	}
	fmt.Printf("bounced %d clips, %d bars at %g bpm -> %s (%.2fs)\n",
		launched, bounceBars, bounceBPM, bounceOut, float64(length))

	if smf != nil {
		data, err := smf.Bytes()
		if err != nil {
			return err
		}
		if err := os.WriteFile(bounceMIDI, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", bounceMIDI, err)
		}
		fmt.Printf("captured metronome -> %s (%d events)\n", bounceMIDI, len(smf.Events()))
	}
	return nil
}
