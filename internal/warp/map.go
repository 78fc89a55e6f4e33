package warp

import (
	"sort"

	"github.com/google/uuid"

	"github.com/warpgrid/warpgrid/internal/metrics"
	"github.com/warpgrid/warpgrid/internal/onset"
	"github.com/warpgrid/warpgrid/internal/pcm"
	"github.com/warpgrid/warpgrid/internal/timebase"
)

// Marker anchors a position in the recorded audio to a position in musical
// time. Markers are kept sorted ascending by SampleTime; no two markers share
// a SampleTime. Insertion re-sorts by SampleTime only: a marker set that is
// non-monotonic in BeatTime produces an undefined (locally decreasing)
// mapping, which callers are expected not to construct.
type Marker struct {
	ID         uuid.UUID
	SampleTime timebase.Seconds
	BeatTime   timebase.Beats
}

// AddMarker inserts a marker and re-sorts by sample time. Adding at an
// existing marker's sample time replaces that marker's beat anchor.
func (s *Settings) AddMarker(sampleTime timebase.Seconds, beatTime timebase.Beats) Marker {
	for i := range s.Markers {
		if s.Markers[i].SampleTime == sampleTime {
			s.Markers[i].BeatTime = beatTime
			return s.Markers[i]
		}
	}
	m := Marker{ID: uuid.New(), SampleTime: sampleTime, BeatTime: beatTime}
	s.Markers = append(s.Markers, m)
	sort.Slice(s.Markers, func(i, j int) bool {
		return s.Markers[i].SampleTime < s.Markers[j].SampleTime
	})
	return m
}

// RemoveMarker deletes the marker with the given id. Returns false when no
// such marker exists.
func (s *Settings) RemoveMarker(id uuid.UUID) bool {
	for i := range s.Markers {
		if s.Markers[i].ID == id {
			s.Markers = append(s.Markers[:i], s.Markers[i+1:]...)
			return true
		}
	}
	return false
}

// ClearMarkers drops the whole marker set.
func (s *Settings) ClearMarkers() {
	s.Markers = nil
}

// AutoDetectMarkers replaces the marker set with transient analysis of the
// source buffer's first channel. A marker at sample 0 is always included;
// detected onset times convert to beats at OriginalBPM since no marker set
// exists yet to interpolate against.
func (s *Settings) AutoDetectMarkers(buf *pcm.Buffer) []Marker {
	if buf == nil || buf.Frames() == 0 {
		return s.Markers
	}

	cfg := onset.DefaultConfig()
	cfg.Sensitivity = s.TransientSensitivity
	detector := onset.NewDetector(cfg)
	times := detector.Detect(buf.Mono(), buf.SampleRate)
	metrics.Get().OnsetsDetected.Add(float64(len(times)))

	markers := make([]Marker, 0, len(times)+1)
	markers = append(markers, Marker{ID: uuid.New()})
	for _, t := range times {
		if t <= 0 {
			continue
		}
		markers = append(markers, Marker{
			ID:         uuid.New(),
			SampleTime: t,
			BeatTime:   timebase.SecondsToBeats(t, s.OriginalBPM),
		})
	}
	s.Markers = markers
	return s.Markers
}

// SampleToBeat maps a position in the source audio to musical time. With
// fewer than two markers this is a plain tempo conversion at OriginalBPM;
// otherwise the bracketing marker pair interpolates linearly, and positions
// outside the marker range extend at OriginalBPM from the nearest anchor.
func (s *Settings) SampleToBeat(sampleTime timebase.Seconds) timebase.Beats {
	if len(s.Markers) < 2 {
		return timebase.SecondsToBeats(sampleTime, s.OriginalBPM)
	}

	first := s.Markers[0]
	last := s.Markers[len(s.Markers)-1]
	if sampleTime <= first.SampleTime {
		return first.BeatTime - timebase.SecondsToBeats(first.SampleTime-sampleTime, s.OriginalBPM)
	}
	if sampleTime >= last.SampleTime {
		return last.BeatTime + timebase.SecondsToBeats(sampleTime-last.SampleTime, s.OriginalBPM)
	}

	i := sort.Search(len(s.Markers), func(i int) bool {
		return s.Markers[i].SampleTime > sampleTime
	}) - 1
	a, b := s.Markers[i], s.Markers[i+1]

	span := float64(b.SampleTime - a.SampleTime)
	if span <= 0 {
		return a.BeatTime
	}
	frac := float64(sampleTime-a.SampleTime) / span
	return a.BeatTime + timebase.Beats(frac*float64(b.BeatTime-a.BeatTime))
}

// BeatToSample is the inverse of SampleToBeat. It brackets by BeatTime, so
// the documented monotonicity expectation on markers applies.
func (s *Settings) BeatToSample(beatTime timebase.Beats) timebase.Seconds {
	if len(s.Markers) < 2 {
		return timebase.BeatsToSeconds(beatTime, s.OriginalBPM)
	}

	first := s.Markers[0]
	last := s.Markers[len(s.Markers)-1]
	if beatTime <= first.BeatTime {
		return first.SampleTime - timebase.BeatsToSeconds(first.BeatTime-beatTime, s.OriginalBPM)
	}
	if beatTime >= last.BeatTime {
		return last.SampleTime + timebase.BeatsToSeconds(beatTime-last.BeatTime, s.OriginalBPM)
	}

	i := sort.Search(len(s.Markers), func(i int) bool {
		return s.Markers[i].BeatTime > beatTime
	}) - 1
	a, b := s.Markers[i], s.Markers[i+1]

	span := float64(b.BeatTime - a.BeatTime)
	if span <= 0 {
		return a.SampleTime
	}
	frac := float64(beatTime-a.BeatTime) / span
	return a.SampleTime + timebase.Seconds(frac*float64(b.SampleTime-a.SampleTime))
}
