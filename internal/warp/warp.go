// Package warp maps between recorded sample time and musical beat time.
// A clip's warp settings own an ordered marker set defining a piecewise
// linear correspondence, plus the stretch mode and analysis parameters the
// stretch engine consumes.
package warp

// Mode selects the time-stretch algorithm.
type Mode int

const (
	// ModeOff plays the source unaltered.
	ModeOff Mode = iota
	// ModeRepitch leaves the buffer alone; tempo follows playback rate.
	ModeRepitch
	// ModeBeats stretches granularly between marker pairs, keeping
	// transients aligned at marker boundaries.
	ModeBeats
	// ModeTones is an overlap-add stretch for pitched material.
	ModeTones
	// ModeTexture is a granular stretch with randomized grain placement.
	ModeTexture
	// ModeComplex currently runs the tones algorithm.
	ModeComplex
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeRepitch:
		return "repitch"
	case ModeBeats:
		return "beats"
	case ModeTones:
		return "tones"
	case ModeTexture:
		return "texture"
	case ModeComplex:
		return "complex"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode name as used in project files and the CLI.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "off":
		return ModeOff, nil
	case "repitch":
		return ModeRepitch, nil
	case "beats":
		return ModeBeats, nil
	case "tones":
		return ModeTones, nil
	case "texture":
		return ModeTexture, nil
	case "complex":
		return ModeComplex, nil
	default:
		return ModeOff, ErrUnknownMode
	}
}

// ValidationError is a warp configuration error.
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrInvalidBPM         ValidationError = "warp: original bpm must be positive"
	ErrInvalidSensitivity ValidationError = "warp: transient sensitivity must be between 0 and 1"
	ErrInvalidGrainSize   ValidationError = "warp: grain size must be positive"
	ErrUnknownMode        ValidationError = "warp: unknown mode"
)

// Settings holds one audio clip's warp state. One instance per clip; the
// marker slice is owned exclusively by the settings.
type Settings struct {
	Enabled     bool
	Mode        Mode
	OriginalBPM float64
	Markers     []Marker

	// TransientSensitivity in [0,1] scales marker auto-detection.
	TransientSensitivity float64
	// GrainSizeMs sizes the grains used by beats/texture stretching.
	GrainSizeMs float64
	// PreservePitch is advisory for renderers; the granular modes keep
	// pitch by construction.
	PreservePitch bool
}

// NewSettings returns warp settings with the engine defaults at the given
// source tempo.
func NewSettings(originalBPM float64) *Settings {
	return &Settings{
		Enabled:              true,
		Mode:                 ModeBeats,
		OriginalBPM:          originalBPM,
		TransientSensitivity: 0.5,
		GrainSizeMs:          60,
		PreservePitch:        true,
	}
}

// Validate checks the configuration at the call boundary. Runtime mapping
// and stretching never validate; they clamp and degrade instead.
func (s *Settings) Validate() error {
	if s.OriginalBPM <= 0 {
		return ErrInvalidBPM
	}
	if s.TransientSensitivity < 0 || s.TransientSensitivity > 1 {
		return ErrInvalidSensitivity
	}
	if s.GrainSizeMs <= 0 {
		return ErrInvalidGrainSize
	}
	switch s.Mode {
	case ModeOff, ModeRepitch, ModeBeats, ModeTones, ModeTexture, ModeComplex:
	default:
		return ErrUnknownMode
	}
	return nil
}
