package stretch

import (
	"math"
	"math/rand"

	"github.com/warpgrid/warpgrid/internal/pcm"
)

// granularOpt tunes the shared overlap-add primitive. Zero values give the
// plain transient-preserving walk used by the beats mode; the texture mode
// turns on read jitter and amplitude spread.
type granularOpt struct {
	// jitterGrains randomizes each grain's read position by up to this many
	// grain widths in either direction.
	jitterGrains float64
	// ampLow/ampHigh bound the per-grain amplitude. Both zero means unity.
	ampLow  float64
	ampHigh float64
}

var textureOpt = granularOpt{jitterGrains: 2, ampLow: 0.8, ampHigh: 1.2}

// granularRender stretches src to exactly outFrames frames by overlap-adding
// Hann-windowed grains. The input advances by a quarter grain per step and
// the output by that hop scaled to the stretch ratio. Positions are integer
// samples; the walk stops before either buffer would overrun. If synthesis
// overshoots full scale the output is peak-normalized in place.
func granularRender(src *pcm.Buffer, outFrames, grain int, win []float64, opt granularOpt, rng *rand.Rand) *pcm.Buffer {
	inFrames := src.Frames()
	out := pcm.New(src.NumChannels(), outFrames, src.SampleRate)
	if inFrames <= grain || outFrames <= grain {
		return out
	}

	hopIn := grain / 4
	if hopIn < 1 {
		hopIn = 1
	}
	ratio := float64(outFrames) / float64(inFrames)
	hopOut := float64(hopIn) * ratio

	maxRead := inFrames - grain
	inPos := 0
	outPosF := 0.0
	for {
		outPos := int(math.Floor(outPosF))
		if outPos >= outFrames-grain || inPos >= maxRead {
			break
		}

		readPos := inPos
		if opt.jitterGrains > 0 {
			offset := int((rng.Float64()*2.0 - 1.0) * opt.jitterGrains * float64(grain))
			readPos += offset
			if readPos < 0 {
				readPos = 0
			} else if readPos > maxRead {
				readPos = maxRead
			}
		}

		amp := 1.0
		if opt.ampHigh > opt.ampLow {
			amp = opt.ampLow + rng.Float64()*(opt.ampHigh-opt.ampLow)
		}

		for c, ch := range src.Channels {
			outCh := out.Channels[c]
			for i := 0; i < grain; i++ {
				outCh[outPos+i] += ch[readPos+i] * win[i] * amp
			}
		}

		inPos += hopIn
		outPosF += hopOut
	}

	out.NormalizePeak()
	return out
}
