package pcm

import "github.com/fogleman/ease"

// Stretch output and region bounces get short boundary fades so buffers that
// start or end off a zero crossing do not click when scheduled back to back.

// FadeIn ramps the first n frames up from silence with a sine ease.
func (b *Buffer) FadeIn(frames int) {
	total := b.Frames()
	if frames > total {
		frames = total
	}
	if frames < 2 {
		return
	}
	for i := 0; i < frames; i++ {
		gain := ease.InOutSine(float64(i) / float64(frames-1))
		for _, ch := range b.Channels {
			ch[i] *= gain
		}
	}
}

// FadeOut ramps the last n frames down to silence with a sine ease.
func (b *Buffer) FadeOut(frames int) {
	total := b.Frames()
	if frames > total {
		frames = total
	}
	if frames < 2 {
		return
	}
	start := total - frames
	for i := 0; i < frames; i++ {
		gain := ease.InOutSine(1.0 - float64(i)/float64(frames-1))
		for _, ch := range b.Channels {
			ch[start+i] *= gain
		}
	}
}

// Declick applies a fade of the given length in milliseconds to both ends.
func (b *Buffer) Declick(ms float64) {
	if ms <= 0 || b.SampleRate <= 0 {
		return
	}
	frames := int(ms / 1000.0 * float64(b.SampleRate))
	b.FadeIn(frames)
	b.FadeOut(frames)
}
