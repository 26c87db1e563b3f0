package gifenc

import (
	"bytes"
	"fmt"
	"image/gif"
)

// Validate decodes gifBytes with the standard library decoder and checks the
// structure against the animation it was encoded from: frame count, scaled
// dimensions, infinite looping, per-frame delay and disposal. It is the
// conformance oracle for tests and for the CLI's debug mode; production
// encoding never decodes.
func Validate(gifBytes []byte, anim *Animation) error {
	g, err := gif.DecodeAll(bytes.NewReader(gifBytes))
	if err != nil {
		return err
	}

	if g.LoopCount != InfiniteLoop {
		return fmt.Errorf("expected infinite loop, got=%d", g.LoopCount)
	}

	if len(g.Image) != len(anim.Frames) {
		return fmt.Errorf("expected %d frames, got=%d", len(anim.Frames), len(g.Image))
	}

	scale := anim.scaleOrDefault()
	width, height := anim.Width*scale, anim.Height*scale
	if g.Config.Width != width || g.Config.Height != height {
		return fmt.Errorf("expected screen %dx%d, got=%dx%d", width, height, g.Config.Width, g.Config.Height)
	}

	delay := anim.DelayCS()
	for i, frame := range g.Image {
		w := frame.Bounds().Dx()
		if w != width {
			return fmt.Errorf("expected all frames to have width=%d, got=%d at frame=%d", width, w, i)
		}
		h := frame.Bounds().Dy()
		if h != height {
			return fmt.Errorf("expected all frames to have height=%d, got=%d at frame=%d", height, h, i)
		}
		if g.Delay[i] != delay {
			return fmt.Errorf("expected delay=%d, got=%d at frame=%d", delay, g.Delay[i], i)
		}
		if g.Disposal[i] != gif.DisposalBackground {
			return fmt.Errorf("expected background disposal, got=%d at frame=%d", g.Disposal[i], i)
		}
	}
	return nil
}
