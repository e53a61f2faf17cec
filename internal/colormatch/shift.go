package colormatch

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// Shift produces a new image whose every pixel is the target's pixel moved
// by the per-channel difference between two averages.
//
// For each pixel and each of R, G, B the new value is
// round(old + (ref − tgt)), clamped to [0, 255]. Clamping is defined
// behavior, not an error. The alpha channel is copied through unmodified.
//
// Parameters:
//   - target: The image to recolor. Never mutated.
//   - ref: Average of the reference image (the tone to match).
//   - tgt: Average of the target image itself.
//
// Returns:
//   - *image.NRGBA: A fresh buffer of identical dimensions, owned by the
//     caller.
//   - error: ErrChannelMismatch when either Stat describes a channel
//     layout other than 3 or 4 channels. Stats produced by Average always
//     carry 3 or 4; anything else (including the zero Stat) is malformed.
func Shift(target image.Image, ref, tgt Stat) (*image.NRGBA, error) {
	for _, s := range []Stat{ref, tgt} {
		if s.Channels != 3 && s.Channels != 4 {
			return nil, fmt.Errorf("average over %d channels: %w", s.Channels, ErrChannelMismatch)
		}
	}

	delta := Diff(ref, tgt)
	src := toNRGBA(target)
	bounds := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	parallel.Line(bounds.Dy(), func(start, end int) {
		for y := start; y < end; y++ {
			si := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			di := out.PixOffset(0, y)
			for x := 0; x < bounds.Dx(); x++ {
				out.Pix[di] = shiftChannel(src.Pix[si], delta.R)
				out.Pix[di+1] = shiftChannel(src.Pix[si+1], delta.G)
				out.Pix[di+2] = shiftChannel(src.Pix[si+2], delta.B)
				out.Pix[di+3] = src.Pix[si+3]
				si += 4
				di += 4
			}
		}
	})

	return out, nil
}

// Match recolors target so its average color equals the reference's.
//
// It composes the pipeline: reference average (with optional mask), target
// average (the target is never masked), then Shift. Errors from either
// step propagate unchanged, so ErrEmptyInput from a fully-masked reference
// reaches the caller directly.
func Match(reference, target image.Image, mask *Mask) (*image.NRGBA, error) {
	refAvg, err := Average(reference, mask, nil)
	if err != nil {
		return nil, fmt.Errorf("reference average: %w", err)
	}
	tgtAvg, err := Average(target, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("target average: %w", err)
	}
	return Shift(target, refAvg, tgtAvg)
}

// shiftChannel applies the delta to one channel value and saturates at the
// 8-bit bounds.
func shiftChannel(v uint8, d float64) uint8 {
	return clamp8(math.Round(float64(v) + d))
}

// clamp8 saturates a float to the 8-bit channel range.
func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
