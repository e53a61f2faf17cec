package colormatch

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Stat holds per-channel average intensities computed over a set of
// qualifying pixels.
//
// Averages are floating point; they are recomputed per call and carry no
// reference to the image they were computed from.
type Stat struct {
	R float64 `json:"r"` // Mean red intensity (0-255)
	G float64 `json:"g"` // Mean green intensity (0-255)
	B float64 `json:"b"` // Mean blue intensity (0-255)

	// Channels is the channel count of the source layout: 3 for opaque
	// RGB (grayscale is promoted by replication), 4 when the source
	// carries an alpha channel. Alpha never contributes to the averages.
	Channels int `json:"channels"`

	// Pixels is the number of qualifying pixels the averages were
	// computed over. Always greater than zero for a Stat returned by
	// Average.
	Pixels int `json:"pixels"`
}

// Hex returns the average color rounded to 8-bit components in "#RRGGBB"
// format.
func (s Stat) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X",
		clamp8(math.Round(s.R)), clamp8(math.Round(s.G)), clamp8(math.Round(s.B)))
}

// Delta is the per-channel additive shift derived from two averages.
type Delta struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Diff returns the shift that moves an image with average tgt toward an
// image with average ref, per channel.
func Diff(ref, tgt Stat) Delta {
	return Delta{R: ref.R - tgt.R, G: ref.G - tgt.G, B: ref.B - tgt.B}
}

// Mask designates a sentinel color whose pixels are excluded from average
// computation, used to ignore irrelevant regions of a reference image.
//
// A mask has either 3 components (R, G, B) or 4 (R, G, B, A). A
// 4-component mask also compares the alpha channel and is only valid
// against images that have one.
//
// Tolerance widens the match: a pixel is excluded when every compared
// channel differs from the mask by at most Tolerance. The zero tolerance
// excludes exact matches only.
type Mask struct {
	R, G, B, A uint8
	HasAlpha   bool // 4-component mask; compares alpha too
	Tolerance  uint8
}

// NewMask builds a mask from 3 or 4 channel components, each in [0, 255],
// and a tolerance in [0, 255].
func NewMask(components []int, tolerance int) (*Mask, error) {
	if n := len(components); n != 3 && n != 4 {
		return nil, fmt.Errorf("mask color must have 3 or 4 components, got %d", n)
	}
	for _, c := range components {
		if c < 0 || c > 255 {
			return nil, fmt.Errorf("mask component %d out of range [0,255]", c)
		}
	}
	if tolerance < 0 || tolerance > 255 {
		return nil, fmt.Errorf("mask tolerance %d out of range [0,255]", tolerance)
	}
	m := &Mask{
		R:         uint8(components[0]),
		G:         uint8(components[1]),
		B:         uint8(components[2]),
		Tolerance: uint8(tolerance),
	}
	if len(components) == 4 {
		m.A = uint8(components[3])
		m.HasAlpha = true
	}
	return m, nil
}

// excludes reports whether a pixel matches the mask within tolerance.
func (m *Mask) excludes(r, g, b, a uint8) bool {
	tol := m.Tolerance
	if absDiff(r, m.R) > tol || absDiff(g, m.G) > tol || absDiff(b, m.B) > tol {
		return false
	}
	if m.HasAlpha && absDiff(a, m.A) > tol {
		return false
	}
	return true
}

// Region restricts an average computation to a rectangular area.
//
// (X1, Y1) is the top-left corner (inclusive) and (X2, Y2) the
// bottom-right corner (exclusive), 0-based from the image's top-left.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Average computes the per-channel mean color of an image.
//
// Parameters:
//   - img: The image to average. Grayscale images are promoted to RGB by
//     replication; 16-bit components are reduced to 8-bit.
//   - mask: Optional. Pixels matching the mask (within its tolerance) are
//     excluded from the averages. nil means every pixel qualifies.
//   - region: Optional sub-rectangle to average over. nil means the whole
//     image. The region must lie within the image bounds.
//
// Returns:
//   - Stat: Per-channel floating-point means and the qualifying pixel
//     count.
//   - error: ErrEmptyInput when no pixel qualifies (zero-size image or
//     fully masked); ErrChannelMismatch when a 4-component mask is used
//     against an image without an alpha channel; a plain error for a
//     region outside the image bounds.
func Average(img image.Image, mask *Mask, region *Region) (Stat, error) {
	if mask != nil && mask.HasAlpha && !hasAlphaChannel(img) {
		return Stat{}, fmt.Errorf("4-component mask against %d-channel image: %w",
			channelCount(img), ErrChannelMismatch)
	}

	src := toNRGBA(img)
	bounds := src.Bounds()
	if region != nil {
		r := image.Rect(region.X1, region.Y1, region.X2, region.Y2)
		if !r.In(bounds) {
			return Stat{}, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds %dx%d",
				region.X1, region.Y1, region.X2, region.Y2, bounds.Dx(), bounds.Dy())
		}
		bounds = r
	}

	// Sums fit uint64 comfortably: 255 per pixel per channel.
	var sumR, sumG, sumB uint64
	count := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		i := src.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3]
			i += 4
			if mask != nil && mask.excludes(r, g, b, a) {
				continue
			}
			sumR += uint64(r)
			sumG += uint64(g)
			sumB += uint64(b)
			count++
		}
	}

	if count == 0 {
		if bounds.Empty() {
			return Stat{}, fmt.Errorf("no pixels to average: %w", ErrEmptyInput)
		}
		return Stat{}, fmt.Errorf("every pixel masked out: %w", ErrEmptyInput)
	}

	n := float64(count)
	return Stat{
		R:        float64(sumR) / n,
		G:        float64(sumG) / n,
		B:        float64(sumB) / n,
		Channels: channelCount(img),
		Pixels:   count,
	}, nil
}

// toNRGBA normalizes an image to 8-bit NRGBA without mutating the input.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	return imaging.Clone(img)
}

// hasAlphaChannel reports whether the image's native layout carries an
// alpha channel. Decoders produce these concrete types for images with
// transparency; everything else (Gray, YCbCr, CMYK, ...) is opaque.
func hasAlphaChannel(img image.Image) bool {
	switch img.(type) {
	case *image.NRGBA, *image.RGBA, *image.NRGBA64, *image.RGBA64:
		return true
	}
	return false
}

// channelCount returns 4 for layouts with an alpha channel, 3 otherwise.
func channelCount(img image.Image) int {
	if hasAlphaChannel(img) {
		return 4
	}
	return 3
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
