package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Save writes an image to disk, choosing the encoder from the path's
// extension (.png, .jpg/.jpeg, .gif, .bmp, .tif/.tiff). JPEG output uses
// quality 95.
//
// WebP has no encoder: inputs may be read from .webp files but output
// paths must use one of the encodable extensions, otherwise Save reports
// an unsupported-format error.
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
