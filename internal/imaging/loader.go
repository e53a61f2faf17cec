package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder (decode only)
)

// supportedExtensions lists the file extensions accepted as image input,
// lowercase with leading dot.
var supportedExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tiff", ".webp"}

// IsImageFile reports whether a path has a supported image extension.
// The check is by extension only; decoding may still fail on a corrupt or
// mislabeled file.
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range supportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Decoded is an image normalized for color processing, together with the
// properties of its on-disk form.
type Decoded struct {
	// Image is the pixel data normalized to 8-bit NRGBA. Grayscale
	// sources are promoted to RGB by replication; 16-bit components are
	// reduced to 8-bit.
	Image *image.NRGBA

	// Format is the decoder-reported format name ("png", "jpeg", "gif",
	// "bmp", "tiff", "webp"), not a guess from the file extension.
	Format string

	// Channels is the channel count of the native layout before
	// normalization: 4 when the source carries an alpha channel, 3
	// otherwise.
	Channels int

	// SixteenBit records whether the source had 16-bit components.
	SixteenBit bool
}

// Decode reads and decodes an image file.
//
// Returns a Decoded with the pixel data normalized to NRGBA, or an error
// if the file cannot be opened or is not a valid image in a supported
// format.
func Decode(path string) (*Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filepath.Base(path), err)
	}

	d := &Decoded{
		Image:    imaging.Clone(img),
		Format:   format,
		Channels: 3,
	}
	switch img.(type) {
	case *image.NRGBA, *image.RGBA:
		d.Channels = 4
	case *image.NRGBA64, *image.RGBA64:
		d.Channels = 4
		d.SixteenBit = true
	case *image.Gray16:
		d.SixteenBit = true
	}
	return d, nil
}

// Cache holds decoded images keyed by file path so repeated operations on
// the same file skip disk I/O and re-decoding.
//
// Entries stay in memory until Evict or Clear; long-running callers
// handling many images should clear between batches. Cache is safe for
// concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Decoded
}

// NewCache creates an empty image cache ready for use.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Decoded)}
}

// Load returns the decoded image for a path, reading and decoding it on
// first use. The path string is the cache key as given; relative and
// absolute paths to the same file are separate entries.
func (c *Cache) Load(path string) (*Decoded, error) {
	c.mu.RLock()
	if d, ok := c.entries[path]; ok {
		c.mu.RUnlock()
		return d, nil
	}
	c.mu.RUnlock()

	d, err := Decode(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[path] = d
	c.mu.Unlock()

	return d, nil
}

// Evict drops one entry; the next Load for that path re-reads the file.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// Clear drops every entry, freeing the associated memory.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*Decoded)
	c.mu.Unlock()
}

// Info describes an image file without exposing its pixels.
type Info struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder-reported format name.
	Format string `json:"format"`

	// Channels is the native channel count (3 or 4).
	Channels int `json:"channels"`

	// HasAlpha indicates an alpha (transparency) channel in the source.
	HasAlpha bool `json:"has_alpha"`

	// ColorDepth is the source bit depth per channel: "8-bit" or "16-bit".
	// Pixel data is processed at 8 bits regardless.
	ColorDepth string `json:"color_depth"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadInfo loads an image through the cache and returns its metadata.
func LoadInfo(cache *Cache, path string) (*Info, error) {
	d, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	depth := "8-bit"
	if d.SixteenBit {
		depth = "16-bit"
	}

	bounds := d.Image.Bounds()
	return &Info{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        d.Format,
		Channels:      d.Channels,
		HasAlpha:      d.Channels == 4,
		ColorDepth:    depth,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult contains just the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns an image's dimensions, loading it through the
// cache if needed.
func GetDimensions(cache *Cache, path string) (*DimensionsResult, error) {
	d, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	bounds := d.Image.Bounds()
	return &DimensionsResult{Width: bounds.Dx(), Height: bounds.Dy()}, nil
}
