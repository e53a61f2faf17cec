package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// writeTestPNG writes a uniform PNG into dir and returns its path.
func writeTestPNG(t *testing.T, dir, name string, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return path
}

// writeGrayPNG writes a grayscale PNG into dir and returns its path.
func writeGrayPNG(t *testing.T, dir, name string, width, height int, y uint8) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, width, height))
	for yy := 0; yy < height; yy++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, yy, color.Gray{Y: y})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return path
}

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"photo.png", true},
		{"photo.PNG", true},
		{"photo.jpg", true},
		{"photo.jpeg", true},
		{"photo.bmp", true},
		{"photo.gif", true},
		{"photo.tiff", true},
		{"photo.webp", true},
		{"photo.txt", false},
		{"photo", false},
		{"dir/.hidden", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsImageFile(tt.path); got != tt.want {
				t.Errorf("IsImageFile(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "red.png", 20, 10, color.RGBA{255, 0, 0, 255})

	d, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if d.Format != "png" {
		t.Errorf("format: got %s, want png", d.Format)
	}
	if d.Channels != 4 {
		t.Errorf("channels: got %d, want 4", d.Channels)
	}
	bounds := d.Image.Bounds()
	if bounds.Dx() != 20 || bounds.Dy() != 10 {
		t.Errorf("dimensions: got %dx%d, want 20x10", bounds.Dx(), bounds.Dy())
	}
	if got := d.Image.NRGBAAt(5, 5); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("pixel: got %v, want {255 0 0 255}", got)
	}
}

func TestDecode_GrayscaleNormalized(t *testing.T) {
	path := writeGrayPNG(t, t.TempDir(), "gray.png", 4, 4, 77)

	d, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if d.Channels != 3 {
		t.Errorf("channels: got %d, want 3", d.Channels)
	}
	if got := d.Image.NRGBAAt(0, 0); got != (color.NRGBA{77, 77, 77, 255}) {
		t.Errorf("promoted pixel: got %v, want {77 77 77 255}", got)
	}
}

func TestDecode_NonExistent(t *testing.T) {
	if _, err := Decode("/nonexistent/image.png"); err == nil {
		t.Error("Decode should fail for a non-existent file")
	}
}

func TestDecode_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := Decode(path); err == nil {
		t.Error("Decode should fail for invalid image data")
	}
}

func TestCache_Load(t *testing.T) {
	cache := NewCache()
	path := writeTestPNG(t, t.TempDir(), "red.png", 8, 8, color.RGBA{255, 0, 0, 255})

	d1, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	d2, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if d1 != d2 {
		t.Error("second Load did not return the cached entry")
	}
}

func TestCache_Evict(t *testing.T) {
	cache := NewCache()
	path := writeTestPNG(t, t.TempDir(), "red.png", 8, 8, color.RGBA{255, 0, 0, 255})

	d1, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Evict(path)

	d2, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load after Evict failed: %v", err)
	}
	if d1 == d2 {
		t.Error("Load after Evict returned the evicted entry")
	}
}

func TestCache_Clear(t *testing.T) {
	cache := NewCache()
	dir := t.TempDir()
	p1 := writeTestPNG(t, dir, "a.png", 4, 4, color.RGBA{1, 2, 3, 255})
	p2 := writeTestPNG(t, dir, "b.png", 4, 4, color.RGBA{4, 5, 6, 255})

	if _, err := cache.Load(p1); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := cache.Load(p2); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Clear()
	if len(cache.entries) != 0 {
		t.Errorf("entries after Clear: got %d, want 0", len(cache.entries))
	}
}

func TestCache_ConcurrentLoad(t *testing.T) {
	cache := NewCache()
	path := writeTestPNG(t, t.TempDir(), "red.png", 16, 16, color.RGBA{255, 0, 0, 255})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				t.Errorf("concurrent Load failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestLoadInfo(t *testing.T) {
	cache := NewCache()
	path := writeTestPNG(t, t.TempDir(), "red.png", 30, 20, color.RGBA{255, 0, 0, 255})

	info, err := LoadInfo(cache, path)
	if err != nil {
		t.Fatalf("LoadInfo failed: %v", err)
	}

	if info.Width != 30 || info.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 30x20", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %s, want png", info.Format)
	}
	if !info.HasAlpha || info.Channels != 4 {
		t.Errorf("alpha/channels: got %v/%d, want true/4", info.HasAlpha, info.Channels)
	}
	if info.ColorDepth != "8-bit" {
		t.Errorf("color depth: got %s, want 8-bit", info.ColorDepth)
	}
	if info.FileSizeBytes <= 0 {
		t.Errorf("file size: got %d, want > 0", info.FileSizeBytes)
	}
}

func TestGetDimensions(t *testing.T) {
	cache := NewCache()
	path := writeTestPNG(t, t.TempDir(), "red.png", 12, 34, color.RGBA{0, 0, 0, 255})

	dims, err := GetDimensions(cache, path)
	if err != nil {
		t.Fatalf("GetDimensions failed: %v", err)
	}
	if dims.Width != 12 || dims.Height != 34 {
		t.Errorf("got %dx%d, want 12x34", dims.Width, dims.Height)
	}
}
