package batch

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/color-match-tools/internal/colormatch"
	"github.com/ironsheep/color-match-tools/internal/imaging"
)

// writePNG writes a uniform PNG and returns its path.
func writePNG(t *testing.T, dir, name string, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", name, err)
	}
	return path
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "b.png", color.NRGBA{A: 255})
	writePNG(t, dir, "a.png", color.NRGBA{A: 255})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatalf("failed to make dir: %v", err)
	}

	paths, err := ListImages(dir)
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}

	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2: %v", len(paths), paths)
	}
	// Sorted by name: folder-position pairing depends on this.
	if filepath.Base(paths[0]) != "a.png" || filepath.Base(paths[1]) != "b.png" {
		t.Errorf("got %v, want [a.png b.png]", paths)
	}
}

func TestListImages_MissingDir(t *testing.T) {
	if _, err := ListImages("/nonexistent/dir"); err == nil {
		t.Error("ListImages should fail for a missing directory")
	}
}

func TestMakePairs(t *testing.T) {
	pairs, err := MakePairs([]string{"r1", "r2"}, []string{"t1", "t2"})
	if err != nil {
		t.Fatalf("MakePairs failed: %v", err)
	}
	if len(pairs) != 2 || pairs[1].Reference != "r2" || pairs[1].Target != "t2" {
		t.Errorf("unexpected pairs: %v", pairs)
	}
}

func TestMakePairs_Mismatch(t *testing.T) {
	if _, err := MakePairs([]string{"r1"}, []string{"t1", "t2"}); err == nil {
		t.Error("MakePairs should fail on count mismatch")
	}
	if _, err := MakePairs(nil, nil); err == nil {
		t.Error("MakePairs should fail on empty lists")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"/in/photo.png", "photo_AVGCOLOR.png"},
		{"/in/scan.v2.jpg", "scan.v2_AVGCOLOR.jpg"},
		{"/in/noext", "noext_AVGCOLOR"},
	}

	for _, tt := range tests {
		got := OutputPath("/out", tt.target)
		if filepath.Base(got) != tt.want || filepath.Dir(got) != "/out" {
			t.Errorf("OutputPath(/out, %s) = %s, want /out/%s", tt.target, got, tt.want)
		}
	}
}

func TestCountExisting(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a_AVGCOLOR.png", "b_AVGCOLOR.jpg", "plain.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	n, err := CountExisting(dir)
	if err != nil {
		t.Fatalf("CountExisting failed: %v", err)
	}
	if n != 2 {
		t.Errorf("got %d, want 2", n)
	}
}

func TestCountExisting_MissingDir(t *testing.T) {
	n, err := CountExisting("/nonexistent/dir")
	if err != nil {
		t.Fatalf("CountExisting failed: %v", err)
	}
	if n != 0 {
		t.Errorf("got %d, want 0", n)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	ref := writePNG(t, dir, "ref.png", color.NRGBA{60, 60, 60, 255})
	tgt := writePNG(t, dir, "tgt.png", color.NRGBA{100, 100, 100, 255})

	var calls []int
	res, err := Run(context.Background(), Job{
		Pairs:     []Pair{{Reference: ref, Target: tgt}},
		OutputDir: outDir,
		Progress:  func(done, total int) { calls = append(calls, done) },
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Processed != 1 || len(res.Errors) != 0 {
		t.Fatalf("processed=%d errors=%v, want 1 and none", res.Processed, res.Errors)
	}
	if len(calls) != 1 || calls[0] != 1 {
		t.Errorf("progress calls: got %v, want [1]", calls)
	}

	outPath := filepath.Join(outDir, "tgt_AVGCOLOR.png")
	if len(res.Outputs) != 1 || res.Outputs[0] != outPath {
		t.Fatalf("outputs: got %v, want [%s]", res.Outputs, outPath)
	}

	// Uniform target shifted to the reference's uniform average.
	d, err := imaging.Decode(outPath)
	if err != nil {
		t.Fatalf("Decode of output failed: %v", err)
	}
	if got := d.Image.NRGBAAt(0, 0); got != (color.NRGBA{60, 60, 60, 255}) {
		t.Errorf("output pixel: got %v, want {60 60 60 255}", got)
	}
}

func TestRun_CollectsPairErrors(t *testing.T) {
	dir := t.TempDir()
	ref := writePNG(t, dir, "ref.png", color.NRGBA{60, 60, 60, 255})
	tgt := writePNG(t, dir, "tgt.png", color.NRGBA{100, 100, 100, 255})

	res, err := Run(context.Background(), Job{
		Pairs: []Pair{
			{Reference: filepath.Join(dir, "missing.png"), Target: tgt},
			{Reference: ref, Target: tgt},
		},
		OutputDir: filepath.Join(dir, "out"),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Processed != 1 {
		t.Errorf("processed: got %d, want 1", res.Processed)
	}
	if len(res.Errors) != 1 || res.Errors[0].Index != 0 {
		t.Fatalf("errors: got %v, want one error at index 0", res.Errors)
	}
}

func TestRun_MaskedReferenceError(t *testing.T) {
	dir := t.TempDir()
	ref := writePNG(t, dir, "ref.png", color.NRGBA{0, 0, 0, 255})
	tgt := writePNG(t, dir, "tgt.png", color.NRGBA{100, 100, 100, 255})

	mask, err := colormatch.NewMask([]int{0, 0, 0}, 0)
	if err != nil {
		t.Fatalf("NewMask failed: %v", err)
	}

	res, err := Run(context.Background(), Job{
		Pairs:     []Pair{{Reference: ref, Target: tgt}},
		OutputDir: filepath.Join(dir, "out"),
		Mask:      mask,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Processed != 0 || len(res.Errors) != 1 {
		t.Fatalf("expected the fully-masked reference to fail its pair, got %+v", res)
	}
	if !strings.Contains(res.Errors[0].Message, "no qualifying pixels") &&
		!strings.Contains(res.Errors[0].Message, "masked") {
		t.Errorf("unexpected error message: %s", res.Errors[0].Message)
	}
}

func TestRun_Cancellation(t *testing.T) {
	dir := t.TempDir()
	ref := writePNG(t, dir, "ref.png", color.NRGBA{60, 60, 60, 255})
	tgt := writePNG(t, dir, "tgt.png", color.NRGBA{100, 100, 100, 255})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, Job{
		Pairs:     []Pair{{Reference: ref, Target: tgt}},
		OutputDir: filepath.Join(dir, "out"),
	})
	if err == nil {
		t.Fatal("Run should report cancellation")
	}
	if res == nil || res.Processed != 0 {
		t.Errorf("expected an empty partial result, got %+v", res)
	}
}

func TestRun_NoPairs(t *testing.T) {
	if _, err := Run(context.Background(), Job{OutputDir: t.TempDir()}); err == nil {
		t.Error("Run should fail with no pairs")
	}
}
