package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ironsheep/color-match-tools/internal/colormatch"
	"github.com/ironsheep/color-match-tools/internal/imaging"
)

// OutputSuffix is appended to a target's base filename, before the
// extension, to form the output filename.
const OutputSuffix = "_AVGCOLOR"

// Pair is one resolved reference/target file pairing.
type Pair struct {
	Reference string `json:"reference"`
	Target    string `json:"target"`
}

// PairError records a failure on one pair. The remaining pairs are
// unaffected.
type PairError struct {
	Index   int    `json:"index"`   // 0-based position in the pair list
	Target  string `json:"target"`  // target path of the failed pair
	Message string `json:"message"` // human-readable cause
}

// Result summarizes a batch run.
type Result struct {
	Total     int         `json:"total"`
	Processed int         `json:"processed"`
	Outputs   []string    `json:"outputs"`
	Errors    []PairError `json:"errors,omitempty"`
}

// Progress is called after each pair completes, successfully or not.
type Progress func(done, total int)

// Job describes one batch run.
type Job struct {
	Pairs     []Pair
	OutputDir string
	Mask      *colormatch.Mask // optional; applied to references only
	Progress  Progress         // optional
}

// ListImages returns the image files directly inside dir, sorted by name.
// Non-image files and subdirectories are skipped.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imaging.IsImageFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// MakePairs pairs references and targets by position: reference[i] with
// target[i]. The lists must be the same non-zero length.
func MakePairs(refs, tgts []string) ([]Pair, error) {
	if len(refs) != len(tgts) {
		return nil, fmt.Errorf("mismatch: %d reference images vs %d target images", len(refs), len(tgts))
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("no image pairs to process")
	}

	pairs := make([]Pair, len(refs))
	for i := range refs {
		pairs[i] = Pair{Reference: refs[i], Target: tgts[i]}
	}
	return pairs, nil
}

// OutputPath derives the output filename for a target: the target's base
// name with OutputSuffix inserted before the extension, placed in outDir.
func OutputPath(outDir, targetPath string) string {
	base := filepath.Base(targetPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(outDir, stem+OutputSuffix+ext)
}

// CountExisting reports how many files in outDir already carry the output
// suffix, so callers can confirm before overwriting. A missing directory
// counts as zero.
func CountExisting(outDir string) (int, error) {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read output directory: %w", err)
	}

	count := 0
	for _, e := range entries {
		if !e.IsDir() && strings.Contains(e.Name(), OutputSuffix) {
			count++
		}
	}
	return count, nil
}

// Run processes every pair in order. Each pair is loaded, matched, and
// written independently; a failure is appended to Result.Errors and the
// run continues with the next pair.
//
// The context is checked between pairs only; an in-flight pair always
// completes. On cancellation Run returns the partial Result together with
// the context's error.
func Run(ctx context.Context, job Job) (*Result, error) {
	if len(job.Pairs) == 0 {
		return nil, fmt.Errorf("no image pairs to process")
	}
	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	res := &Result{Total: len(job.Pairs)}
	for i, p := range job.Pairs {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("batch aborted after %d of %d pairs: %w", i, res.Total, err)
		}

		out, err := processPair(p, job.OutputDir, job.Mask)
		if err != nil {
			res.Errors = append(res.Errors, PairError{Index: i, Target: p.Target, Message: err.Error()})
		} else {
			res.Processed++
			res.Outputs = append(res.Outputs, out)
		}

		if job.Progress != nil {
			job.Progress(i+1, res.Total)
		}
	}
	return res, nil
}

// processPair matches one target to its reference and writes the result.
func processPair(p Pair, outDir string, mask *colormatch.Mask) (string, error) {
	ref, err := imaging.Decode(p.Reference)
	if err != nil {
		return "", fmt.Errorf("reference %s: %w", filepath.Base(p.Reference), err)
	}
	tgt, err := imaging.Decode(p.Target)
	if err != nil {
		return "", fmt.Errorf("target %s: %w", filepath.Base(p.Target), err)
	}

	matched, err := colormatch.Match(ref.Image, tgt.Image, mask)
	if err != nil {
		return "", err
	}

	outPath := OutputPath(outDir, p.Target)
	if err := imaging.Save(matched, outPath); err != nil {
		return "", err
	}
	return outPath, nil
}
