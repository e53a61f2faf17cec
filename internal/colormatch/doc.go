// Package colormatch implements average-color matching between image pairs.
//
// The core operation shifts every pixel of a target image by the difference
// between a reference image's average color and the target's own average
// color, so the target takes on the reference's overall tone. Averages can
// exclude pixels that match a designated mask color, with an optional
// per-channel tolerance.
//
// # Pipeline
//
// A full match is three steps:
//
//  1. Average(reference, mask, nil) — mean R, G, B over qualifying pixels
//  2. Average(target, nil, nil) — the target is never masked
//  3. Shift(target, refAvg, tgtAvg) — per-pixel additive delta, clamped
//
// Match composes the three. All operations are pure: inputs are never
// mutated and every call allocates a fresh output buffer owned by the
// caller.
//
// # Channel Handling
//
// Images are normalized to 8-bit NRGBA before processing. Grayscale inputs
// are thereby promoted to RGB by replication. The alpha channel never
// contributes to averages and is copied through a shift unmodified.
//
// # Errors
//
// ErrEmptyInput is returned when an average has no qualifying pixels
// (zero-size image, or every pixel masked out). ErrChannelMismatch is
// returned when a mask's component count is incompatible with the image's
// channel layout, or when a Stat describes a channel layout the shift
// cannot apply. Out-of-range arithmetic is not an error: results clamp to
// [0, 255].
package colormatch
