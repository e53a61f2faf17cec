package colormatch

import "errors"

// ErrEmptyInput indicates that an average computation had no qualifying
// pixels: the image has zero pixels, or the mask excluded every pixel.
// There is no fallback average; callers decide how to proceed.
var ErrEmptyInput = errors.New("no qualifying pixels")

// ErrChannelMismatch indicates incompatible channel layouts: a mask whose
// component count does not fit the image (a 4-component mask against an
// image with no alpha channel), or a Stat whose channel count is not one
// Shift can apply.
var ErrChannelMismatch = errors.New("channel layout mismatch")
