// Package batch pairs reference and target image files and runs the
// color-matching transform over each pair in order, writing outputs with
// the _AVGCOLOR filename suffix. Pairs are processed sequentially; a
// failing pair is recorded and the run continues.
package batch
