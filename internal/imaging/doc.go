// Package imaging handles image file I/O for the color matching tools.
//
// It decodes PNG, JPEG, GIF, BMP, TIFF, and WebP files, normalizes pixel
// data to 8-bit NRGBA for processing, encodes results back to disk with
// the encoder chosen by file extension (WebP is decode-only), and renders
// downscaled base64 previews for inline display.
//
// # Normalization
//
// Every decoded image is converted to *image.NRGBA once, at load time.
// Grayscale sources are thereby promoted to RGB by replication and 16-bit
// components reduced to 8-bit. The Decoded type keeps the source's
// native format name, channel count, and bit depth alongside the
// normalized pixels so callers can still reason about the on-disk layout.
//
// # Thread Safety
//
// Cache is safe for concurrent use. The remaining functions are stateless
// and safe to call concurrently on different images.
//
// # Error Handling
//
// Functions return wrapped errors for missing files, undecodable data,
// and unsupported output formats. All errors are reported to the caller;
// nothing is retried.
package imaging
