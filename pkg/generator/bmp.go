// bmp.go - BMP and TIFF encoders from golang.org/x/image.
// BMP is written as 32-bit when the image has transparency, 24-bit otherwise;
// TIFF uses deflate compression. Both are lossless.
package generator

import (
	"fmt"
	"image"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// encodeBMP encodes img as an uncompressed bitmap.
func encodeBMP(w io.Writer, img image.Image) error {
	if err := bmp.Encode(w, img); err != nil {
		return fmt.Errorf("encode BMP: %w", err)
	}
	return nil
}

// encodeTIFF encodes img as a deflate-compressed TIFF.
func encodeTIFF(w io.Writer, img image.Image) error {
	opts := &tiff.Options{Compression: tiff.Deflate, Predictor: true}
	if err := tiff.Encode(w, img, opts); err != nil {
		return fmt.Errorf("encode TIFF: %w", err)
	}
	return nil
}
