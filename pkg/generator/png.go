// png.go — PNG encoder.
package generator

import (
	"fmt"
	"image"
	"image/png"
	"io"
)

var pngEncoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// encodePNG encodes img as PNG.
func encodePNG(w io.Writer, img image.Image) error {
	if err := pngEncoder.Encode(w, img); err != nil {
		return fmt.Errorf("encode PNG: %w", err)
	}
	return nil
}
