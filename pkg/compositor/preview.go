// preview.go — Viewport scaling for the live preview.
package compositor

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Preview stretches img to exactly width×height with a Lanczos filter.
// The aspect ratio is not preserved. img is only read. Either side above
// MaxViewport fails with ErrViewportTooLarge.
func Preview(img image.Image, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("preview %dx%d: %w", width, height, ErrEmptyViewport)
	}
	if width > MaxViewport || height > MaxViewport {
		return nil, fmt.Errorf("preview %dx%d: %w", width, height, ErrViewportTooLarge)
	}
	return imaging.Resize(img, width, height, imaging.Lanczos), nil
}
