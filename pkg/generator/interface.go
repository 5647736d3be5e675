// Package generator writes finished images in lossless raster formats.
package generator

import (
	"image"
	"io"
)

// encodeFunc writes img to w in one format.
type encodeFunc func(w io.Writer, img image.Image) error

// encoders maps a lower-case file extension to its encoder.
var encoders = map[string]encodeFunc{
	".png":  encodePNG,
	".bmp":  encodeBMP,
	".tif":  encodeTIFF,
	".tiff": encodeTIFF,
}

// Extensions lists the supported output extensions.
func Extensions() []string {
	return []string{".png", ".bmp", ".tif", ".tiff"}
}
