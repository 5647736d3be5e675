// color.go — Per-tile random colour and rotation, plus solid canvas creation.
package compositor

import (
	"image"
	"image/color"
	"math/rand/v2"

	"golang.org/x/image/draw"
)

var (
	canvasBackground = color.RGBA{255, 255, 255, 255}
	primaryInk       = color.RGBA{0, 0, 0, 255}
)

// NewRand returns the generator Render draws tile angles and colours from.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// randomColor picks each channel independently and uniformly over [0, 255].
func randomColor(rng *rand.Rand) color.NRGBA {
	return color.NRGBA{
		R: uint8(rng.IntN(256)),
		G: uint8(rng.IntN(256)),
		B: uint8(rng.IntN(256)),
		A: 255,
	}
}

// randomAngle picks a whole number of degrees in [-MaxTileAngle, MaxTileAngle].
func randomAngle(rng *rand.Rand) float64 {
	return float64(rng.IntN(2*MaxTileAngle+1) - MaxTileAngle)
}

// NewSolidImage creates a uniform solid-color image using draw.Draw (O(1) fill).
func NewSolidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

// BlankCanvas returns the white baseline canvas shown before any generation.
func BlankCanvas() *image.RGBA {
	return NewSolidImage(CanvasWidth, CanvasHeight, canvasBackground)
}
