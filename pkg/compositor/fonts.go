// fonts.go - Font loading for the primary text and watermark faces.
// Uses golang.org/x/image/font/opentype. Accepts single fonts (.ttf/.otf) and
// font collections (.ttc), taking the first font of a collection. There is no
// fallback font: a missing file fails the render that asked for it.
package compositor

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// collectionTag is the magic number that opens a TrueType collection.
var collectionTag = []byte("ttcf")

// FontManager holds one parsed font and hands out faces by size.
type FontManager struct {
	name   string
	parsed *opentype.Font
	dpi    float64
}

// NewFontManager reads and parses the font at path.
// Failures are reported as *ResourceError.
func NewFontManager(path string) (*FontManager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ResourceError{Path: path, Err: err}
	}
	return NewFontManagerFromBytes(path, data)
}

// NewFontManagerFromBytes parses font data that is already in memory.
// name is only used in error messages.
func NewFontManagerFromBytes(name string, data []byte) (*FontManager, error) {
	parsed, err := parseFont(data)
	if err != nil {
		return nil, &ResourceError{Path: name, Err: err}
	}

	return &FontManager{
		name:   name,
		parsed: parsed,
		dpi:    72,
	}, nil
}

// Name returns the path or label the font was loaded from.
func (fm *FontManager) Name() string { return fm.name }

// GetFace returns a font.Face at the specified size in points.
// The caller closes the face.
func (fm *FontManager) GetFace(size float64) (font.Face, error) {
	face, err := opentype.NewFace(fm.parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     fm.dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, &ResourceError{Path: fm.name, Err: fmt.Errorf("create face at %.0fpt: %w", size, err)}
	}
	return face, nil
}

func parseFont(data []byte) (*opentype.Font, error) {
	if !bytes.HasPrefix(data, collectionTag) {
		return opentype.Parse(data)
	}

	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, err
	}
	if coll.NumFonts() == 0 {
		return nil, fmt.Errorf("font collection is empty")
	}
	return coll.Font(0)
}
