package compositor

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

// testFontPath writes Go Regular into a temp dir and returns its path.
func testFontPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "goregular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatalf("write test font: %v", err)
	}
	return path
}

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(testFontPath(t))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

// wrapCollection packs a single sfnt font into a one-font TrueType collection.
func wrapCollection(t *testing.T, ttf []byte) []byte {
	t.Helper()
	const headerLen = 16 // tag, version, count, one offset

	font := bytes.Clone(ttf)
	numTables := int(binary.BigEndian.Uint16(font[4:6]))
	for i := 0; i < numTables; i++ {
		rec := 12 + 16*i
		off := binary.BigEndian.Uint32(font[rec+8 : rec+12])
		binary.BigEndian.PutUint32(font[rec+8:rec+12], off+headerLen)
	}

	var buf bytes.Buffer
	buf.WriteString("ttcf")
	binary.Write(&buf, binary.BigEndian, uint32(0x00010000))
	binary.Write(&buf, binary.BigEndian, uint32(1))
	binary.Write(&buf, binary.BigEndian, uint32(headerLen))
	buf.Write(font)
	return buf.Bytes()
}

func imagesEqual(a, b image.Image) bool {
	if !a.Bounds().Eq(b.Bounds()) {
		return false
	}
	return bytes.Equal(toRGBA(a).Pix, toRGBA(b).Pix)
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

func isWhite(c color.RGBA) bool {
	return c.R == 255 && c.G == 255 && c.B == 255
}

// nonWhiteIn counts non-white pixels of img inside r.
func nonWhiteIn(img *image.RGBA, r image.Rectangle) int {
	r = r.Intersect(img.Bounds())
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if !isWhite(img.RGBAAt(x, y)) {
				n++
			}
		}
	}
	return n
}
