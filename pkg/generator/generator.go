// generator.go — Format dispatch and file output.
//
// All output follows one pipeline: take a finished image.Image, pick the encoder
// from the file extension, and write it. Only lossless formats are offered.
package generator

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for extensions without a lossless encoder.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Config holds parameters for output generation.
type Config struct {
	Image image.Image // finished image to write; required
}

// Generate writes cfg.Image to output. The format is inferred from the file extension:
//   - ".png" → PNG
//   - ".bmp" → BMP
//   - ".tif", ".tiff" → TIFF (deflate)
//
// An existing file at output is replaced only once the new image is fully
// written: encoding goes to a temporary file in the same directory, which is
// then renamed over output.
func Generate(output string, cfg Config) error {
	enc, err := encoderFor(filepath.Ext(output))
	if err != nil {
		return err
	}
	if cfg.Image == nil {
		return fmt.Errorf("generate %s: no image", output)
	}

	f, err := os.CreateTemp(filepath.Dir(output), "."+filepath.Base(output)+"-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	tmp := f.Name()

	if err := enc(f, cfg.Image); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", output, err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("chmod %s: %w", output, err)
	}
	if err := os.Rename(tmp, output); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", output, err)
	}
	return nil
}

// GenerateToWriter writes cfg.Image to w in the format named by ext (".png", ".bmp", ".tiff").
// This is useful for in-memory generation (e.g., HTTP responses, WASM).
func GenerateToWriter(w io.Writer, ext string, cfg Config) error {
	enc, err := encoderFor(ext)
	if err != nil {
		return err
	}
	if cfg.Image == nil {
		return fmt.Errorf("generate %s: no image", ext)
	}
	return enc(w, cfg.Image)
}

// ContentType returns the MIME type for a supported extension.
func ContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "image/png"
	}
}

func encoderFor(ext string) (encodeFunc, error) {
	enc, ok := encoders[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("%w %q: use one of %s", ErrUnsupportedFormat, ext, strings.Join(Extensions(), ", "))
	}
	return enc, nil
}
