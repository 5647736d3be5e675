// renderer.go - Canvas composition: blank canvas, centred primary text, then one
// tiled layer per watermark string. Each tile gets its own rotation and colour from
// the caller's random source, so a fixed seed reproduces the same image.
package compositor

import (
	"image"
	"image/color"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

// Renderer handles image composition for one font.
type Renderer struct {
	fontManager *FontManager
	logger      *slog.Logger
}

// NewRenderer loads the font at fontPath and returns a renderer for it.
func NewRenderer(fontPath string) (*Renderer, error) {
	fm, err := NewFontManager(fontPath)
	if err != nil {
		return nil, err
	}
	return NewRendererWithFonts(fm), nil
}

// NewRendererWithFonts returns a renderer over an already loaded font.
func NewRendererWithFonts(fm *FontManager) *Renderer {
	return &Renderer{
		fontManager: fm,
		logger:      slog.New(slog.DiscardHandler),
	}
}

// SetLogger routes debug output for tiling to l. A nil logger disables it.
func (r *Renderer) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	r.logger = l
}

// RenderSeeded renders cfg with a generator seeded from cfg.Seed.
func (r *Renderer) RenderSeeded(cfg Config) (*image.RGBA, error) {
	return r.Render(cfg, NewRand(cfg.Seed))
}

// Render composes the final image in two layers:
// 1. The primary text, centred on a white canvas in black.
// 2. For each watermark in order, a grid of rotated, coloured tiles.
func (r *Renderer) Render(cfg Config, rng *rand.Rand) (*image.RGBA, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	img := BlankCanvas()

	if err := r.drawPrimary(img, cfg.Text, cfg.TextSize); err != nil {
		return nil, err
	}

	if len(cfg.Watermarks) == 0 {
		return img, nil
	}

	face, err := r.fontManager.GetFace(WatermarkFontSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	spacing := Spacing(cfg.Density)
	for _, wm := range cfg.Watermarks {
		n := r.tileWatermark(img, wm, face, spacing, rng)
		r.logger.Debug("watermark tiled",
			slog.String("text", wm),
			slog.Int("tiles", n),
			slog.Int("spacing", spacing))
	}

	return img, nil
}

// ── Primary text ──

// drawPrimary centres the text block on img. Lines are left-aligned inside the block.
func (r *Renderer) drawPrimary(img *image.RGBA, text string, size int) error {
	text = NormalizeText(text)
	if text == "" {
		return nil
	}

	face, err := r.fontManager.GetFace(float64(size))
	if err != nil {
		return err
	}
	defer face.Close()

	box := measureBlock(face, text)
	origin := box.bounds(img.Bounds().Dx(), img.Bounds().Dy()).Min

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(primaryInk),
		Face: face,
	}
	for i, line := range box.Lines {
		y := origin.Y + box.Ascent + i*(box.LineHeight+lineGap)
		drawer.Dot = fixed.P(origin.X, y)
		drawer.DrawString(line)
	}

	r.logger.Debug("primary text drawn",
		slog.Int("lines", len(box.Lines)),
		slog.Int("width", box.Width),
		slog.Int("height", box.Height))
	return nil
}

// NormalizeText trims surrounding whitespace and composes the text to NFC.
func NormalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// textBlock is the measured layout of a (possibly multi-line) string.
type textBlock struct {
	Lines      []string
	Width      int // widest line advance
	Height     int // all lines plus gaps
	Ascent     int
	LineHeight int
}

// bounds returns the block's rectangle when centred on a canvas of the given size.
func (b textBlock) bounds(canvasW, canvasH int) image.Rectangle {
	origin := image.Pt((canvasW-b.Width)/2, (canvasH-b.Height)/2)
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(b.Width, b.Height))}
}

func measureBlock(face font.Face, text string) textBlock {
	m := face.Metrics()
	block := textBlock{
		Lines:      strings.Split(text, "\n"),
		Ascent:     m.Ascent.Ceil(),
		LineHeight: (m.Ascent + m.Descent).Ceil(),
	}
	for _, line := range block.Lines {
		block.Width = max(block.Width, font.MeasureString(face, line).Ceil())
	}
	n := len(block.Lines)
	block.Height = n*block.LineHeight + (n-1)*lineGap
	return block
}

// measureText reports the block for text at size points using r's font.
func (r *Renderer) measureText(text string, size int) (textBlock, error) {
	face, err := r.fontManager.GetFace(float64(size))
	if err != nil {
		return textBlock{}, err
	}
	defer face.Close()
	return measureBlock(face, NormalizeText(text)), nil
}

// ── Watermark tiling ──

// tileWatermark stamps text across the whole canvas and returns the number of tiles.
// Tiles past the right or bottom edge are clipped by the canvas bounds.
func (r *Renderer) tileWatermark(dst *image.RGBA, text string, face font.Face, spacing int, rng *rand.Rand) int {
	mask := renderMask(face, text)
	tw, th := mask.Bounds().Dx(), mask.Bounds().Dy()
	if tw == 0 || th == 0 {
		return 0
	}

	stepX, stepY := tw+spacing, th+spacing
	bounds := dst.Bounds()

	tiles := 0
	for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
		for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
			angle := randomAngle(rng)
			col := randomColor(rng)

			tile := colorTile(mask, col)
			rotated := imaging.Rotate(tile, angle, color.Transparent)
			at := rotated.Bounds().Sub(rotated.Bounds().Min).Add(image.Pt(x, y))
			draw.Draw(dst, at, rotated, rotated.Bounds().Min, draw.Over)
			tiles++
		}
	}
	return tiles
}

// tileSize reports the unrotated tile size for a watermark string.
func (r *Renderer) tileSize(text string) (w, h int, err error) {
	face, err := r.fontManager.GetFace(WatermarkFontSize)
	if err != nil {
		return 0, 0, err
	}
	defer face.Close()
	b := renderMask(face, text).Bounds()
	return b.Dx(), b.Dy(), nil
}

// renderMask draws text once into an alpha mask sized to its unrotated box.
func renderMask(face font.Face, text string) *image.Alpha {
	m := face.Metrics()
	w := font.MeasureString(face, text).Ceil()
	h := (m.Ascent + m.Descent).Ceil()
	if w <= 0 || h <= 0 {
		return image.NewAlpha(image.Rectangle{})
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	drawer := &font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, m.Ascent.Ceil()),
	}
	drawer.DrawString(text)
	return mask
}

// colorTile paints col through mask onto a transparent tile.
func colorTile(mask *image.Alpha, col color.NRGBA) *image.RGBA {
	tile := image.NewRGBA(mask.Bounds())
	draw.DrawMask(tile, tile.Bounds(), image.NewUniform(col), image.Point{}, mask, mask.Bounds().Min, draw.Src)
	return tile
}
