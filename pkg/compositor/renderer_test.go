package compositor

import (
	"errors"
	"image"
	"math"
	"testing"
)

func TestRenderEmptyTextIsBlank(t *testing.T) {
	r := testRenderer(t)

	for _, text := range []string{"", "   ", "\n\t \n"} {
		img, err := r.RenderSeeded(Config{Text: text, TextSize: 30, Density: 10})
		if err != nil {
			t.Fatalf("Render(%q): %v", text, err)
		}
		if !imagesEqual(img, BlankCanvas()) {
			t.Errorf("Render(%q) differs from the blank canvas", text)
		}
	}
}

func TestRenderCanvasSize(t *testing.T) {
	r := testRenderer(t)

	img, err := r.RenderSeeded(Config{Text: "Hello", TextSize: 30, Watermarks: []string{"DRAFT"}, Density: 10})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, CanvasWidth, CanvasHeight) {
		t.Fatalf("canvas bounds = %v, want %dx%d", got, CanvasWidth, CanvasHeight)
	}
}

func TestRenderPrimaryTextCentred(t *testing.T) {
	r := testRenderer(t)

	img, err := r.RenderSeeded(Config{Text: "Hello", TextSize: 30, Density: 10})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	block, err := r.measureText("Hello", 30)
	if err != nil {
		t.Fatalf("measureText: %v", err)
	}
	box := block.bounds(CanvasWidth, CanvasHeight)

	inside := nonWhiteIn(img, box.Inset(-2))
	if inside == 0 {
		t.Fatalf("no text pixels inside centred box %v", box)
	}
	total := nonWhiteIn(img, img.Bounds())
	if total != inside {
		t.Fatalf("%d non-white pixels outside centred box %v", total-inside, box)
	}

	// Centred: the box's margins differ by at most one pixel on each axis.
	left, right := box.Min.X, CanvasWidth-box.Max.X
	top, bottom := box.Min.Y, CanvasHeight-box.Max.Y
	if abs(left-right) > 1 || abs(top-bottom) > 1 {
		t.Errorf("box %v not centred: margins l=%d r=%d t=%d b=%d", box, left, right, top, bottom)
	}
}

func TestRenderMultiLineBlock(t *testing.T) {
	r := testRenderer(t)

	one, err := r.measureText("Hello", 30)
	if err != nil {
		t.Fatalf("measureText: %v", err)
	}
	two, err := r.measureText("Hello\nHello, world", 30)
	if err != nil {
		t.Fatalf("measureText: %v", err)
	}

	if len(two.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(two.Lines))
	}
	if want := 2*one.LineHeight + lineGap; two.Height != want {
		t.Errorf("two-line height = %d, want %d", two.Height, want)
	}
	if two.Width <= one.Width {
		t.Errorf("block width %d should follow the widest line (> %d)", two.Width, one.Width)
	}
}

func TestRenderWithoutWatermarksIgnoresSeed(t *testing.T) {
	r := testRenderer(t)

	a, err := r.RenderSeeded(Config{Text: "Hello", TextSize: 30, Density: 10, Seed: 1})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := r.RenderSeeded(Config{Text: "Hello", TextSize: 30, Density: 10, Seed: 99})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	// Primary text only, drawn directly.
	want := BlankCanvas()
	if err := r.drawPrimary(want, "Hello", 30); err != nil {
		t.Fatalf("drawPrimary: %v", err)
	}

	if !imagesEqual(a, want) || !imagesEqual(b, want) {
		t.Fatal("render without watermarks is not the plain centred text canvas")
	}
}

func TestRenderSeedReproducible(t *testing.T) {
	r := testRenderer(t)
	cfg := Config{Text: "Hello", TextSize: 30, Watermarks: []string{"DRAFT"}, Density: 10, Seed: 42}

	a, err := r.RenderSeeded(cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := r.RenderSeeded(cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !imagesEqual(a, b) {
		t.Fatal("same seed produced different images")
	}

	cfg.Seed = 43
	c, err := r.RenderSeeded(cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if imagesEqual(a, c) {
		t.Fatal("different seeds produced identical images")
	}
}

func TestRenderRejectsOutOfRange(t *testing.T) {
	r := testRenderer(t)

	_, err := r.RenderSeeded(Config{Text: "x", TextSize: 5, Density: 10})
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestRenderRejectsNaNDensity(t *testing.T) {
	r := testRenderer(t)

	_, err := r.RenderSeeded(Config{Text: "x", TextSize: 30, Watermarks: []string{"DRAFT"}, Density: math.NaN()})
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange for NaN density, got %v", err)
	}
}

func TestRenderMissingFont(t *testing.T) {
	_, err := NewRenderer("does-not-exist.ttc")

	var re *ResourceError
	if !errors.As(err, &re) {
		t.Fatalf("expected *ResourceError, got %T: %v", err, err)
	}
}

func TestTileGridSpacing(t *testing.T) {
	r := testRenderer(t)
	const density = 10
	spacing := Spacing(density)
	if spacing != 90 {
		t.Fatalf("Spacing(10) = %d, want 90", spacing)
	}

	tw, th, err := r.tileSize("DRAFT")
	if err != nil {
		t.Fatalf("tileSize: %v", err)
	}
	if tw == 0 || th == 0 {
		t.Fatalf("empty tile %dx%d", tw, th)
	}

	face, err := r.fontManager.GetFace(WatermarkFontSize)
	if err != nil {
		t.Fatalf("GetFace: %v", err)
	}
	defer face.Close()

	img := BlankCanvas()
	n := r.tileWatermark(img, "DRAFT", face, spacing, NewRand(7))

	stepX, stepY := tw+spacing, th+spacing
	cols := (CanvasWidth + stepX - 1) / stepX
	rows := (CanvasHeight + stepY - 1) / stepY
	if n != cols*rows {
		t.Fatalf("tiles = %d, want %d (%d cols × %d rows)", n, cols*rows, cols, rows)
	}
	if n < 2 {
		t.Fatalf("expected multiple tiles, got %d", n)
	}

	// Every grid cell that fits on the canvas has ink near its origin.
	for x := 0; x+tw+th <= CanvasWidth; x += stepX {
		for y := 0; y+tw+th <= CanvasHeight; y += stepY {
			cell := image.Rect(x, y, x+tw+th, y+tw+th)
			if nonWhiteIn(img, cell) == 0 {
				t.Errorf("no tile drawn at grid cell (%d, %d)", x, y)
			}
		}
	}

	// A rotated tile is at most tw+th wide, so the rest of each column gap stays white.
	for x := 0; x < CanvasWidth; x += stepX {
		gap := image.Rect(x+tw+th+2, 0, x+stepX-1, CanvasHeight)
		if gap.Empty() {
			continue
		}
		if n := nonWhiteIn(img, gap); n != 0 {
			t.Errorf("%d pixels drawn in the gap %v", n, gap)
		}
	}
}

func TestLaterWatermarkDrawsOnTop(t *testing.T) {
	r := testRenderer(t)

	// Density 0 leaves a 100px gap, wider than any rotated tile, so no two
	// tiles of one layer touch and every opaque B pixel comes from one tile.
	spacing := Spacing(0)

	face, err := r.fontManager.GetFace(WatermarkFontSize)
	if err != nil {
		t.Fatalf("GetFace: %v", err)
	}
	defer face.Close()

	// Both layers on the canvas, A then B.
	got := BlankCanvas()
	rng := NewRand(3)
	r.tileWatermark(got, "A", face, spacing, rng)
	r.tileWatermark(got, "B", face, spacing, rng)

	// The A layer alone, then the B layer alone with the random stream advanced past A.
	rng = NewRand(3)
	layerA := BlankCanvas()
	r.tileWatermark(layerA, "A", face, spacing, rng)
	layerB := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	r.tileWatermark(layerB, "B", face, spacing, rng)

	opaque, overA := 0, 0
	for y := 0; y < CanvasHeight; y++ {
		for x := 0; x < CanvasWidth; x++ {
			b := layerB.RGBAAt(x, y)
			if b.A != 0xff {
				continue
			}
			opaque++
			if !isWhite(layerA.RGBAAt(x, y)) {
				overA++
			}
			if g := got.RGBAAt(x, y); g != b {
				t.Fatalf("pixel (%d, %d) = %v, want B's %v on top", x, y, g, b)
			}
		}
	}
	if opaque == 0 {
		t.Fatal("B layer has no opaque pixels")
	}
	if overA == 0 {
		t.Fatal("B layer never covers A, layer order is untested")
	}
}

func TestTileWatermarkEmptyString(t *testing.T) {
	r := testRenderer(t)

	face, err := r.fontManager.GetFace(WatermarkFontSize)
	if err != nil {
		t.Fatalf("GetFace: %v", err)
	}
	defer face.Close()

	img := BlankCanvas()
	if n := r.tileWatermark(img, "", face, 0, NewRand(1)); n != 0 {
		t.Fatalf("empty watermark drew %d tiles", n)
	}
	if !imagesEqual(img, BlankCanvas()) {
		t.Fatal("empty watermark changed the canvas")
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
