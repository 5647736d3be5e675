// Package compositor renders centred primary text and tiled, randomly rotated
// watermarks onto a fixed-size canvas.
package compositor

import (
	"errors"
	"fmt"
	"slices"
)

// ── Canvas ──

const (
	CanvasWidth  = 500
	CanvasHeight = 800
)

// ── Input ranges ──

const (
	MinTextSize     = 10
	MaxTextSize     = 100
	DefaultTextSize = 30

	MinDensity     = 0.0
	MaxDensity     = 100.0
	DefaultDensity = 10.0

	// WatermarkFontSize is the point size of every watermark tile.
	WatermarkFontSize = 20

	// MaxTileAngle bounds the per-tile rotation in degrees, both directions.
	MaxTileAngle = 30

	// DefaultFontPath is resolved against the working directory.
	DefaultFontPath = "simsun.ttc"
)

// MaxViewport bounds each side of a preview in pixels.
const MaxViewport = 8192

// lineGap is the extra vertical space between lines of primary text.
const lineGap = 4

var (
	// ErrOutOfRange is returned when text size or density fall outside their range.
	ErrOutOfRange = errors.New("value out of range")

	// ErrEmptyViewport is returned when a preview is requested at a non-positive size.
	ErrEmptyViewport = errors.New("empty viewport")

	// ErrViewportTooLarge is returned when a preview side exceeds MaxViewport.
	ErrViewportTooLarge = errors.New("viewport too large")
)

// ── Render configuration ──

// Config is the full input of one render. It is assembled before each
// render call and never modified by the renderer.
type Config struct {
	Text       string   // primary text, may be empty or multi-line
	TextSize   int      // primary text size in points (10–100)
	Watermarks []string // drawn in order, later entries on top
	Density    float64  // tile density percentage (0–100)
	Seed       uint64   // seeds per-tile rotation and colour
}

// DefaultConfig returns the text size and density used when a front end supplies none.
func DefaultConfig() Config {
	return Config{
		TextSize: DefaultTextSize,
		Density:  DefaultDensity,
	}
}

// Validate checks the numeric inputs against their declared ranges.
func (c Config) Validate() error {
	if c.TextSize < MinTextSize || c.TextSize > MaxTextSize {
		return fmt.Errorf("text size %d not in [%d, %d]: %w", c.TextSize, MinTextSize, MaxTextSize, ErrOutOfRange)
	}
	// Written as a negated range check so NaN fails it.
	if !(c.Density >= MinDensity && c.Density <= MaxDensity) {
		return fmt.Errorf("density %.1f not in [%.0f, %.0f]: %w", c.Density, MinDensity, MaxDensity, ErrOutOfRange)
	}
	return nil
}

// Clone returns a copy that shares no slice storage with c.
func (c Config) Clone() Config {
	c.Watermarks = slices.Clone(c.Watermarks)
	return c
}

// Spacing maps a density percentage to the gap in pixels between tiles.
// Density 100 packs tiles edge to edge, density 0 leaves a 100px gap.
func Spacing(density float64) int {
	return int((100 - density) / 100 * 100)
}
