// commands.go — User actions as values, one type per action.
package session

import (
	"image"

	"github.com/xob0t/textmark/pkg/compositor"
)

// Inputs are the values a front end reads from its controls at the moment of an action.
type Inputs struct {
	Text     string  // primary text
	TextSize int     // 10–100
	Density  float64 // 0–100
	Seed     uint64  // tile rotation and colour seed
}

// DefaultInputs mirrors the initial control values of the desktop shell.
func DefaultInputs() Inputs {
	cfg := compositor.DefaultConfig()
	return Inputs{
		TextSize: cfg.TextSize,
		Density:  cfg.Density,
	}
}

// Command is one user action. Dispatch accepts exactly the types in this file.
type Command interface {
	commandName() string
}

// Generate renders the primary text and every accumulated watermark.
type Generate struct {
	Inputs
}

// AddWatermark appends Watermark to the list and regenerates.
// An empty Watermark is ignored and nothing is regenerated.
type AddWatermark struct {
	Inputs
	Watermark string
}

// Reset discards the generated image and the watermark list.
type Reset struct{}

// Save writes the generated image to Path, or to the session's default output
// path when Path is empty. It does nothing before the first generation.
type Save struct {
	Path string
}

// Preview scales the current image (or the blank canvas) to a viewport.
type Preview struct {
	Width, Height int
}

func (Generate) commandName() string     { return "generate" }
func (AddWatermark) commandName() string { return "add-watermark" }
func (Reset) commandName() string        { return "reset" }
func (Save) commandName() string         { return "save" }
func (Preview) commandName() string      { return "preview" }

// Result reports what a command did.
type Result struct {
	State State       // state after the command
	Image image.Image // rendered, blank, or scaled image; nil for Save
	Path  string      // file written by Save; empty when Save was a no-op
}
