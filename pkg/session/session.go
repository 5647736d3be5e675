// Package session holds one user's compositor state and dispatches user actions
// against it, independent of any widget toolkit.
//
// A session is either BLANK (nothing generated yet, or just reset) or GENERATED.
// Generate and AddWatermark enter GENERATED; Reset returns to BLANK; Save and
// Preview never change state. A Session is not safe for concurrent use.
package session

import (
	"fmt"
	"image"
	"log/slog"
	"slices"

	"github.com/xob0t/textmark/pkg/compositor"
	"github.com/xob0t/textmark/pkg/generator"
)

// State is the session's position in its two-state machine.
type State int

const (
	StateBlank State = iota
	StateGenerated
)

func (s State) String() string {
	switch s {
	case StateBlank:
		return "blank"
	case StateGenerated:
		return "generated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session owns the watermark list and the last generated image.
type Session struct {
	fontPath   string
	fonts      *compositor.FontManager
	outputPath string
	logger     *slog.Logger

	inputs     Inputs
	watermarks []string
	image      *image.RGBA
	blank      *image.RGBA
}

// New creates a session in the BLANK state.
func New(opts ...Option) *Session {
	s := &Session{
		fontPath:   compositor.DefaultFontPath,
		outputPath: DefaultOutputPath,
		logger:     slog.New(slog.DiscardHandler),
		inputs:     DefaultInputs(),
		blank:      compositor.BlankCanvas(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch runs one command to completion.
func (s *Session) Dispatch(cmd Command) (Result, error) {
	if cmd == nil {
		return Result{State: s.State()}, ErrUnknownCommand
	}

	log := s.logger.With(slog.String("command", cmd.commandName()))
	log.Debug("dispatch", slog.String("state", s.State().String()))

	var (
		res Result
		err error
	)
	switch c := cmd.(type) {
	case Generate:
		res, err = s.Generate(c.Inputs)
	case AddWatermark:
		res, err = s.AddWatermark(c.Watermark, c.Inputs)
	case Reset:
		res = s.Reset()
	case Save:
		res, err = s.Save(c.Path)
	case Preview:
		res, err = s.Preview(c.Width, c.Height)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
		res = Result{State: s.State()}
	}

	if err != nil {
		log.Error("command failed", slog.Any("err", err))
		return res, err
	}
	log.Debug("done", slog.String("state", res.State.String()))
	return res, nil
}

// State reports BLANK or GENERATED.
func (s *Session) State() State {
	if s.image == nil {
		return StateBlank
	}
	return StateGenerated
}

// Watermarks returns a copy of the accumulated watermark list.
func (s *Session) Watermarks() []string {
	return slices.Clone(s.watermarks)
}

// Inputs returns the inputs of the last generation (primary text is cleared by Reset).
func (s *Session) Inputs() Inputs {
	return s.inputs
}

// Image returns the generated image, or nil in the BLANK state.
func (s *Session) Image() *image.RGBA {
	return s.image
}

// SetFonts replaces the font used by later generations. The current image is kept.
func (s *Session) SetFonts(fm *compositor.FontManager) {
	s.fonts = fm
}

// ── Actions ──

// Generate renders in with the current watermark list and keeps the result.
// On failure the previous image and state are kept.
func (s *Session) Generate(in Inputs) (Result, error) {
	renderer, err := s.renderer()
	if err != nil {
		return Result{State: s.State()}, err
	}

	cfg := compositor.Config{
		Text:       in.Text,
		TextSize:   in.TextSize,
		Watermarks: s.watermarks,
		Density:    in.Density,
		Seed:       in.Seed,
	}.Clone()

	img, err := renderer.RenderSeeded(cfg)
	if err != nil {
		return Result{State: s.State()}, fmt.Errorf("generate: %w", err)
	}

	s.inputs = in
	s.image = img
	s.logger.Info("image generated",
		slog.Int("watermarks", len(cfg.Watermarks)),
		slog.Int("text_size", in.TextSize),
		slog.Float64("density", in.Density),
		slog.Uint64("seed", in.Seed))
	return Result{State: StateGenerated, Image: img}, nil
}

// AddWatermark appends text to the watermark list and regenerates with in.
// Empty text changes nothing.
func (s *Session) AddWatermark(text string, in Inputs) (Result, error) {
	if text == "" {
		return Result{State: s.State(), Image: s.current()}, nil
	}
	s.watermarks = append(s.watermarks, text)
	return s.Generate(in)
}

// Reset discards the generated image, the watermark list and the primary text,
// and returns the blank canvas. Text size and density are kept.
func (s *Session) Reset() Result {
	s.image = nil
	s.watermarks = nil
	s.inputs.Text = ""
	s.logger.Info("session reset")
	return Result{State: StateBlank, Image: s.blank}
}

// Save writes the generated image to path (or the default output path).
// Before any generation it writes nothing and returns an empty Result.Path.
func (s *Session) Save(path string) (Result, error) {
	if s.image == nil {
		s.logger.Debug("save skipped, nothing generated")
		return Result{State: StateBlank}, nil
	}
	if path == "" {
		path = s.outputPath
	}

	if err := generator.Generate(path, generator.Config{Image: s.image}); err != nil {
		return Result{State: StateGenerated}, &WriteError{Path: path, Err: err}
	}
	s.logger.Info("image saved", slog.String("path", path))
	return Result{State: StateGenerated, Path: path}, nil
}

// Preview returns the current image scaled to width×height.
func (s *Session) Preview(width, height int) (Result, error) {
	scaled, err := compositor.Preview(s.current(), width, height)
	if err != nil {
		return Result{State: s.State()}, err
	}
	return Result{State: s.State(), Image: scaled}, nil
}

// current is the image a viewport shows: the generated one, else the blank canvas.
func (s *Session) current() *image.RGBA {
	if s.image != nil {
		return s.image
	}
	return s.blank
}

// renderer loads the font file on every call unless WithFonts injected one.
func (s *Session) renderer() (*compositor.Renderer, error) {
	var r *compositor.Renderer
	if s.fonts != nil {
		r = compositor.NewRendererWithFonts(s.fonts)
		s.logger.Debug("using loaded font", slog.String("font", s.fonts.Name()))
	} else {
		var err error
		r, err = compositor.NewRenderer(s.fontPath)
		if err != nil {
			return nil, err
		}
	}
	r.SetLogger(s.logger.With(slog.String("component", "compositor")))
	return r, nil
}
