package session

import (
	"log/slog"

	"github.com/xob0t/textmark/pkg/compositor"
)

// DefaultOutputPath is where Save writes when no path is given.
const DefaultOutputPath = "generated_image.png"

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger for command tracing. Nil keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFontPath sets the font file loaded at every generation.
func WithFontPath(path string) Option {
	return func(s *Session) {
		s.fontPath = path
	}
}

// WithFonts uses an already loaded font instead of reading a file per generation.
func WithFonts(fm *compositor.FontManager) Option {
	return func(s *Session) {
		s.fonts = fm
	}
}

// WithOutputPath sets the default Save target.
func WithOutputPath(path string) Option {
	return func(s *Session) {
		s.outputPath = path
	}
}
