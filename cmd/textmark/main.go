// textmark — Text image generator with tiled watermarks.
//
// Usage:
//
//	textmark [render] -text <text> [-watermark <text>]... [options]
//	textmark serve [-port 8080]
//	textmark ui
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/xob0t/textmark/clients/server"
	"github.com/xob0t/textmark/pkg/compositor"
	"github.com/xob0t/textmark/pkg/session"
)

func main() {
	args := os.Args[1:]
	cmd := "render"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "render":
		err = runRender(args)
	case "serve":
		err = runServe(args)
	case "ui":
		err = runUI(args)
	case "help":
		printUsage()
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		fatal(err)
	}
}

// stringList collects a repeatable string flag in order.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)

	var (
		text       string
		size       int
		density    float64
		seed       uint64
		fontPath   string
		output     string
		verbose    bool
		watermarks stringList
	)

	fs.StringVar(&text, "text", "", "Primary text (\\n starts a new line)")
	fs.IntVar(&size, "size", compositor.DefaultTextSize, "Primary text size, 10-100")
	fs.Var(&watermarks, "watermark", "Watermark text (repeatable, drawn in order)")
	fs.Float64Var(&density, "density", compositor.DefaultDensity, "Watermark density percentage, 0-100")
	fs.Uint64Var(&seed, "seed", 0, "Seed for tile rotation and colour (0 picks one)")
	fs.StringVar(&fontPath, "font", compositor.DefaultFontPath, "Font file (.ttf, .otf or .ttc)")
	fs.StringVar(&output, "o", session.DefaultOutputPath, "Output file (.png, .bmp or .tiff)")
	fs.BoolVar(&verbose, "v", false, "Debug logging")

	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := newLogger(verbose)
	if seed == 0 {
		seed = rand.Uint64()
	}

	s := session.New(
		session.WithFontPath(fontPath),
		session.WithOutputPath(output),
		session.WithLogger(logger.With(slog.String("component", "session"))),
	)

	in := session.Inputs{
		Text:     strings.ReplaceAll(text, `\n`, "\n"),
		TextSize: size,
		Density:  density,
		Seed:     seed,
	}

	// Each watermark regenerates, as it does interactively.
	if _, err := s.Dispatch(session.Generate{Inputs: in}); err != nil {
		return err
	}
	for _, wm := range watermarks {
		if _, err := s.Dispatch(session.AddWatermark{Inputs: in, Watermark: wm}); err != nil {
			return err
		}
	}

	res, err := s.Dispatch(session.Save{})
	if err != nil {
		return err
	}
	fmt.Printf("Done: %s (seed %d)\n", res.Path, seed)
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)

	var (
		port     string
		fontPath string
		output   string
		noOpen   bool
		verbose  bool
	)
	fs.StringVar(&port, "port", "8080", "Port to listen on (localhost only)")
	fs.StringVar(&fontPath, "font", compositor.DefaultFontPath, "Default font file")
	fs.StringVar(&output, "o", session.DefaultOutputPath, "File every session saves to")
	fs.BoolVar(&noOpen, "no-open", false, "Do not open a browser")
	fs.BoolVar(&verbose, "v", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return server.RunServe(server.Options{
		Addr:        "localhost:" + port,
		FontPath:    fontPath,
		OutputPath:  output,
		OpenBrowser: !noOpen,
		Logger:      newLogger(verbose),
	})
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`textmark — Text image generator with tiled watermarks

USAGE:
    textmark [render] -text <text> [-watermark <text>]... [options]
    textmark serve [-port 8080]
    textmark ui

RENDER:
    -text <text>           Primary text, centred (\n starts a new line)
    -size <pt>             Primary text size, 10-100 (default: 30)
    -watermark <text>      Watermark text; repeat to stack layers
    -density <pct>         Watermark density, 0-100 (default: 10)
    -seed <n>              Tile rotation/colour seed (default: random)
    -font <path>           Font file (default: simsun.ttc)
    -o <path>              Output file .png/.bmp/.tiff (default: generated_image.png)
    -v                     Debug logging

SERVE:
    textmark serve [-port 8080] [-font path] [-o path] [-no-open]
                           Local HTTP API over editing sessions

UI:
    textmark ui [-font path]
                           Desktop window (requires a build with -tags fyne)

EXAMPLES:
    textmark -text "Hello" -size 30
    textmark -text "Quarterly report" -watermark DRAFT -density 10 -seed 7
    textmark render -text "A\nB" -watermark A -watermark B -o out.tiff
`)
}
