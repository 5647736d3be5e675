//go:build fyne

// Package desktop is the textmark Fyne window: controls on the left, a
// stretch-to-fit preview of the current image on the right.
package desktop

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math/rand/v2"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/xob0t/textmark/pkg/compositor"
	"github.com/xob0t/textmark/pkg/session"
)

// Run opens the window and blocks until it is closed.
func Run(fontPath string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	l := logger.With(slog.String("component", "ui"))
	l.Info("starting UI", slog.String("font", fontPath))

	sess := newSyncSession(session.New(
		session.WithFontPath(fontPath),
		session.WithLogger(logger.With(slog.String("component", "session"))),
	))

	fyneApp := app.New()
	w := fyneApp.NewWindow("Text Image Generator")
	w.Resize(fyne.NewSize(900, 820))

	text := widget.NewMultiLineEntry()
	text.SetPlaceHolder("Primary text")
	text.SetMinRowsVisible(5)

	watermark := widget.NewEntry()
	watermark.SetPlaceHolder("Watermark text")

	size, sizeLabel := newSlider("Text size", compositor.MinTextSize, compositor.MaxTextSize, compositor.DefaultTextSize)
	density, densityLabel := newSlider("Watermark density", compositor.MinDensity, compositor.MaxDensity, compositor.DefaultDensity)

	status := widget.NewLabel("Ready")
	view := newPreview(sess, l)

	inputs := func() session.Inputs {
		return session.Inputs{
			Text:     text.Text,
			TextSize: int(size.Value),
			Density:  density.Value,
			Seed:     rand.Uint64(),
		}
	}

	// run dispatches cmd and shows any failure; the session keeps its previous state.
	// The lock is released before the preview refresh dispatches again.
	run := func(cmd session.Command) (session.Result, bool) {
		res, err := sess.Dispatch(cmd)
		if err != nil {
			l.Error("command failed", slog.Any("err", err))
			dialog.ShowError(describe(err), w)
			return res, false
		}
		view.Refresh()
		return res, true
	}

	generateBtn := widget.NewButton("Generate", func() {
		if _, ok := run(session.Generate{Inputs: inputs()}); ok {
			status.SetText("Generated")
		}
	})
	addBtn := widget.NewButton("Add Watermark", func() {
		if watermark.Text == "" {
			return
		}
		if _, ok := run(session.AddWatermark{Inputs: inputs(), Watermark: watermark.Text}); ok {
			status.SetText(fmt.Sprintf("%d watermark(s)", len(sess.Watermarks())))
			watermark.SetText("")
		}
	})
	saveBtn := widget.NewButton("Save", func() {
		res, ok := run(session.Save{})
		if !ok {
			return
		}
		if res.Path == "" {
			status.SetText("Nothing to save")
			return
		}
		status.SetText("Saved " + res.Path)
	})
	resetBtn := widget.NewButton("Reset", func() {
		if _, ok := run(session.Reset{}); ok {
			text.SetText("")
			watermark.SetText("")
			status.SetText("Ready")
		}
	})

	controls := container.NewVBox(
		widget.NewLabel("Text"), text,
		sizeLabel, size,
		widget.NewSeparator(),
		widget.NewLabel("Watermark"), watermark,
		densityLabel, density,
		widget.NewSeparator(),
		container.NewGridWithColumns(2, generateBtn, addBtn, saveBtn, resetBtn),
	)

	left := container.NewPadded(container.NewVScroll(controls))
	content := container.NewBorder(nil, status, nil, nil,
		container.NewHSplit(left, view))
	w.SetContent(content)

	w.ShowAndRun()
	return nil
}

// newSlider returns an integer-stepped slider and a label that tracks its value.
func newSlider(name string, lo, hi, value float64) (*widget.Slider, *widget.Label) {
	label := widget.NewLabel("")
	s := widget.NewSlider(lo, hi)
	s.Step = 1
	s.OnChanged = func(v float64) {
		label.SetText(fmt.Sprintf("%s: %.0f", name, v))
	}
	s.SetValue(value)
	label.SetText(fmt.Sprintf("%s: %.0f", name, value))
	return s, label
}

// describe turns domain errors into dialog text.
func describe(err error) error {
	var (
		re *compositor.ResourceError
		we *session.WriteError
	)
	switch {
	case errors.As(err, &re):
		return fmt.Errorf("cannot load font %s: %w", re.Path, re.Err)
	case errors.As(err, &we):
		return fmt.Errorf("cannot save %s: %w", we.Path, we.Err)
	default:
		return err
	}
}

// ── Preview ──

// Preview shows the session's current image stretched to the widget's size.
// It re-scales from the full-size image on every layout.
type Preview struct {
	widget.BaseWidget
	sess *syncSession
	log  *slog.Logger
}

// newPreview creates a preview bound to sess.
func newPreview(sess *syncSession, log *slog.Logger) *Preview {
	p := &Preview{sess: sess, log: log}
	p.ExtendBaseWidget(p)
	return p
}

// CreateRenderer builds the background and image objects.
func (p *Preview) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.White)
	img := canvas.NewImageFromImage(compositor.BlankCanvas())
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScalePixels
	return &previewRenderer{p: p, bg: bg, img: img, objects: []fyne.CanvasObject{bg, img}}
}

// MinSize keeps a small visible preview when the window is narrow.
func (p *Preview) MinSize() fyne.Size {
	return fyne.NewSize(compositor.CanvasWidth/4, compositor.CanvasHeight/4)
}

type previewRenderer struct {
	p       *Preview
	bg      *canvas.Rectangle
	img     *canvas.Image
	objects []fyne.CanvasObject
}

func (r *previewRenderer) Destroy()                     {}
func (r *previewRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *previewRenderer) MinSize() fyne.Size           { return r.p.MinSize() }
func (r *previewRenderer) Refresh()                     { r.Layout(r.p.Size()); canvas.Refresh(r.p) }

func (r *previewRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	r.img.Resize(size)
	r.img.Move(fyne.NewPos(0, 0))

	w, h := int(size.Width), int(size.Height)
	if w <= 0 || h <= 0 {
		return
	}

	res, err := r.p.sess.Dispatch(session.Preview{Width: w, Height: h})
	if err != nil {
		r.p.log.Debug("preview skipped", slog.Any("err", err))
		return
	}
	r.img.Image = res.Image
	r.img.Refresh()
}
