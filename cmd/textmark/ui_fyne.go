//go:build fyne

package main

import (
	"flag"

	"github.com/xob0t/textmark/clients/desktop"
	"github.com/xob0t/textmark/pkg/compositor"
)

func runUI(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ExitOnError)
	var (
		fontPath string
		verbose  bool
	)
	fs.StringVar(&fontPath, "font", compositor.DefaultFontPath, "Font file")
	fs.BoolVar(&verbose, "v", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return desktop.Run(fontPath, newLogger(verbose))
}
