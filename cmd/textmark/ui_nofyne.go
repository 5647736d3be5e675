//go:build !fyne

package main

import "errors"

func runUI([]string) error {
	return errors.New("desktop UI not included in this build; rebuild with -tags fyne")
}
