package session

import (
	"errors"
	"fmt"
)

// ErrUnknownCommand is returned by Dispatch for a nil command.
var ErrUnknownCommand = errors.New("unknown command")

// WriteError reports a save target that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
