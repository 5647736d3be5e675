// errors.go — Resource loading failures.
package compositor

import "fmt"

// ResourceError reports a font file that could not be read or parsed.
// It aborts the render that needed it.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("load font %s: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
