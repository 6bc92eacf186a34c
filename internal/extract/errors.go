package extract

import (
	"errors"
	"fmt"
)

// Errors reported by the extraction pipeline. These are structural failures:
// the conversion run cannot continue past them.
var (
	ErrNoInitializers = errors.New("model graph has no initializers")
	ErrDuplicateName  = errors.New("duplicate tensor name")
)

// UnsupportedDTypeError reports a source element type with no defined cast to
// float32.
type UnsupportedDTypeError struct {
	Tensor string
	DType  string
}

func (e *UnsupportedDTypeError) Error() string {
	return fmt.Sprintf("tensor %q: no float32 cast for source dtype %s", e.Tensor, e.DType)
}
