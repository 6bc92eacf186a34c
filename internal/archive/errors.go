package archive

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNoTensors       = errors.New("no tensors to archive")
	ErrDuplicateTensor = errors.New("duplicate tensor name in archive")
	ErrInvalidFormat   = errors.New("invalid archive format")
)

// WriteError reports a storage fault while writing an archive artifact.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
