//go:build !cgo

package surrogate

import (
	"errors"

	"github.com/fusionml/qlknn-export/internal/config"
)

// ErrRuntimeUnavailable is returned when the binary was built without cgo
// and no reference runtime can be loaded.
var ErrRuntimeUnavailable = errors.New("reference runtime requires a cgo build with onnxruntime")

// NewReferenceEngine is unavailable without cgo.
func NewReferenceEngine(string, config.Profile) (Engine, func() error, error) {
	return nil, nil, ErrRuntimeUnavailable
}
