// Package surrogate adapts a reference inference runtime to the harness's
// prediction contract. The runtime itself is an external collaborator behind
// the narrow Engine interface; this package never evaluates the network.
package surrogate

import (
	"fmt"

	"github.com/fusionml/qlknn-export/internal/config"
	"github.com/fusionml/qlknn-export/internal/parity"
)

// Engine is the narrow contract over a reference inference runtime: evaluate
// a batch whose columns follow the profile's input order and return one row
// per sample whose columns follow the profile's output order.
type Engine interface {
	Forward(batch [][]float32) ([][]float32, error)
}

// ShapeError reports an input sample whose feature count does not match the
// model's input channel list.
type ShapeError struct {
	Sample int
	Got    int
	Want   int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("sample %d has %d features, model takes %d", e.Sample, e.Got, e.Want)
}

// Adapter exposes an Engine under the harness's named-channel contract. It
// performs no reordering: input columns must already follow the profile's
// input order, and output keys are exactly the profile's output names. The
// adapter is a pure function of (engine, input batch); the reference model
// performs no learning or internal mutation, so repeated calls with the same
// batch yield the same result.
type Adapter struct {
	profile config.Profile
	engine  Engine
}

// NewAdapter wraps an engine with the given model profile.
func NewAdapter(p config.Profile, e Engine) *Adapter {
	return &Adapter{profile: p, engine: e}
}

// Predict implements parity.Predictor.
func (a *Adapter) Predict(tv parity.TestVector) (parity.PredictionResult, error) {
	want := len(a.profile.InputNames)
	for i, row := range tv {
		if len(row) != want {
			return nil, &ShapeError{Sample: i, Got: len(row), Want: want}
		}
	}

	rows, err := a.engine.Forward(tv)
	if err != nil {
		return nil, fmt.Errorf("reference engine: %w", err)
	}
	if len(rows) != len(tv) {
		return nil, fmt.Errorf("reference engine returned %d rows for %d samples", len(rows), len(tv))
	}

	out := make(parity.PredictionResult, len(a.profile.OutputNames))
	for c, name := range a.profile.OutputNames {
		col := make([]float32, len(rows))
		for r, row := range rows {
			if len(row) != len(a.profile.OutputNames) {
				return nil, fmt.Errorf("reference engine row %d has %d channels, model declares %d", r, len(row), len(a.profile.OutputNames))
			}
			col[r] = row[c]
		}
		out[name] = col
	}
	return out, nil
}
