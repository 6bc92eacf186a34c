// Package parity checks that an independently built inference implementation
// reproduces the reference implementation's outputs: it generates golden
// fixtures from canonical input batches, compares candidate outputs against
// them under a numeric tolerance and a finiteness invariant, and verifies the
// output-channel ordering contract.
package parity

// TestVector is a named input batch: one row per sample, columns aligned to
// the model's input channel order.
type TestVector [][]float32

// PredictionResult maps each output channel name to its per-sample values.
// Every slice has the originating TestVector's sample count.
type PredictionResult map[string][]float32

// GoldenFixture maps test-vector name to the reference implementation's
// outputs for that vector. Once written it is the sole source of truth for a
// candidate implementation's own test suite.
type GoldenFixture map[string]PredictionResult

// Predictor is the narrow contract over a reference implementation: given a
// batch with columns in input-name order, return per-channel outputs keyed
// exactly by the output names. Implementations must be deterministic.
type Predictor interface {
	Predict(tv TestVector) (PredictionResult, error)
}
