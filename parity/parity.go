// Package parity verifies that a ported inference implementation reproduces
// the reference implementation's outputs. The reference side runs the
// original ONNX model through ONNX Runtime and records a golden fixture; a
// candidate implementation's outputs are then compared against the fixture
// element-wise under a numeric tolerance, with every value required to be
// finite, and the output-channel order is checked positionally.
//
// Example:
//
//	predictor, closeFn, err := parity.NewReferencePredictor(modelPath, parity.QLKNN711())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer closeFn()
//
//	fixture, err := parity.Run(parity.Canonical(), predictor)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := parity.WriteGolden("golden.json", fixture); err != nil {
//	    log.Fatal(err)
//	}
package parity

import (
	"github.com/fusionml/qlknn-export/internal/config"
	"github.com/fusionml/qlknn-export/internal/parity"
	"github.com/fusionml/qlknn-export/internal/surrogate"
)

// DefaultTolerance is the element-wise absolute tolerance used when none is
// given: tight enough to catch real numeric divergence, loose enough to
// absorb float32 accumulation-order differences between runtimes.
const DefaultTolerance = 1e-5

// TestVector is a named input batch, one row per sample.
type TestVector = parity.TestVector

// PredictionResult maps output channel name to per-sample values.
type PredictionResult = parity.PredictionResult

// GoldenFixture maps test-vector name to reference outputs.
type GoldenFixture = parity.GoldenFixture

// Predictor is the contract over a reference implementation.
type Predictor = parity.Predictor

// ParityReport is the outcome of a fixture comparison.
type ParityReport = parity.ParityReport

// ChannelResult is one channel's comparison outcome.
type ChannelResult = parity.ChannelResult

// OrderReport is the outcome of an output-order check.
type OrderReport = parity.OrderReport

// OrderDiff is one positional order disagreement.
type OrderDiff = parity.OrderDiff

// Profile describes a surrogate model's channel-name contract.
type Profile = config.Profile

// QLKNN711 returns the default qlknn_7_11 model profile.
func QLKNN711() Profile { return config.QLKNN711() }

// Canonical returns the canonical qlknn_7_11 test vectors.
func Canonical() map[string]TestVector { return parity.Canonical() }

// Run drives a predictor over every test vector and builds a fixture.
func Run(vectors map[string]TestVector, p Predictor) (GoldenFixture, error) {
	return parity.Run(vectors, p)
}

// Compare checks candidate outputs against a golden fixture.
func Compare(fixture GoldenFixture, candidate map[string]PredictionResult, tolerance float64) ParityReport {
	return parity.Compare(fixture, candidate, tolerance)
}

// VerifyOrder compares a declared channel order against an assumed one.
func VerifyOrder(declared, assumed []string) OrderReport {
	return parity.VerifyOrder(declared, assumed)
}

// WriteGolden persists a fixture as JSON, atomically.
func WriteGolden(path string, fixture GoldenFixture) error {
	return parity.WriteGolden(path, fixture)
}

// ReadGolden loads a fixture, or a candidate result set in the same layout.
func ReadGolden(path string) (GoldenFixture, error) {
	return parity.ReadGolden(path)
}

// NewReferencePredictor opens the reference ONNX Runtime session over the
// model file and adapts it to the Predictor contract. The returned close
// function releases the session. Requires a cgo build with the onnxruntime
// shared library available.
func NewReferencePredictor(modelPath string, p Profile) (Predictor, func() error, error) {
	engine, closeFn, err := surrogate.NewReferenceEngine(modelPath, p)
	if err != nil {
		return nil, nil, err
	}
	return surrogate.NewAdapter(p, engine), closeFn, nil
}
