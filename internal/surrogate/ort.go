//go:build cgo

package surrogate

import (
	"fmt"
	"os"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/fusionml/qlknn-export/internal/config"
	"github.com/fusionml/qlknn-export/internal/onnx"
)

// ortEngine evaluates the reference ONNX model through ONNX Runtime. This is
// the same runtime the reference Python implementation uses, which makes its
// outputs the golden side of every parity comparison.
type ortEngine struct {
	session     *ort.DynamicAdvancedSession
	inputName   string
	inWidth     int
	outputNames []string
}

// NewReferenceEngine opens an ONNX Runtime session over the model file. The
// graph's single input tensor name is read from the model itself; output
// tensor names are the profile's output channels, which for this model
// family are the graph's declared outputs.
//
// Set ONNXRUNTIME_SHARED_LIBRARY_PATH to point at the onnxruntime shared
// library if it is not on the default search path.
func NewReferenceEngine(modelPath string, p config.Profile) (Engine, func() error, error) {
	if !ort.IsInitialized() {
		if lib := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	model, err := onnx.ParseFile(modelPath)
	if err != nil {
		return nil, nil, err
	}
	if model.Graph == nil {
		return nil, nil, fmt.Errorf("model %s has no graph", modelPath)
	}
	inputs := model.Graph.InputNames()
	if len(inputs) != 1 {
		return nil, nil, fmt.Errorf("model %s has %d inputs, expected a single batch tensor", modelPath, len(inputs))
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputs, p.OutputNames, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create onnxruntime session: %w", err)
	}

	e := &ortEngine{
		session:     session,
		inputName:   inputs[0],
		inWidth:     len(p.InputNames),
		outputNames: p.OutputNames,
	}
	return e, e.close, nil
}

func (e *ortEngine) Forward(batch [][]float32) ([][]float32, error) {
	n := len(batch)
	flat := make([]float32, 0, n*e.inWidth)
	for _, row := range batch {
		flat = append(flat, row...)
	}

	input, err := ort.NewTensor(ort.NewShape(int64(n), int64(e.inWidth)), flat)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer input.Destroy() //nolint:errcheck // released with the call

	outputs := make([]ort.Value, len(e.outputNames))
	if err := e.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}
	defer func() {
		for _, v := range outputs {
			if v != nil {
				v.Destroy() //nolint:errcheck // released with the call
			}
		}
	}()

	rows := make([][]float32, n)
	for r := range rows {
		rows[r] = make([]float32, len(e.outputNames))
	}
	for c, name := range e.outputNames {
		t, ok := outputs[c].(*ort.Tensor[float32])
		if !ok {
			return nil, fmt.Errorf("output %q is not a float32 tensor", name)
		}
		data := t.GetData()
		if len(data) != n {
			return nil, fmt.Errorf("output %q has %d values for %d samples", name, len(data), n)
		}
		for r := range data {
			rows[r][c] = data[r]
		}
	}
	return rows, nil
}

func (e *ortEngine) close() error {
	return e.session.Destroy()
}
