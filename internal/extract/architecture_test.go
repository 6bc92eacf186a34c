package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionml/qlknn-export/internal/config"
	"github.com/fusionml/qlknn-export/internal/onnx"
	"github.com/fusionml/qlknn-export/internal/tensor"
)

// qlknnGraph builds the node/tensor skeleton of the qlknn_7_11 MLP: six Gemm
// layers with ReLU between all but the last.
func qlknnGraph() (*onnx.Graph, []tensor.Named) {
	widths := []int{10, 133, 133, 133, 133, 133, 8}
	g := &onnx.Graph{Name: "qlknn"}
	var tensors []tensor.Named

	prev := "input"
	for i := 0; i < 6; i++ {
		w := tensor.Named{
			Name:  names(i, "weight"),
			Shape: []int{widths[i+1], widths[i]}, // [out, in], exporter convention
			Data:  make([]float32, widths[i+1]*widths[i]),
		}
		b := tensor.Named{Name: names(i, "bias"), Shape: []int{widths[i+1]}, Data: make([]float32, widths[i+1])}
		tensors = append(tensors, w, b)

		out := names(i, "gemm")
		g.Nodes = append(g.Nodes, onnx.Node{
			OpType: "Gemm", Inputs: []string{prev, w.Name, b.Name}, Outputs: []string{out},
		})
		prev = out
		if i < 5 {
			act := names(i, "relu")
			g.Nodes = append(g.Nodes, onnx.Node{OpType: "Relu", Inputs: []string{out}, Outputs: []string{act}})
			prev = act
		}
	}
	return g, tensors
}

func names(layer int, kind string) string {
	return "layers." + string(rune('0'+layer)) + "." + kind
}

func TestArchitectureQLKNN(t *testing.T) {
	g, tensors := qlknnGraph()
	desc, err := Architecture(g, tensors, config.QLKNN711())
	require.NoError(t, err)

	require.Len(t, desc.Layers, 6)
	assert.Equal(t, 10, desc.Layers[0].In)
	assert.Equal(t, 133, desc.Layers[0].Out)
	assert.Equal(t, "ReLU", desc.Layers[0].Activation)
	assert.Equal(t, 8, desc.Layers[5].Out)
	assert.Empty(t, desc.Layers[5].Activation, "final layer has no activation")

	assert.Equal(t, "qlknn_7_11", desc.ModelName)
	assert.Len(t, desc.WeightNames, 12)
	assert.Equal(t, "float32", desc.Precision)
}

func TestArchitectureTransposedWeights(t *testing.T) {
	// [in, out] weight layout must chain the same widths.
	g := &onnx.Graph{Nodes: []onnx.Node{
		{OpType: "MatMul", Inputs: []string{"input", "w0"}, Outputs: []string{"h"}},
		{OpType: "Relu", Inputs: []string{"h"}, Outputs: []string{"a"}},
		{OpType: "MatMul", Inputs: []string{"a", "w1"}, Outputs: []string{"out"}},
	}}
	tensors := []tensor.Named{
		{Name: "w0", Shape: []int{2, 5}, Data: make([]float32, 10)},
		{Name: "w1", Shape: []int{5, 3}, Data: make([]float32, 15)},
	}
	p := config.Profile{
		Name:        "mini",
		InputNames:  []string{"a", "b"},
		OutputNames: []string{"x", "y", "z"},
	}

	desc, err := Architecture(g, tensors, p)
	require.NoError(t, err)
	assert.Equal(t, 5, desc.Layers[0].Out)
	assert.Equal(t, 3, desc.Layers[1].Out)
}

func TestArchitectureWidthMismatch(t *testing.T) {
	g := &onnx.Graph{Nodes: []onnx.Node{
		{OpType: "Gemm", Inputs: []string{"input", "w0"}, Outputs: []string{"out"}},
	}}
	tensors := []tensor.Named{{Name: "w0", Shape: []int{4, 7}, Data: make([]float32, 28)}}
	p := config.Profile{Name: "m", InputNames: []string{"a", "b"}, OutputNames: []string{"x"}}

	_, err := Architecture(g, tensors, p)
	assert.Error(t, err)
}

func TestArchitectureOutputCountMismatch(t *testing.T) {
	g := &onnx.Graph{Nodes: []onnx.Node{
		{OpType: "Gemm", Inputs: []string{"input", "w0"}, Outputs: []string{"out"}},
	}}
	tensors := []tensor.Named{{Name: "w0", Shape: []int{3, 2}, Data: make([]float32, 6)}}
	p := config.Profile{Name: "m", InputNames: []string{"a", "b"}, OutputNames: []string{"x"}}

	// Final width 3 but only one output name: descriptor invariant fails.
	_, err := Architecture(g, tensors, p)
	assert.Error(t, err)
}

func TestArchitectureNoLinearNodes(t *testing.T) {
	g := &onnx.Graph{Nodes: []onnx.Node{{OpType: "Identity", Inputs: []string{"input"}, Outputs: []string{"out"}}}}
	_, err := Architecture(g, nil, config.QLKNN711())
	assert.Error(t, err)
}

func TestArchitectureActivationBeforeLinear(t *testing.T) {
	g := &onnx.Graph{Nodes: []onnx.Node{{OpType: "Relu", Inputs: []string{"input"}, Outputs: []string{"out"}}}}
	_, err := Architecture(g, nil, config.QLKNN711())
	assert.Error(t, err)
}
