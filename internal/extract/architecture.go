package extract

import (
	"fmt"

	"github.com/fusionml/qlknn-export/internal/archive"
	"github.com/fusionml/qlknn-export/internal/config"
	"github.com/fusionml/qlknn-export/internal/onnx"
	"github.com/fusionml/qlknn-export/internal/tensor"
)

// activationNames maps ONNX activation op types to descriptor activation
// tags. Anything else that follows a Linear layer passes through unchanged.
var activationNames = map[string]string{
	"Relu":    "ReLU",
	"Sigmoid": "Sigmoid",
	"Tanh":    "Tanh",
	"Elu":     "ELU",
	"Softmax": "Softmax",
}

// Architecture derives the layer list of an MLP surrogate from the graph's
// node sequence and binds the caller-supplied channel names to it. The model
// graph itself carries no human-readable channel names; the profile is the
// out-of-band source for those.
//
// Gemm and MatMul nodes become Linear layer records. Layer widths are chained
// from the input width through each weight's 2-D shape, which makes the
// derivation independent of the exporter's weight transposition convention.
func Architecture(g *onnx.Graph, tensors []tensor.Named, p config.Profile) (*archive.Descriptor, error) {
	byName := make(map[string]*tensor.Named, len(tensors))
	weightNames := make([]string, 0, len(tensors))
	for i := range tensors {
		byName[tensors[i].Name] = &tensors[i]
		weightNames = append(weightNames, tensors[i].Name)
	}

	width := len(p.InputNames)
	var layers []archive.LayerSpec
	for i := range g.Nodes {
		node := &g.Nodes[i]
		switch node.OpType {
		case "Gemm", "MatMul":
			w := linearWeight(node, byName)
			if w == nil {
				return nil, fmt.Errorf("node %q (%s): no rank-2 weight initializer among inputs %v", node.Name, node.OpType, node.Inputs)
			}
			out, err := nextWidth(w, width)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", node.Name, err)
			}
			layers = append(layers, archive.LayerSpec{Kind: "Linear", In: width, Out: out})
			width = out
		default:
			if act, ok := activationNames[node.OpType]; ok {
				if len(layers) == 0 {
					return nil, fmt.Errorf("node %q: activation %s before any Linear layer", node.Name, node.OpType)
				}
				layers[len(layers)-1].Activation = act
			}
			// Bias Adds, Identity and shape plumbing carry no layer
			// structure of their own.
		}
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("graph %q contains no Gemm or MatMul nodes", g.Name)
	}

	desc := &archive.Descriptor{
		ModelName:   p.Name,
		InputNames:  p.InputNames,
		OutputNames: p.OutputNames,
		Layers:      layers,
		WeightNames: weightNames,
		Precision:   archive.PrecisionFloat32,
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

// linearWeight picks the weight tensor of a Gemm/MatMul node: the first node
// input that names a rank-2 initializer.
func linearWeight(node *onnx.Node, byName map[string]*tensor.Named) *tensor.Named {
	for _, in := range node.Inputs {
		if t, ok := byName[in]; ok && len(t.Shape) == 2 {
			return t
		}
	}
	return nil
}

// nextWidth resolves the output width of a Linear layer from its 2-D weight
// shape, given the incoming width.
func nextWidth(w *tensor.Named, in int) (int, error) {
	switch {
	case w.Shape[1] == in:
		return w.Shape[0], nil
	case w.Shape[0] == in:
		return w.Shape[1], nil
	default:
		return 0, fmt.Errorf("weight %q shape %v does not accept input width %d", w.Name, w.Shape, in)
	}
}
