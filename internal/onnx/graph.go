package onnx

// InputNames returns the graph's true input tensor names: declared inputs
// minus initializers. Older exporters list weights among the graph inputs.
func (g *Graph) InputNames() []string {
	inits := make(map[string]bool, len(g.Initializers))
	for i := range g.Initializers {
		inits[g.Initializers[i].Name] = true
	}
	var names []string
	for i := range g.Inputs {
		if !inits[g.Inputs[i].Name] {
			names = append(names, g.Inputs[i].Name)
		}
	}
	return names
}

// OutputNames returns the graph's output tensor names in declaration order.
// For the QLKNN surrogate family these are the flux channel names, so this
// order is the authoritative output-channel order.
func (g *Graph) OutputNames() []string {
	names := make([]string, len(g.Outputs))
	for i := range g.Outputs {
		names[i] = g.Outputs[i].Name
	}
	return names
}

// OpsetVersion returns the default-domain opset version, or 0 if absent.
func (m *Model) OpsetVersion() int64 {
	for _, op := range m.Opsets {
		if op.Domain == "" || op.Domain == "ai.onnx" {
			return op.Version
		}
	}
	return 0
}
