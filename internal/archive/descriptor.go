package archive

import (
	"encoding/json"
	"fmt"
	"os"
)

// PrecisionFloat32 is the canonical precision tag carried by every archive
// and descriptor this package writes.
const PrecisionFloat32 = "float32"

// LayerSpec is one layer record in an architecture descriptor.
type LayerSpec struct {
	Kind       string `json:"kind"`
	In         int    `json:"in"`
	Out        int    `json:"out"`
	Activation string `json:"activation,omitempty"`
}

// Descriptor is the architecture sidecar written next to a weight archive.
// It is the authoritative record of the model's channel order: a runtime
// that loads the archive must present outputs in exactly OutputNames order.
type Descriptor struct {
	ModelName   string      `json:"model_name"`
	InputNames  []string    `json:"input_names"`
	OutputNames []string    `json:"output_names"`
	Layers      []LayerSpec `json:"layers"`
	WeightNames []string    `json:"weight_names"`
	Precision   string      `json:"precision"`
}

// Validate checks the descriptor's structural invariants: channel-name
// counts must agree with the boundary layer widths.
func (d *Descriptor) Validate() error {
	if len(d.Layers) == 0 {
		return fmt.Errorf("descriptor %q: no layers", d.ModelName)
	}
	if len(d.InputNames) == 0 || len(d.OutputNames) == 0 {
		return fmt.Errorf("descriptor %q: missing channel names", d.ModelName)
	}
	if got, want := len(d.InputNames), d.Layers[0].In; got != want {
		return fmt.Errorf("descriptor %q: %d input names for first-layer width %d", d.ModelName, got, want)
	}
	last := d.Layers[len(d.Layers)-1]
	if got, want := len(d.OutputNames), last.Out; got != want {
		return fmt.Errorf("descriptor %q: %d output names for final-layer width %d", d.ModelName, got, want)
	}
	for i, l := range d.Layers[1:] {
		if l.In != d.Layers[i].Out {
			return fmt.Errorf("descriptor %q: layer %d input width %d does not chain from %d", d.ModelName, i+1, l.In, d.Layers[i].Out)
		}
	}
	if d.Precision != PrecisionFloat32 {
		return fmt.Errorf("descriptor %q: unexpected precision tag %q", d.ModelName, d.Precision)
	}
	return nil
}

// ReadDescriptor loads a descriptor sidecar from disk and validates it.
func ReadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: descriptor path is caller-provided by design
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse descriptor: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// marshal renders the descriptor as indented JSON, matching the sidecar
// layout downstream runtimes already parse.
func (d *Descriptor) marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal descriptor: %w", err)
	}
	return append(data, '\n'), nil
}
