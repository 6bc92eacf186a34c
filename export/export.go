// Package export converts an ONNX surrogate model into portable weight
// archives: a safetensors file, an npz container, and a JSON architecture
// descriptor sidecar, all in float32.
//
// Example:
//
//	p := export.QLKNN711()
//	manifest, err := export.Convert(p.ModelPath, "out", p.Name, p)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(manifest.SafeTensorsPath)
package export

import (
	"fmt"

	"github.com/fusionml/qlknn-export/internal/archive"
	"github.com/fusionml/qlknn-export/internal/config"
	"github.com/fusionml/qlknn-export/internal/extract"
	"github.com/fusionml/qlknn-export/internal/onnx"
	"github.com/fusionml/qlknn-export/internal/tensor"
)

// Tensor is a named float32 weight tensor.
type Tensor = tensor.Named

// Descriptor is the architecture sidecar written next to a weight archive.
type Descriptor = archive.Descriptor

// LayerSpec is one layer record in a Descriptor.
type LayerSpec = archive.LayerSpec

// Manifest records what a conversion run wrote and where.
type Manifest = archive.Manifest

// Profile describes a surrogate model's channel-name contract.
type Profile = config.Profile

// QLKNN711 returns the default qlknn_7_11 model profile.
func QLKNN711() Profile { return config.QLKNN711() }

// LoadProfile reads a model profile from a YAML file.
func LoadProfile(path string) (Profile, error) { return config.LoadProfile(path) }

// ReadSafeTensors reloads a safetensors archive written by Convert.
func ReadSafeTensors(path string) (map[string]Tensor, map[string]string, error) {
	return archive.ReadSafeTensors(path)
}

// ReadNPZ reloads an npz archive written by Convert.
func ReadNPZ(path string) (map[string]Tensor, error) { return archive.ReadNPZ(path) }

// ReadDescriptor loads and validates a descriptor sidecar.
func ReadDescriptor(path string) (*Descriptor, error) { return archive.ReadDescriptor(path) }

// Extract parses the model file and returns its weight tensors, cast to
// float32, plus the derived architecture descriptor. It performs no I/O
// beyond reading the model.
func Extract(modelPath string, p Profile) ([]Tensor, *Descriptor, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	model, err := onnx.ParseFile(modelPath)
	if err != nil {
		return nil, nil, err
	}
	if model.Graph == nil {
		return nil, nil, fmt.Errorf("model %s has no graph", modelPath)
	}
	tensors, err := extract.Tensors(model.Graph)
	if err != nil {
		return nil, nil, err
	}
	desc, err := extract.Architecture(model.Graph, tensors, p)
	if err != nil {
		return nil, nil, err
	}
	return tensors, desc, nil
}

// Write persists extracted tensors and their descriptor under outDir with
// base as the artifact stem. The three artifacts appear together or not at
// all.
func Write(outDir, base string, tensors []Tensor, desc *Descriptor) (*Manifest, error) {
	return archive.Write(outDir, base, tensors, desc)
}

// Convert runs the full pipeline: parse the model, extract and normalize its
// weights, derive the architecture descriptor, and write the archive set.
func Convert(modelPath, outDir, base string, p Profile) (*Manifest, error) {
	tensors, desc, err := Extract(modelPath, p)
	if err != nil {
		return nil, err
	}
	return Write(outDir, base, tensors, desc)
}
