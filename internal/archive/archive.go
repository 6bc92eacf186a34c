// Package archive persists extracted weight tensors as portable archives: a
// safetensors file, an npz container, and a JSON architecture descriptor
// sidecar. The three artifacts are staged in a temporary directory and
// renamed into place together, so a consumer never observes a partially
// written pair.
package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fusionml/qlknn-export/internal/tensor"
)

// Manifest records what a conversion run wrote and where.
type Manifest struct {
	SafeTensorsPath string
	NPZPath         string
	DescriptorPath  string
	TensorCount     int
	Parameters      int
}

// Write persists the tensor collection and its descriptor under dir, using
// base as the artifact stem: <base>.safetensors, <base>.npz, <base>.json.
//
// Tensor names must be unique; reloading either archive reproduces every
// tensor bit-for-bit.
func Write(dir, base string, tensors []tensor.Named, desc *Descriptor) (*Manifest, error) {
	if len(tensors) == 0 {
		return nil, ErrNoTensors
	}
	seen := make(map[string]bool, len(tensors))
	params := 0
	for i := range tensors {
		t := &tensors[i]
		if seen[t.Name] {
			return nil, fmt.Errorf("tensor %q: %w", t.Name, ErrDuplicateTensor)
		}
		seen[t.Name] = true
		if err := t.Validate(); err != nil {
			return nil, err
		}
		params += t.NumElements()
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	for _, name := range desc.WeightNames {
		if !seen[name] {
			return nil, fmt.Errorf("descriptor names tensor %q that is not in the archive", name)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &WriteError{Path: dir, Err: err}
	}
	stage, err := os.MkdirTemp(dir, "."+base+"-")
	if err != nil {
		return nil, &WriteError{Path: dir, Err: err}
	}
	defer os.RemoveAll(stage) //nolint:errcheck // best-effort cleanup of the staging dir

	metadata := map[string]string{
		"model_name": desc.ModelName,
		"precision":  desc.Precision,
	}

	stPath := filepath.Join(stage, base+".safetensors")
	if err := writeFile(stPath, func(f *os.File) error {
		return writeSafeTensors(f, tensors, metadata)
	}); err != nil {
		return nil, err
	}

	npzPath := filepath.Join(stage, base+".npz")
	if err := writeFile(npzPath, func(f *os.File) error {
		return writeNPZ(f, tensors)
	}); err != nil {
		return nil, err
	}

	descPath := filepath.Join(stage, base+".json")
	descJSON, err := desc.marshal()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(descPath, descJSON, 0o644); err != nil { //nolint:gosec // G306: descriptor is a public artifact
		return nil, &WriteError{Path: descPath, Err: err}
	}

	// Move the completed set into place. Renames within one directory are
	// atomic per file; staging first guarantees the set is complete before
	// the first artifact appears under its final name.
	m := &Manifest{
		SafeTensorsPath: filepath.Join(dir, base+".safetensors"),
		NPZPath:         filepath.Join(dir, base+".npz"),
		DescriptorPath:  filepath.Join(dir, base+".json"),
		TensorCount:     len(tensors),
		Parameters:      params,
	}
	for _, move := range []struct{ from, to string }{
		{stPath, m.SafeTensorsPath},
		{npzPath, m.NPZPath},
		{descPath, m.DescriptorPath},
	} {
		if err := os.Rename(move.from, move.to); err != nil {
			return nil, &WriteError{Path: move.to, Err: err}
		}
	}
	return m, nil
}

// writeFile creates path, runs the writer, and closes the file, reporting
// any failure as a WriteError.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path) //nolint:gosec // G304: staging path derived from caller-provided dir
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := write(f); err != nil {
		f.Close() //nolint:errcheck,gosec // already failing
		return &WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
