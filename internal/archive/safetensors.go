package archive

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fusionml/qlknn-export/internal/tensor"
)

// SafeTensors layout:
//
//	[8 bytes: header size (uint64 LE)]
//	[header: JSON, tensor name -> {dtype, shape, data_offsets}]
//	[tensor data: raw little-endian bytes]
//
// Tensor data is laid out in alphabetical name order, per the format's
// convention.

// safeTensorEntry is one tensor's header record.
type safeTensorEntry struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

const maxSafeTensorsHeader = 100 << 20

// writeSafeTensors serializes the tensors to w in safetensors format.
// All entries are F32; metadata carries the precision tag.
func writeSafeTensors(w io.Writer, tensors []tensor.Named, metadata map[string]string) error {
	sorted := make([]*tensor.Named, len(tensors))
	for i := range tensors {
		sorted[i] = &tensors[i]
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	header := make(map[string]any, len(sorted)+1)
	if len(metadata) > 0 {
		header["__metadata__"] = metadata
	}
	var offset int64
	for _, t := range sorted {
		size := int64(4 * len(t.Data))
		shape := make([]int64, len(t.Shape))
		for i, d := range t.Shape {
			shape[i] = int64(d)
		}
		header[t.Name] = safeTensorEntry{
			DType:       "F32",
			Shape:       shape,
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshal safetensors header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range sorted {
		if _, err := w.Write(t.Bytes()); err != nil {
			return fmt.Errorf("write tensor %q: %w", t.Name, err)
		}
	}
	return nil
}

// ReadSafeTensors reloads a safetensors archive written by this package.
// Only F32 entries are accepted; the result maps tensor name to tensor.
func ReadSafeTensors(path string) (map[string]tensor.Named, map[string]string, error) {
	f, err := os.Open(path) //nolint:gosec // G304: archive path is caller-provided by design
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only close

	var headerSize uint64
	if err := binary.Read(f, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("read header size: %w", err)
	}
	if headerSize > maxSafeTensorsHeader {
		return nil, nil, fmt.Errorf("%w: header size %d", ErrInvalidFormat, headerSize)
	}
	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(f, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &raw); err != nil {
		return nil, nil, fmt.Errorf("parse header: %w", err)
	}

	metadata := map[string]string{}
	entries := make(map[string]safeTensorEntry, len(raw))
	for name, msg := range raw {
		if name == "__metadata__" {
			if err := json.Unmarshal(msg, &metadata); err != nil {
				return nil, nil, fmt.Errorf("parse metadata: %w", err)
			}
			continue
		}
		var e safeTensorEntry
		if err := json.Unmarshal(msg, &e); err != nil {
			return nil, nil, fmt.Errorf("parse entry %q: %w", name, err)
		}
		entries[name] = e
	}

	dataStart := int64(8 + headerSize) //nolint:gosec // G115: header size bounded above
	out := make(map[string]tensor.Named, len(entries))
	for name, e := range entries {
		if e.DType != "F32" {
			return nil, nil, fmt.Errorf("tensor %q: unexpected dtype %s, archives are always F32", name, e.DType)
		}
		start, end := e.DataOffsets[0], e.DataOffsets[1]
		if start < 0 || end < start {
			return nil, nil, fmt.Errorf("tensor %q: %w: offsets [%d, %d]", name, ErrInvalidFormat, start, end)
		}
		buf := make([]byte, end-start)
		if _, err := f.ReadAt(buf, dataStart+start); err != nil {
			return nil, nil, fmt.Errorf("read tensor %q: %w", name, err)
		}
		vals, err := tensor.FromBytes(buf)
		if err != nil {
			return nil, nil, fmt.Errorf("tensor %q: %w", name, err)
		}
		shape := make([]int, len(e.Shape))
		for i, d := range e.Shape {
			shape[i] = int(d)
		}
		out[name] = tensor.Named{Name: name, Shape: shape, Data: vals, SourceType: tensor.Float32}
	}
	return out, metadata, nil
}
