package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fusionml/qlknn-export/internal/tensor"
)

// npz is a zip container of one .npy entry per tensor, the layout produced
// by numpy's savez. Entries are stored uncompressed, matching savez, so the
// float32 payload is byte-identical on reload.

const npyMagic = "\x93NUMPY"

// writeNPZ serializes the tensors to w as an npz container, preserving the
// given tensor order.
func writeNPZ(w io.Writer, tensors []tensor.Named) error {
	zw := zip.NewWriter(w)
	for i := range tensors {
		t := &tensors[i]
		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:   t.Name + ".npy",
			Method: zip.Store,
		})
		if err != nil {
			return fmt.Errorf("create npz entry %q: %w", t.Name, err)
		}
		if _, err := entry.Write(npyEncode(t)); err != nil {
			return fmt.Errorf("write npz entry %q: %w", t.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize npz: %w", err)
	}
	return nil
}

// npyEncode renders one tensor as an npy v1.0 file: magic, version, header
// length, python dict header padded to a 64-byte boundary, then raw
// little-endian float32 data.
func npyEncode(t *tensor.Named) []byte {
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': %s, }", npyShape(t.Shape))
	// Pad with spaces so that magic+version+len+header is a multiple of 64,
	// ending in newline.
	base := len(npyMagic) + 2 + 2
	padded := (base + len(header) + 1 + 63) / 64 * 64
	header += strings.Repeat(" ", padded-base-len(header)-1) + "\n"

	out := make([]byte, 0, padded+4*len(t.Data))
	out = append(out, npyMagic...)
	out = append(out, 1, 0) // format version 1.0
	out = append(out, byte(len(header)), byte(len(header)>>8))
	out = append(out, header...)
	return append(out, t.Bytes()...)
}

// npyShape renders a shape as a python tuple literal.
func npyShape(shape []int) string {
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return fmt.Sprintf("(%d,)", shape[0])
	default:
		parts := make([]string, len(shape))
		for i, d := range shape {
			parts[i] = strconv.Itoa(d)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
}

// ReadNPZ reloads an npz archive written by this package. The result maps
// tensor name to tensor.
func ReadNPZ(path string) (map[string]tensor.Named, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open npz: %w", err)
	}
	defer zr.Close() //nolint:errcheck // read-only close

	out := make(map[string]tensor.Named, len(zr.File))
	for _, f := range zr.File {
		name := strings.TrimSuffix(f.Name, ".npy")
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open npz entry %q: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close() //nolint:errcheck,gosec // read-only close
		if err != nil {
			return nil, fmt.Errorf("read npz entry %q: %w", f.Name, err)
		}
		t, err := npyDecode(name, data)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", f.Name, err)
		}
		out[name] = t
	}
	return out, nil
}

// npyDecode parses an npy v1.x payload holding little-endian float32 data.
func npyDecode(name string, data []byte) (tensor.Named, error) {
	if len(data) < 10 || string(data[:6]) != npyMagic {
		return tensor.Named{}, fmt.Errorf("%w: bad npy magic", ErrInvalidFormat)
	}
	headerLen := int(data[8]) | int(data[9])<<8
	if 10+headerLen > len(data) {
		return tensor.Named{}, fmt.Errorf("%w: npy header truncated", ErrInvalidFormat)
	}
	header := string(data[10 : 10+headerLen])
	if !strings.Contains(header, "'<f4'") {
		return tensor.Named{}, fmt.Errorf("%w: npy entry is not little-endian float32", ErrInvalidFormat)
	}

	shape, err := parseNpyShape(header)
	if err != nil {
		return tensor.Named{}, err
	}
	vals, err := tensor.FromBytes(data[10+headerLen:])
	if err != nil {
		return tensor.Named{}, err
	}
	return tensor.Named{Name: name, Shape: shape, Data: vals, SourceType: tensor.Float32}, nil
}

// parseNpyShape extracts the shape tuple from an npy dict header.
func parseNpyShape(header string) ([]int, error) {
	i := strings.Index(header, "'shape':")
	if i < 0 {
		return nil, fmt.Errorf("%w: npy header has no shape", ErrInvalidFormat)
	}
	open := strings.Index(header[i:], "(")
	closing := strings.Index(header[i:], ")")
	if open < 0 || closing < open {
		return nil, fmt.Errorf("%w: malformed npy shape", ErrInvalidFormat)
	}
	inner := header[i+open+1 : i+closing]
	var shape []int
	for _, part := range strings.Split(inner, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: npy shape dimension %q", ErrInvalidFormat, part)
		}
		shape = append(shape, d)
	}
	return shape, nil
}
