// Package extract reads named weight tensors out of a parsed ONNX graph and
// normalizes them to canonical 32-bit floating point precision.
//
// The downcast to float32 is a deliberate contract, applied to every source
// precision including float64 and integer initializers. It is the only
// precision change in the whole pipeline; archival preserves the cast values
// bit-for-bit.
package extract

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/fusionml/qlknn-export/internal/onnx"
	"github.com/fusionml/qlknn-export/internal/tensor"
)

// Tensors decodes every initializer in the graph into a float32 tensor,
// preserving initializer order, names and shapes.
//
// It fails if the graph has no initializers, if two initializers share a
// name, or if a source element type has no defined float32 cast.
func Tensors(g *onnx.Graph) ([]tensor.Named, error) {
	if g == nil || len(g.Initializers) == 0 {
		return nil, ErrNoInitializers
	}

	seen := make(map[string]bool, len(g.Initializers))
	out := make([]tensor.Named, 0, len(g.Initializers))
	for i := range g.Initializers {
		init := &g.Initializers[i]
		if seen[init.Name] {
			return nil, fmt.Errorf("initializer %q: %w", init.Name, ErrDuplicateName)
		}
		seen[init.Name] = true

		t, err := decode(init)
		if err != nil {
			return nil, err
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("initializer %q: %w", init.Name, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// decode converts one initializer to float32, from whichever of raw_data or
// the legacy typed fields is populated.
func decode(init *onnx.Initializer) (tensor.Named, error) {
	shape := make([]int, len(init.Dims))
	for i, d := range init.Dims {
		shape[i] = int(d)
	}

	src, ok := sourceType(init.DataType)
	if !ok {
		return tensor.Named{}, &UnsupportedDTypeError{Tensor: init.Name, DType: onnx.DTypeName(init.DataType)}
	}

	var data []float32
	var err error
	if len(init.RawData) > 0 {
		data, err = castRaw(init.RawData, src)
		if err != nil {
			return tensor.Named{}, fmt.Errorf("initializer %q: %w", init.Name, err)
		}
	} else {
		data = castLegacy(init, src)
	}

	return tensor.Named{Name: init.Name, Shape: shape, Data: data, SourceType: src}, nil
}

// sourceType maps an ONNX element type code to the extractor's dtype, or
// reports that no float32 cast is defined (strings, complex, undefined).
func sourceType(code int32) (tensor.DataType, bool) {
	switch code {
	case onnx.DTypeFloat:
		return tensor.Float32, true
	case onnx.DTypeDouble:
		return tensor.Float64, true
	case onnx.DTypeFloat16:
		return tensor.Float16, true
	case onnx.DTypeBFloat16:
		return tensor.BFloat16, true
	case onnx.DTypeInt8:
		return tensor.Int8, true
	case onnx.DTypeUint8:
		return tensor.Uint8, true
	case onnx.DTypeInt16:
		return tensor.Int16, true
	case onnx.DTypeUint16:
		return tensor.Uint16, true
	case onnx.DTypeInt32:
		return tensor.Int32, true
	case onnx.DTypeInt64:
		return tensor.Int64, true
	case onnx.DTypeUint32:
		return tensor.Uint32, true
	case onnx.DTypeUint64:
		return tensor.Uint64, true
	case onnx.DTypeBool:
		return tensor.Bool, true
	default:
		return 0, false
	}
}

// castRaw decodes little-endian raw bytes of the given source type and casts
// each element to float32.
func castRaw(raw []byte, src tensor.DataType) ([]float32, error) {
	size := src.Size()
	if len(raw)%size != 0 {
		return nil, fmt.Errorf("raw payload length %d is not a multiple of element size %d (%s)", len(raw), size, src)
	}
	n := len(raw) / size
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		b := raw[i*size:]
		switch src {
		case tensor.Float32:
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b))
		case tensor.Float64:
			out[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(b)))
		case tensor.Float16:
			out[i] = tensor.Float16ToFloat32(binary.LittleEndian.Uint16(b))
		case tensor.BFloat16:
			out[i] = tensor.BFloat16ToFloat32(binary.LittleEndian.Uint16(b))
		case tensor.Int8:
			out[i] = float32(int8(b[0]))
		case tensor.Uint8:
			out[i] = float32(b[0])
		case tensor.Int16:
			out[i] = float32(int16(binary.LittleEndian.Uint16(b)))
		case tensor.Uint16:
			out[i] = float32(binary.LittleEndian.Uint16(b))
		case tensor.Int32:
			out[i] = float32(int32(binary.LittleEndian.Uint32(b)))
		case tensor.Uint32:
			out[i] = float32(binary.LittleEndian.Uint32(b))
		case tensor.Int64:
			out[i] = float32(int64(binary.LittleEndian.Uint64(b)))
		case tensor.Uint64:
			out[i] = float32(binary.LittleEndian.Uint64(b))
		case tensor.Bool:
			if b[0] != 0 {
				out[i] = 1
			}
		}
	}
	return out, nil
}

// castLegacy casts values from the typed legacy fields. Per the ONNX format,
// float16, bfloat16, bool and the small integer types ride in int32_data.
func castLegacy(init *onnx.Initializer, src tensor.DataType) []float32 {
	switch src {
	case tensor.Float32:
		out := make([]float32, len(init.FloatData))
		copy(out, init.FloatData)
		return out
	case tensor.Float64:
		out := make([]float32, len(init.DoubleData))
		for i, v := range init.DoubleData {
			out[i] = float32(v)
		}
		return out
	case tensor.Float16:
		out := make([]float32, len(init.Int32Data))
		for i, v := range init.Int32Data {
			out[i] = tensor.Float16ToFloat32(uint16(v)) //nolint:gosec // G115: legacy half bits occupy the low 16 bits
		}
		return out
	case tensor.BFloat16:
		out := make([]float32, len(init.Int32Data))
		for i, v := range init.Int32Data {
			out[i] = tensor.BFloat16ToFloat32(uint16(v)) //nolint:gosec // G115: legacy half bits occupy the low 16 bits
		}
		return out
	case tensor.Int64, tensor.Uint64:
		out := make([]float32, len(init.Int64Data))
		for i, v := range init.Int64Data {
			out[i] = float32(v)
		}
		return out
	default:
		out := make([]float32, len(init.Int32Data))
		for i, v := range init.Int32Data {
			out[i] = float32(v)
		}
		return out
	}
}
