package onnx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// ParseFile reads and parses an ONNX model file.
func ParseFile(path string) (*Model, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: model path is caller-provided by design
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return Parse(data)
}

// Parse parses an ONNX model from bytes.
func Parse(data []byte) (*Model, error) {
	m, err := parseModel(data)
	if err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	return m, nil
}

// Protobuf wire types.
const (
	wireVarint = 0
	wire64Bit  = 1
	wireBytes  = 2
	wire32Bit  = 5
)

// dec is a cursor over one length-delimited protobuf message.
type dec struct {
	buf []byte
	off int
}

func (d *dec) done() bool { return d.off >= len(d.buf) }

func (d *dec) varint() (uint64, error) {
	var v uint64
	var shift uint
	for {
		if d.off >= len(d.buf) {
			return 0, io.ErrUnexpectedEOF
		}
		b := d.buf[d.off]
		d.off++
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, errors.New("varint overflow")
		}
	}
}

func (d *dec) tag() (field, wire int, err error) {
	t, err := d.varint()
	if err != nil {
		return 0, 0, err
	}
	return int(t >> 3), int(t & 0x7), nil
}

func (d *dec) bytes() ([]byte, error) {
	n, err := d.varint()
	if err != nil {
		return nil, err
	}
	end := d.off + int(n) //nolint:gosec // G115: length checked against buffer below
	if end < d.off || end > len(d.buf) {
		return nil, io.ErrUnexpectedEOF
	}
	b := d.buf[d.off:end]
	d.off = end
	return b, nil
}

func (d *dec) skip(wire int) error {
	switch wire {
	case wireVarint:
		_, err := d.varint()
		return err
	case wire64Bit:
		if d.off+8 > len(d.buf) {
			return io.ErrUnexpectedEOF
		}
		d.off += 8
		return nil
	case wireBytes:
		_, err := d.bytes()
		return err
	case wire32Bit:
		if d.off+4 > len(d.buf) {
			return io.ErrUnexpectedEOF
		}
		d.off += 4
		return nil
	default:
		return fmt.Errorf("unknown wire type %d", wire)
	}
}

// packedVarints decodes a packed repeated varint field.
func packedVarints(data []byte) ([]int64, error) {
	d := &dec{buf: data}
	var out []int64
	for !d.done() {
		v, err := d.varint()
		if err != nil {
			return nil, err
		}
		out = append(out, int64(v)) //nolint:gosec // G115: ONNX varints fit in int64
	}
	return out, nil
}

// packedFloats decodes a packed repeated float field.
func packedFloats(data []byte) []float32 {
	out := make([]float32, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		out = append(out, math.Float32frombits(binary.LittleEndian.Uint32(data[i:])))
	}
	return out
}

// packedDoubles decodes a packed repeated double field.
func packedDoubles(data []byte) []float64 {
	out := make([]float64, 0, len(data)/8)
	for i := 0; i+8 <= len(data); i += 8 {
		out = append(out, math.Float64frombits(binary.LittleEndian.Uint64(data[i:])))
	}
	return out
}

func parseModel(data []byte) (*Model, error) {
	d := &dec{buf: data}
	m := &Model{}
	for !d.done() {
		field, wire, err := d.tag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1: // ir_version
			v, err := d.varint()
			if err != nil {
				return nil, err
			}
			m.IRVersion = int64(v) //nolint:gosec // G115: ONNX varints fit in int64
		case 2: // producer_name
			b, err := d.bytes()
			if err != nil {
				return nil, err
			}
			m.ProducerName = string(b)
		case 3: // producer_version
			b, err := d.bytes()
			if err != nil {
				return nil, err
			}
			m.ProducerVersion = string(b)
		case 4: // domain
			b, err := d.bytes()
			if err != nil {
				return nil, err
			}
			m.Domain = string(b)
		case 5: // model_version
			v, err := d.varint()
			if err != nil {
				return nil, err
			}
			m.ModelVersion = int64(v) //nolint:gosec // G115: ONNX varints fit in int64
		case 7: // graph
			b, err := d.bytes()
			if err != nil {
				return nil, err
			}
			g, err := parseGraph(b)
			if err != nil {
				return nil, err
			}
			m.Graph = g
		case 8: // opset_import
			b, err := d.bytes()
			if err != nil {
				return nil, err
			}
			op, err := parseOpset(b)
			if err != nil {
				return nil, err
			}
			m.Opsets = append(m.Opsets, op)
		default:
			if err := d.skip(wire); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func parseOpset(data []byte) (Opset, error) {
	d := &dec{buf: data}
	var op Opset
	for !d.done() {
		field, wire, err := d.tag()
		if err != nil {
			return op, err
		}
		switch field {
		case 1: // domain
			b, err := d.bytes()
			if err != nil {
				return op, err
			}
			op.Domain = string(b)
		case 2: // version
			v, err := d.varint()
			if err != nil {
				return op, err
			}
			op.Version = int64(v) //nolint:gosec // G115: ONNX varints fit in int64
		default:
			if err := d.skip(wire); err != nil {
				return op, err
			}
		}
	}
	return op, nil
}

func parseGraph(data []byte) (*Graph, error) {
	d := &dec{buf: data}
	g := &Graph{}
	for !d.done() {
		field, wire, err := d.tag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1: // node
			b, err := d.bytes()
			if err != nil {
				return nil, err
			}
			n, err := parseNode(b)
			if err != nil {
				return nil, err
			}
			g.Nodes = append(g.Nodes, n)
		case 2: // name
			b, err := d.bytes()
			if err != nil {
				return nil, err
			}
			g.Name = string(b)
		case 5: // initializer
			b, err := d.bytes()
			if err != nil {
				return nil, err
			}
			init, err := parseInitializer(b)
			if err != nil {
				return nil, err
			}
			g.Initializers = append(g.Initializers, init)
		case 11: // input
			b, err := d.bytes()
			if err != nil {
				return nil, err
			}
			vi, err := parseValueInfo(b)
			if err != nil {
				return nil, err
			}
			g.Inputs = append(g.Inputs, vi)
		case 12: // output
			b, err := d.bytes()
			if err != nil {
				return nil, err
			}
			vi, err := parseValueInfo(b)
			if err != nil {
				return nil, err
			}
			g.Outputs = append(g.Outputs, vi)
		default:
			if err := d.skip(wire); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

func parseNode(data []byte) (Node, error) {
	d := &dec{buf: data}
	var n Node
	for !d.done() {
		field, wire, err := d.tag()
		if err != nil {
			return n, err
		}
		switch field {
		case 1: // input
			b, err := d.bytes()
			if err != nil {
				return n, err
			}
			n.Inputs = append(n.Inputs, string(b))
		case 2: // output
			b, err := d.bytes()
			if err != nil {
				return n, err
			}
			n.Outputs = append(n.Outputs, string(b))
		case 3: // name
			b, err := d.bytes()
			if err != nil {
				return n, err
			}
			n.Name = string(b)
		case 4: // op_type
			b, err := d.bytes()
			if err != nil {
				return n, err
			}
			n.OpType = string(b)
		default:
			if err := d.skip(wire); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

func parseInitializer(data []byte) (Initializer, error) {
	d := &dec{buf: data}
	var t Initializer
	for !d.done() {
		field, wire, err := d.tag()
		if err != nil {
			return t, err
		}
		switch field {
		case 1: // dims
			if wire == wireBytes {
				b, err := d.bytes()
				if err != nil {
					return t, err
				}
				dims, err := packedVarints(b)
				if err != nil {
					return t, err
				}
				t.Dims = append(t.Dims, dims...)
			} else {
				v, err := d.varint()
				if err != nil {
					return t, err
				}
				t.Dims = append(t.Dims, int64(v)) //nolint:gosec // G115: ONNX varints fit in int64
			}
		case 2: // data_type
			v, err := d.varint()
			if err != nil {
				return t, err
			}
			t.DataType = int32(v) //nolint:gosec // G115: ONNX dtype codes fit in int32
		case 4: // float_data
			b, err := d.bytes()
			if err != nil {
				return t, err
			}
			t.FloatData = append(t.FloatData, packedFloats(b)...)
		case 5: // int32_data
			b, err := d.bytes()
			if err != nil {
				return t, err
			}
			vs, err := packedVarints(b)
			if err != nil {
				return t, err
			}
			for _, v := range vs {
				t.Int32Data = append(t.Int32Data, int32(v)) //nolint:gosec // G115: legacy int32_data fits in int32
			}
		case 7: // int64_data
			b, err := d.bytes()
			if err != nil {
				return t, err
			}
			vs, err := packedVarints(b)
			if err != nil {
				return t, err
			}
			t.Int64Data = append(t.Int64Data, vs...)
		case 8: // name
			b, err := d.bytes()
			if err != nil {
				return t, err
			}
			t.Name = string(b)
		case 9: // raw_data
			b, err := d.bytes()
			if err != nil {
				return t, err
			}
			t.RawData = b
		case 10: // double_data
			b, err := d.bytes()
			if err != nil {
				return t, err
			}
			t.DoubleData = append(t.DoubleData, packedDoubles(b)...)
		default:
			if err := d.skip(wire); err != nil {
				return t, err
			}
		}
	}
	return t, nil
}

func parseValueInfo(data []byte) (ValueInfo, error) {
	d := &dec{buf: data}
	var vi ValueInfo
	for !d.done() {
		field, wire, err := d.tag()
		if err != nil {
			return vi, err
		}
		switch field {
		case 1: // name
			b, err := d.bytes()
			if err != nil {
				return vi, err
			}
			vi.Name = string(b)
		case 2: // type
			b, err := d.bytes()
			if err != nil {
				return vi, err
			}
			if err := parseTypeInto(b, &vi); err != nil {
				return vi, err
			}
		default:
			if err := d.skip(wire); err != nil {
				return vi, err
			}
		}
	}
	return vi, nil
}

// parseTypeInto flattens TypeProto > TensorTypeProto > TensorShapeProto into
// the ValueInfo. Only tensor types occur in MLP surrogate graphs; other type
// kinds are skipped.
func parseTypeInto(data []byte, vi *ValueInfo) error {
	d := &dec{buf: data}
	for !d.done() {
		field, wire, err := d.tag()
		if err != nil {
			return err
		}
		if field != 1 { // tensor_type
			if err := d.skip(wire); err != nil {
				return err
			}
			continue
		}
		b, err := d.bytes()
		if err != nil {
			return err
		}
		td := &dec{buf: b}
		for !td.done() {
			tf, tw, err := td.tag()
			if err != nil {
				return err
			}
			switch tf {
			case 1: // elem_type
				v, err := td.varint()
				if err != nil {
					return err
				}
				vi.ElemType = int32(v) //nolint:gosec // G115: ONNX dtype codes fit in int32
			case 2: // shape
				sb, err := td.bytes()
				if err != nil {
					return err
				}
				dims, err := parseShape(sb)
				if err != nil {
					return err
				}
				vi.Dims = dims
			default:
				if err := td.skip(tw); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func parseShape(data []byte) ([]Dim, error) {
	d := &dec{buf: data}
	var dims []Dim
	for !d.done() {
		field, wire, err := d.tag()
		if err != nil {
			return nil, err
		}
		if field != 1 { // dim
			if err := d.skip(wire); err != nil {
				return nil, err
			}
			continue
		}
		b, err := d.bytes()
		if err != nil {
			return nil, err
		}
		dd := &dec{buf: b}
		var dim Dim
		for !dd.done() {
			df, dw, err := dd.tag()
			if err != nil {
				return nil, err
			}
			switch df {
			case 1: // dim_value
				v, err := dd.varint()
				if err != nil {
					return nil, err
				}
				dim.Value = int64(v) //nolint:gosec // G115: ONNX varints fit in int64
			case 2: // dim_param
				b, err := dd.bytes()
				if err != nil {
					return nil, err
				}
				dim.Param = string(b)
			default:
				if err := dd.skip(dw); err != nil {
					return nil, err
				}
			}
		}
		dims = append(dims, dim)
	}
	return dims, nil
}
