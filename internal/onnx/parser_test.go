package onnx

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestParseModelEnvelope(t *testing.T) {
	model, err := Parse(buildMLPModel(t))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if model.IRVersion != 8 {
		t.Errorf("IRVersion = %d, want 8", model.IRVersion)
	}
	if model.ProducerName != "pytorch" {
		t.Errorf("ProducerName = %q, want %q", model.ProducerName, "pytorch")
	}
	if v := model.OpsetVersion(); v != 17 {
		t.Errorf("OpsetVersion = %d, want 17", v)
	}
	if model.Graph == nil {
		t.Fatal("Graph is nil")
	}
}

func TestParseGraphStructure(t *testing.T) {
	model, err := Parse(buildMLPModel(t))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	g := model.Graph

	if len(g.Nodes) != 3 {
		t.Fatalf("node count = %d, want 3", len(g.Nodes))
	}
	wantOps := []string{"Gemm", "Relu", "Gemm"}
	for i, op := range wantOps {
		if g.Nodes[i].OpType != op {
			t.Errorf("node %d OpType = %q, want %q", i, g.Nodes[i].OpType, op)
		}
	}
	if g.Nodes[0].Inputs[0] != "input" {
		t.Errorf("first node input = %q, want %q", g.Nodes[0].Inputs[0], "input")
	}
}

func TestParseInitializers(t *testing.T) {
	model, err := Parse(buildMLPModel(t))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	inits := model.Graph.Initializers

	if len(inits) != 4 {
		t.Fatalf("initializer count = %d, want 4", len(inits))
	}

	w0 := inits[0]
	if w0.Name != "layers.0.weight" {
		t.Errorf("initializer 0 name = %q", w0.Name)
	}
	if w0.DataType != DTypeFloat {
		t.Errorf("initializer 0 dtype = %d, want FLOAT", w0.DataType)
	}
	if len(w0.Dims) != 2 || w0.Dims[0] != 3 || w0.Dims[1] != 2 {
		t.Errorf("initializer 0 dims = %v, want [3 2]", w0.Dims)
	}
	if len(w0.RawData) != 3*2*4 {
		t.Errorf("initializer 0 raw size = %d, want 24", len(w0.RawData))
	}

	// Legacy packed float_data field.
	b0 := inits[1]
	if b0.Name != "layers.0.bias" {
		t.Errorf("initializer 1 name = %q", b0.Name)
	}
	if len(b0.FloatData) != 3 || b0.FloatData[1] != -0.5 {
		t.Errorf("initializer 1 float_data = %v", b0.FloatData)
	}

	// float64 raw data keeps its dtype code for the extractor to cast.
	w1 := inits[2]
	if w1.DataType != DTypeDouble {
		t.Errorf("initializer 2 dtype = %d, want DOUBLE", w1.DataType)
	}
}

func TestParseValueInfos(t *testing.T) {
	model, err := Parse(buildMLPModel(t))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	g := model.Graph

	// Graph inputs include the weights; InputNames filters them out.
	names := g.InputNames()
	if len(names) != 1 || names[0] != "input" {
		t.Errorf("InputNames = %v, want [input]", names)
	}

	outs := g.OutputNames()
	want := []string{"efiITG", "efeITG"}
	if len(outs) != len(want) {
		t.Fatalf("OutputNames = %v, want %v", outs, want)
	}
	for i := range want {
		if outs[i] != want[i] {
			t.Errorf("output %d = %q, want %q", i, outs[i], want[i])
		}
	}

	in := g.Inputs[0]
	if in.ElemType != DTypeFloat {
		t.Errorf("input elem type = %d, want FLOAT", in.ElemType)
	}
	if len(in.Dims) != 2 || in.Dims[0].Param != "batch" || in.Dims[1].Value != 2 {
		t.Errorf("input dims = %+v, want [batch 2]", in.Dims)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.onnx")
	if err := os.WriteFile(path, buildMLPModel(t), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	model, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if model.Graph == nil || len(model.Graph.Initializers) != 4 {
		t.Error("parsed file lost graph content")
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "absent.onnx")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseTruncated(t *testing.T) {
	data := buildMLPModel(t)
	if _, err := Parse(data[:len(data)/2]); err == nil {
		t.Error("expected error for truncated data")
	}
}

func TestParseSkipsUnknownFields(t *testing.T) {
	// doc_string (field 6) is not modeled; the decoder must skip it.
	var e enc
	e.varintField(1, 8)
	e.strField(6, "a surrogate model")
	e.strField(2, "tf")

	model, err := Parse(e.b)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if model.ProducerName != "tf" {
		t.Errorf("ProducerName = %q, want %q", model.ProducerName, "tf")
	}
}

// enc builds protobuf wire-format messages for test fixtures.
type enc struct {
	b []byte
}

func (e *enc) uvarint(v uint64) {
	for v >= 0x80 {
		e.b = append(e.b, byte(v)|0x80)
		v >>= 7
	}
	e.b = append(e.b, byte(v))
}

func (e *enc) tag(field, wire int) {
	e.uvarint(uint64(field<<3 | wire))
}

func (e *enc) varintField(field int, v int64) {
	e.tag(field, wireVarint)
	e.uvarint(uint64(v)) //nolint:gosec // test values are non-negative
}

func (e *enc) bytesField(field int, data []byte) {
	e.tag(field, wireBytes)
	e.uvarint(uint64(len(data)))
	e.b = append(e.b, data...)
}

func (e *enc) strField(field int, s string) {
	e.bytesField(field, []byte(s))
}

func (e *enc) msgField(field int, sub *enc) {
	e.bytesField(field, sub.b)
}

func f32le(vals ...float32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func f64le(vals ...float64) []byte {
	out := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
	}
	return out
}

func encNode(name, opType string, inputs, outputs []string) *enc {
	var n enc
	for _, in := range inputs {
		n.strField(1, in)
	}
	for _, out := range outputs {
		n.strField(2, out)
	}
	n.strField(3, name)
	n.strField(4, opType)
	return &n
}

func encRawInitializer(name string, dtype int32, dims []int64, raw []byte) *enc {
	var t enc
	for _, d := range dims {
		t.varintField(1, d)
	}
	t.varintField(2, int64(dtype))
	t.strField(8, name)
	t.bytesField(9, raw)
	return &t
}

func encValueInfo(name string, elem int32, dims []int64) *enc {
	var shape enc
	for _, d := range dims {
		var dim enc
		if d > 0 {
			dim.varintField(1, d)
		} else {
			dim.strField(2, "batch")
		}
		shape.msgField(1, &dim)
	}

	var tt enc
	tt.varintField(1, int64(elem))
	tt.msgField(2, &shape)

	var ty enc
	ty.msgField(1, &tt)

	var vi enc
	vi.strField(1, name)
	vi.msgField(2, &ty)
	return &vi
}

// buildMLPModel encodes a miniature two-layer MLP: Gemm > Relu > Gemm with a
// single dynamic-batch input of width 2 and two named outputs.
func buildMLPModel(t *testing.T) []byte {
	t.Helper()

	var g enc
	g.strField(2, "mini_mlp")

	g.msgField(1, encNode("gemm0", "Gemm", []string{"input", "layers.0.weight", "layers.0.bias"}, []string{"h0"}))
	g.msgField(1, encNode("relu0", "Relu", []string{"h0"}, []string{"a0"}))
	g.msgField(1, encNode("gemm1", "Gemm", []string{"a0", "layers.1.weight", "layers.1.bias"}, []string{"out"}))

	g.msgField(5, encRawInitializer("layers.0.weight", DTypeFloat, []int64{3, 2},
		f32le(0.1, 0.2, 0.3, 0.4, 0.5, 0.6)))

	// Legacy packed float_data instead of raw bytes.
	var bias enc
	bias.varintField(1, 3)
	bias.varintField(2, int64(DTypeFloat))
	bias.bytesField(4, f32le(0.5, -0.5, 0.25))
	bias.strField(8, "layers.0.bias")
	g.msgField(5, &bias)

	g.msgField(5, encRawInitializer("layers.1.weight", DTypeDouble, []int64{2, 3},
		f64le(1, 2, 3, 4, 5, 6)))
	g.msgField(5, encRawInitializer("layers.1.bias", DTypeFloat, []int64{2}, f32le(0, 0)))

	// Graph inputs: the true input plus one weight, exporter style.
	g.msgField(11, encValueInfo("input", DTypeFloat, []int64{-1, 2}))
	g.msgField(11, encValueInfo("layers.0.weight", DTypeFloat, []int64{3, 2}))

	g.msgField(12, encValueInfo("efiITG", DTypeFloat, []int64{-1, 1}))
	g.msgField(12, encValueInfo("efeITG", DTypeFloat, []int64{-1, 1}))

	var opset enc
	opset.strField(1, "")
	opset.varintField(2, 17)

	var m enc
	m.varintField(1, 8)
	m.strField(2, "pytorch")
	m.strField(3, "2.1")
	m.msgField(8, &opset)
	m.msgField(7, &g)
	return m.b
}
