// Package onnx decodes the subset of the ONNX protobuf format needed to
// extract weights and derive an architecture descriptor: the model envelope,
// the graph with its nodes and value infos, and initializer tensors.
//
// The decoder is a hand-written protobuf wire-format reader. Node attributes,
// subgraphs and training info are skipped; the exporter never looks at them.
package onnx

// Model is the ONNX model envelope.
type Model struct {
	IRVersion       int64
	ProducerName    string
	ProducerVersion string
	Domain          string
	ModelVersion    int64
	Opsets          []Opset
	Graph           *Graph
}

// Opset identifies an operator-set version the model was exported against.
type Opset struct {
	Domain  string
	Version int64
}

// Graph is the computation graph: operation nodes, declared inputs and
// outputs, and the embedded constant tensors (initializers).
type Graph struct {
	Name         string
	Nodes        []Node
	Inputs       []ValueInfo
	Outputs      []ValueInfo
	Initializers []Initializer
}

// Node is a single operation in the graph.
type Node struct {
	Name    string
	OpType  string
	Inputs  []string
	Outputs []string
}

// Initializer is a named constant tensor embedded in the graph.
// Exactly one of RawData and the typed legacy fields carries the values.
type Initializer struct {
	Name       string
	DataType   int32
	Dims       []int64
	RawData    []byte
	FloatData  []float32
	DoubleData []float64
	Int32Data  []int32
	Int64Data  []int64
}

// ValueInfo declares the name, element type and shape of a graph input or
// output tensor.
type ValueInfo struct {
	Name     string
	ElemType int32
	Dims     []Dim
}

// Dim is one dimension of a declared tensor shape. Value is set for static
// dimensions; Param names a dynamic dimension such as the batch size.
type Dim struct {
	Value int64
	Param string
}

// ONNX element type codes (TensorProto.DataType).
const (
	DTypeUndefined  int32 = 0
	DTypeFloat      int32 = 1
	DTypeUint8      int32 = 2
	DTypeInt8       int32 = 3
	DTypeUint16     int32 = 4
	DTypeInt16      int32 = 5
	DTypeInt32      int32 = 6
	DTypeInt64      int32 = 7
	DTypeString     int32 = 8
	DTypeBool       int32 = 9
	DTypeFloat16    int32 = 10
	DTypeDouble     int32 = 11
	DTypeUint32     int32 = 12
	DTypeUint64     int32 = 13
	DTypeComplex64  int32 = 14
	DTypeComplex128 int32 = 15
	DTypeBFloat16   int32 = 16
)

// DTypeName returns the ONNX name for an element type code, for diagnostics.
func DTypeName(code int32) string {
	switch code {
	case DTypeFloat:
		return "FLOAT"
	case DTypeUint8:
		return "UINT8"
	case DTypeInt8:
		return "INT8"
	case DTypeUint16:
		return "UINT16"
	case DTypeInt16:
		return "INT16"
	case DTypeInt32:
		return "INT32"
	case DTypeInt64:
		return "INT64"
	case DTypeString:
		return "STRING"
	case DTypeBool:
		return "BOOL"
	case DTypeFloat16:
		return "FLOAT16"
	case DTypeDouble:
		return "DOUBLE"
	case DTypeUint32:
		return "UINT32"
	case DTypeUint64:
		return "UINT64"
	case DTypeComplex64:
		return "COMPLEX64"
	case DTypeComplex128:
		return "COMPLEX128"
	case DTypeBFloat16:
		return "BFLOAT16"
	default:
		return "UNDEFINED"
	}
}
