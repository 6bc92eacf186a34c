package tensor

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Named is a named constant tensor in canonical precision.
// All archived tensors are float32 regardless of their source dtype; the
// single downcast happens at extraction time and SourceType records what the
// values were cast from.
type Named struct {
	Name       string
	Shape      []int
	Data       []float32
	SourceType DataType
}

// NumElements returns the total element count implied by the shape.
// A scalar (rank 0) has one element.
func (t *Named) NumElements() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// Bytes returns the tensor data as little-endian float32 bytes.
// Both archive formats store this exact byte sequence, so a reload
// reproduces the tensor bit-for-bit.
func (t *Named) Bytes() []byte {
	out := make([]byte, 4*len(t.Data))
	for i, v := range t.Data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// FromBytes decodes little-endian float32 bytes into a value slice.
// It is the inverse of Bytes and is used when reloading archives.
func FromBytes(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("float32 payload length %d is not a multiple of 4", len(data))
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}

// Validate checks that the data length matches the declared shape.
func (t *Named) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("tensor has empty name")
	}
	for _, d := range t.Shape {
		if d <= 0 {
			return fmt.Errorf("tensor %q: invalid dimension %d", t.Name, d)
		}
	}
	if want := t.NumElements(); len(t.Data) != want {
		return fmt.Errorf("tensor %q: shape %v implies %d elements, have %d", t.Name, t.Shape, want, len(t.Data))
	}
	return nil
}
