package tensor

import (
	"fmt"
	"strings"
)

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	raw, err := NewRaw(shape, DataTypeOf[T](), device)
	if err != nil {
		return nil, err
	}
	copy(Data[T](raw), data)
	return raw, nil
}

// MustFromSlice is FromSlice for fixtures; it panics on a shape mismatch.
func MustFromSlice[T DType](data []T, shape Shape, device Device) *RawTensor {
	raw, err := FromSlice(data, shape, device)
	if err != nil {
		panic(err)
	}
	return raw
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, dtype DataType, device Device) *RawTensor {
	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		panic(err) // Shape validation should prevent this
	}
	return raw
}

// Full creates a tensor filled with a specific value.
func Full[T DType](shape Shape, value T, device Device) *RawTensor {
	raw := Zeros(shape, DataTypeOf[T](), device)
	data := Data[T](raw)
	for i := range data {
		data[i] = value
	}
	return raw
}

// ZerosLike creates a zero tensor with the shape, dtype and device of t.
func ZerosLike(t *RawTensor) *RawTensor {
	return Zeros(t.Shape(), t.DType(), t.Device())
}

// ToFloat64 converts the elements of any tensor to float64.
// Bool elements map to 0 and 1.
func ToFloat64(t *RawTensor) []float64 {
	out := make([]float64, t.NumElements())
	switch t.DType() {
	case Float32:
		convertInto(out, t.AsFloat32())
	case Float64:
		copy(out, t.AsFloat64())
	case Int32:
		convertInto(out, t.AsInt32())
	case Int64:
		convertInto(out, t.AsInt64())
	case Uint8:
		convertInto(out, t.AsUint8())
	case Bool:
		for i, v := range t.AsBool() {
			if v {
				out[i] = 1
			}
		}
	}
	return out
}

// FromFloat64 builds a tensor of the requested dtype from float64 values.
func FromFloat64(values []float64, shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}
	if len(values) != raw.NumElements() {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, raw.NumElements(), len(values))
	}
	switch dtype {
	case Float32:
		convertInto(raw.AsFloat32(), values)
	case Float64:
		copy(raw.AsFloat64(), values)
	case Int32:
		convertInto(raw.AsInt32(), values)
	case Int64:
		convertInto(raw.AsInt64(), values)
	case Uint8:
		convertInto(raw.AsUint8(), values)
	case Bool:
		dst := raw.AsBool()
		for i, v := range values {
			dst[i] = v != 0
		}
	}
	return raw, nil
}

func convertInto[D, S Numeric](dst []D, src []S) {
	for i, v := range src {
		dst[i] = D(v)
	}
}

// Format renders at most limit leading elements, for error messages.
func Format(t *RawTensor, limit int) string {
	values := ToFloat64(t)
	var sb strings.Builder
	sb.WriteString(t.String())
	sb.WriteString(" [")
	for i, v := range values {
		if i == limit {
			fmt.Fprintf(&sb, " ... (%d more)", len(values)-limit)
			break
		}
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%g", v)
	}
	sb.WriteString("]")
	return sb.String()
}
