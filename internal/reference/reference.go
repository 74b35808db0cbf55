// Package reference holds closed-form float64 implementations of the
// elementwise operators, used as oracles for the kernels.
//
// Nothing here calls the backends: broadcasting, type promotion and every
// formula are computed independently with numpy semantics.
package reference

import (
	"fmt"

	"github.com/born-ml/opcheck/internal/tensor"
)

// Func computes expected outputs from operator inputs.
type Func func(inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error)

// GradFunc computes expected input gradients from the output gradient, the
// forward outputs and the forward inputs.
type GradFunc func(gradOut *tensor.RawTensor, outputs, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error)

// Unary adapts a single-input oracle to Func.
func Unary(f func(x *tensor.RawTensor) *tensor.RawTensor) Func {
	return func(inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
		if len(inputs) != 1 {
			return nil, fmt.Errorf("reference: want 1 input, got %d", len(inputs))
		}
		return []*tensor.RawTensor{f(inputs[0])}, nil
	}
}

// Binary adapts a two-input oracle to Func.
func Binary(f func(a, b *tensor.RawTensor) (*tensor.RawTensor, error)) Func {
	return func(inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
		if len(inputs) != 2 {
			return nil, fmt.Errorf("reference: want 2 inputs, got %d", len(inputs))
		}
		out, err := f(inputs[0], inputs[1])
		if err != nil {
			return nil, err
		}
		return []*tensor.RawTensor{out}, nil
	}
}

// ResultType returns the numpy result dtype of a binary arithmetic operation.
func ResultType(a, b tensor.DataType) tensor.DataType {
	switch {
	case a == b:
		return a
	case a == tensor.Bool:
		return b
	case b == tensor.Bool:
		return a
	case a == tensor.Float64 || b == tensor.Float64:
		return tensor.Float64
	case a.IsFloat() != b.IsFloat():
		return tensor.Float64
	case a.IsFloat():
		return tensor.Float32
	default:
		return tensor.Int64
	}
}

func build(values []float64, shape []int, dtype tensor.DataType) *tensor.RawTensor {
	t, err := tensor.FromFloat64(values, tensor.Shape(shape), dtype, tensor.CPU)
	if err != nil {
		panic(fmt.Sprintf("reference: %v", err))
	}
	return t
}

func floatType(dt tensor.DataType) tensor.DataType {
	if dt.IsFloat() {
		return dt
	}
	return tensor.Float64
}
