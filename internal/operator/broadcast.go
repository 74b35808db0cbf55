package operator

import (
	"fmt"

	"github.com/born-ml/opcheck/internal/tensor"
)

// legacyBroadcast reports whether def uses the legacy broadcast rule, and the
// axis B is aligned at (-1 for right-aligned).
func legacyBroadcast(def *OperatorDef) (bool, int) {
	return def.GetArgInt("broadcast", 0) != 0, int(def.GetArgInt("axis", -1))
}

// broadcastShape returns the output shape of a binary elementwise operator.
func broadcastShape(def *OperatorDef, a, b tensor.Shape) (tensor.Shape, error) {
	if legacy, axis := legacyBroadcast(def); legacy {
		return tensor.LegacyBroadcastShape(a, b, axis)
	}
	out, _, err := tensor.BroadcastShapes(a, b)
	return out, err
}

// alignOperand returns b reshaped so that NumPy broadcasting against a
// reproduces the legacy rule. The release function drops the view.
func alignOperand(def *OperatorDef, a, b *tensor.RawTensor) (*tensor.RawTensor, func(), error) {
	noop := func() {}
	if _, err := broadcastShape(def, a.Shape(), b.Shape()); err != nil {
		return nil, noop, err
	}
	legacy, axis := legacyBroadcast(def)
	if !legacy {
		return b, noop, nil
	}
	aligned := tensor.AlignShape(a.Shape(), b.Shape(), axis)
	if aligned.Equal(b.Shape()) {
		return b, noop, nil
	}
	view, err := b.Reshape(aligned)
	if err != nil {
		return nil, noop, err
	}
	return view, view.Release, nil
}

// binaryKernel computes one elementwise binary result on a backend.
type binaryKernel func(be tensor.Backend, a, b *tensor.RawTensor) *tensor.RawTensor

// dtypeCheck rejects operand types a kernel does not support.
type dtypeCheck func(dt tensor.DataType) error

// binaryHandler wraps a kernel with dtype and broadcast validation. check may
// be nil.
func binaryHandler(k binaryKernel, check dtypeCheck) Handler {
	return func(ctx *Context, def *OperatorDef, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
		a, b := inputs[0], inputs[1]
		if a.DType() != b.DType() {
			return nil, fmt.Errorf("dtype mismatch: %s vs %s", a.DType(), b.DType())
		}
		if check != nil {
			if err := check(a.DType()); err != nil {
				return nil, err
			}
		}
		bb, release, err := alignOperand(def, a, b)
		defer release()
		if err != nil {
			return nil, err
		}
		return []*tensor.RawTensor{k(ctx.Backend, a, bb)}, nil
	}
}

// unaryHandler wraps a single-input kernel.
func unaryHandler(k func(be tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor) Handler {
	return func(ctx *Context, _ *OperatorDef, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
		return []*tensor.RawTensor{k(ctx.Backend, inputs[0])}, nil
	}
}

// inferSame gives every output the shape and type of input 0.
func inferSame(def *OperatorDef, inputs []TensorShape) ([]TensorShape, bool) {
	out := make([]TensorShape, len(def.Outputs))
	for i := range out {
		out[i] = TensorShape{Dims: inputs[0].Dims.Clone(), DataType: inputs[0].DataType}
	}
	return out, true
}

// inferBroadcast infers a binary elementwise output. A nil dtype function
// keeps input 0's type.
func inferBroadcast(outType func(in tensor.DataType) tensor.DataType) InferFunc {
	return func(def *OperatorDef, inputs []TensorShape) ([]TensorShape, bool) {
		if inputs[0].DataType != inputs[1].DataType {
			return nil, false
		}
		dims, err := broadcastShape(def, inputs[0].Dims, inputs[1].Dims)
		if err != nil {
			return nil, false
		}
		dtype := inputs[0].DataType
		if outType != nil {
			dtype = outType(dtype)
		}
		return []TensorShape{{Dims: dims, DataType: dtype}}, true
	}
}

func boolType(tensor.DataType) tensor.DataType { return tensor.Bool }

// inferLike returns an InferFunc whose output i copies input like[i].
func inferLike(like ...int) InferFunc {
	return func(_ *OperatorDef, inputs []TensorShape) ([]TensorShape, bool) {
		out := make([]TensorShape, len(like))
		for i, idx := range like {
			out[i] = TensorShape{Dims: inputs[idx].Dims.Clone(), DataType: inputs[idx].DataType}
		}
		return out, true
	}
}
