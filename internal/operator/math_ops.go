package operator

import (
	"fmt"

	"github.com/born-ml/opcheck/internal/tensor"
)

// registerMathOps adds broadcasting arithmetic and accumulation operators.
func (r *Registry) registerMathOps() {
	arith := []struct {
		typ      string
		doc      string
		kernel   binaryKernel
		gradient GradientMaker
	}{
		{"Add", "C = A + B", tensor.Backend.Add, binaryGradient},
		{"Sub", "C = A - B", tensor.Backend.Sub, binaryGradient},
		{"Mul", "C = A * B", tensor.Backend.Mul, binaryGradient},
		{"Div", "C = A / B", tensor.Backend.Div, binaryGradient},
		{"Pow", "Z = X ^ Y", tensor.Backend.Pow, powGradient},
	}
	for _, op := range arith {
		r.Register(&Schema{
			Type:       op.typ,
			Doc:        op.doc + ", elementwise with broadcasting",
			MinInputs:  2,
			MaxInputs:  2,
			MinOutputs: 1,
			MaxOutputs: 1,
			Inplace:    map[int]int{0: 0, 1: 0},
			Handler:    binaryHandler(op.kernel, numericOnly),
			Infer:      inferBroadcast(nil),
			Gradient:   op.gradient,
		})
	}

	r.Register(&Schema{
		Type:       "Sum",
		Doc:        "Y = X1 + X2 + ..., all inputs of the same shape",
		MinInputs:  1,
		MaxInputs:  -1,
		MinOutputs: 1,
		MaxOutputs: 1,
		Inplace:    map[int]int{0: 0},
		Handler:    handleSum,
		Infer:      inferSum,
		Gradient:   sumGradient,
	})
	r.Register(&Schema{
		Type:       "SumReduceLike",
		Doc:        "C = A summed over the dimensions broadcast from B's shape",
		MinInputs:  2,
		MaxInputs:  2,
		MinOutputs: 1,
		MaxOutputs: 1,
		Handler:    handleSumReduceLike,
		Infer:      inferSumReduceLike,
	})
}

func numericOnly(dt tensor.DataType) error {
	if dt == tensor.Bool {
		return fmt.Errorf("arithmetic needs numeric tensors, got %s", dt)
	}
	return nil
}

func handleSum(ctx *Context, def *OperatorDef, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	first := inputs[0]
	for i, x := range inputs[1:] {
		if x.DType() != first.DType() || !x.Shape().Equal(first.Shape()) {
			return nil, fmt.Errorf("input %d is %s%v, want %s%v (%s)",
				i+1, x.DType(), x.Shape(), first.DType(), first.Shape(), def.Inputs[i+1])
		}
	}
	acc := first
	for _, x := range inputs[1:] {
		acc = ctx.Backend.Add(acc, x)
	}
	return []*tensor.RawTensor{acc}, nil
}

func inferSum(_ *OperatorDef, inputs []TensorShape) ([]TensorShape, bool) {
	for _, in := range inputs[1:] {
		if !in.Dims.Equal(inputs[0].Dims) || in.DataType != inputs[0].DataType {
			return nil, false
		}
	}
	return []TensorShape{{Dims: inputs[0].Dims.Clone(), DataType: inputs[0].DataType}}, true
}

// reduceTarget returns the shape A is summed to so that it matches B.
func reduceTarget(def *OperatorDef, a, b tensor.Shape) (tensor.Shape, error) {
	legacy, axis := legacyBroadcast(def)
	if legacy || def.HasArg("axis") {
		if _, err := tensor.LegacyBroadcastShape(a, b, axis); err != nil {
			return nil, err
		}
		return tensor.AlignShape(a, b, axis), nil
	}
	out, _, err := tensor.BroadcastShapes(a, b)
	if err != nil {
		return nil, err
	}
	if !out.Equal(a) {
		return nil, fmt.Errorf("%v does not broadcast to %v", b, a)
	}
	return b, nil
}

func handleSumReduceLike(ctx *Context, def *OperatorDef, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	a, b := inputs[0], inputs[1]
	target, err := reduceTarget(def, a.Shape(), b.Shape())
	if err != nil {
		return nil, err
	}
	out := ctx.Backend.SumTo(a, target)
	if !target.Equal(b.Shape()) {
		out = reshapeOwned(out, b.Shape())
	}
	return []*tensor.RawTensor{out}, nil
}

func inferSumReduceLike(def *OperatorDef, inputs []TensorShape) ([]TensorShape, bool) {
	if _, err := reduceTarget(def, inputs[0].Dims, inputs[1].Dims); err != nil {
		return nil, false
	}
	return []TensorShape{{Dims: inputs[1].Dims.Clone(), DataType: inputs[0].DataType}}, true
}

// reshapeOwned reshapes a freshly computed tensor, handing its buffer
// reference over to the returned view.
func reshapeOwned(t *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	view, err := t.Reshape(shape)
	if err != nil {
		panic(err)
	}
	t.Release()
	return view
}

func copyArgs(def *OperatorDef) []Argument {
	return def.Clone().Args
}

// binaryGradient emits <Op>Gradient(dC, A, B) -> (dA, dB).
func binaryGradient(def *OperatorDef, outputGrads []string) GradientSpec {
	a, b := def.Inputs[0], def.Inputs[1]
	gradA, gradB := GradientName(a), GradientName(b)
	return GradientSpec{
		Ops: []*OperatorDef{{
			Type:    def.Type + "Gradient",
			Inputs:  []string{outputGrads[0], a, b},
			Outputs: []string{gradA, gradB},
			Args:    copyArgs(def),
		}},
		InputGrads: []string{gradA, gradB},
	}
}

// powGradient emits PowGradient(X, Y, Z, dZ) -> (dX, dY).
func powGradient(def *OperatorDef, outputGrads []string) GradientSpec {
	x, y := def.Inputs[0], def.Inputs[1]
	gradX, gradY := GradientName(x), GradientName(y)
	return GradientSpec{
		Ops: []*OperatorDef{{
			Type:    "PowGradient",
			Inputs:  []string{x, y, def.Outputs[0], outputGrads[0]},
			Outputs: []string{gradX, gradY},
			Args:    copyArgs(def),
		}},
		InputGrads: []string{gradX, gradY},
	}
}

// sumGradient passes the output gradient through to every input.
func sumGradient(def *OperatorDef, outputGrads []string) GradientSpec {
	grads := make([]string, len(def.Inputs))
	for i := range grads {
		grads[i] = outputGrads[0]
	}
	return GradientSpec{InputGrads: grads}
}
