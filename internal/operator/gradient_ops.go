package operator

import (
	"fmt"

	"github.com/born-ml/opcheck/internal/autodiff/ops"
	"github.com/born-ml/opcheck/internal/tensor"
)

// registerGradientOps adds the backward operators emitted by gradient makers.
func (r *Registry) registerGradientOps() {
	unary := []struct {
		typ   string
		newOp func(from *tensor.RawTensor) ops.Operation
	}{
		{"LogGradient", func(x *tensor.RawTensor) ops.Operation { return ops.NewLogOp(x, nil) }},
		{"ExpGradient", func(y *tensor.RawTensor) ops.Operation { return ops.NewExpOp(nil, y) }},
		{"SqrGradient", func(x *tensor.RawTensor) ops.Operation { return ops.NewSqrOp(x, nil) }},
		{"SqrtGradient", func(y *tensor.RawTensor) ops.Operation { return ops.NewSqrtOp(nil, y) }},
		{"RSqrtGradient", func(y *tensor.RawTensor) ops.Operation { return ops.NewRsqrtOp(nil, y) }},
		{"SigmoidGradient", func(y *tensor.RawTensor) ops.Operation { return ops.NewSigmoidOp(nil, y) }},
	}
	for _, g := range unary {
		r.Register(&Schema{
			Type:       g.typ,
			Doc:        "dX from (X or Y, dY)",
			MinInputs:  2,
			MaxInputs:  2,
			MinOutputs: 1,
			MaxOutputs: 1,
			Inplace:    map[int]int{1: 0},
			Handler:    unaryGradientHandler(g.newOp),
			Infer:      inferLike(0),
		})
	}

	r.Register(&Schema{
		Type:       "SwishGradient",
		Doc:        "dX = dY * (Y + (1 - Y) * sigmoid(X)) from (X, Y, dY)",
		MinInputs:  3,
		MaxInputs:  3,
		MinOutputs: 1,
		MaxOutputs: 1,
		Inplace:    map[int]int{2: 0},
		Handler:    handleSwishGradient,
		Infer:      inferLike(0),
	})

	binary := []struct {
		typ   string
		newOp func(a, b *tensor.RawTensor) ops.Operation
	}{
		{"AddGradient", func(a, b *tensor.RawTensor) ops.Operation { return ops.NewAddOp(a, b, nil) }},
		{"SubGradient", func(a, b *tensor.RawTensor) ops.Operation { return ops.NewSubOp(a, b, nil) }},
		{"MulGradient", func(a, b *tensor.RawTensor) ops.Operation { return ops.NewMulOp(a, b, nil) }},
		{"DivGradient", func(a, b *tensor.RawTensor) ops.Operation { return ops.NewDivOp(a, b, nil) }},
	}
	for _, g := range binary {
		newOp := g.newOp
		r.Register(&Schema{
			Type:       g.typ,
			Doc:        "(dA, dB) from (dC, A, B), reduced to the operand shapes",
			MinInputs:  3,
			MaxInputs:  3,
			MinOutputs: 2,
			MaxOutputs: 2,
			Handler: func(ctx *Context, def *OperatorDef, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
				return binaryGradientHandler(ctx, def, inputs[0], inputs[1], inputs[2], newOp)
			},
			Infer: inferLike(1, 2),
		})
	}

	r.Register(&Schema{
		Type:       "PowGradient",
		Doc:        "(dX, dY) from (X, Y, Z, dZ)",
		MinInputs:  4,
		MaxInputs:  4,
		MinOutputs: 2,
		MaxOutputs: 2,
		Handler: func(ctx *Context, def *OperatorDef, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
			z := inputs[2]
			return binaryGradientHandler(ctx, def, inputs[3], inputs[0], inputs[1],
				func(x, y *tensor.RawTensor) ops.Operation { return ops.NewPowOp(x, y, z) })
		},
		Infer: inferLike(0, 1),
	})
}

func checkGradInputs(ts ...*tensor.RawTensor) error {
	for _, t := range ts {
		if !t.DType().IsFloat() {
			return fmt.Errorf("gradients need float tensors, got %s", t.DType())
		}
		if t.DType() != ts[0].DType() {
			return fmt.Errorf("dtype mismatch: %s vs %s", t.DType(), ts[0].DType())
		}
	}
	return nil
}

func checkSameShape(want, got *tensor.RawTensor) error {
	if !want.Shape().Equal(got.Shape()) {
		return fmt.Errorf("gradient shape %v does not match %v", got.Shape(), want.Shape())
	}
	return nil
}

func unaryGradientHandler(newOp func(from *tensor.RawTensor) ops.Operation) Handler {
	return func(ctx *Context, _ *OperatorDef, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
		from, dY := inputs[0], inputs[1]
		if err := checkGradInputs(from, dY); err != nil {
			return nil, err
		}
		if err := checkSameShape(from, dY); err != nil {
			return nil, err
		}
		return newOp(from).Backward(dY, ctx.Backend), nil
	}
}

func handleSwishGradient(ctx *Context, _ *OperatorDef, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	x, y, dY := inputs[0], inputs[1], inputs[2]
	if err := checkGradInputs(x, y, dY); err != nil {
		return nil, err
	}
	if err := checkSameShape(x, y); err != nil {
		return nil, err
	}
	if err := checkSameShape(x, dY); err != nil {
		return nil, err
	}
	return ops.NewSwishOp(x, y).Backward(dY, ctx.Backend), nil
}

// binaryGradientHandler runs a broadcasting backward kernel. Under the legacy
// rule b is aligned to a first and its gradient reshaped back.
func binaryGradientHandler(ctx *Context, def *OperatorDef, dC, a, b *tensor.RawTensor,
	newOp func(a, b *tensor.RawTensor) ops.Operation,
) ([]*tensor.RawTensor, error) {
	if err := checkGradInputs(dC, a, b); err != nil {
		return nil, err
	}
	outShape, err := broadcastShape(def, a.Shape(), b.Shape())
	if err != nil {
		return nil, err
	}
	if !outShape.Equal(dC.Shape()) {
		return nil, fmt.Errorf("output gradient shape %v does not match %v", dC.Shape(), outShape)
	}
	bb, release, err := alignOperand(def, a, b)
	defer release()
	if err != nil {
		return nil, err
	}

	grads := newOp(a, bb).Backward(dC, ctx.Backend)
	if gradB := grads[1]; !gradB.Shape().Equal(b.Shape()) {
		if gradB.SameBuffer(dC) {
			view, err := gradB.Reshape(b.Shape())
			if err != nil {
				return nil, err
			}
			grads[1] = view
		} else {
			grads[1] = reshapeOwned(gradB, b.Shape())
		}
	}
	return grads, nil
}
