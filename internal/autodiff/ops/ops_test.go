package ops_test

import (
	"math"
	"testing"

	"github.com/born-ml/opcheck/internal/autodiff/ops"
	"github.com/born-ml/opcheck/internal/backend/cpu"
	"github.com/born-ml/opcheck/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(values ...float64) *tensor.RawTensor {
	return tensor.MustFromSlice(values, tensor.Shape{len(values)}, tensor.CPU)
}

func TestAddOp_Backward(t *testing.T) {
	backend := cpu.New()
	a := tensor.MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.CPU)
	b := vec(10, 20, 30)
	out := backend.Add(a.DeepCopy(tensor.CPU), b)

	grad := tensor.Full(tensor.Shape{2, 3}, 1.0, tensor.CPU)
	grads := ops.NewAddOp(a, b, out).Backward(grad, backend)

	require.Len(t, grads, 2)
	assert.Equal(t, tensor.Shape{2, 3}, grads[0].Shape())
	assert.Equal(t, tensor.Shape{3}, grads[1].Shape())
	assert.Equal(t, []float64{2, 2, 2}, grads[1].AsFloat64())
}

func TestSubOp_Backward(t *testing.T) {
	backend := cpu.New()
	a, b := vec(5, 6), tensor.MustFromSlice([]float64{1}, tensor.Shape{1}, tensor.CPU)
	grad := vec(1, 2)

	grads := ops.NewSubOp(a, b, nil).Backward(grad, backend)

	assert.Equal(t, []float64{1, 2}, grads[0].AsFloat64())
	assert.Equal(t, []float64{-3}, grads[1].AsFloat64())
	assert.Equal(t, []float64{1, 2}, grad.AsFloat64(), "output gradient must not be modified")
}

func TestMulOp_Backward(t *testing.T) {
	backend := cpu.New()
	a, b := vec(2, 3), vec(4, 5)
	grad := vec(1, 1)

	grads := ops.NewMulOp(a, b, nil).Backward(grad, backend)

	assert.Equal(t, []float64{4, 5}, grads[0].AsFloat64())
	assert.Equal(t, []float64{2, 3}, grads[1].AsFloat64())
	assert.Equal(t, []float64{2, 3}, a.AsFloat64())
	assert.Equal(t, []float64{4, 5}, b.AsFloat64())
}

func TestDivOp_Backward(t *testing.T) {
	backend := cpu.New()
	a, b := vec(1, 4), vec(2, 2)
	grad := vec(1, 1)

	grads := ops.NewDivOp(a, b, nil).Backward(grad, backend)

	assert.InDeltaSlice(t, []float64{0.5, 0.5}, grads[0].AsFloat64(), 1e-12)
	assert.InDeltaSlice(t, []float64{-0.25, -1}, grads[1].AsFloat64(), 1e-12)
}

func TestPowOp_Backward(t *testing.T) {
	backend := cpu.New()
	x, y := vec(2), vec(3)
	z := backend.Pow(x.DeepCopy(tensor.CPU), y)
	require.Equal(t, []float64{8}, z.AsFloat64())

	grads := ops.NewPowOp(x, y, z).Backward(vec(1), backend)

	assert.InDelta(t, 12.0, grads[0].AsFloat64()[0], 1e-12)
	assert.InDelta(t, 8*math.Log(2), grads[1].AsFloat64()[0], 1e-12)
}

func TestPowOp_BackwardBroadcast(t *testing.T) {
	backend := cpu.New()
	x := tensor.MustFromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.CPU)
	y := tensor.MustFromSlice([]float64{2}, tensor.Shape{1}, tensor.CPU)
	z := backend.Pow(x.DeepCopy(tensor.CPU), y)

	grads := ops.NewPowOp(x, y, z).Backward(tensor.Full(tensor.Shape{2, 2}, 1.0, tensor.CPU), backend)

	assert.InDeltaSlice(t, []float64{2, 4, 6, 8}, grads[0].AsFloat64(), 1e-12)
	require.Equal(t, tensor.Shape{1}, grads[1].Shape())
	want := 0.0
	for _, v := range []float64{1, 2, 3, 4} {
		want += v * v * math.Log(v)
	}
	assert.InDelta(t, want, grads[1].AsFloat64()[0], 1e-9)
}

func TestUnaryOps_Backward(t *testing.T) {
	backend := cpu.New()

	sig := func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }
	tests := []struct {
		name    string
		forward func(x *tensor.RawTensor) *tensor.RawTensor
		op      func(x, y *tensor.RawTensor) ops.Operation
		deriv   func(x float64) float64
		input   []float64
	}{
		{"log", backend.Log, func(x, y *tensor.RawTensor) ops.Operation { return ops.NewLogOp(x, y) },
			func(x float64) float64 { return 1 / x }, []float64{0.5, 1, 3}},
		{"exp", backend.Exp, func(x, y *tensor.RawTensor) ops.Operation { return ops.NewExpOp(x, y) },
			math.Exp, []float64{-1, 0, 2}},
		{"sqr", backend.Sqr, func(x, y *tensor.RawTensor) ops.Operation { return ops.NewSqrOp(x, y) },
			func(x float64) float64 { return 2 * x }, []float64{-2, 0, 3}},
		{"sqrt", backend.Sqrt, func(x, y *tensor.RawTensor) ops.Operation { return ops.NewSqrtOp(x, y) },
			func(x float64) float64 { return 0.5 / math.Sqrt(x) }, []float64{0.25, 1, 9}},
		{"rsqrt", backend.Rsqrt, func(x, y *tensor.RawTensor) ops.Operation { return ops.NewRsqrtOp(x, y) },
			func(x float64) float64 { return -0.5 * math.Pow(x, -1.5) }, []float64{0.25, 1, 9}},
		{"sigmoid", backend.Sigmoid, func(x, y *tensor.RawTensor) ops.Operation { return ops.NewSigmoidOp(x, y) },
			func(x float64) float64 { return sig(x) * (1 - sig(x)) }, []float64{-2, 0, 2}},
		{"swish", backend.Swish, func(x, y *tensor.RawTensor) ops.Operation { return ops.NewSwishOp(x, y) },
			func(x float64) float64 { return sig(x) + x*sig(x)*(1-sig(x)) }, []float64{-2, 0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := vec(tt.input...)
			y := tt.forward(x.DeepCopy(tensor.CPU))
			grad := vec(2, 2, 2)

			grads := tt.op(x, y).Backward(grad, backend)

			require.Len(t, grads, 1)
			for i, v := range tt.input {
				assert.InDelta(t, 2*tt.deriv(v), grads[0].AsFloat64()[i], 1e-9, "x=%v", v)
			}
			assert.Equal(t, tt.input, x.AsFloat64(), "input must not be modified")
			assert.Equal(t, []float64{2, 2, 2}, grad.AsFloat64(), "output gradient must not be modified")
		})
	}
}

func TestOps_PartialRecord(t *testing.T) {
	backend := cpu.New()
	x := vec(1, 4)
	y := backend.Sqrt(x.DeepCopy(tensor.CPU))

	var op ops.Operation = ops.NewSqrtOp(nil, y)
	assert.Same(t, y, op.Output())
	grads := op.Backward(vec(1, 1), backend)
	assert.InDeltaSlice(t, []float64{0.5, 0.25}, grads[0].AsFloat64(), 1e-12)

	op = ops.NewLogOp(x, nil)
	assert.Nil(t, op.Output())
	assert.Equal(t, []*tensor.RawTensor{x}, op.Inputs())
	grads = op.Backward(vec(2, 2), backend)
	assert.InDeltaSlice(t, []float64{2, 0.5}, grads[0].AsFloat64(), 1e-12)

	a, b := vec(3, 4), tensor.MustFromSlice([]float64{2}, tensor.Shape{1}, tensor.CPU)
	op = ops.NewMulOp(a, b, nil)
	require.Len(t, op.Inputs(), 2)
	grads = op.Backward(vec(1, 1), backend)
	assert.Equal(t, []float64{2, 2}, grads[0].AsFloat64())
	assert.Equal(t, []float64{7}, grads[1].AsFloat64())
}
