package checker_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/opcheck/internal/checker"
	"github.com/born-ml/opcheck/internal/gen"
	"github.com/born-ml/opcheck/internal/operator"
	"github.com/born-ml/opcheck/internal/reference"
	"github.com/born-ml/opcheck/internal/tensor"
)

func inputs(ts ...*tensor.RawTensor) []*tensor.RawTensor { return ts }

func TestBroadcastScenarios(t *testing.T) {
	scenarios := checker.BroadcastScenarios(2, 3, 4, 5)
	require.Len(t, scenarios, 6)
	for _, sc := range scenarios {
		ab, _, err := tensor.BroadcastShapes(sc.A, sc.B)
		require.NoError(t, err, sc.Name)
		ba, _, err := tensor.BroadcastShapes(sc.B, sc.A)
		require.NoError(t, err, sc.Name)
		assert.Equal(t, tensor.Shape{2, 3, 4, 5}, ab, sc.Name)
		assert.Equal(t, ab, ba, sc.Name)
	}
	assert.Equal(t, tensor.Shape{1, 3, 1, 5}, scenarios[5].A)
	assert.Equal(t, tensor.Shape{2, 1, 4, 1}, scenarios[5].B)
}

func TestCheckReference(t *testing.T) {
	h := checker.NewHarness()
	x := gen.NewGenerator(1).RandBias(tensor.Shape{3, 4}, 1, tensor.Float32)
	def := operator.MustCreate("Log", []string{"X"}, []string{"Y"})

	require.NoError(t, h.CheckReference(def, inputs(x), reference.Unary(reference.Log)))

	err := h.CheckReference(def, inputs(x), reference.Unary(reference.Exp))
	require.Error(t, err)
	assert.ErrorIs(t, err, checker.ErrMismatch)
	var mismatch *checker.MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "reference", mismatch.Check)
	assert.Equal(t, "Y", mismatch.Blob)
	assert.Equal(t, 12, mismatch.Mismatched)
}

func TestCheckReference_InplaceAndEmpty(t *testing.T) {
	h := checker.NewHarness()
	x := gen.NewGenerator(2).Uniform(tensor.Shape{0, 4}, 0.1, 10, tensor.Float32)
	def := operator.MustCreate("Sqrt", []string{"X"}, []string{"X"})
	require.NoError(t, h.CheckReference(def, inputs(x), reference.Unary(reference.Sqrt)))
	require.NoError(t, h.CheckDevices(def, inputs(x), []int{0}))
	require.NoError(t, h.CheckGradient(def, inputs(x), 0, []int{0}, checker.WithStepsize(1e-2)))
}

func TestCheckReference_FrameworkError(t *testing.T) {
	h := checker.NewHarness()
	x := tensor.MustFromSlice([]float32{-1, 2}, tensor.Shape{2}, tensor.CPU)
	def := operator.MustCreate("Log", []string{"X"}, []string{"Y"})

	err := h.CheckReference(def, inputs(x), reference.Unary(reference.Log))
	require.Error(t, err)
	assert.NotErrorIs(t, err, checker.ErrMismatch)
}

func TestCheckReference_InferenceDisagreement(t *testing.T) {
	r := operator.NewRegistry()
	log, ok := r.Lookup("Log")
	require.True(t, ok)
	bad := *log
	bad.Type = "BadInfer"
	bad.Infer = func(_ *operator.OperatorDef, in []operator.TensorShape) ([]operator.TensorShape, bool) {
		return []operator.TensorShape{{Dims: tensor.Shape{99}, DataType: in[0].DataType}}, true
	}
	r.Register(&bad)

	h := checker.NewHarness()
	h.Registry = r
	def, err := r.Create("BadInfer", []string{"X"}, []string{"Y"})
	require.NoError(t, err)

	x := gen.NewGenerator(3).RandBias(tensor.Shape{2, 2}, 1, tensor.Float32)
	err = h.CheckReference(def, inputs(x), reference.Unary(reference.Log))
	var mismatch *checker.MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "inference", mismatch.Check)
}

func TestCheckReference_TypeMismatch(t *testing.T) {
	r := operator.NewRegistry()
	eq, ok := r.Lookup("EQ")
	require.True(t, ok)
	intEQ := *eq
	intEQ.Type = "IntEQ"
	intEQ.Infer = nil
	intEQ.Handler = func(ctx *operator.Context, def *operator.OperatorDef, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
		out, err := eq.Handler(ctx, def, in)
		if err != nil {
			return nil, err
		}
		asInt, err := tensor.FromFloat64(tensor.ToFloat64(out[0]), out[0].Shape(), tensor.Int64, out[0].Device())
		if err != nil {
			return nil, err
		}
		return []*tensor.RawTensor{asInt}, nil
	}
	r.Register(&intEQ)

	h := checker.NewHarness()
	h.Registry = r
	def, err := r.Create("IntEQ", []string{"A", "B"}, []string{"C"})
	require.NoError(t, err)

	a := tensor.MustFromSlice([]int64{1, 0, 1, 1}, tensor.Shape{2, 2}, tensor.CPU)
	b := tensor.MustFromSlice([]int64{1, 1, 1, 0}, tensor.Shape{2, 2}, tensor.CPU)
	err = h.CheckReference(def, inputs(a, b), reference.Binary(reference.Equal))
	require.ErrorIs(t, err, checker.ErrMismatch)
	var mismatch *checker.MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "reference", mismatch.Check)
	assert.Contains(t, mismatch.Reason, "type int64, want bool")
}

func TestCheckReference_GradReference(t *testing.T) {
	h := checker.NewHarness()
	g := gen.NewGenerator(4)
	x := g.RandBias(tensor.Shape{3, 4, 2}, 1, tensor.Float32)
	y := g.RandBias(tensor.Shape{3, 4, 2}, 2, tensor.Float32)
	def := operator.MustCreate("Pow", []string{"X", "Y"}, []string{"Z"})

	ref := reference.Binary(reference.Pow)
	require.NoError(t, h.CheckReference(def, inputs(x, y), ref, checker.WithGradReference("Z", reference.PowGrad)))

	doubled := func(gradOut *tensor.RawTensor, outputs, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
		grads, err := reference.PowGrad(gradOut, outputs, in)
		if err != nil {
			return nil, err
		}
		twice, err := reference.Add(grads[0], grads[0])
		if err != nil {
			return nil, err
		}
		return []*tensor.RawTensor{twice, grads[1]}, nil
	}
	err := h.CheckReference(def, inputs(x, y), ref, checker.WithGradReference("Z", doubled))
	require.Error(t, err)
	assert.ErrorIs(t, err, checker.ErrMismatch)
}

func TestCheckGradient(t *testing.T) {
	h := checker.NewHarness()
	g := gen.NewGenerator(5)

	x := g.RandBias(tensor.Shape{2, 4}, 1, tensor.Float32)
	log := operator.MustCreate("Log", []string{"X"}, []string{"Y"})
	require.NoError(t, h.CheckGradient(log, inputs(x), 0, []int{0},
		checker.WithStepsize(1e-4), checker.WithThreshold(1e-2)))

	a := g.RandBias(tensor.Shape{2, 3}, -0.5, tensor.Float32)
	b := g.RandBias(tensor.Shape{3}, -0.5, tensor.Float32)
	mul := operator.MustCreate("Mul", []string{"A", "B"}, []string{"C"})
	for i := range 2 {
		require.NoError(t, h.CheckGradient(mul, inputs(a, b), i, []int{0}))
	}
}

func TestCheckGradient_WrongGradient(t *testing.T) {
	r := operator.NewRegistry()
	sqr, ok := r.Lookup("Sqr")
	require.True(t, ok)
	log, ok := r.Lookup("Log")
	require.True(t, ok)
	bad := *sqr
	bad.Type = "BadSqr"
	bad.Gradient = log.Gradient
	r.Register(&bad)

	h := checker.NewHarness()
	h.Registry = r
	def, err := r.Create("BadSqr", []string{"X"}, []string{"Y"})
	require.NoError(t, err)

	x := gen.NewGenerator(6).RandBias(tensor.Shape{4}, 1, tensor.Float32)
	err = h.CheckGradient(def, inputs(x), 0, []int{0})
	var mismatch *checker.MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "gradient", mismatch.Check)
	assert.Equal(t, "X", mismatch.Blob)
}

func TestCheckGradient_Errors(t *testing.T) {
	h := checker.NewHarness()
	ints := gen.NewGenerator(7).RandInt(tensor.Shape{2}, 10, tensor.Int64)

	eq := operator.MustCreate("EQ", []string{"A", "B"}, []string{"C"})
	err := h.CheckGradient(eq, inputs(ints, ints), 0, []int{0})
	require.Error(t, err)
	assert.NotErrorIs(t, err, checker.ErrMismatch)

	floats := gen.NewGenerator(7).Rand(tensor.Shape{2}, tensor.Float32)
	err = h.CheckGradient(eq, inputs(floats, floats), 0, []int{0})
	require.Error(t, err, "EQ has no gradient")
	assert.NotErrorIs(t, err, checker.ErrMismatch)

	err = h.CheckGradient(eq, inputs(floats, floats), 2, []int{0})
	require.Error(t, err)
}

func TestCheckBinaryOp(t *testing.T) {
	h := checker.NewHarness()
	cases := []checker.BinaryCase{
		{Op: "Add", Ref: reference.Add, Bias: -0.5, Grad: true},
		{Op: "Div", Ref: reference.Div, Bias: 1, Grad: true},
		{Op: "BitwiseXor", Ref: reference.BitwiseXor, Integer: true},
	}
	for _, c := range cases {
		t.Run(c.Op, func(t *testing.T) {
			require.NoError(t, h.CheckBinaryOp(gen.NewGenerator(8), c, 2, 3, 2, 2))
		})
	}
}

func TestCheckBinaryOp_ReportsScenario(t *testing.T) {
	h := checker.NewHarness()
	c := checker.BinaryCase{Op: "Mul", Ref: reference.Add, Bias: 1}
	err := h.CheckBinaryOp(gen.NewGenerator(9), c, 1, 2, 2, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, checker.ErrMismatch)
	assert.Contains(t, err.Error(), "same shape (A, B)")
}

func TestCheckDevices(t *testing.T) {
	h := checker.NewHarness()
	g := gen.NewGenerator(10)
	a := g.Rand(tensor.Shape{5, 7, 3}, tensor.Float32)
	b := g.Rand(tensor.Shape{7, 1}, tensor.Float32)
	def := operator.MustCreate("Sub", []string{"A", "B"}, []string{"C"})
	require.NoError(t, h.CheckDevices(def, inputs(a, b), []int{0}))

	h.Devices = nil
	require.Error(t, h.CheckDevices(def, inputs(a, b), []int{0}))
}
