package reference

import (
	"fmt"
	"math"

	"github.com/born-ml/opcheck/internal/tensor"
)

func unary(x *tensor.RawTensor, f func(v float64) float64) *tensor.RawTensor {
	in := tensor.ToFloat64(x)
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return build(out, x.Shape(), floatType(x.DType()))
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

// Log returns ln x.
func Log(x *tensor.RawTensor) *tensor.RawTensor { return unary(x, math.Log) }

// Exp returns eˣ.
func Exp(x *tensor.RawTensor) *tensor.RawTensor { return unary(x, math.Exp) }

// Sqr returns x².
func Sqr(x *tensor.RawTensor) *tensor.RawTensor {
	return unary(x, func(v float64) float64 { return v * v })
}

// Sqrt returns √x.
func Sqrt(x *tensor.RawTensor) *tensor.RawTensor { return unary(x, math.Sqrt) }

// RSqrt returns 1/√x.
func RSqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return unary(x, func(v float64) float64 { return 1 / math.Sqrt(v) })
}

// Sigmoid returns 1/(1+e⁻ˣ).
func Sigmoid(x *tensor.RawTensor) *tensor.RawTensor { return unary(x, sigmoid) }

// Swish returns x/(1+e⁻ˣ).
func Swish(x *tensor.RawTensor) *tensor.RawTensor {
	return unary(x, func(v float64) float64 { return v / (1 + math.Exp(-v)) })
}

// SwishGradient returns dY·(Y + (1−Y)/(1+e⁻ˣ)) for same-shape inputs.
func SwishGradient(inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if len(inputs) != 3 {
		return nil, fmt.Errorf("reference: SwishGradient wants 3 inputs, got %d", len(inputs))
	}
	x, y, dy := tensor.ToFloat64(inputs[0]), tensor.ToFloat64(inputs[1]), tensor.ToFloat64(inputs[2])
	if len(x) != len(y) || len(x) != len(dy) {
		return nil, fmt.Errorf("reference: SwishGradient input sizes %d, %d, %d differ", len(x), len(y), len(dy))
	}
	out := make([]float64, len(x))
	for i := range out {
		out[i] = dy[i] * (y[i] + (1-y[i])*sigmoid(x[i]))
	}
	return []*tensor.RawTensor{build(out, inputs[2].Shape(), floatType(inputs[2].DType()))}, nil
}

func binary(a, b *tensor.RawTensor, dtype tensor.DataType, f func(x, y float64) float64) (*tensor.RawTensor, error) {
	plan, err := broadcast(a.Shape(), b.Shape())
	if err != nil {
		return nil, err
	}
	va, vb := tensor.ToFloat64(a), tensor.ToFloat64(b)
	out := make([]float64, len(plan.a))
	for i := range out {
		out[i] = f(va[plan.a[i]], vb[plan.b[i]])
	}
	return build(out, plan.shape, dtype), nil
}

func arithmetic(f func(x, y float64) float64) func(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	return func(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
		return binary(a, b, ResultType(a.DType(), b.DType()), f)
	}
}

var (
	// Add returns a + b.
	Add = arithmetic(func(x, y float64) float64 { return x + y })
	// Sub returns a − b.
	Sub = arithmetic(func(x, y float64) float64 { return x - y })
	// Mul returns a · b.
	Mul = arithmetic(func(x, y float64) float64 { return x * y })
	// Pow returns aᵇ.
	Pow = arithmetic(math.Pow)
)

// Div returns a / b. Integer operands follow numpy true division and yield
// float64.
func Div(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	dtype := ResultType(a.DType(), b.DType())
	return binary(a, b, floatType(dtype), func(x, y float64) float64 { return x / y })
}

// PowGrad returns the gradients of Z = Xʸ: dX = dZ·Y·X^(Y−1) and
// dY = dZ·Z·ln X, for same-shape operands.
func PowGrad(gradOut *tensor.RawTensor, outputs, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if len(outputs) != 1 || len(inputs) != 2 {
		return nil, fmt.Errorf("reference: PowGrad wants 1 output and 2 inputs, got %d and %d", len(outputs), len(inputs))
	}
	g, z := tensor.ToFloat64(gradOut), tensor.ToFloat64(outputs[0])
	x, y := tensor.ToFloat64(inputs[0]), tensor.ToFloat64(inputs[1])
	if len(g) != len(z) || len(x) != len(z) || len(y) != len(z) {
		return nil, fmt.Errorf("reference: PowGrad needs same-shape operands")
	}
	dx := make([]float64, len(z))
	dy := make([]float64, len(z))
	for i := range z {
		dx[i] = g[i] * y[i] * math.Pow(x[i], y[i]-1)
		dy[i] = g[i] * z[i] * math.Log(x[i])
	}
	dtype := floatType(inputs[0].DType())
	return []*tensor.RawTensor{
		build(dx, inputs[0].Shape(), dtype),
		build(dy, inputs[1].Shape(), dtype),
	}, nil
}

func compare(f func(x, y float64) bool) func(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	return func(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
		return binary(a, b, tensor.Bool, func(x, y float64) float64 {
			if f(x, y) {
				return 1
			}
			return 0
		})
	}
}

var (
	// Equal returns a == b as bool.
	Equal = compare(func(x, y float64) bool { return x == y })
	// NotEqual returns a != b as bool.
	NotEqual = compare(func(x, y float64) bool { return x != y })
	// Less returns a < b as bool.
	Less = compare(func(x, y float64) bool { return x < y })
	// LessEqual returns a <= b as bool.
	LessEqual = compare(func(x, y float64) bool { return x <= y })
	// Greater returns a > b as bool.
	Greater = compare(func(x, y float64) bool { return x > y })
	// GreaterEqual returns a >= b as bool.
	GreaterEqual = compare(func(x, y float64) bool { return x >= y })
)

func bitwise(f func(x, y int64) int64) func(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	return func(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
		dtype := ResultType(a.DType(), b.DType())
		if a.DType().IsFloat() || b.DType().IsFloat() {
			return nil, fmt.Errorf("reference: bitwise operation on %s and %s", a.DType(), b.DType())
		}
		return binary(a, b, dtype, func(x, y float64) float64 {
			return float64(f(int64(x), int64(y)))
		})
	}
}

var (
	// BitwiseAnd returns a & b.
	BitwiseAnd = bitwise(func(x, y int64) int64 { return x & y })
	// BitwiseOr returns a | b.
	BitwiseOr = bitwise(func(x, y int64) int64 { return x | y })
	// BitwiseXor returns a ^ b.
	BitwiseXor = bitwise(func(x, y int64) int64 { return x ^ y })
)
