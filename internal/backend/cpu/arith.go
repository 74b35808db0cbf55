package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/opcheck/internal/tensor"
)

func addOp[T tensor.Numeric](x, y T) T { return x + y }
func subOp[T tensor.Numeric](x, y T) T { return x - y }
func mulOp[T tensor.Numeric](x, y T) T { return x * y }
func divOp[T tensor.Numeric](x, y T) T { return x / y }

func floatPow[T tensor.Float](x, y T) T {
	return T(math.Pow(float64(x), float64(y)))
}

// intPow raises x to a non-negative integer power by repeated squaring.
func intPow[T tensor.Integer](x, y T) T {
	result := T(1)
	for y > 0 {
		if y&1 == 1 {
			result *= x
		}
		x *= x
		y >>= 1
	}
	return result
}

var (
	addFns = numericFns{f32: addOp[float32], f64: addOp[float64], i32: addOp[int32], i64: addOp[int64], u8: addOp[uint8]}
	subFns = numericFns{f32: subOp[float32], f64: subOp[float64], i32: subOp[int32], i64: subOp[int64], u8: subOp[uint8]}
	mulFns = numericFns{f32: mulOp[float32], f64: mulOp[float64], i32: mulOp[int32], i64: mulOp[int64], u8: mulOp[uint8]}
	divFns = numericFns{f32: divOp[float32], f64: divOp[float64], i32: divOp[int32], i64: divOp[int64], u8: divOp[uint8]}
	powFns = numericFns{f32: floatPow[float32], f64: floatPow[float64], i32: intPow[int32], i64: intPow[int64], u8: intPow[uint8]}
)

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.numericBinary("add", a, b, addFns)
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.numericBinary("sub", a, b, subFns)
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.numericBinary("mul", a, b, mulFns)
}

// Div performs element-wise division with broadcasting.
// Integer division by zero is rejected before any element is written.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	if b.DType().IsInteger() {
		for i, v := range tensor.ToFloat64(b) {
			if v == 0 {
				panic(fmt.Sprintf("div: integer division by zero at index %d", i))
			}
		}
	}
	return cpu.numericBinary("div", a, b, divFns)
}

// Pow computes a^b element-wise with broadcasting.
// Integer exponents must be non-negative.
func (cpu *CPUBackend) Pow(a, b *tensor.RawTensor) *tensor.RawTensor {
	if b.DType().IsInteger() {
		for i, v := range tensor.ToFloat64(b) {
			if v < 0 {
				panic(fmt.Sprintf("pow: negative integer exponent at index %d: %v", i, v))
			}
		}
	}
	return cpu.numericBinary("pow", a, b, powFns)
}
