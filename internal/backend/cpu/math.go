package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/opcheck/internal/tensor"
)

func negOp[T tensor.Numeric](v T) T { return -v }
func sqrOp[T tensor.Numeric](v T) T { return v * v }

// numericUnary dispatches a generic dtype-preserving unary operation.
func numericUnary(cpu *CPUBackend, op string, x *tensor.RawTensor,
	f32 func(float32) float32, f64 func(float64) float64,
	i32 func(int32) int32, i64 func(int64) int64, u8 func(uint8) uint8,
) *tensor.RawTensor {
	switch x.DType() {
	case tensor.Float32:
		return sameTypeUnary(cpu, op, x, f32)
	case tensor.Float64:
		return sameTypeUnary(cpu, op, x, f64)
	case tensor.Int32:
		return sameTypeUnary(cpu, op, x, i32)
	case tensor.Int64:
		return sameTypeUnary(cpu, op, x, i64)
	case tensor.Uint8:
		return sameTypeUnary(cpu, op, x, u8)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, x.DType()))
	}
}

// checkFloatDomain panics with the first element rejected by valid.
// It runs before any kernel so that no goroutine panics mid-write.
func checkFloatDomain(op string, x *tensor.RawTensor, valid func(v float64) bool, what string) {
	if !x.DType().IsFloat() {
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32/float64 supported)", op, x.DType()))
	}
	for i, v := range tensor.ToFloat64(x) {
		if !valid(v) {
			panic(fmt.Sprintf("%s: %s value at index %d: %f", op, what, i, v))
		}
	}
}

// Neg computes element-wise negation: -x.
func (cpu *CPUBackend) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	return numericUnary(cpu, "neg", x, negOp[float32], negOp[float64], negOp[int32], negOp[int64], negOp[uint8])
}

// Sqr computes element-wise square: x².
func (cpu *CPUBackend) Sqr(x *tensor.RawTensor) *tensor.RawTensor {
	return numericUnary(cpu, "sqr", x, sqrOp[float32], sqrOp[float64], sqrOp[int32], sqrOp[int64], sqrOp[uint8])
}

// MulScalar multiplies every element by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return numericUnary(cpu, "mulScalar", x,
		func(v float32) float32 { return v * float32(scalar) },
		func(v float64) float64 { return v * scalar },
		func(v int32) int32 { return v * int32(scalar) },
		func(v int64) int64 { return v * int64(scalar) },
		func(v uint8) uint8 { return v * uint8(scalar) },
	)
}

// Exp computes element-wise exponential: exp(x).
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.floatUnary("exp", x, math.Exp)
}

// Log computes element-wise natural logarithm: ln(x).
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	checkFloatDomain("log", x, func(v float64) bool { return v > 0 }, "non-positive")
	return cpu.floatUnary("log", x, math.Log)
}

// Sqrt computes element-wise square root: sqrt(x).
func (cpu *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	checkFloatDomain("sqrt", x, func(v float64) bool { return v >= 0 }, "negative")
	return cpu.floatUnary("sqrt", x, math.Sqrt)
}

// Rsqrt computes element-wise reciprocal square root: 1/sqrt(x).
func (cpu *CPUBackend) Rsqrt(x *tensor.RawTensor) *tensor.RawTensor {
	checkFloatDomain("rsqrt", x, func(v float64) bool { return v > 0 }, "non-positive")
	return cpu.floatUnary("rsqrt", x, func(v float64) float64 { return 1.0 / math.Sqrt(v) })
}

// Sigmoid computes σ(x) = 1 / (1 + exp(-x)).
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.floatUnary("sigmoid", x, sigmoid)
}

// Swish computes x·σ(x) = x / (1 + exp(-x)).
func (cpu *CPUBackend) Swish(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.floatUnary("swish", x, func(v float64) float64 { return v * sigmoid(v) })
}

func sigmoid(v float64) float64 {
	return 1.0 / (1.0 + math.Exp(-v))
}
