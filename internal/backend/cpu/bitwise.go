package cpu

import (
	"fmt"

	"github.com/born-ml/opcheck/internal/tensor"
)

// Logical operations work on bool tensors; bitwise operations work on
// integer and bool tensors.

func andOp(x, y bool) bool { return x && y }
func orOp(x, y bool) bool  { return x || y }
func xorOp(x, y bool) bool { return x != y }

func bitAnd[T tensor.Integer](x, y T) T { return x & y }
func bitOr[T tensor.Integer](x, y T) T  { return x | y }
func bitXor[T tensor.Integer](x, y T) T { return x ^ y }

func (cpu *CPUBackend) logical(op string, a, b *tensor.RawTensor, f func(x, y bool) bool) *tensor.RawTensor {
	if a.DType() != tensor.Bool || b.DType() != tensor.Bool {
		panic(fmt.Sprintf("%s: both tensors must be bool dtype", op))
	}
	return predicateBinary(cpu, op, a, b, f)
}

// And computes element-wise logical AND.
func (cpu *CPUBackend) And(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.logical("and", a, b, andOp)
}

// Or computes element-wise logical OR.
func (cpu *CPUBackend) Or(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.logical("or", a, b, orOp)
}

// Xor computes element-wise logical XOR.
func (cpu *CPUBackend) Xor(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.logical("xor", a, b, xorOp)
}

// Not computes element-wise logical NOT.
func (cpu *CPUBackend) Not(x *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Bool {
		panic("not: tensor must be bool dtype")
	}
	return sameTypeUnary(cpu, "not", x, func(v bool) bool { return !v })
}

func (cpu *CPUBackend) bitwise(op string, a, b *tensor.RawTensor, fns numericFns, boolFn func(x, y bool) bool) *tensor.RawTensor {
	switch a.DType() {
	case tensor.Bool:
		if b.DType() != tensor.Bool {
			panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", op, a.DType(), b.DType()))
		}
		return sameTypeBinary(cpu, op, a, b, boolFn)
	case tensor.Int32, tensor.Int64, tensor.Uint8:
		return cpu.numericBinary(op, a, b, fns)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s (only integer and bool supported)", op, a.DType()))
	}
}

var (
	bitAndFns = numericFns{i32: bitAnd[int32], i64: bitAnd[int64], u8: bitAnd[uint8]}
	bitOrFns  = numericFns{i32: bitOr[int32], i64: bitOr[int64], u8: bitOr[uint8]}
	bitXorFns = numericFns{i32: bitXor[int32], i64: bitXor[int64], u8: bitXor[uint8]}
)

// BitwiseAnd computes element-wise a & b with broadcasting.
func (cpu *CPUBackend) BitwiseAnd(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.bitwise("bitwiseAnd", a, b, bitAndFns, andOp)
}

// BitwiseOr computes element-wise a | b with broadcasting.
func (cpu *CPUBackend) BitwiseOr(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.bitwise("bitwiseOr", a, b, bitOrFns, orOp)
}

// BitwiseXor computes element-wise a ^ b with broadcasting.
func (cpu *CPUBackend) BitwiseXor(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.bitwise("bitwiseXor", a, b, bitXorFns, xorOp)
}
