package cpu

import (
	"cmp"
	"fmt"

	"github.com/born-ml/opcheck/internal/tensor"
)

// Comparison operations - return bool tensors.

// predicateFns holds one instantiation of a comparison per dtype.
type predicateFns struct {
	f32 func(x, y float32) bool
	f64 func(x, y float64) bool
	i32 func(x, y int32) bool
	i64 func(x, y int64) bool
	u8  func(x, y uint8) bool
	b   func(x, y bool) bool
}

func eqOp[T comparable](x, y T) bool  { return x == y }
func neOp[T comparable](x, y T) bool  { return x != y }
func ltOp[T cmp.Ordered](x, y T) bool { return x < y }
func leOp[T cmp.Ordered](x, y T) bool { return x <= y }
func gtOp[T cmp.Ordered](x, y T) bool { return x > y }
func geOp[T cmp.Ordered](x, y T) bool { return x >= y }
func boolLess(x, y bool) bool         { return !x && y }
func boolLessEqual(x, y bool) bool    { return !x || y }
func boolGreater(x, y bool) bool      { return x && !y }
func boolGreaterEqual(x, y bool) bool { return x || !y }

var (
	eqFns = predicateFns{eqOp[float32], eqOp[float64], eqOp[int32], eqOp[int64], eqOp[uint8], eqOp[bool]}
	neFns = predicateFns{neOp[float32], neOp[float64], neOp[int32], neOp[int64], neOp[uint8], neOp[bool]}
	ltFns = predicateFns{ltOp[float32], ltOp[float64], ltOp[int32], ltOp[int64], ltOp[uint8], boolLess}
	leFns = predicateFns{leOp[float32], leOp[float64], leOp[int32], leOp[int64], leOp[uint8], boolLessEqual}
	gtFns = predicateFns{gtOp[float32], gtOp[float64], gtOp[int32], gtOp[int64], gtOp[uint8], boolGreater}
	geFns = predicateFns{geOp[float32], geOp[float64], geOp[int32], geOp[int64], geOp[uint8], boolGreaterEqual}
)

func (cpu *CPUBackend) predicate(op string, a, b *tensor.RawTensor, fns predicateFns) *tensor.RawTensor {
	switch a.DType() {
	case tensor.Float32:
		return predicateBinary(cpu, op, a, b, fns.f32)
	case tensor.Float64:
		return predicateBinary(cpu, op, a, b, fns.f64)
	case tensor.Int32:
		return predicateBinary(cpu, op, a, b, fns.i32)
	case tensor.Int64:
		return predicateBinary(cpu, op, a, b, fns.i64)
	case tensor.Uint8:
		return predicateBinary(cpu, op, a, b, fns.u8)
	case tensor.Bool:
		return predicateBinary(cpu, op, a, b, fns.b)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, a.DType()))
	}
}

// Equal returns a == b element-wise.
func (cpu *CPUBackend) Equal(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.predicate("equal", a, b, eqFns)
}

// NotEqual returns a != b element-wise.
func (cpu *CPUBackend) NotEqual(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.predicate("notEqual", a, b, neFns)
}

// Lower returns a < b element-wise.
func (cpu *CPUBackend) Lower(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.predicate("lower", a, b, ltFns)
}

// LowerEqual returns a <= b element-wise.
func (cpu *CPUBackend) LowerEqual(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.predicate("lowerEqual", a, b, leFns)
}

// Greater returns a > b element-wise.
func (cpu *CPUBackend) Greater(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.predicate("greater", a, b, gtFns)
}

// GreaterEqual returns a >= b element-wise.
func (cpu *CPUBackend) GreaterEqual(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.predicate("greaterEqual", a, b, geFns)
}
