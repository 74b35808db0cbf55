package cpu

import (
	"fmt"

	"github.com/born-ml/opcheck/internal/tensor"
)

// binaryInto fills dst with f applied over the broadcast of a and b.
// dst may alias a (or b) when that operand already has outShape.
func binaryInto[T, R tensor.DType](cpu *CPUBackend, dst []R, a, b []T, aShape, bShape, outShape tensor.Shape, f func(x, y T) R) {
	n := outShape.NumElements()
	if aShape.Equal(outShape) && bShape.Equal(outShape) {
		cpu.forRange(n, func(i int) {
			dst[i] = f(a[i], b[i])
		})
		return
	}

	outStrides := outShape.ComputeStrides()
	aStrides := computeBroadcastStridesForShape(aShape, outShape)
	bStrides := computeBroadcastStridesForShape(bShape, outShape)
	cpu.forRange(n, func(i int) {
		dst[i] = f(a[computeFlatIndex(i, outStrides, aStrides)], b[computeFlatIndex(i, outStrides, bStrides)])
	})
}

// unaryInto fills dst with f applied to src. dst may alias src.
func unaryInto[T, R tensor.DType](cpu *CPUBackend, dst []R, src []T, f func(x T) R) {
	cpu.forRange(len(src), func(i int) {
		dst[i] = f(src[i])
	})
}

// sameTypeBinary runs a dtype-preserving binary kernel, reusing the memory of
// an operand that is unique and already has the output shape.
func sameTypeBinary[T tensor.DType](cpu *CPUBackend, op string, a, b *tensor.RawTensor, f func(x, y T) T) *tensor.RawTensor {
	outShape := broadcastOutput(op, a, b)

	var result *tensor.RawTensor
	switch {
	case a.IsUnique() && a.Shape().Equal(outShape):
		result = a
	case b.IsUnique() && b.Shape().Equal(outShape):
		result = b
	default:
		result = cpu.newResult(op, outShape, a.DType())
	}

	binaryInto(cpu, tensor.Data[T](result), tensor.Data[T](a), tensor.Data[T](b), a.Shape(), b.Shape(), outShape, f)
	return result
}

// predicateBinary runs a binary kernel producing a bool tensor.
func predicateBinary[T tensor.DType](cpu *CPUBackend, op string, a, b *tensor.RawTensor, f func(x, y T) bool) *tensor.RawTensor {
	outShape := broadcastOutput(op, a, b)
	result := cpu.newResult(op, outShape, tensor.Bool)
	binaryInto(cpu, result.AsBool(), tensor.Data[T](a), tensor.Data[T](b), a.Shape(), b.Shape(), outShape, f)
	return result
}

// sameTypeUnary runs a dtype-preserving unary kernel, in place when x is unique.
func sameTypeUnary[T tensor.DType](cpu *CPUBackend, op string, x *tensor.RawTensor, f func(v T) T) *tensor.RawTensor {
	result := x
	if !x.IsUnique() {
		result = cpu.newResult(op, x.Shape(), x.DType())
	}
	unaryInto(cpu, tensor.Data[T](result), tensor.Data[T](x), f)
	return result
}

// numericFns holds one instantiation of a generic operation per numeric dtype.
// A nil entry means the dtype is unsupported.
type numericFns struct {
	f32 func(x, y float32) float32
	f64 func(x, y float64) float64
	i32 func(x, y int32) int32
	i64 func(x, y int64) int64
	u8  func(x, y uint8) uint8
}

func (cpu *CPUBackend) numericBinary(op string, a, b *tensor.RawTensor, fns numericFns) *tensor.RawTensor {
	switch {
	case a.DType() == tensor.Float32 && fns.f32 != nil:
		return sameTypeBinary(cpu, op, a, b, fns.f32)
	case a.DType() == tensor.Float64 && fns.f64 != nil:
		return sameTypeBinary(cpu, op, a, b, fns.f64)
	case a.DType() == tensor.Int32 && fns.i32 != nil:
		return sameTypeBinary(cpu, op, a, b, fns.i32)
	case a.DType() == tensor.Int64 && fns.i64 != nil:
		return sameTypeBinary(cpu, op, a, b, fns.i64)
	case a.DType() == tensor.Uint8 && fns.u8 != nil:
		return sameTypeBinary(cpu, op, a, b, fns.u8)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, a.DType()))
	}
}

// floatUnary applies f in float64 precision to a float32 or float64 tensor.
func (cpu *CPUBackend) floatUnary(op string, x *tensor.RawTensor, f func(v float64) float64) *tensor.RawTensor {
	switch x.DType() {
	case tensor.Float32:
		return sameTypeUnary(cpu, op, x, func(v float32) float32 { return float32(f(float64(v))) })
	case tensor.Float64:
		return sameTypeUnary(cpu, op, x, f)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32/float64 supported)", op, x.DType()))
	}
}
