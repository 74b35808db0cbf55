package cpu

import (
	"fmt"

	"github.com/born-ml/opcheck/internal/tensor"
)

// SumTo reduces x to shape by summing over broadcast dimensions.
// shape must broadcast to x's shape. Float sums accumulate in float64.
func (cpu *CPUBackend) SumTo(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	xShape := x.Shape()
	if bs, _, err := tensor.BroadcastShapes(shape, xShape); err != nil || !bs.Equal(xShape) {
		panic(fmt.Sprintf("sumTo: shape %v does not broadcast to %v", shape, xShape))
	}

	result := cpu.newResult("sumTo", shape, x.DType())
	if shape.Equal(xShape) {
		copy(result.Bytes(), x.Bytes())
		return result
	}

	switch x.DType() {
	case tensor.Float32:
		sumToFloat(tensor.Data[float32](result), x.AsFloat32(), shape, xShape)
	case tensor.Float64:
		sumToFloat(tensor.Data[float64](result), x.AsFloat64(), shape, xShape)
	case tensor.Int32:
		sumToInt(tensor.Data[int32](result), x.AsInt32(), shape, xShape)
	case tensor.Int64:
		sumToInt(tensor.Data[int64](result), x.AsInt64(), shape, xShape)
	case tensor.Uint8:
		sumToInt(tensor.Data[uint8](result), x.AsUint8(), shape, xShape)
	default:
		panic(fmt.Sprintf("sumTo: unsupported dtype %s", x.DType()))
	}
	return result
}

// sumToFloat sequentially scatters src into dst; several source elements map
// to one destination so the loop is not split across workers.
func sumToFloat[T tensor.Float](dst, src []T, dstShape, srcShape tensor.Shape) {
	acc := make([]float64, len(dst))
	srcStrides := srcShape.ComputeStrides()
	dstStrides := computeBroadcastStridesForShape(dstShape, srcShape)
	for i, v := range src {
		acc[computeFlatIndex(i, srcStrides, dstStrides)] += float64(v)
	}
	for i, v := range acc {
		dst[i] = T(v)
	}
}

func sumToInt[T tensor.Integer](dst, src []T, dstShape, srcShape tensor.Shape) {
	clear(dst)
	srcStrides := srcShape.ComputeStrides()
	dstStrides := computeBroadcastStridesForShape(dstShape, srcShape)
	for i, v := range src {
		dst[computeFlatIndex(i, srcStrides, dstStrides)] += v
	}
}
