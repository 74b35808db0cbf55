package gen

import (
	"github.com/born-ml/opcheck/internal/tensor"
)

// TensorSpec describes the tensors DrawTensor may produce.
type TensorSpec struct {
	MinDims, MaxDims   int // rank range
	MinValue, MaxValue int // per-dimension size range; MinValue 0 allows empty tensors
	Low, High          float64
	DataType           tensor.DataType
}

// DefaultTensorSpec returns rank 1 to 4, dimensions 1 to 10 and float32
// elements in [-1, 1).
func DefaultTensorSpec() TensorSpec {
	return TensorSpec{
		MinDims:  1,
		MaxDims:  4,
		MinValue: 1,
		MaxValue: 10,
		Low:      -1,
		High:     1,
		DataType: tensor.Float32,
	}
}

// DrawShape draws a shape within the spec's rank and size ranges.
func DrawShape(d Drawer, spec TensorSpec) tensor.Shape {
	rank := d.Int(spec.MinDims, spec.MaxDims, "rank")
	shape := make(tensor.Shape, rank)
	for i := range shape {
		shape[i] = d.Int(spec.MinValue, spec.MaxValue, "dim")
	}
	return shape
}

// DrawTensor draws a shape from d and fills it from g. Integer specs draw
// values in [Low, High).
func DrawTensor(d Drawer, g *Generator, spec TensorSpec) *tensor.RawTensor {
	shape := DrawShape(d, spec)
	if spec.DataType.IsFloat() {
		return g.Uniform(shape, spec.Low, spec.High, spec.DataType)
	}
	n := int(spec.High - spec.Low)
	t := g.RandInt(shape, max(n, 1), spec.DataType)
	if spec.Low == 0 || spec.DataType == tensor.Bool {
		return t
	}
	values := tensor.ToFloat64(t)
	for i := range values {
		values[i] += spec.Low
	}
	return g.build(values, shape, spec.DataType)
}
