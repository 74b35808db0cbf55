package cpu

import (
	"testing"

	"github.com/born-ml/opcheck/internal/tensor"
)

func TestSumTo(t *testing.T) {
	backend := New()
	x := tensor.MustFromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.CPU)

	tests := []struct {
		name     string
		shape    tensor.Shape
		expected []float64
	}{
		{"rows", tensor.Shape{3}, []float64{5, 7, 9}},
		{"keep rows", tensor.Shape{2, 1}, []float64{6, 15}},
		{"scalar", tensor.Shape{}, []float64{21}},
		{"same shape", tensor.Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := backend.SumTo(x, tt.shape)
			if !result.Shape().Equal(tt.shape) {
				t.Fatalf("Expected shape %v, got %v", tt.shape, result.Shape())
			}
			if !float64SliceEqual(tensor.ToFloat64(result), tt.expected) {
				t.Errorf("got %v, expected %v", tensor.ToFloat64(result), tt.expected)
			}
		})
	}
}

func TestSumTo_Integer(t *testing.T) {
	backend := New()
	x := tensor.MustFromSlice([]int64{1, 2, 3, 4}, tensor.Shape{2, 1, 2}, tensor.CPU)

	result := backend.SumTo(x, tensor.Shape{1, 2})

	expected := []int64{4, 6}
	for i, v := range result.AsInt64() {
		if v != expected[i] {
			t.Fatalf("got %v, expected %v", result.AsInt64(), expected)
		}
	}
}

func TestSumTo_Incompatible(t *testing.T) {
	backend := New()
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for a shape that does not broadcast")
		}
	}()
	x := tensor.Zeros(tensor.Shape{2, 3}, tensor.Float64, tensor.CPU)
	backend.SumTo(x, tensor.Shape{2})
}
