package cpu

import (
	"math"
	"testing"

	"github.com/born-ml/opcheck/internal/tensor"
)

const epsilon = 1e-5

func TestFloatUnary(t *testing.T) {
	backend := New()

	tests := []struct {
		name  string
		op    func(x *tensor.RawTensor) *tensor.RawTensor
		ref   func(v float64) float64
		input []float32
	}{
		{"exp", backend.Exp, math.Exp, []float32{-3, -1, 0, 2}},
		{"log", backend.Log, math.Log, []float32{0.5, 1, 2, 10}},
		{"sqr", backend.Sqr, func(v float64) float64 { return v * v }, []float32{-3, 0, 1.5, 4}},
		{"sqrt", backend.Sqrt, math.Sqrt, []float32{0, 0.25, 4, 9}},
		{"rsqrt", backend.Rsqrt, func(v float64) float64 { return 1 / math.Sqrt(v) }, []float32{0.25, 1, 4, 16}},
		{"neg", backend.Neg, func(v float64) float64 { return -v }, []float32{-1, 0, 2, 3.5}},
		{"sigmoid", backend.Sigmoid, func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }, []float32{-5, 0, 1, 5}},
		{"swish", backend.Swish, func(v float64) float64 { return v / (1 + math.Exp(-v)) }, []float32{-5, 0, 1, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := tensor.MustFromSlice(tt.input, tensor.Shape{2, 2}, backend.Device())
			x.ForceNonUnique()

			result := tt.op(x)

			if !result.Shape().Equal(tensor.Shape{2, 2}) {
				t.Errorf("Expected shape (2, 2), got %v", result.Shape())
			}
			output := result.AsFloat32()
			for i, v := range tt.input {
				expected := tt.ref(float64(v))
				if math.Abs(float64(output[i])-expected) > epsilon {
					t.Errorf("%s(%f) = %f, expected %f", tt.name, v, output[i], expected)
				}
			}
			for i, v := range x.AsFloat32() {
				if v != tt.input[i] {
					t.Fatalf("shared input modified: %v", x.AsFloat32())
				}
			}
		})
	}
}

func TestUnaryInPlace(t *testing.T) {
	backend := New()
	x := tensor.MustFromSlice([]float64{1, 4, 9}, tensor.Shape{3}, backend.Device())

	result := backend.Sqrt(x)

	if !result.SameBuffer(x) {
		t.Fatal("Expected unique input to be reused")
	}
	if !float64SliceEqual(x.AsFloat64(), []float64{1, 2, 3}) {
		t.Errorf("got %v", x.AsFloat64())
	}
}

func TestDomainErrors(t *testing.T) {
	backend := New()

	tests := []struct {
		name  string
		op    func(x *tensor.RawTensor) *tensor.RawTensor
		input []float64
	}{
		{"log zero", backend.Log, []float64{1, 0}},
		{"log negative", backend.Log, []float64{-1}},
		{"sqrt negative", backend.Sqrt, []float64{4, -0.1}},
		{"rsqrt zero", backend.Rsqrt, []float64{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := tensor.MustFromSlice(tt.input, tensor.Shape{len(tt.input)}, backend.Device())
			defer func() {
				if recover() == nil {
					t.Errorf("Expected panic for %v", tt.input)
				}
				if x.AsFloat64()[0] != tt.input[0] {
					t.Error("Input modified before the domain check")
				}
			}()
			tt.op(x)
		})
	}
}

func TestFloatOnly(t *testing.T) {
	backend := New()
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for integer exp")
		}
	}()
	backend.Exp(tensor.MustFromSlice([]int32{1}, tensor.Shape{1}, tensor.CPU))
}

func TestMulScalar(t *testing.T) {
	backend := New()
	x := tensor.MustFromSlice([]int64{1, -2, 3}, tensor.Shape{3}, backend.Device())
	result := backend.MulScalar(x, 3)
	expected := []int64{3, -6, 9}
	for i, v := range result.AsInt64() {
		if v != expected[i] {
			t.Fatalf("got %v, expected %v", result.AsInt64(), expected)
		}
	}
}
