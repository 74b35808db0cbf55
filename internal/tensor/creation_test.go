package tensor

import (
	"strings"
	"testing"
)

func TestFromSlice(t *testing.T) {
	raw, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, CPU)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if raw.DType() != Float32 {
		t.Errorf("DType = %v, want float32", raw.DType())
	}
	if raw.AsFloat32()[5] != 6 {
		t.Errorf("last element = %v, want 6", raw.AsFloat32()[5])
	}

	if _, err := FromSlice([]int64{1, 2}, Shape{3}, CPU); err == nil {
		t.Error("FromSlice with wrong element count should fail")
	}
}

func TestFull(t *testing.T) {
	raw := Full(Shape{2, 2}, int32(7), ParallelCPU)
	for i, v := range raw.AsInt32() {
		if v != 7 {
			t.Errorf("element %d = %d, want 7", i, v)
		}
	}
	if raw.Device() != ParallelCPU {
		t.Errorf("Device = %v, want ParallelCPU", raw.Device())
	}
}

func TestToFloat64RoundTrip(t *testing.T) {
	for _, dtype := range []DataType{Float32, Float64, Int32, Int64, Uint8, Bool} {
		values := []float64{0, 1, 1, 0}
		raw, err := FromFloat64(values, Shape{2, 2}, dtype, CPU)
		if err != nil {
			t.Fatalf("FromFloat64(%v) failed: %v", dtype, err)
		}
		got := ToFloat64(raw)
		for i := range values {
			if got[i] != values[i] {
				t.Errorf("%v: element %d = %v, want %v", dtype, i, got[i], values[i])
			}
		}
	}
}

func TestFormatTruncates(t *testing.T) {
	raw := MustFromSlice([]int64{1, 2, 3, 4, 5}, Shape{5}, CPU)
	got := Format(raw, 2)
	if !strings.Contains(got, "[1 2 ... (3 more)]") {
		t.Errorf("Format = %q", got)
	}
}

func TestDataTypeOf(t *testing.T) {
	if DataTypeOf[float32]() != Float32 || DataTypeOf[bool]() != Bool || DataTypeOf[int64]() != Int64 {
		t.Error("DataTypeOf returned the wrong runtime type")
	}
	if dt, ok := ParseDataType("uint8"); !ok || dt != Uint8 {
		t.Errorf("ParseDataType(uint8) = %v, %v", dt, ok)
	}
}
