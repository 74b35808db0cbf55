// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/opcheck/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for tensor element types.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Device represents the device a tensor is computed on.
type Device = tensor.Device

// Device constants.
const (
	CPU         Device = tensor.CPU
	ParallelCPU Device = tensor.ParallelCPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
// An empty Shape is a scalar; a zero dimension makes the tensor empty.
type Shape = tensor.Shape

// ParseDevice converts "CPU" or "ParallelCPU" into a Device.
func ParseDevice(s string) (Device, error) {
	return tensor.ParseDevice(s)
}

// ParseDataType converts a data type name such as "float32" into a DataType.
func ParseDataType(s string) (DataType, bool) {
	return tensor.ParseDataType(s)
}

// BroadcastShapes returns the NumPy broadcast of a and b, and whether any
// broadcasting was needed.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}

// LegacyBroadcastShape validates the axis-aligned broadcast of b into a and
// returns the result shape, which is always a.
func LegacyBroadcastShape(a, b Shape, axis int) (Shape, error) {
	return tensor.LegacyBroadcastShape(a, b, axis)
}

// FromSlice creates a tensor from data, copying it.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.CPU)
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromSlice(data, shape, device)
}

// MustFromSlice is FromSlice that panics on error.
func MustFromSlice[T DType](data []T, shape Shape, device Device) *RawTensor {
	return tensor.MustFromSlice(data, shape, device)
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType, device Device) *RawTensor {
	return tensor.Zeros(shape, dtype, device)
}

// Full creates a tensor with every element set to value.
func Full[T DType](shape Shape, value T, device Device) *RawTensor {
	return tensor.Full(shape, value, device)
}

// ToFloat64 returns the elements of t converted to float64.
func ToFloat64(t *RawTensor) []float64 {
	return tensor.ToFloat64(t)
}

// Format renders up to limit elements of t for error messages.
func Format(t *RawTensor, limit int) string {
	return tensor.Format(t, limit)
}
