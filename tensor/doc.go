// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the tensor data model used by opcheck operators.
//
// # Overview
//
// Tensors are the values flowing through operators. This package provides:
//   - RawTensor: a shaped, typed, reference-counted buffer
//   - NumPy-style broadcasting (BroadcastShapes) and the legacy
//     axis-aligned form (LegacyBroadcastShape)
//   - Device abstraction (CPU, ParallelCPU)
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/opcheck/backend/cpu"
//	    "github.com/born-ml/opcheck/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.MustFromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.CPU)
//	    y := tensor.MustFromSlice([]float32{10, 20, 30}, tensor.Shape{3}, tensor.CPU)
//	    z := backend.Add(x, y) // (2, 3)
//	}
//
// # Supported Data Types
//
// The DType constraint covers:
//   - float32, float64 (floating-point)
//   - int32, int64 (signed integers)
//   - uint8 (unsigned integers)
//   - bool (comparison results and masks)
//
// # Devices
//
//   - CPU: sequential pure Go kernels
//   - ParallelCPU: the same kernels split across goroutines
//
// Results must agree across devices; the checker package verifies that.
//
// # Memory Management
//
// Buffers are reference-counted. Clone and Reshape share the buffer, and a
// kernel may overwrite its input only while the buffer is unique. DeepCopy
// returns a private copy.
package tensor
