// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backends for tensor kernels.
//
// # Overview
//
// This package implements two devices over the same kernels:
//   - CPU: sequential loops (New)
//   - ParallelCPU: loops split into chunks across goroutines (NewParallel)
//   - NumPy-compatible broadcasting for every binary kernel
//   - In-place writes when the first operand's buffer is unique
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/opcheck/backend/cpu"
//	    "github.com/born-ml/opcheck/tensor"
//	)
//
//	func main() {
//	    backend := cpu.NewParallel(cpu.ParallelConfig{Enabled: true, NumWorkers: 4, MinChunkSize: 1024})
//
//	    x := tensor.MustFromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.ParallelCPU)
//	    y := backend.Log(x)
//	}
//
// Kernels panic on invalid input, such as incompatible shapes or a
// float operand to a bitwise kernel. Operators run through a workspace
// report these as errors instead.
package cpu
