// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/opcheck/internal/tensor"

// Backend defines the elementwise kernels every compute device implements.
// Binary kernels follow NumPy broadcasting. Kernels panic on invalid input;
// operators run through a workspace convert those panics into errors.
//
// Implementations:
//   - backend/cpu: sequential and parallel pure Go kernels
//
// Example:
//
//	import (
//	    "github.com/born-ml/opcheck/backend/cpu"
//	    "github.com/born-ml/opcheck/tensor"
//	)
//
//	backend := cpu.New()
//	x := tensor.MustFromSlice([]float32{1, 4, 9}, tensor.Shape{3}, tensor.CPU)
//	y := backend.Sqrt(x) // [1 2 3]
type Backend = tensor.Backend
