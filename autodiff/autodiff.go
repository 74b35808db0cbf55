// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff generates backward passes from operator gradient makers.
//
// A GradientTape records forward operator descriptors. Backward walks them in
// reverse and returns the gradient operators together with the gradient blob
// of every forward blob that received one.
//
// Example:
//
//	import (
//	    "github.com/born-ml/opcheck/autodiff"
//	    "github.com/born-ml/opcheck/operator"
//	)
//
//	func main() {
//	    tape := autodiff.NewGradientTape(operator.Default())
//	    tape.StartRecording()
//	    tape.Record(operator.MustCreate("Log", []string{"X"}, []string{"Y"}))
//
//	    pass, err := tape.Backward(map[string]string{"Y": "Y_grad"})
//	    // pass.Ops: [LogGradient(X, Y_grad) -> X_grad]
//	    // pass.Grads["X"] == "X_grad"
//	}
package autodiff

import (
	"github.com/born-ml/opcheck/internal/autodiff"
	"github.com/born-ml/opcheck/internal/operator"
)

// GradientTape records operators for automatic differentiation.
type GradientTape = autodiff.GradientTape

// Pass is a generated backward pass.
type Pass = autodiff.Pass

// NewGradientTape creates a new gradient tape resolving gradients through r.
func NewGradientTape(r *operator.Registry) *GradientTape {
	return autodiff.NewGradientTape(r)
}

// BackwardPass generates the gradient operators of ops given the gradient
// blob of each seeded output.
//
// Example:
//
//	pass, err := autodiff.BackwardPass(operator.Default(), net.Ops, map[string]string{"Z": "Z_grad"})
func BackwardPass(r *operator.Registry, ops []*operator.OperatorDef, outputGrads map[string]string) (*Pass, error) {
	return autodiff.BackwardPass(r, ops, outputGrads)
}
