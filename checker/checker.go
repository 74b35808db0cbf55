// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package checker verifies operators against reference functions, across
// devices and against numerical gradients.
//
// Example:
//
//	import (
//	    "github.com/born-ml/opcheck/checker"
//	    "github.com/born-ml/opcheck/operator"
//	    "github.com/born-ml/opcheck/tensor"
//	)
//
//	func main() {
//	    h := checker.NewHarness()
//	    g := checker.NewGenerator(42)
//
//	    def := operator.MustCreate("Sqr", []string{"X"}, []string{"Y"})
//	    x := g.Rand(tensor.Shape{3, 4}, tensor.Float32)
//
//	    err := h.CheckReference(def, []*tensor.RawTensor{x}, checker.Unary(mySqr))
//	    if errors.Is(err, checker.ErrMismatch) {
//	        // the operator disagrees with mySqr
//	    }
//	    err = h.CheckGradient(def, []*tensor.RawTensor{x}, 0, []int{0})
//	}
package checker

import (
	"github.com/born-ml/opcheck/internal/checker"
	"github.com/born-ml/opcheck/internal/gen"
	"github.com/born-ml/opcheck/internal/reference"
	"github.com/born-ml/opcheck/internal/tensor"
	"github.com/born-ml/opcheck/internal/workspace"
)

// ErrMismatch matches every *MismatchError.
var ErrMismatch = checker.ErrMismatch

// Default check settings.
const (
	DefaultAtol          = checker.DefaultAtol
	DefaultRtol          = checker.DefaultRtol
	DefaultStepsize      = checker.DefaultStepsize
	DefaultThreshold     = checker.DefaultThreshold
	DefaultGradThreshold = checker.DefaultGradThreshold
)

// Harness runs reference, device and gradient checks.
type Harness = checker.Harness

// Tolerance bounds the allowed difference |got − want| ≤ Atol + Rtol·|want|.
type Tolerance = checker.Tolerance

// GradientConfig controls numerical gradient checks.
type GradientConfig = checker.GradientConfig

// MismatchError describes an assertion failure.
type MismatchError = checker.MismatchError

// ReferenceOption configures CheckReference.
type ReferenceOption = checker.ReferenceOption

// GradientOption configures CheckGradient.
type GradientOption = checker.GradientOption

// ShapeScenario is a pair of operand shapes for a binary operator.
type ShapeScenario = checker.ShapeScenario

// BinaryCase describes a binary operator checked by CheckBinaryOp.
type BinaryCase = checker.BinaryCase

// ReferenceFunc computes the expected outputs of an operator from its inputs.
type ReferenceFunc = reference.Func

// GradReferenceFunc computes the expected input gradients of an operator.
type GradReferenceFunc = reference.GradFunc

// Generator draws tensors from an explicit seed.
type Generator = gen.Generator

// Workspace holds named blobs and runs operators.
type Workspace = workspace.Workspace

// NewHarness returns a harness checking on CPU and comparing CPU against
// ParallelCPU with the default tolerances.
func NewHarness() *Harness {
	return checker.NewHarness()
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	return gen.NewGenerator(seed)
}

// BroadcastScenarios returns the six operand shape pairs that broadcast to
// (n, m, k, t).
func BroadcastScenarios(n, m, k, t int) []ShapeScenario {
	return checker.BroadcastScenarios(n, m, k, t)
}

// Unary adapts a single-input, single-output function to a ReferenceFunc.
func Unary(f func(x *tensor.RawTensor) *tensor.RawTensor) ReferenceFunc {
	return reference.Unary(f)
}

// Binary adapts a two-input, single-output function to a ReferenceFunc.
func Binary(f func(a, b *tensor.RawTensor) (*tensor.RawTensor, error)) ReferenceFunc {
	return reference.Binary(f)
}

// WithGradReference compares the gradients of output against ref.
func WithGradReference(output string, ref GradReferenceFunc) ReferenceOption {
	return checker.WithGradReference(output, ref)
}

// WithGradThreshold sets the tolerance of the gradient reference comparison.
func WithGradThreshold(threshold float64) ReferenceOption {
	return checker.WithGradThreshold(threshold)
}

// WithStepsize sets the finite difference step of CheckGradient.
func WithStepsize(stepsize float64) GradientOption {
	return checker.WithStepsize(stepsize)
}

// WithThreshold sets the tolerance of CheckGradient.
func WithThreshold(threshold float64) GradientOption {
	return checker.WithThreshold(threshold)
}
