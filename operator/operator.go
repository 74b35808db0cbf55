// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package operator provides operator descriptors, nets and the operator
// registry.
//
// An OperatorDef names an operator type, its input and output blobs, and its
// arguments. Create validates a descriptor against the registered schema:
// arity, argument types and allowed in-place aliases.
//
// Example:
//
//	import "github.com/born-ml/opcheck/operator"
//
//	func main() {
//	    def, err := operator.Create("Add", []string{"A", "B"}, []string{"C"},
//	        operator.Arg("broadcast", 1), operator.Arg("axis", 0))
//
//	    net := operator.NewNet("net")
//	    outs, err := net.Add("EQ", []string{"X", "Y"}, 1)
//	}
package operator

import (
	"github.com/born-ml/opcheck/internal/operator"
)

// Descriptor validation errors.
var (
	ErrUnknownOperator = operator.ErrUnknownOperator
	ErrArity           = operator.ErrArity
	ErrInplace         = operator.ErrInplace
	ErrNoGradient      = operator.ErrNoGradient
)

// OperatorDef is an operator descriptor.
type OperatorDef = operator.OperatorDef

// Argument is a named operator argument.
type Argument = operator.Argument

// Net is a named, ordered list of operator descriptors.
type Net = operator.Net

// Registry maps operator types to their schemas.
type Registry = operator.Registry

// Schema describes an operator type: arity, kernel, inference and gradient.
type Schema = operator.Schema

// Handler computes an operator's outputs.
type Handler = operator.Handler

// Context provides the backend an operator executes on.
type Context = operator.Context

// TensorShape is the inferred shape and data type of one blob.
type TensorShape = operator.TensorShape

// InferFunc computes output shapes from input shapes.
type InferFunc = operator.InferFunc

// GradientSpec is the backward pass of one forward operator.
type GradientSpec = operator.GradientSpec

// GradientMaker builds the gradient operators of a forward operator.
type GradientMaker = operator.GradientMaker

// Arg creates an argument from an int, bool, float, string or integer slice.
// It panics on any other value type.
func Arg(name string, value any) Argument {
	return operator.Arg(name, value)
}

// Create builds and validates a descriptor against the default registry.
func Create(opType string, inputs, outputs []string, args ...Argument) (*OperatorDef, error) {
	return operator.Create(opType, inputs, outputs, args...)
}

// MustCreate is Create that panics on an invalid descriptor.
func MustCreate(opType string, inputs, outputs []string, args ...Argument) *OperatorDef {
	return operator.MustCreate(opType, inputs, outputs, args...)
}

// Default returns the registry holding every built-in operator.
func Default() *Registry {
	return operator.Default()
}

// NewRegistry returns a registry holding every built-in operator that callers
// may extend with Register without affecting Default.
func NewRegistry() *Registry {
	return operator.NewRegistry()
}

// NewNet creates an empty net backed by the default registry.
func NewNet(name string) *Net {
	return operator.NewNet(name)
}

// NewNetWithRegistry creates an empty net that validates against r.
func NewNetWithRegistry(name string, r *Registry) *Net {
	return operator.NewNetWithRegistry(name, r)
}

// GradientName returns the conventional gradient blob name of blob.
func GradientName(blob string) string {
	return operator.GradientName(blob)
}
