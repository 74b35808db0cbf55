// Package ops implements the closed-form backward kernels behind the
// registered gradient operators.
//
// Binary ops (binary.go) sum their gradients back to the operand shapes.
// Unary ops (unary.go) are written in X or Y, whichever is cheaper.
//
// Backward never writes into the recorded inputs or the output gradient;
// intermediate results are reused in place.
package ops

import "github.com/born-ml/opcheck/internal/tensor"

// Operation is a recorded forward call that can produce input gradients.
type Operation interface {
	// Backward returns one gradient per input, in input order.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	Inputs() []*tensor.RawTensor
	Output() *tensor.RawTensor
}
