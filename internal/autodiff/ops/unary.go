package ops

import "github.com/born-ml/opcheck/internal/tensor"

// single records X and Y of a unary operator. Gradient operators only
// carry the one their derivative is written in, so the other may be nil.
type single struct {
	x, y *tensor.RawTensor
}

func (s single) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{s.x} }

func (s single) Output() *tensor.RawTensor { return s.y }

// LogOp: dX = dY / X.
type LogOp struct{ single }

// NewLogOp needs x.
func NewLogOp(x, y *tensor.RawTensor) *LogOp { return &LogOp{single{x, y}} }

// Backward divides dY by the recorded input.
func (op *LogOp) Backward(dY *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	defer guard(dY, op.x)()
	return []*tensor.RawTensor{backend.Div(dY, op.x)}
}

// ExpOp: dX = dY * Y.
type ExpOp struct{ single }

// NewExpOp needs y.
func NewExpOp(x, y *tensor.RawTensor) *ExpOp { return &ExpOp{single{x, y}} }

func (op *ExpOp) Backward(dY *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	defer guard(dY, op.y)()
	return []*tensor.RawTensor{backend.Mul(dY, op.y)}
}

// SqrOp: dX = 2 * X * dY.
type SqrOp struct{ single }

// NewSqrOp needs x.
func NewSqrOp(x, y *tensor.RawTensor) *SqrOp { return &SqrOp{single{x, y}} }

func (op *SqrOp) Backward(dY *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	defer guard(dY, op.x)()
	return []*tensor.RawTensor{backend.MulScalar(backend.Mul(dY, op.x), 2)}
}

// SqrtOp: dX = 0.5 * dY / Y.
type SqrtOp struct{ single }

// NewSqrtOp needs y.
func NewSqrtOp(x, y *tensor.RawTensor) *SqrtOp { return &SqrtOp{single{x, y}} }

func (op *SqrtOp) Backward(dY *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	defer guard(dY, op.y)()
	return []*tensor.RawTensor{backend.Div(backend.MulScalar(dY, 0.5), op.y)}
}

// RsqrtOp: dX = -0.5 * Y³ * dY.
type RsqrtOp struct{ single }

// NewRsqrtOp needs y.
func NewRsqrtOp(x, y *tensor.RawTensor) *RsqrtOp { return &RsqrtOp{single{x, y}} }

func (op *RsqrtOp) Backward(dY *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	defer guard(dY, op.y)()
	cube := backend.Mul(backend.Mul(op.y, op.y), op.y)
	return []*tensor.RawTensor{backend.Mul(backend.MulScalar(cube, -0.5), dY)}
}

// SigmoidOp: dX = dY * Y * (1 - Y).
type SigmoidOp struct{ single }

// NewSigmoidOp needs y.
func NewSigmoidOp(x, y *tensor.RawTensor) *SigmoidOp { return &SigmoidOp{single{x, y}} }

func (op *SigmoidOp) Backward(dY *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	defer guard(dY, op.y)()
	oneMinus := backend.Sub(filled(op.y, 1, backend.Device()), op.y)
	return []*tensor.RawTensor{backend.Mul(backend.Mul(oneMinus, op.y), dY)}
}

// SwishOp needs both x and y:
//
//	dX = dY * (Y + sigmoid(X) * (1 - Y))
type SwishOp struct{ single }

// NewSwishOp records y = x * sigmoid(x).
func NewSwishOp(x, y *tensor.RawTensor) *SwishOp { return &SwishOp{single{x, y}} }

func (op *SwishOp) Backward(dY *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	defer guard(dY, op.x, op.y)()
	oneMinus := backend.Sub(filled(op.y, 1, backend.Device()), op.y)
	d := backend.Add(backend.Mul(oneMinus, backend.Sigmoid(op.x)), op.y)
	return []*tensor.RawTensor{backend.Mul(d, dY)}
}
