package ops

import "github.com/born-ml/opcheck/internal/tensor"

// pair records the operands and result of a broadcasting binary operator.
type pair struct {
	a, b, out *tensor.RawTensor
}

func (p pair) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{p.a, p.b} }

func (p pair) Output() *tensor.RawTensor { return p.out }

// reduce sums dA and dB down to the operand shapes.
func (p pair) reduce(dA, dB *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		reduceBroadcast(dA, p.a.Shape(), backend),
		reduceBroadcast(dB, p.b.Shape(), backend),
	}
}

// AddOp passes dC through to both operands.
type AddOp struct{ pair }

// NewAddOp records c = a + b. c may be nil.
func NewAddOp(a, b, c *tensor.RawTensor) *AddOp { return &AddOp{pair{a, b, c}} }

// Backward returns (dC, dC) reduced to the shapes of a and b.
func (op *AddOp) Backward(dC *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return op.reduce(dC, dC, backend)
}

// SubOp is AddOp with the second gradient negated.
type SubOp struct{ pair }

// NewSubOp records c = a - b. c may be nil.
func NewSubOp(a, b, c *tensor.RawTensor) *SubOp { return &SubOp{pair{a, b, c}} }

// Backward returns (dC, -dC) reduced to the shapes of a and b.
func (op *SubOp) Backward(dC *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	defer guard(dC)()
	return op.reduce(dC, negateGradient(dC, backend), backend)
}

// MulOp scales dC by the opposite operand.
type MulOp struct{ pair }

// NewMulOp records c = a * b. c may be nil.
func NewMulOp(a, b, c *tensor.RawTensor) *MulOp { return &MulOp{pair{a, b, c}} }

// Backward returns (dC*b, dC*a).
func (op *MulOp) Backward(dC *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	defer guard(dC, op.a, op.b)()
	return op.reduce(backend.Mul(dC, op.b), backend.Mul(dC, op.a), backend)
}

// DivOp is the quotient rule. It does not reuse c, so a nil output is fine.
type DivOp struct{ pair }

// NewDivOp records c = a / b. c may be nil.
func NewDivOp(a, b, c *tensor.RawTensor) *DivOp { return &DivOp{pair{a, b, c}} }

// Backward returns (dC/b, -dC*a/b²).
func (op *DivOp) Backward(dC *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	defer guard(dC, op.a, op.b)()
	dA := backend.Div(dC, op.b)
	dB := negateGradient(backend.Div(backend.Mul(dC, op.a), backend.Mul(op.b, op.b)), backend)
	return op.reduce(dA, dB, backend)
}

// PowOp needs c for dB. dB is only defined for a > 0.
type PowOp struct{ pair }

// NewPowOp records c = a ^ b.
func NewPowOp(a, b, c *tensor.RawTensor) *PowOp { return &PowOp{pair{a, b, c}} }

// Backward returns (dC * b * a^(b-1), dC * c * ln(a)).
func (op *PowOp) Backward(dC *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	defer guard(dC, op.a, op.b, op.out)()
	bMinusOne := backend.Sub(op.b, filled(op.b, 1, backend.Device()))
	dA := backend.Mul(backend.Mul(dC, op.b), backend.Pow(op.a, bMinusOne))
	dB := backend.Mul(backend.Mul(dC, op.out), backend.Log(op.a))
	return op.reduce(dA, dB, backend)
}
