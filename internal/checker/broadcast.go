package checker

import (
	"github.com/pkg/errors"

	"github.com/born-ml/opcheck/internal/gen"
	"github.com/born-ml/opcheck/internal/operator"
	"github.com/born-ml/opcheck/internal/reference"
	"github.com/born-ml/opcheck/internal/tensor"
)

// ShapeScenario is a pair of operand shapes for a binary operator.
type ShapeScenario struct {
	Name string
	A, B tensor.Shape
}

// BroadcastScenarios returns the six operand shape pairs binary operators are
// checked with. Each pair broadcasts to (n, m, k, t).
func BroadcastScenarios(n, m, k, t int) []ShapeScenario {
	full := tensor.Shape{n, m, k, t}
	return []ShapeScenario{
		{Name: "same shape", A: full, B: full},
		{Name: "scalar", A: tensor.Shape{1}, B: full},
		{Name: "trailing", A: tensor.Shape{k, t}, B: full},
		{Name: "leading", A: tensor.Shape{n, m, 1, 1}, B: full},
		{Name: "inner", A: tensor.Shape{m, 1, t}, B: full},
		{Name: "interleaved", A: tensor.Shape{1, m, 1, t}, B: tensor.Shape{n, 1, k, 1}},
	}
}

// BinaryCase describes a binary operator under check.
type BinaryCase struct {
	Op  string
	Ref func(a, b *tensor.RawTensor) (*tensor.RawTensor, error)

	// Bias is added to uniform [0, 1) float operands.
	Bias float64
	// Grad enables gradient checks for both operands.
	Grad bool
	// Integer draws int64 operands in [0, 128) instead of floats.
	Integer bool
}

// CheckBinaryOp checks c.Op on every broadcast scenario with both operand
// orders. Each order runs a reference check, a device check and, when c.Grad
// is set, a gradient check per operand.
func (h *Harness) CheckBinaryOp(g *gen.Generator, c BinaryCase, n, m, k, t int) error {
	def, err := operator.Create(c.Op, []string{"A", "B"}, []string{"C"})
	if err != nil {
		return err
	}
	ref := reference.Binary(c.Ref)

	for _, sc := range BroadcastScenarios(n, m, k, t) {
		a, b := c.operand(g, sc.A), c.operand(g, sc.B)
		if err := h.checkBinaryOnce(def, ref, a, b, c.Grad); err != nil {
			return errors.Wrapf(err, "%s %s (A, B) with A%v B%v", c.Op, sc.Name, sc.A, sc.B)
		}
		if err := h.checkBinaryOnce(def, ref, b, a, c.Grad); err != nil {
			return errors.Wrapf(err, "%s %s (B, A) with A%v B%v", c.Op, sc.Name, sc.B, sc.A)
		}
	}
	return nil
}

func (c BinaryCase) operand(g *gen.Generator, shape tensor.Shape) *tensor.RawTensor {
	if c.Integer {
		return g.RandInt(shape, 128, tensor.Int64)
	}
	return g.RandBias(shape, c.Bias, tensor.Float32)
}

func (h *Harness) checkBinaryOnce(def *operator.OperatorDef, ref reference.Func, a, b *tensor.RawTensor, grad bool) error {
	inputs := []*tensor.RawTensor{a, b}
	if err := h.CheckReference(def, inputs, ref); err != nil {
		return err
	}
	if err := h.CheckDevices(def, inputs, []int{0}); err != nil {
		return err
	}
	if !grad {
		return nil
	}
	for i := range inputs {
		if err := h.CheckGradient(def, inputs, i, []int{0}); err != nil {
			return errors.Wrapf(err, "gradient w.r.t. input %d", i)
		}
	}
	return nil
}
