package suite

import (
	"github.com/pkg/errors"

	"github.com/born-ml/opcheck/internal/checker"
	"github.com/born-ml/opcheck/internal/gen"
	"github.com/born-ml/opcheck/internal/operator"
	"github.com/born-ml/opcheck/internal/reference"
	"github.com/born-ml/opcheck/internal/tensor"
)

// matrixCase checks a unary operator on an (n, m) float32 matrix of
// rand + bias, with n in [0, 6] and m in [4, 6].
func matrixCase(name, op string, bias float64, ref func(*tensor.RawTensor) *tensor.RawTensor) Case {
	return Case{
		Name: name,
		Op:   op,
		Run: func(d gen.Drawer, h *checker.Harness) error {
			n, m := d.Int(0, 6, "n"), d.Int(4, 6, "m")
			x := generator(d).RandBias(tensor.Shape{n, m}, bias, tensor.Float32)

			def, err := operator.Create(op, []string{"X"}, []string{"Z"})
			if err != nil {
				return err
			}
			inputs := []*tensor.RawTensor{x}
			if err := h.CheckReference(def, inputs, reference.Unary(ref)); err != nil {
				return err
			}
			return h.CheckGradient(def, inputs, 0, []int{0},
				checker.WithStepsize(1e-4), checker.WithThreshold(1e-2))
		},
	}
}

// positiveCase checks a unary operator on a drawn tensor with elements in
// [0.1, 10], optionally in place.
func positiveCase(name, op string, minValue int, stepsize float64, ref func(*tensor.RawTensor) *tensor.RawTensor) Case {
	return Case{
		Name: name,
		Op:   op,
		Run: func(d gen.Drawer, h *checker.Harness) error {
			spec := gen.DefaultTensorSpec()
			spec.MinValue = minValue
			spec.Low, spec.High = 0.1, 10
			x := gen.DrawTensor(d, generator(d), spec)

			output := "Y"
			if d.Bool("inplace") {
				output = "X"
			}
			def, err := operator.Create(op, []string{"X"}, []string{output})
			if err != nil {
				return err
			}
			inputs := []*tensor.RawTensor{x}
			if err := h.CheckReference(def, inputs, reference.Unary(ref)); err != nil {
				return err
			}
			if err := h.CheckDevices(def, inputs, []int{0}); err != nil {
				return err
			}
			return h.CheckGradient(def, inputs, 0, []int{0}, checker.WithStepsize(stepsize))
		},
	}
}

func powCase() Case {
	return Case{
		Name: "pow",
		Op:   "Pow",
		Run: func(d gen.Drawer, h *checker.Harness) error {
			n, m, k := d.Int(0, 10, "n"), d.Int(4, 6, "m"), d.Int(2, 3, "d")
			g := generator(d)
			shape := tensor.Shape{n, m, k}
			x := g.RandBias(shape, 1, tensor.Float32)
			y := g.RandBias(shape, 2, tensor.Float32)

			def, err := operator.Create("Pow", []string{"X", "Y"}, []string{"Z"})
			if err != nil {
				return err
			}
			return h.CheckReference(def, []*tensor.RawTensor{x, y}, reference.Binary(reference.Pow),
				checker.WithGradReference("Z", reference.PowGrad))
		},
	}
}

func swishGradientInplaceCase() Case {
	return Case{
		Name: "swish_gradient_inplace",
		Op:   "SwishGradient",
		Run: func(d gen.Drawer, h *checker.Harness) error {
			n, m := d.Int(0, 6, "n"), d.Int(4, 6, "m")
			g := generator(d)
			x := g.Rand(tensor.Shape{n, m}, tensor.Float32)
			y := reference.Swish(x)
			dy := g.Rand(tensor.Shape{n, m}, tensor.Float32)

			def, err := operator.Create("SwishGradient", []string{"X", "Y", "grad"}, []string{"grad"})
			if err != nil {
				return err
			}
			if err := h.CheckReference(def, []*tensor.RawTensor{x, y, dy}, reference.SwishGradient); err != nil {
				return errors.Wrap(err, "in-place SwishGradient")
			}
			return nil
		},
	}
}

func unaryCases() []Case {
	return []Case{
		matrixCase("log", "Log", 1, reference.Log),
		powCase(),
		matrixCase("sqr", "Sqr", 0, reference.Sqr),
		positiveCase("sqrt", "Sqrt", 0, 1e-2, reference.Sqrt),
		positiveCase("rsqrt", "RSqrt", 1, 5e-3, reference.RSqrt),
		matrixCase("swish", "Swish", 0, reference.Swish),
		swishGradientInplaceCase(),
		matrixCase("sigmoid", "Sigmoid", 0, reference.Sigmoid),
	}
}
