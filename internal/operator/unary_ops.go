package operator

import (
	"github.com/born-ml/opcheck/internal/tensor"
)

// registerUnaryOps adds elementwise math and activation operators.
func (r *Registry) registerUnaryOps() {
	unary := []struct {
		typ      string
		doc      string
		kernel   func(be tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor
		gradient GradientMaker
	}{
		{"Log", "Y = ln(X)", tensor.Backend.Log, unaryGradient("LogGradient", gradFromInput)},
		{"Exp", "Y = exp(X)", tensor.Backend.Exp, unaryGradient("ExpGradient", gradFromOutput)},
		{"Sqr", "Y = X^2", tensor.Backend.Sqr, unaryGradient("SqrGradient", gradFromInput)},
		{"Sqrt", "Y = sqrt(X)", tensor.Backend.Sqrt, unaryGradient("SqrtGradient", gradFromOutput)},
		{"RSqrt", "Y = 1/sqrt(X)", tensor.Backend.Rsqrt, unaryGradient("RSqrtGradient", gradFromOutput)},
		{"Sigmoid", "Y = 1/(1+exp(-X))", tensor.Backend.Sigmoid, unaryGradient("SigmoidGradient", gradFromOutput)},
		{"Swish", "Y = X/(1+exp(-X))", tensor.Backend.Swish, swishGradient},
	}
	for _, op := range unary {
		r.Register(&Schema{
			Type:       op.typ,
			Doc:        op.doc,
			MinInputs:  1,
			MaxInputs:  1,
			MinOutputs: 1,
			MaxOutputs: 1,
			Inplace:    map[int]int{0: 0},
			Handler:    unaryHandler(op.kernel),
			Infer:      inferSame,
			Gradient:   op.gradient,
		})
	}
}

// gradSource selects which forward blob a unary gradient operator reads.
type gradSource int

const (
	gradFromInput gradSource = iota
	gradFromOutput
)

// unaryGradient emits typ(X or Y, dY) -> dX.
func unaryGradient(typ string, src gradSource) GradientMaker {
	return func(def *OperatorDef, outputGrads []string) GradientSpec {
		from := def.Inputs[0]
		if src == gradFromOutput {
			from = def.Outputs[0]
		}
		gradX := GradientName(def.Inputs[0])
		return GradientSpec{
			Ops: []*OperatorDef{{
				Type:    typ,
				Inputs:  []string{from, outputGrads[0]},
				Outputs: []string{gradX},
			}},
			InputGrads: []string{gradX},
		}
	}
}

// swishGradient emits SwishGradient(X, Y, dY) -> dX.
func swishGradient(def *OperatorDef, outputGrads []string) GradientSpec {
	gradX := GradientName(def.Inputs[0])
	return GradientSpec{
		Ops: []*OperatorDef{{
			Type:    "SwishGradient",
			Inputs:  []string{def.Inputs[0], def.Outputs[0], outputGrads[0]},
			Outputs: []string{gradX},
		}},
		InputGrads: []string{gradX},
	}
}
