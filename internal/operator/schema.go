package operator

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/opcheck/internal/tensor"
)

// Descriptor validation errors.
var (
	ErrUnknownOperator = errors.New("unknown operator")
	ErrArity           = errors.New("wrong number of inputs or outputs")
	ErrInplace         = errors.New("in-place not allowed")
	ErrNoGradient      = errors.New("no gradient defined")
)

// Context provides the backend an operator executes on.
type Context struct {
	Backend tensor.Backend
}

// Handler computes an operator's outputs. Handlers may overwrite the buffer of
// an input that the caller left unique; they must not read that input after
// doing so.
type Handler func(ctx *Context, def *OperatorDef, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error)

// TensorShape is the result of shape and type inference for one blob.
type TensorShape struct {
	Dims     tensor.Shape
	DataType tensor.DataType
}

// InferFunc computes output shapes from input shapes. It returns false when
// the outputs cannot be inferred; callers record no entry in that case.
type InferFunc func(def *OperatorDef, inputs []TensorShape) ([]TensorShape, bool)

// GradientSpec is the backward pass of one forward operator.
type GradientSpec struct {
	Ops        []*OperatorDef
	InputGrads []string // Gradient blob per forward input ("" when none)
}

// GradientMaker builds the gradient operators of def given the gradient blob
// names of its outputs.
type GradientMaker func(def *OperatorDef, outputGrads []string) GradientSpec

// Schema describes an operator type.
type Schema struct {
	Type       string
	Doc        string
	MinInputs  int
	MaxInputs  int // -1 for unbounded
	MinOutputs int
	MaxOutputs int
	Inplace    map[int]int // allowed input index -> output index aliases
	Handler    Handler
	Infer      InferFunc
	Gradient   GradientMaker // nil when the operator is not differentiable
}

// Verify checks a descriptor's arity and in-place aliases.
func (s *Schema) Verify(def *OperatorDef) error {
	nIn, nOut := len(def.Inputs), len(def.Outputs)
	if nIn < s.MinInputs || (s.MaxInputs >= 0 && nIn > s.MaxInputs) {
		return errors.Wrapf(ErrArity, "%s: %d inputs, want %s", s.Type, nIn, arityRange(s.MinInputs, s.MaxInputs))
	}
	if nOut < s.MinOutputs || nOut > s.MaxOutputs {
		return errors.Wrapf(ErrArity, "%s: %d outputs, want %s", s.Type, nOut, arityRange(s.MinOutputs, s.MaxOutputs))
	}
	for j, out := range def.Outputs {
		for i, in := range def.Inputs {
			if out != in {
				continue
			}
			if o, ok := s.Inplace[i]; !ok || o != j {
				return errors.Wrapf(ErrInplace, "%s: output %d (%q) aliases input %d", s.Type, j, out, i)
			}
		}
	}
	return nil
}

func arityRange(lo, hi int) string {
	switch {
	case hi < 0:
		return fmt.Sprintf("at least %d", lo)
	case lo == hi:
		return fmt.Sprintf("%d", lo)
	default:
		return fmt.Sprintf("%d..%d", lo, hi)
	}
}
