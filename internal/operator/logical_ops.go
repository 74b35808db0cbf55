package operator

import (
	"fmt"

	"github.com/born-ml/opcheck/internal/tensor"
)

// registerLogicalOps adds comparison, logical and bitwise operators. None of
// them is differentiable.
func (r *Registry) registerLogicalOps() {
	predicates := []struct {
		typ    string
		doc    string
		kernel binaryKernel
		check  dtypeCheck
	}{
		{"EQ", "C = A == B", tensor.Backend.Equal, nil},
		{"NE", "C = A != B", tensor.Backend.NotEqual, nil},
		{"LT", "C = A < B", tensor.Backend.Lower, nil},
		{"LE", "C = A <= B", tensor.Backend.LowerEqual, nil},
		{"GT", "C = A > B", tensor.Backend.Greater, nil},
		{"GE", "C = A >= B", tensor.Backend.GreaterEqual, nil},
		{"And", "C = A && B on bool tensors", tensor.Backend.And, boolOnly},
		{"Or", "C = A || B on bool tensors", tensor.Backend.Or, boolOnly},
		{"Xor", "C = A xor B on bool tensors", tensor.Backend.Xor, boolOnly},
	}
	for _, op := range predicates {
		r.Register(&Schema{
			Type:       op.typ,
			Doc:        op.doc + ", bool output with broadcasting",
			MinInputs:  2,
			MaxInputs:  2,
			MinOutputs: 1,
			MaxOutputs: 1,
			Handler:    binaryHandler(op.kernel, op.check),
			Infer:      inferBroadcast(boolType),
		})
	}

	r.Register(&Schema{
		Type:       "Not",
		Doc:        "Y = !X on a bool tensor",
		MinInputs:  1,
		MaxInputs:  1,
		MinOutputs: 1,
		MaxOutputs: 1,
		Inplace:    map[int]int{0: 0},
		Handler:    handleNot,
		Infer:      inferSame,
	})

	bitwise := []struct {
		typ    string
		kernel binaryKernel
	}{
		{"BitwiseAnd", tensor.Backend.BitwiseAnd},
		{"BitwiseOr", tensor.Backend.BitwiseOr},
		{"BitwiseXor", tensor.Backend.BitwiseXor},
	}
	for _, op := range bitwise {
		r.Register(&Schema{
			Type:       op.typ,
			Doc:        "elementwise bitwise operation on integer or bool tensors, with broadcasting",
			MinInputs:  2,
			MaxInputs:  2,
			MinOutputs: 1,
			MaxOutputs: 1,
			Handler:    binaryHandler(op.kernel, integerOnly),
			Infer:      inferBroadcast(nil),
		})
	}
}

func boolOnly(dt tensor.DataType) error {
	if dt != tensor.Bool {
		return fmt.Errorf("logical operators need bool tensors, got %s", dt)
	}
	return nil
}

func integerOnly(dt tensor.DataType) error {
	if dt.IsFloat() {
		return fmt.Errorf("bitwise operators need integer or bool tensors, got %s", dt)
	}
	return nil
}

func handleNot(ctx *Context, _ *OperatorDef, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if inputs[0].DType() != tensor.Bool {
		return nil, fmt.Errorf("not needs a bool tensor, got %s", inputs[0].DType())
	}
	return []*tensor.RawTensor{ctx.Backend.Not(inputs[0])}, nil
}
