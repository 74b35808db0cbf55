package suite

import (
	"github.com/born-ml/opcheck/internal/checker"
	"github.com/born-ml/opcheck/internal/gen"
	"github.com/born-ml/opcheck/internal/reference"
)

// binaryCase checks c on every broadcast scenario with n, m, k, t in [1, 5].
func binaryCase(name string, c checker.BinaryCase) Case {
	return Case{
		Name: name,
		Op:   c.Op,
		Run: func(d gen.Drawer, h *checker.Harness) error {
			n, m := d.Int(1, 5, "n"), d.Int(1, 5, "m")
			k, t := d.Int(1, 5, "k"), d.Int(1, 5, "t")
			return h.CheckBinaryOp(generator(d), c, n, m, k, t)
		},
	}
}

func binaryCases() []Case {
	return []Case{
		binaryCase("add", checker.BinaryCase{Op: "Add", Ref: reference.Add, Bias: -0.5, Grad: true}),
		binaryCase("sub", checker.BinaryCase{Op: "Sub", Ref: reference.Sub, Bias: -0.5, Grad: true}),
		binaryCase("mul", checker.BinaryCase{Op: "Mul", Ref: reference.Mul, Bias: -0.5, Grad: true}),
		binaryCase("div", checker.BinaryCase{Op: "Div", Ref: reference.Div, Bias: 1, Grad: true}),
		binaryCase("bitwise_and", checker.BinaryCase{Op: "BitwiseAnd", Ref: reference.BitwiseAnd, Integer: true}),
		binaryCase("bitwise_or", checker.BinaryCase{Op: "BitwiseOr", Ref: reference.BitwiseOr, Integer: true}),
		binaryCase("bitwise_xor", checker.BinaryCase{Op: "BitwiseXor", Ref: reference.BitwiseXor, Integer: true}),
	}
}
