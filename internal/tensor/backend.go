package tensor

// Backend defines the elementwise kernels every compute device implements.
// Binary operations follow NumPy broadcasting; kernels panic on invalid input
// (incompatible shapes, unsupported dtype, out-of-domain values) and the
// caller converts panics to errors at the operator boundary.
//
// Unary kernels, and binary kernels whose first operand already has the
// output shape, may write into that operand when it IsUnique.
//
// Implementations:
//   - CPU: sequential pure Go kernels
//   - ParallelCPU: the same kernels split across goroutines
type Backend interface {
	// Element-wise binary arithmetic
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor
	Pow(a, b *RawTensor) *RawTensor

	// Math operations (element-wise)
	Neg(x *RawTensor) *RawTensor
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sqr(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor
	Rsqrt(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor
	Swish(x *RawTensor) *RawTensor
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// Comparison operations (element-wise, return bool tensor)
	Equal(a, b *RawTensor) *RawTensor
	NotEqual(a, b *RawTensor) *RawTensor
	Lower(a, b *RawTensor) *RawTensor
	LowerEqual(a, b *RawTensor) *RawTensor
	Greater(a, b *RawTensor) *RawTensor
	GreaterEqual(a, b *RawTensor) *RawTensor

	// Boolean operations (element-wise on bool tensors)
	And(a, b *RawTensor) *RawTensor
	Or(a, b *RawTensor) *RawTensor
	Xor(a, b *RawTensor) *RawTensor
	Not(x *RawTensor) *RawTensor

	// Bitwise operations (element-wise on integer or bool tensors)
	BitwiseAnd(a, b *RawTensor) *RawTensor
	BitwiseOr(a, b *RawTensor) *RawTensor
	BitwiseXor(a, b *RawTensor) *RawTensor

	// SumTo reduces x to shape by summing over broadcast dimensions.
	// It is the inverse of broadcasting shape up to x.Shape().
	SumTo(x *RawTensor, shape Shape) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
