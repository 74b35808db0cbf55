package ops

import (
	"github.com/born-ml/opcheck/internal/tensor"
)

// reduceBroadcast sums grad over the dimensions that were broadcast to reach
// grad's shape from targetShape. It returns grad itself when no reduction is
// needed.
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(targetShape) {
		return grad
	}
	return backend.SumTo(grad, targetShape)
}

// negateGradient negates a gradient tensor.
func negateGradient(grad *tensor.RawTensor, backend tensor.Backend) *tensor.RawTensor {
	return backend.Neg(grad)
}

// filled returns a tensor shaped like t with every element set to value.
func filled(t *tensor.RawTensor, value float64, device tensor.Device) *tensor.RawTensor {
	values := make([]float64, t.NumElements())
	for i := range values {
		values[i] = value
	}
	out, err := tensor.FromFloat64(values, t.Shape(), t.DType(), device)
	if err != nil {
		panic(err)
	}
	return out
}

// guard marks ts as shared until the returned function runs, so backend
// kernels allocate instead of overwriting them.
func guard(ts ...*tensor.RawTensor) func() {
	restores := make([]func(), 0, len(ts))
	for _, t := range ts {
		if t != nil {
			restores = append(restores, t.ForceNonUnique())
		}
	}
	return func() {
		for _, restore := range restores {
			restore()
		}
	}
}
