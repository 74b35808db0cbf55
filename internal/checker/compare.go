package checker

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/opcheck/internal/tensor"
)

// ErrMismatch matches every *MismatchError.
var ErrMismatch = errors.New("mismatch")

// MismatchError reports values or shapes that differ from what a check
// expected.
type MismatchError struct {
	Check string // "reference", "device", "gradient", "inference"
	Blob  string

	// Shape or type disagreement; empty for value mismatches.
	Reason string

	Index      int // first mismatching flat index
	Got, Want  float64
	Mismatched int
	Total      int
	MaxAbsDiff float64
}

func (e *MismatchError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s check: blob %q: %s", e.Check, e.Blob, e.Reason)
	}
	return fmt.Sprintf("%s check: blob %q: %d/%d elements differ (max |diff| %g), first at %d: got %g, want %g",
		e.Check, e.Blob, e.Mismatched, e.Total, e.MaxAbsDiff, e.Index, e.Got, e.Want)
}

// Is reports whether target is ErrMismatch.
func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch
}

// isClose follows numpy.isclose with NaNs comparing equal.
func isClose(got, want float64, tol Tolerance) bool {
	if math.IsNaN(got) || math.IsNaN(want) {
		return math.IsNaN(got) && math.IsNaN(want)
	}
	if got == want {
		return true
	}
	if math.IsInf(got, 0) || math.IsInf(want, 0) {
		return false
	}
	return math.Abs(got-want) <= tol.Atol+tol.Rtol*math.Abs(want)
}

// compareValues checks got against want elementwise. Exact equality is
// required when exact is set.
func compareValues(check, blob string, got, want []float64, tol Tolerance, exact bool) error {
	if len(got) != len(want) {
		return &MismatchError{Check: check, Blob: blob, Reason: fmt.Sprintf("%d elements, want %d", len(got), len(want))}
	}
	if exact {
		tol = Tolerance{}
	}
	var mismatch *MismatchError
	for i := range got {
		if isClose(got[i], want[i], tol) {
			continue
		}
		if mismatch == nil {
			mismatch = &MismatchError{Check: check, Blob: blob, Index: i, Got: got[i], Want: want[i], Total: len(got)}
		}
		mismatch.Mismatched++
	}
	if mismatch == nil {
		return nil
	}
	if len(got) > 0 {
		mismatch.MaxAbsDiff = floats.Distance(got, want, math.Inf(1))
	}
	return mismatch
}

// compareTensors checks shape, type and values of got against want.
func compareTensors(check, blob string, got, want *tensor.RawTensor, tol Tolerance) error {
	if !got.Shape().Equal(want.Shape()) {
		return &MismatchError{Check: check, Blob: blob, Reason: fmt.Sprintf("shape %v, want %v", got.Shape(), want.Shape())}
	}
	if got.DType() != want.DType() {
		return &MismatchError{Check: check, Blob: blob, Reason: fmt.Sprintf("type %s, want %s", got.DType(), want.DType())}
	}
	exact := !got.DType().IsFloat() && !want.DType().IsFloat()
	return compareValues(check, blob, tensor.ToFloat64(got), tensor.ToFloat64(want), tol, exact)
}
