package tensor

import (
	"fmt"
	"strconv"
	"strings"
)

// Shape represents the dimensions of a tensor.
// A zero-length shape is a scalar; a zero dimension makes the tensor empty.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that no dimension is negative.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// String formats the shape as (d0, d1, ...).
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	if len(s) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// BroadcastShapes implements NumPy-style broadcasting rules.
//
// Rules:
// 1. Compare shapes element-wise from right to left
// 2. Dimensions are compatible if:
//   - They are equal, OR
//   - One of them is 1
//
// 3. Missing dimensions are treated as 1
//
// Returns the broadcasted shape, a flag indicating if broadcasting is needed, and an error if incompatible.
//
// Examples:
//
//	(3, 1) + (3, 5) → (3, 5), true, nil
//	(1, 5) + (3, 5) → (3, 5), true, nil
//	(3, 5) + (3, 5) → (3, 5), false, nil
//	(3, 4) + (3, 5) → nil, false, Error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	maxLen := max(len(a), len(b))
	result := make(Shape, maxLen)
	needsBroadcast := len(a) != len(b)

	for i := 0; i < maxLen; i++ {
		aIdx := len(a) - 1 - i
		bIdx := len(b) - 1 - i

		aDim := 1
		if aIdx >= 0 {
			aDim = a[aIdx]
		}

		bDim := 1
		if bIdx >= 0 {
			bDim = b[bIdx]
		}

		switch {
		case aDim == bDim:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
			needsBroadcast = true
		case bDim == 1:
			result[maxLen-1-i] = aDim
			needsBroadcast = true
		default:
			return nil, false, fmt.Errorf("shapes not compatible for broadcasting: %v vs %v (dimension %d: %d vs %d)",
				a, b, maxLen-1-i, aDim, bDim)
		}
	}

	return result, needsBroadcast, nil
}

// LegacyBroadcastShape validates the legacy broadcast rule: b must match a
// contiguous run of a's dimensions starting at axis, with axis -1 meaning
// right-aligned. Other negative axes are rejected. The result always has a's
// shape.
func LegacyBroadcastShape(a, b Shape, axis int) (Shape, error) {
	if axis < -1 {
		return nil, fmt.Errorf("legacy broadcast: axis %d out of range (want -1 or >= 0)", axis)
	}
	if len(b) > len(a) {
		return nil, fmt.Errorf("legacy broadcast: %v has more dimensions than %v", b, a)
	}
	if axis < 0 {
		axis = len(a) - len(b)
	}
	if axis+len(b) > len(a) {
		return nil, fmt.Errorf("legacy broadcast: %v does not fit %v at axis %d", b, a, axis)
	}
	for i, dim := range b {
		if dim != 1 && dim != a[axis+i] {
			return nil, fmt.Errorf("legacy broadcast: %v does not match %v at axis %d (dimension %d: %d vs %d)",
				b, a, axis, axis+i, a[axis+i], dim)
		}
	}
	return a.Clone(), nil
}

// AlignShape pads b with leading and trailing ones so it lines up with a at
// axis under the legacy broadcast rule.
func AlignShape(a, b Shape, axis int) Shape {
	if axis < 0 {
		axis = len(a) - len(b)
	}
	out := make(Shape, len(a))
	for i := range out {
		out[i] = 1
	}
	copy(out[axis:], b)
	return out
}
