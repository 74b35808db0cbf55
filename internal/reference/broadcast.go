package reference

import (
	"fmt"
)

// broadcastPlan maps every output element to the flat index of each operand.
type broadcastPlan struct {
	shape []int
	a, b  []int
}

// broadcast applies numpy broadcasting to two shapes.
func broadcast(sa, sb []int) (*broadcastPlan, error) {
	rank := max(len(sa), len(sb))
	pa, pb := pad(sa, rank), pad(sb, rank)
	shape := make([]int, rank)
	for i := range shape {
		switch {
		case pa[i] == pb[i]:
			shape[i] = pa[i]
		case pa[i] == 1:
			shape[i] = pb[i]
		case pb[i] == 1:
			shape[i] = pa[i]
		default:
			return nil, fmt.Errorf("reference: shapes %v and %v do not broadcast", sa, sb)
		}
	}

	size := 1
	for _, d := range shape {
		size *= d
	}
	plan := &broadcastPlan{shape: shape, a: make([]int, size), b: make([]int, size)}
	sta, stb := strides(pa), strides(pb)
	coord := make([]int, rank)
	for flat := 0; flat < size; flat++ {
		ia, ib := 0, 0
		for d := 0; d < rank; d++ {
			if pa[d] != 1 {
				ia += coord[d] * sta[d]
			}
			if pb[d] != 1 {
				ib += coord[d] * stb[d]
			}
		}
		plan.a[flat], plan.b[flat] = ia, ib
		for d := rank - 1; d >= 0; d-- {
			coord[d]++
			if coord[d] < shape[d] {
				break
			}
			coord[d] = 0
		}
	}
	return plan, nil
}

func pad(shape []int, rank int) []int {
	out := make([]int, rank)
	for i := range out {
		out[i] = 1
	}
	copy(out[rank-len(shape):], shape)
	return out
}

func strides(shape []int) []int {
	out := make([]int, len(shape))
	s := 1
	for i := len(shape) - 1; i >= 0; i-- {
		out[i] = s
		s *= shape[i]
	}
	return out
}
