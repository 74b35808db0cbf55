// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package checker_test

import (
	"errors"
	"math"
	"testing"

	"github.com/born-ml/opcheck/checker"
	"github.com/born-ml/opcheck/operator"
	"github.com/born-ml/opcheck/tensor"
)

func sqr(x *tensor.RawTensor) *tensor.RawTensor {
	in := tensor.ToFloat64(x)
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v * v)
	}
	return tensor.MustFromSlice(out, x.Shape(), x.Device())
}

func TestHarness_CheckReference(t *testing.T) {
	h := checker.NewHarness()
	g := checker.NewGenerator(7)

	def := operator.MustCreate("Sqr", []string{"X"}, []string{"Y"})
	x := g.Rand(tensor.Shape{3, 4}, tensor.Float32)

	if err := h.CheckReference(def, []*tensor.RawTensor{x}, checker.Unary(sqr)); err != nil {
		t.Errorf("CheckReference(Sqr) error: %v", err)
	}
	if err := h.CheckDevices(def, []*tensor.RawTensor{x}, []int{0}); err != nil {
		t.Errorf("CheckDevices(Sqr) error: %v", err)
	}
	if err := h.CheckGradient(def, []*tensor.RawTensor{x}, 0, []int{0}); err != nil {
		t.Errorf("CheckGradient(Sqr) error: %v", err)
	}
}

func TestHarness_CheckReferenceMismatch(t *testing.T) {
	h := checker.NewHarness()
	g := checker.NewGenerator(7)

	def := operator.MustCreate("Sqrt", []string{"X"}, []string{"Y"})
	x := g.Uniform(tensor.Shape{5}, 1, 2, tensor.Float32)

	err := h.CheckReference(def, []*tensor.RawTensor{x}, checker.Unary(sqr))
	if !errors.Is(err, checker.ErrMismatch) {
		t.Fatalf("CheckReference(Sqrt vs sqr) = %v, want ErrMismatch", err)
	}
	var mismatch *checker.MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("error %T is not a *MismatchError", err)
	}
	if mismatch.Blob != "Y" {
		t.Errorf("mismatch.Blob = %q, want Y", mismatch.Blob)
	}
	if math.IsNaN(mismatch.MaxAbsDiff) || mismatch.MaxAbsDiff <= 0 {
		t.Errorf("mismatch.MaxAbsDiff = %v, want > 0", mismatch.MaxAbsDiff)
	}
}

func TestHarness_CheckBinaryOp(t *testing.T) {
	h := checker.NewHarness()
	g := checker.NewGenerator(3)

	add := func(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
		shape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
		if err != nil {
			return nil, err
		}
		ws := h.NewWorkspace()
		ws.FeedBlob("A", a)
		ws.FeedBlob("B", b)
		if err := ws.RunOperatorOnce(operator.MustCreate("Add", []string{"A", "B"}, []string{"C"}), tensor.CPU); err != nil {
			return nil, err
		}
		c, err := ws.FetchBlob("C")
		if err != nil {
			return nil, err
		}
		if !c.Shape().Equal(shape) {
			t.Errorf("Add shape = %v, want %v", c.Shape(), shape)
		}
		return c, nil
	}

	c := checker.BinaryCase{Op: "Add", Ref: add, Bias: -0.5}
	if err := h.CheckBinaryOp(g, c, 2, 3, 1, 2); err != nil {
		t.Errorf("CheckBinaryOp(Add) error: %v", err)
	}
}

func TestBroadcastScenarios(t *testing.T) {
	scenarios := checker.BroadcastScenarios(2, 3, 4, 5)
	if len(scenarios) != 6 {
		t.Fatalf("len(BroadcastScenarios) = %d, want 6", len(scenarios))
	}
	want := tensor.Shape{2, 3, 4, 5}
	for _, sc := range scenarios {
		got, _, err := tensor.BroadcastShapes(sc.A, sc.B)
		if err != nil {
			t.Errorf("%s: %v", sc.Name, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("%s: broadcast = %v, want %v", sc.Name, got, want)
		}
	}
}
