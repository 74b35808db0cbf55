package suite

import (
	"fmt"

	"github.com/born-ml/opcheck/internal/checker"
	"github.com/born-ml/opcheck/internal/gen"
	"github.com/born-ml/opcheck/internal/operator"
	"github.com/born-ml/opcheck/internal/reference"
	"github.com/born-ml/opcheck/internal/tensor"
	"github.com/born-ml/opcheck/internal/workspace"
)

// eqCase checks EQ with broadcast=1 on an (n, m) int64 matrix of zeros and
// ones against an operand of shape yShape(n, m), then checks that shape
// inference of a net agrees with its execution. With bcast set the net
// carries broadcast=1 too.
func eqCase(name string, yShape func(n, m int) tensor.Shape, bcast bool) Case {
	return Case{
		Name: name,
		Op:   "EQ",
		Run: func(d gen.Drawer, h *checker.Harness) error {
			n, m := d.Int(0, 6, "n"), d.Int(4, 6, "m")
			g := generator(d)
			x := g.RandInt(tensor.Shape{n, m}, 2, tensor.Int64)
			y := g.RandInt(yShape(n, m), 2, tensor.Int64)

			def, err := operator.Create("EQ", []string{"X", "Y"}, []string{"out"}, operator.Arg("broadcast", 1))
			if err != nil {
				return err
			}
			if err := h.CheckReference(def, []*tensor.RawTensor{x, y}, reference.Binary(reference.Equal)); err != nil {
				return err
			}

			ws := h.NewWorkspace()
			ws.FeedBlob("X", x)
			ws.FeedBlob("Y", y)

			var args []operator.Argument
			if bcast {
				args = append(args, operator.Arg("broadcast", 1))
			}
			net := operator.NewNetWithRegistry(name, ws.Registry())
			result, err := net.Add("EQ", []string{"X", "Y"}, 1, args...)
			if err != nil {
				return err
			}
			if err := inferAndRun(ws, net, result[0], x.Shape()); err != nil {
				return err
			}
			if !bcast {
				return nil
			}

			// A net that is never inferred has no entries.
			unused := operator.NewNetWithRegistry(name+"_invalid", ws.Registry())
			result2, err := unused.Add("EQ", []string{"X", "Y"}, 1)
			if err != nil {
				return err
			}
			shapes, _, err := ws.InferShapesAndTypes(net)
			if err != nil {
				return err
			}
			if _, ok := shapes[result2[0]]; ok {
				return &checker.MismatchError{Check: "inference", Blob: result2[0], Reason: "unexpected entry for a net that was not inferred"}
			}
			return nil
		},
	}
}

// inferAndRun infers net, runs it, and requires the inferred entry for result
// to be present with the executed shape, want, and bool type.
func inferAndRun(ws *workspace.Workspace, net *operator.Net, result string, want tensor.Shape) error {
	shapes, types, err := ws.InferShapesAndTypes(net)
	if err != nil {
		return err
	}
	if err := ws.RunNetOnce(net, tensor.CPU); err != nil {
		return err
	}
	out, err := ws.FetchBlob(result)
	if err != nil {
		return err
	}

	inferred, ok := shapes[result]
	switch {
	case !ok:
		return &checker.MismatchError{Check: "inference", Blob: result, Reason: "no inferred shape"}
	case !inferred.Equal(out.Shape()):
		return &checker.MismatchError{Check: "inference", Blob: result, Reason: fmt.Sprintf("inferred %v, executed %v", inferred, out.Shape())}
	case !inferred.Equal(want):
		return &checker.MismatchError{Check: "inference", Blob: result, Reason: fmt.Sprintf("inferred %v, want %v", inferred, want)}
	case types[result] != tensor.Bool:
		return &checker.MismatchError{Check: "inference", Blob: result, Reason: fmt.Sprintf("inferred type %s, want bool", types[result])}
	}
	return nil
}

func comparisonCases() []Case {
	return []Case{
		eqCase("eq", func(n, m int) tensor.Shape { return tensor.Shape{n, m} }, false),
		eqCase("eq_bcast", func(_, m int) tensor.Shape { return tensor.Shape{m} }, true),
	}
}
