package autodiff

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/opcheck/internal/operator"
)

// Pass is a generated backward pass.
type Pass struct {
	Ops   []*operator.OperatorDef // Gradient operators in execution order
	Grads map[string]string       // Forward blob -> its gradient blob
}

// BackwardPass generates the gradient operators for ops, which must be in
// execution order. Operators without a registered gradient stop gradient
// flow to their inputs.
func BackwardPass(r *operator.Registry, ops []*operator.OperatorDef, outputGrads map[string]string) (*Pass, error) {
	b := &builder{
		registry: r,
		pending:  make(map[string][]string),
		grads:    make(map[string]string),
	}
	for blob, grad := range outputGrads {
		b.pending[blob] = []string{grad}
	}

	for i := len(ops) - 1; i >= 0; i-- {
		if err := b.visit(ops[i]); err != nil {
			return nil, errors.Wrapf(err, "backward through op %d (%s)", i, ops[i].Type)
		}
	}

	blobs := make([]string, 0, len(b.pending))
	for blob := range b.pending {
		blobs = append(blobs, blob)
	}
	sort.Strings(blobs)
	for _, blob := range blobs {
		b.grads[blob] = b.finalize(blob)
	}
	return &Pass{Ops: b.ops, Grads: b.grads}, nil
}

type builder struct {
	registry *operator.Registry
	ops      []*operator.OperatorDef
	pending  map[string][]string // blob -> gradient contributions not yet summed
	grads    map[string]string   // blob -> final gradient, for blobs already visited
	splits   int
}

func (b *builder) visit(op *operator.OperatorDef) error {
	outGrads := make([]string, len(op.Outputs))
	have := 0
	for j, out := range op.Outputs {
		if _, ok := b.pending[out]; ok {
			have++
			outGrads[j] = b.finalize(out)
			b.grads[out] = outGrads[j]
		}
	}
	if have == 0 {
		return nil
	}
	if have != len(op.Outputs) {
		return fmt.Errorf("gradient missing for some outputs of %s", op)
	}

	spec, err := b.registry.Gradient(op, outGrads)
	if errors.Is(err, operator.ErrNoGradient) {
		klog.V(2).Infof("autodiff: %s is not differentiable; stopping gradient flow", op.Type)
		return nil
	}
	if err != nil {
		return err
	}

	// A gradient blob written twice by this spec, or already holding a
	// pending contribution, is written under a unique name instead.
	names := make(map[string][]string) // blob -> names of its writes, in order
	latest := make(map[string]string)
	emitted := make([]*operator.OperatorDef, 0, len(spec.Ops))
	for _, g := range spec.Ops {
		g = g.Clone()
		for k, in := range g.Inputs {
			if name, ok := latest[in]; ok {
				g.Inputs[k] = name
			}
		}
		for k, out := range g.Outputs {
			name := out
			if len(names[out]) > 0 || b.isPending(out) {
				name = fmt.Sprintf("%s_autosplit_%d", out, b.splits)
				b.splits++
			}
			names[out] = append(names[out], name)
			latest[out] = name
			g.Outputs[k] = name
		}
		emitted = append(emitted, g)
	}
	b.ops = append(b.ops, emitted...)

	inputGrads := make([]string, len(spec.InputGrads))
	for i, g := range spec.InputGrads {
		switch writes := names[g]; {
		case len(writes) > 1:
			inputGrads[i] = writes[0]
			names[g] = writes[1:]
		case len(writes) == 1:
			inputGrads[i] = writes[0]
		default:
			inputGrads[i] = g
		}
	}

	for i, in := range op.Inputs {
		if inputGrads[i] != "" {
			b.pending[in] = append(b.pending[in], inputGrads[i])
		}
	}
	return nil
}

func (b *builder) isPending(grad string) bool {
	for _, contribs := range b.pending {
		for _, c := range contribs {
			if c == grad {
				return true
			}
		}
	}
	return false
}

// finalize returns the single gradient blob of blob, emitting a Sum when
// several contributions are pending, and clears its pending list.
func (b *builder) finalize(blob string) string {
	contribs := b.pending[blob]
	delete(b.pending, blob)
	if len(contribs) == 1 {
		return contribs[0]
	}

	target := operator.GradientName(blob)
	inputs := make([]string, 0, len(contribs))
	for _, c := range contribs {
		if c == target {
			inputs = append([]string{c}, inputs...)
		} else {
			inputs = append(inputs, c)
		}
	}
	b.ops = append(b.ops, &operator.OperatorDef{
		Type:    "Sum",
		Inputs:  inputs,
		Outputs: []string{target},
	})
	return target
}
