package checker

import (
	"fmt"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/opcheck/internal/autodiff"
	"github.com/born-ml/opcheck/internal/operator"
	"github.com/born-ml/opcheck/internal/reference"
	"github.com/born-ml/opcheck/internal/tensor"
	"github.com/born-ml/opcheck/internal/workspace"
)

type referenceOptions struct {
	gradOutput    string
	gradRef       reference.GradFunc
	gradThreshold float64
}

// ReferenceOption configures CheckReference.
type ReferenceOption func(*referenceOptions)

// WithGradReference also checks the input gradients of def against ref, with
// the gradient of output set to the output's own value.
func WithGradReference(output string, ref reference.GradFunc) ReferenceOption {
	return func(o *referenceOptions) {
		o.gradOutput = output
		o.gradRef = ref
	}
}

// WithGradThreshold sets atol and rtol of the gradient reference comparison.
func WithGradThreshold(threshold float64) ReferenceOption {
	return func(o *referenceOptions) {
		o.gradThreshold = threshold
	}
}

// CheckReference runs def on the harness device and compares every output
// with ref(inputs). Shape inference, where it yields an entry, must agree
// with the executed outputs.
func (h *Harness) CheckReference(def *operator.OperatorDef, inputs []*tensor.RawTensor, ref reference.Func, opts ...ReferenceOption) error {
	o := referenceOptions{gradThreshold: DefaultGradThreshold}
	for _, opt := range opts {
		opt(&o)
	}

	want, err := ref(inputs)
	if err != nil {
		return errors.Wrap(err, "reference")
	}
	if len(want) > len(def.Outputs) {
		return errors.Errorf("reference returned %d outputs, %s has %d", len(want), def.Type, len(def.Outputs))
	}

	ws, err := h.feed(def, inputs)
	if err != nil {
		return err
	}
	net := operator.NewNetWithRegistry("reference_check", h.registry())
	if err := net.AddOp(def); err != nil {
		return err
	}
	shapes, types, err := ws.InferShapesAndTypes(net)
	if err != nil {
		return err
	}
	if err := ws.RunOperatorOnce(def, h.Device); err != nil {
		return errors.Wrapf(err, "run %s on %s", def, h.Device)
	}

	got, err := fetchOutputs(ws, def, allOutputs(def))
	if err != nil {
		return err
	}
	for k, name := range def.Outputs {
		if err := checkInferred(name, got[k], shapes, types); err != nil {
			return err
		}
		if k < len(want) {
			if err := compareTensors("reference", name, got[k], want[k], h.Tolerance); err != nil {
				return err
			}
		}
	}
	klog.V(2).Infof("checker: %s matches reference on %s", def, h.Device)

	if o.gradRef == nil {
		return nil
	}
	return h.checkGradReference(ws, def, inputs, want, o)
}

func checkInferred(name string, got *tensor.RawTensor, shapes map[string]tensor.Shape, types map[string]tensor.DataType) error {
	shape, ok := shapes[name]
	if !ok {
		return nil
	}
	if !shape.Equal(got.Shape()) {
		return &MismatchError{Check: "inference", Blob: name, Reason: fmt.Sprintf("inferred shape %v, executed %v", shape, got.Shape())}
	}
	if dt := types[name]; dt != got.DType() {
		return &MismatchError{Check: "inference", Blob: name, Reason: fmt.Sprintf("inferred type %s, executed %s", dt, got.DType())}
	}
	return nil
}

func (h *Harness) checkGradReference(ws *workspace.Workspace, def *operator.OperatorDef, inputs, refOutputs []*tensor.RawTensor, o referenceOptions) error {
	outGrad, err := ws.FetchBlob(o.gradOutput)
	if err != nil {
		return errors.Wrapf(err, "gradient reference output")
	}
	gradName := operator.GradientName(o.gradOutput)
	ws.FeedBlob(gradName, outGrad)

	pass, err := autodiff.BackwardPass(h.registry(), []*operator.OperatorDef{def}, map[string]string{o.gradOutput: gradName})
	if err != nil {
		return err
	}
	if err := ws.RunOperatorsOnce(pass.Ops, h.Device); err != nil {
		return errors.Wrapf(err, "backward of %s", def)
	}

	want, err := o.gradRef(outGrad, refOutputs, inputs)
	if err != nil {
		return errors.Wrap(err, "gradient reference")
	}
	tol := Tolerance{Atol: o.gradThreshold, Rtol: o.gradThreshold}
	for i, in := range def.Inputs {
		if i >= len(want) || want[i] == nil {
			continue
		}
		name, ok := pass.Grads[in]
		if !ok {
			return errors.Errorf("%s: no gradient for input %q", def.Type, in)
		}
		got, err := ws.FetchBlob(name)
		if err != nil {
			return err
		}
		if err := compareTensors("gradient reference", name, got, want[i], tol); err != nil {
			return err
		}
	}
	return nil
}
