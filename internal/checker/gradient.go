package checker

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"

	"github.com/born-ml/opcheck/internal/autodiff"
	"github.com/born-ml/opcheck/internal/operator"
	"github.com/born-ml/opcheck/internal/tensor"
)

// GradientOption adjusts the gradient configuration of one check.
type GradientOption func(*GradientConfig)

// WithStepsize sets the central difference step.
func WithStepsize(stepsize float64) GradientOption {
	return func(c *GradientConfig) {
		c.Stepsize = stepsize
	}
}

// WithThreshold sets the comparison threshold.
func WithThreshold(threshold float64) GradientOption {
	return func(c *GradientConfig) {
		c.Threshold = threshold
	}
}

// CheckGradient compares the gradient of input inputIdx computed by the
// registered gradient operators with a central difference estimate. The loss
// is ½Σy² over the outputs selected by outputIdx, so each output's gradient
// is its own value.
func (h *Harness) CheckGradient(def *operator.OperatorDef, inputs []*tensor.RawTensor, inputIdx int, outputIdx []int, opts ...GradientOption) error {
	cfg := h.Gradient
	for _, opt := range opts {
		opt(&cfg)
	}
	if inputIdx < 0 || inputIdx >= len(inputs) {
		return errors.Errorf("%s has no input %d", def.Type, inputIdx)
	}
	x := inputs[inputIdx]
	if !x.DType().IsFloat() {
		return errors.Errorf("gradient check needs a float input, got %s", x.DType())
	}

	analytic, err := h.analyticGradient(def, inputs, inputIdx, outputIdx)
	if err != nil {
		return err
	}
	if !analytic.Shape().Equal(x.Shape()) {
		return &MismatchError{
			Check:  "gradient",
			Blob:   def.Inputs[inputIdx],
			Reason: fmt.Sprintf("gradient shape %v, input shape %v", analytic.Shape(), x.Shape()),
		}
	}

	numeric, err := h.numericGradient(def, inputs, inputIdx, outputIdx, cfg.Stepsize)
	if err != nil {
		return err
	}
	tol := Tolerance{Atol: cfg.Threshold, Rtol: cfg.Threshold}
	if err := compareValues("gradient", def.Inputs[inputIdx], numeric, tensor.ToFloat64(analytic), tol, false); err != nil {
		return err
	}
	klog.V(2).Infof("checker: gradient of %s w.r.t. %s verified (%d elements)", def, def.Inputs[inputIdx], len(numeric))
	return nil
}

func (h *Harness) analyticGradient(def *operator.OperatorDef, inputs []*tensor.RawTensor, inputIdx int, outputIdx []int) (*tensor.RawTensor, error) {
	ws, err := h.run(def, inputs, h.Device)
	if err != nil {
		return nil, err
	}
	outputs, err := fetchOutputs(ws, def, outputIdx)
	if err != nil {
		return nil, err
	}

	outputGrads := make(map[string]string, len(outputIdx))
	for i, k := range outputIdx {
		name := def.Outputs[k]
		grad := operator.GradientName(name)
		ws.FeedBlob(grad, outputs[i])
		outputGrads[name] = grad
	}
	pass, err := autodiff.BackwardPass(h.registry(), []*operator.OperatorDef{def}, outputGrads)
	if err != nil {
		return nil, err
	}
	if err := ws.RunOperatorsOnce(pass.Ops, h.Device); err != nil {
		return nil, errors.Wrapf(err, "backward of %s", def)
	}

	input := def.Inputs[inputIdx]
	grad, ok := pass.Grads[input]
	if !ok {
		return nil, errors.Errorf("%s: no gradient flows to input %q", def.Type, input)
	}
	return ws.FetchBlob(grad)
}

func (h *Harness) numericGradient(def *operator.OperatorDef, inputs []*tensor.RawTensor, inputIdx int, outputIdx []int, stepsize float64) ([]float64, error) {
	x := inputs[inputIdx]
	base := tensor.ToFloat64(x)
	grad := make([]float64, len(base))

	perturbed := append([]*tensor.RawTensor(nil), inputs...)
	values := make([]float64, len(base))
	loss := func(j int, delta float64) (float64, error) {
		copy(values, base)
		values[j] += delta
		t, err := tensor.FromFloat64(values, x.Shape(), x.DType(), x.Device())
		if err != nil {
			return 0, err
		}
		perturbed[inputIdx] = t
		ws, err := h.run(def, perturbed, h.Device)
		if err != nil {
			return 0, err
		}
		outputs, err := fetchOutputs(ws, def, outputIdx)
		if err != nil {
			return 0, err
		}
		var l float64
		for _, y := range outputs {
			v := tensor.ToFloat64(y)
			l += floats.Dot(v, v) / 2
		}
		return l, nil
	}

	for j := range base {
		pos, err := loss(j, stepsize)
		if err != nil {
			return nil, err
		}
		neg, err := loss(j, -stepsize)
		if err != nil {
			return nil, err
		}
		grad[j] = (pos - neg) / (2 * stepsize)
	}
	return grad, nil
}
