// Package checker verifies operators against reference implementations,
// across devices and against numerical gradients.
//
// Every check runs in a fresh workspace fed with private copies of the
// inputs, so checks never observe each other and never modify the caller's
// tensors. Assertion failures are reported as *MismatchError (matching
// ErrMismatch); anything else returned is a framework error.
package checker

import (
	"runtime"

	"github.com/pkg/errors"

	"github.com/born-ml/opcheck/internal/operator"
	"github.com/born-ml/opcheck/internal/parallel"
	"github.com/born-ml/opcheck/internal/tensor"
	"github.com/born-ml/opcheck/internal/workspace"
)

// Tolerance bounds the allowed difference |got − want| ≤ Atol + Rtol·|want|.
type Tolerance struct {
	Atol float64
	Rtol float64
}

// GradientConfig controls numerical gradient checks.
type GradientConfig struct {
	Stepsize  float64 // central difference step
	Threshold float64 // used as both atol and rtol
}

// Harness runs checks on a primary device and cross-checks a device list.
type Harness struct {
	Device    tensor.Device   // device reference and gradient checks run on
	Devices   []tensor.Device // devices compared by CheckDevices; the first is the baseline
	Registry  *operator.Registry
	Parallel  parallel.Config
	Tolerance Tolerance
	Gradient  GradientConfig
}

// Default check settings.
const (
	DefaultAtol          = 1e-4
	DefaultRtol          = 1e-4
	DefaultStepsize      = 0.05
	DefaultThreshold     = 0.005
	DefaultGradThreshold = 1e-4
)

// NewHarness returns a harness checking on CPU and comparing CPU against
// ParallelCPU. The parallel device splits even small tensors across workers.
func NewHarness() *Harness {
	return &Harness{
		Device:   tensor.CPU,
		Devices:  []tensor.Device{tensor.CPU, tensor.ParallelCPU},
		Registry: operator.Default(),
		Parallel: parallel.Config{
			Enabled:      true,
			NumWorkers:   max(runtime.NumCPU(), 2),
			MinChunkSize: 8,
		},
		Tolerance: Tolerance{Atol: DefaultAtol, Rtol: DefaultRtol},
		Gradient:  GradientConfig{Stepsize: DefaultStepsize, Threshold: DefaultThreshold},
	}
}

func (h *Harness) registry() *operator.Registry {
	if h.Registry == nil {
		return operator.Default()
	}
	return h.Registry
}

// NewWorkspace returns an empty workspace using the harness registry and
// parallel configuration.
func (h *Harness) NewWorkspace() *workspace.Workspace {
	return workspace.New(
		workspace.WithRegistry(h.registry()),
		workspace.WithParallelConfig(h.Parallel),
	)
}

// feed creates a workspace holding inputs under def's input names.
func (h *Harness) feed(def *operator.OperatorDef, inputs []*tensor.RawTensor) (*workspace.Workspace, error) {
	if len(inputs) != len(def.Inputs) {
		return nil, errors.Errorf("%s takes %d inputs, got %d tensors", def.Type, len(def.Inputs), len(inputs))
	}
	ws := h.NewWorkspace()
	for i, name := range def.Inputs {
		ws.FeedBlob(name, inputs[i])
	}
	return ws, nil
}

// run executes def once on device in a fresh workspace.
func (h *Harness) run(def *operator.OperatorDef, inputs []*tensor.RawTensor, device tensor.Device) (*workspace.Workspace, error) {
	ws, err := h.feed(def, inputs)
	if err != nil {
		return nil, err
	}
	if err := ws.RunOperatorOnce(def, device); err != nil {
		return nil, errors.Wrapf(err, "run %s on %s", def, device)
	}
	return ws, nil
}

// fetchOutputs returns the outputs of def selected by idx.
func fetchOutputs(ws *workspace.Workspace, def *operator.OperatorDef, idx []int) ([]*tensor.RawTensor, error) {
	out := make([]*tensor.RawTensor, len(idx))
	for i, k := range idx {
		if k < 0 || k >= len(def.Outputs) {
			return nil, errors.Errorf("%s has no output %d", def.Type, k)
		}
		t, err := ws.FetchBlob(def.Outputs[k])
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func allOutputs(def *operator.OperatorDef) []int {
	idx := make([]int, len(def.Outputs))
	for i := range idx {
		idx[i] = i
	}
	return idx
}
