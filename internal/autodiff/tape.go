// Package autodiff builds backward passes from the gradient makers registered
// with each operator.
//
// A GradientTape records forward operator descriptors; Backward walks them in
// reverse and returns the gradient operators plus the gradient blob of every
// blob that received one. Gradients reaching a blob from several consumers are
// written under distinct names and accumulated with a Sum operator.
//
// Usage:
//
//	tape := autodiff.NewGradientTape(operator.Default())
//	tape.StartRecording()
//	tape.Record(def) // for each forward operator
//	pass, err := tape.Backward(map[string]string{"Y": "Y_grad"})
package autodiff

import (
	"github.com/born-ml/opcheck/internal/operator"
)

// GradientTape records operators during the forward pass and produces the
// gradient operators of the backward pass.
type GradientTape struct {
	operations []*operator.OperatorDef // Recorded operators (in execution order)
	recording  bool                    // Whether tape is currently recording
	registry   *operator.Registry
}

// NewGradientTape creates a new gradient tape resolving gradients through r.
func NewGradientTape(r *operator.Registry) *GradientTape {
	return &GradientTape{
		operations: make([]*operator.OperatorDef, 0, 16),
		recording:  false,
		registry:   r,
	}
}

// StartRecording enables operation recording.
func (t *GradientTape) StartRecording() {
	t.recording = true
}

// StopRecording disables operation recording.
func (t *GradientTape) StopRecording() {
	t.recording = false
}

// IsRecording returns true if the tape is currently recording operations.
func (t *GradientTape) IsRecording() bool {
	return t.recording
}

// Record adds an operation to the tape.
// Only records if the tape is currently recording.
func (t *GradientTape) Record(def *operator.OperatorDef) {
	if t.recording {
		t.operations = append(t.operations, def)
	}
}

// Clear resets the tape, removing all recorded operations.
// Recording state is preserved.
func (t *GradientTape) Clear() {
	t.operations = t.operations[:0]
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	return len(t.operations)
}

// Operations returns the recorded operators in execution order.
func (t *GradientTape) Operations() []*operator.OperatorDef {
	return append([]*operator.OperatorDef(nil), t.operations...)
}

// Backward builds the backward pass of the recorded operators. outputGrads
// maps forward blobs to the blobs holding their incoming gradients.
func (t *GradientTape) Backward(outputGrads map[string]string) (*Pass, error) {
	wasRecording := t.recording
	t.recording = false
	defer func() {
		t.recording = wasRecording
	}()

	return BackwardPass(t.registry, t.operations, outputGrads)
}
