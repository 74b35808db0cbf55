// Package workspace executes operator descriptors against named blobs.
//
// A Workspace owns its blobs. Operators read their inputs by name and write
// their outputs back under their output names; an operator whose output name
// equals one of its input names may overwrite that input in place.
package workspace

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/opcheck/internal/backend/cpu"
	"github.com/born-ml/opcheck/internal/operator"
	"github.com/born-ml/opcheck/internal/parallel"
	"github.com/born-ml/opcheck/internal/tensor"
)

// ErrBlobNotFound is returned when an operator reads a blob that was never
// fed or produced.
var ErrBlobNotFound = errors.New("blob not found")

// Workspace holds named tensors and the backends operators execute on.
type Workspace struct {
	mu       sync.Mutex
	blobs    map[string]*tensor.RawTensor
	backends map[tensor.Device]tensor.Backend
	registry *operator.Registry
	parallel parallel.Config
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithRegistry sets the registry operators are resolved in.
func WithRegistry(r *operator.Registry) Option {
	return func(ws *Workspace) {
		ws.registry = r
	}
}

// WithParallelConfig sets the worker configuration of the ParallelCPU device.
func WithParallelConfig(cfg parallel.Config) Option {
	return func(ws *Workspace) {
		ws.parallel = cfg
	}
}

// New creates an empty workspace using the default registry.
func New(opts ...Option) *Workspace {
	ws := &Workspace{
		blobs:    make(map[string]*tensor.RawTensor),
		backends: make(map[tensor.Device]tensor.Backend),
		registry: operator.Default(),
		parallel: parallel.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(ws)
	}
	return ws
}

// Registry returns the registry the workspace resolves operators in.
func (ws *Workspace) Registry() *operator.Registry {
	return ws.registry
}

// FeedBlob stores a private copy of t under name.
func (ws *Workspace) FeedBlob(name string, t *tensor.RawTensor) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.store(name, t.DeepCopy(t.Device()))
}

// FetchBlob returns a read-only reference to the named blob. The workspace
// does not overwrite a buffer while a fetched reference is alive.
func (ws *Workspace) FetchBlob(name string) (*tensor.RawTensor, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	t, ok := ws.blobs[name]
	if !ok {
		return nil, errors.Wrapf(ErrBlobNotFound, "%q", name)
	}
	return t.Clone(), nil
}

// HasBlob reports whether name is present.
func (ws *Workspace) HasBlob(name string) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	_, ok := ws.blobs[name]
	return ok
}

// Blobs returns the blob names in sorted order.
func (ws *Workspace) Blobs() []string {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	names := make([]string, 0, len(ws.blobs))
	for name := range ws.blobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset removes every blob.
func (ws *Workspace) Reset() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for name, t := range ws.blobs {
		t.Release()
		delete(ws.blobs, name)
	}
}

// store replaces the blob under name, dropping the previous reference.
func (ws *Workspace) store(name string, t *tensor.RawTensor) {
	if old, ok := ws.blobs[name]; ok && old != t {
		old.Release()
	}
	ws.blobs[name] = t
}

func (ws *Workspace) backend(device tensor.Device) (tensor.Backend, error) {
	if b, ok := ws.backends[device]; ok {
		return b, nil
	}
	b, err := cpu.ForDevice(device, ws.parallel)
	if err != nil {
		return nil, err
	}
	ws.backends[device] = b
	return b, nil
}

// RunOperatorOnce executes def on device and stores its outputs.
func (ws *Workspace) RunOperatorOnce(def *operator.OperatorDef, device tensor.Device) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.run(def, device)
}

// RunOperatorsOnce executes defs in order, stopping at the first failure.
func (ws *Workspace) RunOperatorsOnce(defs []*operator.OperatorDef, device tensor.Device) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for i, def := range defs {
		if err := ws.run(def, device); err != nil {
			return errors.Wrapf(err, "op %d", i)
		}
	}
	return nil
}

// RunNetOnce executes every operator of net in order.
func (ws *Workspace) RunNetOnce(net *operator.Net, device tensor.Device) error {
	if err := ws.RunOperatorsOnce(net.Ops, device); err != nil {
		return errors.Wrapf(err, "net %q", net.Name)
	}
	return nil
}

func (ws *Workspace) run(def *operator.OperatorDef, device tensor.Device) error {
	backend, err := ws.backend(device)
	if err != nil {
		return err
	}

	inputs := make([]*tensor.RawTensor, len(def.Inputs))
	for i, name := range def.Inputs {
		t, ok := ws.blobs[name]
		if !ok {
			return errors.Wrapf(ErrBlobNotFound, "%s input %q", def.Type, name)
		}
		inputs[i] = t
	}

	// Only inputs overwritten by an output of the same name may be
	// modified by the kernel.
	guarded := make(map[*tensor.RawTensor]bool)
	for i, t := range inputs {
		if ws.overwritable(def, i) || guarded[t] {
			continue
		}
		guarded[t] = true
		defer t.ForceNonUnique()()
	}

	klog.V(2).Infof("workspace: running %s on %s", def, device)
	outputs, err := ws.execute(backend, def, inputs)
	if err != nil {
		return err
	}

	// Outputs must own their buffer unless they replace the input it belongs to.
	for k, out := range outputs {
		if ws.sharesBuffer(def, k, out, inputs, outputs[:k]) {
			outputs[k] = out.DeepCopy(out.Device())
		}
	}
	for k, name := range def.Outputs {
		ws.store(name, outputs[k])
	}
	return nil
}

// overwritable reports whether input i is replaced by an output and read by
// no other input slot.
func (ws *Workspace) overwritable(def *operator.OperatorDef, i int) bool {
	name := def.Inputs[i]
	for j, other := range def.Inputs {
		if j != i && other == name {
			return false
		}
	}
	for _, out := range def.Outputs {
		if out == name {
			return true
		}
	}
	return false
}

func (ws *Workspace) sharesBuffer(def *operator.OperatorDef, k int, out *tensor.RawTensor, inputs, earlier []*tensor.RawTensor) bool {
	for i, in := range inputs {
		if def.Inputs[i] != def.Outputs[k] && out.SameBuffer(in) {
			return true
		}
	}
	for _, prev := range earlier {
		if out.SameBuffer(prev) {
			return true
		}
	}
	return false
}

// execute runs the handler, converting kernel panics into errors.
func (ws *Workspace) execute(backend tensor.Backend, def *operator.OperatorDef, inputs []*tensor.RawTensor) (outputs []*tensor.RawTensor, err error) {
	defer func() {
		if r := recover(); r != nil {
			outputs = nil
			err = fmt.Errorf("%s: %v", def.Type, r)
		}
	}()
	return ws.registry.Execute(&operator.Context{Backend: backend}, def, inputs)
}
