package operator

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/born-ml/opcheck/internal/tensor"
)

// Registry maps operator types to schemas.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry creates a new operator registry with all supported operators.
func NewRegistry() *Registry {
	r := &Registry{
		schemas: make(map[string]*Schema),
	}

	r.registerMathOps()
	r.registerUnaryOps()
	r.registerLogicalOps()
	r.registerGradientOps()

	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry of built-in operators.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register adds or replaces an operator schema.
func (r *Registry) Register(s *Schema) {
	if s.Type == "" || s.Handler == nil {
		panic("operator: schema needs a type and a handler")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[s.Type] = s
}

// Lookup returns the schema for an operator type.
func (r *Registry) Lookup(opType string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[opType]
	return s, ok
}

// Schema returns the schema for an operator type or ErrUnknownOperator.
func (r *Registry) Schema(opType string) (*Schema, error) {
	s, ok := r.Lookup(opType)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownOperator, "%q", opType)
	}
	return s, nil
}

// SupportedOps returns the sorted list of registered operator types.
func (r *Registry) SupportedOps() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ops := make([]string, 0, len(r.schemas))
	for op := range r.schemas {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Create builds a descriptor and validates it against the registered schema.
func (r *Registry) Create(opType string, inputs, outputs []string, args ...Argument) (*OperatorDef, error) {
	s, err := r.Schema(opType)
	if err != nil {
		return nil, err
	}
	def := &OperatorDef{
		Type:    opType,
		Inputs:  append([]string(nil), inputs...),
		Outputs: append([]string(nil), outputs...),
		Args:    append([]Argument(nil), args...),
	}
	if err := s.Verify(def); err != nil {
		return nil, err
	}
	return def, nil
}

// Create builds a descriptor against the default registry.
func Create(opType string, inputs, outputs []string, args ...Argument) (*OperatorDef, error) {
	return Default().Create(opType, inputs, outputs, args...)
}

// MustCreate is Create for fixtures; it panics on error.
func MustCreate(opType string, inputs, outputs []string, args ...Argument) *OperatorDef {
	def, err := Create(opType, inputs, outputs, args...)
	if err != nil {
		panic(err)
	}
	return def
}

// Execute runs an operator with the given inputs.
func (r *Registry) Execute(ctx *Context, def *OperatorDef, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	s, err := r.Schema(def.Type)
	if err != nil {
		return nil, err
	}
	if err := s.Verify(def); err != nil {
		return nil, err
	}
	if len(inputs) != len(def.Inputs) {
		return nil, fmt.Errorf("%s: got %d input tensors for %d input names", def.Type, len(inputs), len(def.Inputs))
	}
	outputs, err := s.Handler(ctx, def, inputs)
	if err != nil {
		return nil, errors.Wrap(err, def.Type)
	}
	if len(outputs) != len(def.Outputs) {
		return nil, fmt.Errorf("%s: handler produced %d outputs for %d output names", def.Type, len(outputs), len(def.Outputs))
	}
	return outputs, nil
}

// Infer runs shape and type inference for def. It returns false when the
// operator is unknown or its outputs cannot be inferred.
func (r *Registry) Infer(def *OperatorDef, inputs []TensorShape) ([]TensorShape, bool) {
	s, ok := r.Lookup(def.Type)
	if !ok || s.Infer == nil || len(inputs) != len(def.Inputs) {
		return nil, false
	}
	out, ok := s.Infer(def, inputs)
	if !ok || len(out) != len(def.Outputs) {
		return nil, false
	}
	return out, true
}

// Gradient returns the backward operators of def given the gradient blobs of
// its outputs.
func (r *Registry) Gradient(def *OperatorDef, outputGrads []string) (GradientSpec, error) {
	s, err := r.Schema(def.Type)
	if err != nil {
		return GradientSpec{}, err
	}
	if s.Gradient == nil {
		return GradientSpec{}, errors.Wrapf(ErrNoGradient, "%s", def.Type)
	}
	if len(outputGrads) != len(def.Outputs) {
		return GradientSpec{}, fmt.Errorf("%s: %d output gradients for %d outputs", def.Type, len(outputGrads), len(def.Outputs))
	}
	spec := s.Gradient(def, outputGrads)
	for _, op := range spec.Ops {
		gs, err := r.Schema(op.Type)
		if err != nil {
			return GradientSpec{}, err
		}
		if err := gs.Verify(op); err != nil {
			return GradientSpec{}, err
		}
	}
	return spec, nil
}
