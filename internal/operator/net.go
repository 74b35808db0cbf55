package operator

import (
	"fmt"
)

// Net is a named, ordered list of operator descriptors.
type Net struct {
	Name     string
	Ops      []*OperatorDef
	registry *Registry
	nextID   int
}

// NewNet creates an empty net backed by the default registry.
func NewNet(name string) *Net {
	return NewNetWithRegistry(name, Default())
}

// NewNetWithRegistry creates an empty net that validates against r.
func NewNetWithRegistry(name string, r *Registry) *Net {
	return &Net{Name: name, registry: r}
}

// NextBlob returns a fresh blob name of the form <net>_auto_<k>.
func (n *Net) NextBlob() string {
	name := fmt.Sprintf("%s_auto_%d", n.Name, n.nextID)
	n.nextID++
	return name
}

// Add appends an operator whose numOutputs outputs are named automatically,
// and returns the output names.
func (n *Net) Add(opType string, inputs []string, numOutputs int, args ...Argument) ([]string, error) {
	outputs := make([]string, numOutputs)
	for i := range outputs {
		outputs[i] = n.NextBlob()
	}
	if err := n.AddNamed(opType, inputs, outputs, args...); err != nil {
		return nil, err
	}
	return outputs, nil
}

// AddNamed appends an operator with explicit output names.
func (n *Net) AddNamed(opType string, inputs, outputs []string, args ...Argument) error {
	def, err := n.registry.Create(opType, inputs, outputs, args...)
	if err != nil {
		return err
	}
	n.Ops = append(n.Ops, def)
	return nil
}

// AddOp appends an existing descriptor after validating it.
func (n *Net) AddOp(def *OperatorDef) error {
	s, err := n.registry.Schema(def.Type)
	if err != nil {
		return err
	}
	if err := s.Verify(def); err != nil {
		return err
	}
	n.Ops = append(n.Ops, def)
	return nil
}

// ExternalInputs returns the blobs read before any operator in the net
// writes them, in first-use order.
func (n *Net) ExternalInputs() []string {
	produced := make(map[string]bool)
	seen := make(map[string]bool)
	var inputs []string
	for _, op := range n.Ops {
		for _, in := range op.Inputs {
			if !produced[in] && !seen[in] {
				seen[in] = true
				inputs = append(inputs, in)
			}
		}
		for _, out := range op.Outputs {
			produced[out] = true
		}
	}
	return inputs
}

// String renders one operator per line.
func (n *Net) String() string {
	s := "net " + n.Name + "\n"
	for _, op := range n.Ops {
		s += "  " + op.String() + "\n"
	}
	return s
}
