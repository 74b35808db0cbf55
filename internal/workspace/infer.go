package workspace

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/opcheck/internal/operator"
	"github.com/born-ml/opcheck/internal/tensor"
)

// InferShapesAndTypes propagates shapes and types through nets, starting from
// the blobs currently in the workspace. Blobs whose shape cannot be inferred
// have no entry in the returned maps; operators reading them are skipped.
func (ws *Workspace) InferShapesAndTypes(nets ...*operator.Net) (map[string]tensor.Shape, map[string]tensor.DataType, error) {
	ws.mu.Lock()
	known := make(map[string]operator.TensorShape, len(ws.blobs))
	for name, t := range ws.blobs {
		known[name] = operator.TensorShape{Dims: t.Shape().Clone(), DataType: t.DType()}
	}
	ws.mu.Unlock()

	for _, net := range nets {
		for i, def := range net.Ops {
			if _, err := ws.registry.Schema(def.Type); err != nil {
				return nil, nil, errors.Wrapf(err, "net %q op %d", net.Name, i)
			}
			inputs, ok := lookupShapes(known, def.Inputs)
			if !ok {
				klog.V(1).Infof("workspace: skipping inference of %s: input shape unknown", def)
				forget(known, def.Outputs)
				continue
			}
			outputs, ok := ws.registry.Infer(def, inputs)
			if !ok {
				klog.V(1).Infof("workspace: no shape inferred for %s", def)
				forget(known, def.Outputs)
				continue
			}
			for k, name := range def.Outputs {
				known[name] = outputs[k]
			}
		}
	}

	shapes := make(map[string]tensor.Shape, len(known))
	types := make(map[string]tensor.DataType, len(known))
	for name, ts := range known {
		shapes[name] = ts.Dims
		types[name] = ts.DataType
	}
	return shapes, types, nil
}

func lookupShapes(known map[string]operator.TensorShape, names []string) ([]operator.TensorShape, bool) {
	out := make([]operator.TensorShape, len(names))
	for i, name := range names {
		ts, ok := known[name]
		if !ok {
			return nil, false
		}
		out[i] = ts
	}
	return out, true
}

// forget drops blobs whose previous shape no longer holds.
func forget(known map[string]operator.TensorShape, names []string) {
	for _, name := range names {
		delete(known, name)
	}
}
