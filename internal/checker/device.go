package checker

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/opcheck/internal/operator"
	"github.com/born-ml/opcheck/internal/tensor"
)

// CheckDevices runs def on every device in Devices and compares the outputs
// selected by outputIdx with those of the first device.
func (h *Harness) CheckDevices(def *operator.OperatorDef, inputs []*tensor.RawTensor, outputIdx []int) error {
	if len(h.Devices) == 0 {
		return errors.New("no devices to compare")
	}
	var baseline []*tensor.RawTensor
	for _, device := range h.Devices {
		ws, err := h.run(def, inputs, device)
		if err != nil {
			return err
		}
		got, err := fetchOutputs(ws, def, outputIdx)
		if err != nil {
			return err
		}
		if baseline == nil {
			baseline = got
			continue
		}
		for i, k := range outputIdx {
			if err := compareTensors("device", def.Outputs[k], got[i], baseline[i], h.Tolerance); err != nil {
				return errors.Wrapf(err, "%s vs %s", device, h.Devices[0])
			}
		}
	}
	klog.V(2).Infof("checker: %s agrees across %v", def, h.Devices)
	return nil
}
