// Package cpu implements the CPU compute devices: a sequential backend and a
// parallel backend that splits elementwise loops across goroutines.
package cpu

import (
	"fmt"

	"github.com/born-ml/opcheck/internal/parallel"
	"github.com/born-ml/opcheck/internal/tensor"
)

// CPUBackend implements tensor kernels on CPU.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates the sequential CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    parallel.Config{Enabled: false},
	}
}

// NewParallel creates the ParallelCPU backend. Elementwise loops longer than
// cfg.MinChunkSize are split across cfg.NumWorkers goroutines.
func NewParallel(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device: tensor.ParallelCPU,
		par:    cfg,
	}
}

// ForDevice returns the backend serving the given device.
func ForDevice(device tensor.Device, cfg parallel.Config) (*CPUBackend, error) {
	switch device {
	case tensor.CPU:
		return New(), nil
	case tensor.ParallelCPU:
		return NewParallel(cfg), nil
	default:
		return nil, fmt.Errorf("cpu: no backend for device %v", device)
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return cpu.device.String()
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// forRange runs f(i) for i in [0, n), in parallel when configured.
// f must only write to index i of its outputs.
func (cpu *CPUBackend) forRange(n int, f func(i int)) {
	parallel.For(n, f, cpu.par)
}

// newResult allocates an output tensor on this backend's device.
func (cpu *CPUBackend) newResult(op string, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}
