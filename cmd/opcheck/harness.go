package main

import (
	"runtime"

	"github.com/born-ml/opcheck/internal/checker"
	"github.com/born-ml/opcheck/internal/config"
	"github.com/born-ml/opcheck/internal/operator"
	"github.com/born-ml/opcheck/internal/parallel"
	"github.com/born-ml/opcheck/internal/tensor"
)

// newHarness builds a harness from the loaded configuration.
func newHarness(cfg config.Config) (*checker.Harness, error) {
	device, err := tensor.ParseDevice(cfg.Check.Device)
	if err != nil {
		return nil, err
	}
	devices := make([]tensor.Device, len(cfg.Check.Devices))
	for i, name := range cfg.Check.Devices {
		if devices[i], err = tensor.ParseDevice(name); err != nil {
			return nil, err
		}
	}

	// ParallelCPU always splits across at least two workers.
	workers := cfg.Parallel.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	workers = max(workers, 2)
	return &checker.Harness{
		Device:   device,
		Devices:  devices,
		Registry: operator.Default(),
		Parallel: parallel.Config{
			Enabled:      true,
			NumWorkers:   workers,
			MinChunkSize: cfg.Parallel.MinChunkSize,
		},
		Tolerance: checker.Tolerance{Atol: cfg.Check.Atol, Rtol: cfg.Check.Rtol},
		Gradient:  checker.GradientConfig{Stepsize: cfg.Check.Stepsize, Threshold: cfg.Check.Threshold},
	}, nil
}
