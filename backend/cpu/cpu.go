// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/opcheck/internal/backend/cpu"
	"github.com/born-ml/opcheck/internal/parallel"
	"github.com/born-ml/opcheck/tensor"
)

// Backend represents the CPU backend implementation.
//
// Both devices share one implementation; Device() tells them apart.
type Backend = internalcpu.CPUBackend

// ParallelConfig controls how ParallelCPU splits elementwise loops.
type ParallelConfig = parallel.Config

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates the sequential CPU backend.
//
// Example:
//
//	backend := cpu.New()
//	z := backend.Add(x, y)
func New() *Backend {
	return internalcpu.New()
}

// NewParallel creates the ParallelCPU backend.
func NewParallel(cfg ParallelConfig) *Backend {
	return internalcpu.NewParallel(cfg)
}

// ForDevice returns the backend serving device.
func ForDevice(device tensor.Device, cfg ParallelConfig) (*Backend, error) {
	return internalcpu.ForDevice(device, cfg)
}
