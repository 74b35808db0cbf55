// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu_test

import (
	"testing"

	"github.com/born-ml/opcheck/backend/cpu"
	"github.com/born-ml/opcheck/tensor"
)

func TestForDevice(t *testing.T) {
	cfg := cpu.ParallelConfig{Enabled: true, NumWorkers: 2, MinChunkSize: 1}

	for _, d := range []tensor.Device{tensor.CPU, tensor.ParallelCPU} {
		backend, err := cpu.ForDevice(d, cfg)
		if err != nil {
			t.Fatalf("ForDevice(%v) error: %v", d, err)
		}
		if backend.Device() != d {
			t.Errorf("ForDevice(%v).Device() = %v", d, backend.Device())
		}
	}

	if _, err := cpu.ForDevice(tensor.Device(9), cfg); err == nil {
		t.Error("ForDevice(9) returned no error")
	}
}

func TestBackend_DevicesAgree(t *testing.T) {
	seq := cpu.New()
	par := cpu.NewParallel(cpu.ParallelConfig{Enabled: true, NumWorkers: 3, MinChunkSize: 1})

	a := tensor.MustFromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.CPU)
	b := tensor.MustFromSlice([]float32{10, 20, 30}, tensor.Shape{3}, tensor.CPU)
	defer a.ForceNonUnique()()

	want := tensor.Data[float32](seq.Add(a, b))
	got := tensor.Data[float32](par.Add(a, b))
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d: ParallelCPU = %v, CPU = %v", i, got[i], want[i])
		}
	}
	if want[4] != 25 {
		t.Errorf("Add broadcast element 4 = %v, want 25", want[4])
	}
}
