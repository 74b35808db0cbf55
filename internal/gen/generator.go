package gen

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/opcheck/internal/tensor"
)

// Generator fills tensors with pseudo-random values from its own seeded
// stream. Generators are not safe for concurrent use.
type Generator struct {
	rng    *rand.Rand
	device tensor.Device
}

// NewGenerator returns a generator seeded with seed producing CPU tensors.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		rng:    rand.New(rand.NewPCG(seed, 0x5851f42d4c957f2d)),
		device: tensor.CPU,
	}
}

// Rand returns a tensor of uniform values in [0, 1).
func (g *Generator) Rand(shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	return g.Uniform(shape, 0, 1, dtype)
}

// RandBias returns Rand(shape) + bias.
func (g *Generator) RandBias(shape tensor.Shape, bias float64, dtype tensor.DataType) *tensor.RawTensor {
	return g.Uniform(shape, bias, 1+bias, dtype)
}

// Uniform returns a float tensor of uniform values in [lo, hi).
func (g *Generator) Uniform(shape tensor.Shape, lo, hi float64, dtype tensor.DataType) *tensor.RawTensor {
	if !dtype.IsFloat() {
		panic(fmt.Sprintf("gen: Uniform needs a float dtype, got %s", dtype))
	}
	values := make([]float64, shape.NumElements())
	for i := range values {
		values[i] = lo + g.rng.Float64()*(hi-lo)
	}
	return g.build(values, shape, dtype)
}

// RandInt returns a tensor of integers in [0, n). Bool tensors hold n == 2
// draws as false/true.
func (g *Generator) RandInt(shape tensor.Shape, n int, dtype tensor.DataType) *tensor.RawTensor {
	if dtype.IsFloat() {
		panic(fmt.Sprintf("gen: RandInt needs an integer dtype, got %s", dtype))
	}
	if dtype == tensor.Bool {
		values := make([]bool, shape.NumElements())
		for i := range values {
			values[i] = g.rng.IntN(n) != 0
		}
		return tensor.MustFromSlice(values, shape, g.device)
	}
	values := make([]float64, shape.NumElements())
	for i := range values {
		values[i] = float64(g.rng.IntN(n))
	}
	return g.build(values, shape, dtype)
}

// Seed derives a fresh seed from the generator's stream.
func (g *Generator) Seed() uint64 {
	return g.rng.Uint64()
}

func (g *Generator) build(values []float64, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	t, err := tensor.FromFloat64(values, shape, dtype, g.device)
	if err != nil {
		panic(fmt.Sprintf("gen: %v", err))
	}
	return t
}
