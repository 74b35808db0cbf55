// Package gen draws randomized test inputs.
//
// Small choices (dimensions, flags, seeds) go through a Drawer so that
// property-based runs can shrink them; bulk tensor contents come from a
// Generator seeded explicitly, so every input is reproducible from the drawn
// values alone.
package gen

import (
	"math/rand/v2"

	"pgregory.net/rapid"
)

// Drawer supplies labelled scalar choices.
type Drawer interface {
	// Int returns a value in [lo, hi].
	Int(lo, hi int, label string) int
	// Float returns a value in [lo, hi].
	Float(lo, hi float64, label string) float64
	// Bool returns a random boolean.
	Bool(label string) bool
}

type rapidDrawer struct {
	t *rapid.T
}

// Rapid returns a Drawer backed by a rapid property test, so failing draws are
// shrunk and reported by label.
func Rapid(t *rapid.T) Drawer {
	return rapidDrawer{t: t}
}

func (d rapidDrawer) Int(lo, hi int, label string) int {
	return rapid.IntRange(lo, hi).Draw(d.t, label)
}

func (d rapidDrawer) Float(lo, hi float64, label string) float64 {
	return rapid.Float64Range(lo, hi).Draw(d.t, label)
}

func (d rapidDrawer) Bool(label string) bool {
	return rapid.Bool().Draw(d.t, label)
}

// SeededDrawer draws from a PCG stream and records every draw.
type SeededDrawer struct {
	rng   *rand.Rand
	draws []Draw
}

// Draw is one recorded choice of a SeededDrawer.
type Draw struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Seeded returns a Drawer whose choices are fully determined by seed.
func Seeded(seed uint64) *SeededDrawer {
	return &SeededDrawer{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Int returns a value in [lo, hi].
func (d *SeededDrawer) Int(lo, hi int, label string) int {
	if hi < lo {
		panic("gen: Int with hi < lo")
	}
	v := lo + d.rng.IntN(hi-lo+1)
	d.draws = append(d.draws, Draw{label, v})
	return v
}

// Float returns a value in [lo, hi).
func (d *SeededDrawer) Float(lo, hi float64, label string) float64 {
	v := lo + d.rng.Float64()*(hi-lo)
	d.draws = append(d.draws, Draw{label, v})
	return v
}

// Bool returns a random boolean.
func (d *SeededDrawer) Bool(label string) bool {
	v := d.rng.IntN(2) == 1
	d.draws = append(d.draws, Draw{label, v})
	return v
}

// Draws returns the choices made so far, in order.
func (d *SeededDrawer) Draws() []Draw {
	return append([]Draw(nil), d.draws...)
}
