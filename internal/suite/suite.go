// Package suite defines the elementwise operator checks.
//
// Each Case draws its dimensions and seeds from a gen.Drawer and runs the
// harness checks for one operator. Go tests drive cases with rapid; the CLI
// drives them with seeded drawers.
package suite

import (
	"fmt"
	"sort"

	"github.com/born-ml/opcheck/internal/checker"
	"github.com/born-ml/opcheck/internal/gen"
)

// Case is one operator check.
type Case struct {
	Name string
	Op   string
	Run  func(d gen.Drawer, h *checker.Harness) error
}

// Cases returns every case in a stable order.
func Cases() []Case {
	cases := make([]Case, 0, 17)
	cases = append(cases, unaryCases()...)
	cases = append(cases, comparisonCases()...)
	cases = append(cases, binaryCases()...)
	return cases
}

// Lookup returns the case named name.
func Lookup(name string) (Case, error) {
	for _, c := range Cases() {
		if c.Name == name {
			return c, nil
		}
	}
	return Case{}, fmt.Errorf("unknown case %q", name)
}

// Names returns the case names sorted alphabetically.
func Names() []string {
	var names []string
	for _, c := range Cases() {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// generator draws a seed in [0, 1000] and returns a generator seeded with it.
func generator(d gen.Drawer) *gen.Generator {
	return gen.NewGenerator(uint64(d.Int(0, 1000, "seed")))
}
