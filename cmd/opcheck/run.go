package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/born-ml/opcheck/internal/checker"
	"github.com/born-ml/opcheck/internal/gen"
	"github.com/born-ml/opcheck/internal/suite"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [case...]",
		Short: "Run check cases with seeded inputs (all cases by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			h, err := newHarness(cfg)
			if err != nil {
				return err
			}
			cases, err := selectCases(args)
			if err != nil {
				return err
			}

			report := runCases(h, cases, cfg.Run.Seed, cfg.Run.Iterations, cfg.Run.FailFast)
			if err := writeReport(cmd.OutOrStdout(), report, cfg.Run.Format); err != nil {
				return err
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d cases failed", report.Failed, len(report.Cases))
			}
			return nil
		},
	}
}

func selectCases(names []string) ([]suite.Case, error) {
	if len(names) == 0 {
		return suite.Cases(), nil
	}
	cases := make([]suite.Case, 0, len(names))
	for _, name := range names {
		c, err := suite.Lookup(name)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// runCases runs every case for iterations seeds starting at seed. A case
// stops at its first failing seed.
func runCases(h *checker.Harness, cases []suite.Case, seed uint64, iterations int, failFast bool) *Report {
	report := &Report{Seed: seed, Iterations: iterations}
	start := time.Now()

	for _, c := range cases {
		result := CaseResult{Name: c.Name, Op: c.Op}
		caseStart := time.Now()
		for i := 0; i < iterations; i++ {
			s := seed + uint64(i)
			d := gen.Seeded(s)
			err := c.Run(d, h)
			result.Iterations++
			if err == nil {
				continue
			}
			result.Failure = &Failure{
				Seed:     s,
				Mismatch: errors.Is(err, checker.ErrMismatch),
				Error:    err.Error(),
				Draws:    d.Draws(),
			}
			klog.V(1).Infof("opcheck: %s failed at seed %d: %v", c.Name, s, err)
			break
		}
		result.Duration = time.Since(caseStart)
		report.Cases = append(report.Cases, result)
		if result.Failure != nil {
			report.Failed++
			if failFast {
				break
			}
		}
	}

	report.Duration = time.Since(start)
	return report
}
