package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/born-ml/opcheck/internal/operator"
	"github.com/born-ml/opcheck/internal/suite"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List check cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, c := range suite.Cases() {
				if _, err := fmt.Fprintf(tw, "%s\t%s\n", c.Name, c.Op); err != nil {
					return err
				}
			}
			return tw.Flush()
		},
	}
}

func newOpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List registered operators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := operator.Default()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if _, err := fmt.Fprintln(tw, "OP\tINPUTS\tOUTPUTS\tGRADIENT\tIN-PLACE"); err != nil {
				return err
			}
			for _, name := range r.SupportedOps() {
				s, err := r.Schema(name)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n",
					name, arity(s.MinInputs, s.MaxInputs), arity(s.MinOutputs, s.MaxOutputs),
					s.Gradient != nil, inplace(s.Inplace)); err != nil {
					return err
				}
			}
			return tw.Flush()
		},
	}
}

func arity(lo, hi int) string {
	switch {
	case hi < 0:
		return fmt.Sprintf("%d+", lo)
	case lo == hi:
		return fmt.Sprint(lo)
	default:
		return fmt.Sprintf("%d-%d", lo, hi)
	}
}

func inplace(m map[int]int) string {
	if len(m) == 0 {
		return "-"
	}
	inputs := make([]int, 0, len(m))
	for in := range m {
		inputs = append(inputs, in)
	}
	sort.Ints(inputs)
	pairs := make([]string, len(inputs))
	for i, in := range inputs {
		pairs[i] = fmt.Sprintf("%d->%d", in, m[in])
	}
	return strings.Join(pairs, ",")
}
