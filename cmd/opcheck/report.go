package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"

	"github.com/born-ml/opcheck/internal/gen"
)

// Report is the outcome of a run.
type Report struct {
	Seed       uint64        `json:"seed"`
	Iterations int           `json:"iterations"`
	Cases      []CaseResult  `json:"cases"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"duration_ns"`
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name       string        `json:"name"`
	Op         string        `json:"op"`
	Iterations int           `json:"iterations"`
	Duration   time.Duration `json:"duration_ns"`
	Failure    *Failure      `json:"failure,omitempty"`
}

// Failure describes the first failing seed of a case.
type Failure struct {
	Seed     uint64     `json:"seed"`
	Mismatch bool       `json:"mismatch"`
	Error    string     `json:"error"`
	Draws    []gen.Draw `json:"draws"`
}

func writeReport(w io.Writer, r *Report, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case "text":
		return writeText(w, r)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func writeText(w io.Writer, r *Report) error {
	runs := 0
	for _, c := range r.Cases {
		status := "PASS"
		if c.Failure != nil {
			status = "FAIL"
		}
		runs += c.Iterations
		if _, err := fmt.Fprintf(w, "%s  %-24s %-14s %s runs  %s\n",
			status, c.Name, c.Op, humanize.Comma(int64(c.Iterations)), c.Duration.Round(time.Millisecond)); err != nil {
			return err
		}
		if f := c.Failure; f != nil {
			kind := "framework error"
			if f.Mismatch {
				kind = "assertion failure"
			}
			if _, err := fmt.Fprintf(w, "      seed %d (%s): %s\n", f.Seed, kind, f.Error); err != nil {
				return err
			}
			for _, d := range f.Draws {
				if _, err := fmt.Fprintf(w, "        %s = %v\n", d.Label, d.Value); err != nil {
					return err
				}
			}
		}
	}
	_, err := fmt.Fprintf(w, "%s cases, %s runs, %d failed (seed %d) in %s\n",
		humanize.Comma(int64(len(r.Cases))), humanize.Comma(int64(runs)), r.Failed, r.Seed, r.Duration.Round(time.Millisecond))
	return err
}
