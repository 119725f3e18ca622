// Package report renders a plain-text summary of a pipeline run.
package report

import (
	"fmt"
	"io"
	"strings"

	"tabvec/internal/service"
)

// Summary returns the one-line headline of a run.
func Summary(res *service.Result) string {
	ds := res.Dataset
	return fmt.Sprintf("%d rows, %d feature columns, target %q", ds.Len(), len(ds.Features()), ds.Target)
}

// Strategy describes one strategy's shapes, variance ratios and failure.
func Strategy(r service.StrategyResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: ", r.Name)
	if r.Embeddings != nil {
		rows, dims := r.Embeddings.Dims()
		fmt.Fprintf(&b, "embeddings %dx%d", rows, dims)
	} else {
		b.WriteString("no embeddings")
	}
	if r.Index != nil {
		fmt.Fprintf(&b, ", %d spaces", r.Index.Len())
	}
	if r.Projection != nil {
		ratios := make([]string, len(r.Projection.ExplainedVarianceRatio))
		for i, v := range r.Projection.ExplainedVarianceRatio {
			ratios[i] = fmt.Sprintf("%.3f", v)
		}
		fmt.Fprintf(&b, ", explained variance %s", strings.Join(ratios, " "))
	}
	if r.Err != nil {
		fmt.Fprintf(&b, "\n  error: %v", r.Err)
	}
	if r.Index != nil {
		for _, s := range r.Index.Skipped() {
			fmt.Fprintf(&b, "\n  skipped %s: %s", s.Column, s.Reason)
		}
		if cols := r.Index.Uncovered(); len(cols) > 0 {
			fmt.Fprintf(&b, "\n  not embedded (no domain entry): %s", strings.Join(cols, ", "))
		}
	}
	return b.String()
}

// Write prints the full report of res to w.
func Write(w io.Writer, res *service.Result) error {
	_, err := fmt.Fprintf(w, "run %s\n%s\n%s\n%s\n", res.RunID, Summary(res), Strategy(res.Naive), Strategy(res.Structured))
	return err
}
