package serializer

import (
	"fmt"
	"strings"

	"tabvec/internal/domain"
)

// Label maps a source column to the prefix written before its value.
type Label struct {
	Column string
	Label  string
}

// RowSerializer renders dataset rows as "label: value, label: value" strings.
type RowSerializer struct {
	labels []Label
}

// NewRowSerializer creates a serializer with an explicit column to label mapping.
// A nil mapping selects every non-target column under its own name.
func NewRowSerializer(labels []Label) *RowSerializer {
	return &RowSerializer{labels: labels}
}

// DefaultLabels is the identity mapping over the non-target columns of ds.
func DefaultLabels(ds *domain.Dataset) []Label {
	features := ds.Features()
	labels := make([]Label, len(features))
	for i, col := range features {
		labels[i] = Label{Column: col, Label: col}
	}
	return labels
}

// Serialize returns one string per row of ds, in row order.
func (s *RowSerializer) Serialize(ds *domain.Dataset) ([]string, error) {
	labels := s.labels
	if labels == nil {
		labels = DefaultLabels(ds)
	}
	idxs := make([]int, len(labels))
	for i, l := range labels {
		idx := ds.ColumnIndex(l.Column)
		if idx < 0 {
			return nil, fmt.Errorf("label references unknown column %q", l.Column)
		}
		idxs[i] = idx
	}
	out := make([]string, ds.Len())
	for r, row := range ds.Rows {
		out[r] = render(row, labels, idxs)
	}
	return out, nil
}

func render(row []string, labels []Label, idxs []int) string {
	var b strings.Builder
	for i, l := range labels {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(l.Label)
		b.WriteString(": ")
		b.WriteString(row[idxs[i]])
	}
	return b.String()
}
