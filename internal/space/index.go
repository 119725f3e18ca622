package space

import (
	"fmt"

	"tabvec/internal/domain"
	"tabvec/internal/schema"
)

// Skip records a domain entry that produced no space.
type Skip struct {
	Column string
	Reason string
}

// Index is the ordered, immutable list of spaces that define the structured vector space.
type Index struct {
	spaces    []Space
	skipped   []Skip
	uncovered []string
}

// Spaces returns a copy of the configured spaces in index order.
func (ix *Index) Spaces() []Space {
	out := make([]Space, len(ix.spaces))
	copy(out, ix.spaces)
	return out
}

// Len returns the number of spaces.
func (ix *Index) Len() int { return len(ix.spaces) }

// Skipped lists the domain entries that were not instantiated and why.
func (ix *Index) Skipped() []Skip { return append([]Skip(nil), ix.skipped...) }

// Uncovered lists schema columns that no domain entry describes. They are part
// of the naive embedding input but absent from the structured space.
func (ix *Index) Uncovered() []string { return append([]string(nil), ix.uncovered...) }

// StaticDimension sums the dimensions known before embedding, that is every
// space except text spaces.
func (ix *Index) StaticDimension() int {
	total := 0
	for _, s := range ix.spaces {
		if d, ok := s.Dimension(); ok {
			total += d
		}
	}
	return total
}

// Configure instantiates the space described by entry, or reports false when the
// entry's column is absent from the dataset or its field cannot host that kind of space.
// A text entry without a model id uses defaultModel.
func Configure(entry Entry, sch *schema.Schema, columns map[string]struct{}, defaultModel string) (Space, bool) {
	s, reason := configure(entry, sch, columns, defaultModel)
	return s, reason == ""
}

func configure(entry Entry, sch *schema.Schema, columns map[string]struct{}, defaultModel string) (Space, string) {
	if _, ok := columns[entry.Column]; !ok {
		return nil, "column not in dataset"
	}
	field, ok := sch.ForColumn(entry.Column)
	if !ok {
		return nil, "column not in schema"
	}
	switch entry.Kind {
	case KindCategorical:
		return Categorical{field: field, Categories: append([]string(nil), entry.Categories...)}, ""
	case KindText:
		model := entry.ModelID
		if model == "" {
			model = defaultModel
		}
		return Text{field: field, ModelID: model}, ""
	case KindNumber:
		if field.Kind != schema.KindNumeric {
			return nil, fmt.Sprintf("number space over %s column", field.Kind)
		}
		return Number{field: field, Min: entry.Min, Max: entry.Max, Mode: entry.Mode}, ""
	default:
		return nil, fmt.Sprintf("unknown space kind %s", entry.Kind)
	}
}

// Compose builds the combined index from the domain table. Entries whose column
// is missing are skipped. It fails with domain.ErrEmptyIndex when no space results.
func Compose(sch *schema.Schema, columns map[string]struct{}, table Table, defaultModel string) (*Index, error) {
	ix := &Index{}
	described := make(map[string]struct{}, len(table))
	for _, entry := range table {
		described[entry.Column] = struct{}{}
		s, reason := configure(entry, sch, columns, defaultModel)
		if reason != "" {
			ix.skipped = append(ix.skipped, Skip{Column: entry.Column, Reason: reason})
			continue
		}
		ix.spaces = append(ix.spaces, s)
	}
	for _, f := range sch.Fields() {
		if _, ok := described[f.Column]; !ok {
			ix.uncovered = append(ix.uncovered, f.Column)
		}
	}
	if len(ix.spaces) == 0 {
		return nil, domain.ErrEmptyIndex
	}
	return ix, nil
}
