package space

import (
	"errors"
	"fmt"
)

// Entry is the static domain knowledge about one source column.
type Entry struct {
	Column     string
	Kind       Kind
	Categories []string
	Min, Max   float64
	Mode       Mode
	// ModelID overrides the default text-embedding model of a text space.
	ModelID string
}

// Table is the ordered domain table consulted by Compose. Entry order defines
// the order of spaces in the combined index.
type Table []Entry

// Validate checks every entry for internal consistency.
func (t Table) Validate() error {
	seen := make(map[string]struct{}, len(t))
	for i, e := range t {
		if e.Column == "" {
			return fmt.Errorf("domain entry %d: empty column", i)
		}
		if _, dup := seen[e.Column]; dup {
			return fmt.Errorf("domain entry %d: column %q listed twice", i, e.Column)
		}
		seen[e.Column] = struct{}{}
		switch e.Kind {
		case KindCategorical:
			if len(e.Categories) == 0 {
				return fmt.Errorf("domain entry %q: categorical space needs categories", e.Column)
			}
		case KindNumber:
			if !(e.Max > e.Min) {
				return fmt.Errorf("domain entry %q: max %g must exceed min %g", e.Column, e.Max, e.Min)
			}
		case KindText:
		default:
			return errors.New("domain entry " + e.Column + ": unknown kind")
		}
	}
	return nil
}

// DefaultTable describes the IBM HR employee attrition dataset.
func DefaultTable() Table {
	return Table{
		{Column: "OverTime", Kind: KindCategorical, Categories: []string{"Yes", "No"}},
		{Column: "MaritalStatus", Kind: KindCategorical, Categories: []string{"Married", "Single", "Divorced"}},
		{Column: "EducationField", Kind: KindText},
		{Column: "YearsInCurrentRole", Kind: KindNumber, Min: 0, Max: 7},
		{Column: "YearsAtCompany", Kind: KindNumber, Min: 0, Max: 18},
		{Column: "TotalWorkingYears", Kind: KindNumber, Min: 0, Max: 20},
		{Column: "JobInvolvement", Kind: KindNumber, Min: 0, Max: 4},
		{Column: "StockOptionLevel", Kind: KindNumber, Min: 0, Max: 3},
		{Column: "YearsWithCurrManager", Kind: KindNumber, Min: 0, Max: 6},
		{Column: "EnvironmentSatisfaction", Kind: KindNumber, Min: 0, Max: 4},
		{Column: "JobSatisfaction", Kind: KindNumber, Min: 0, Max: 4},
	}
}
