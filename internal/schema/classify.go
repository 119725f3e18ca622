package schema

import (
	"strconv"
	"strings"

	"tabvec/internal/domain"
)

// Classify splits the non-target columns of ds into numeric and text columns.
// A column is numeric when every non-empty cell parses as a number and at least
// one cell is non-empty. Both lists keep the dataset's column order.
func Classify(ds *domain.Dataset) (numeric, text []string) {
	for _, col := range ds.Features() {
		values, _ := ds.Column(col)
		if isNumeric(values) {
			numeric = append(numeric, col)
		} else {
			text = append(text, col)
		}
	}
	return numeric, text
}

func isNumeric(values []string) bool {
	seen := false
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}
