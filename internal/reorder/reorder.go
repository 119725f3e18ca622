// Package reorder restores dataset row order for vectors retrieved from an unordered store.
package reorder

import (
	"fmt"
	"sort"

	"tabvec/internal/domain"
)

// Stack sorts (id, vector) pairs by id and stacks the vectors into an n-row matrix,
// so that row i holds the vector of id i. It fails with domain.ErrIncompleteRetrieval
// unless the ids are exactly {0, ..., n-1}.
func Stack(ids []int, vectors [][]float32, n int) (domain.Matrix, error) {
	if len(ids) != len(vectors) {
		return nil, fmt.Errorf("%d ids for %d vectors", len(ids), len(vectors))
	}
	if err := checkIDs(ids, n); err != nil {
		return nil, err
	}
	order := make([]int, len(ids))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return ids[order[a]] < ids[order[b]] })

	out := make(domain.Matrix, n)
	for row, src := range order {
		out[row] = vectors[src]
	}
	if n > 0 {
		dim := len(out[0])
		for i, v := range out {
			if len(v) != dim {
				return nil, fmt.Errorf("row %d has dimension %d, want %d", i, len(v), dim)
			}
		}
	}
	return out, nil
}

func checkIDs(ids []int, n int) error {
	counts := make([]int, n)
	var outOfRange, duplicates, missing []int
	for _, id := range ids {
		if id < 0 || id >= n {
			outOfRange = append(outOfRange, id)
			continue
		}
		counts[id]++
		if counts[id] == 2 {
			duplicates = append(duplicates, id)
		}
	}
	for id, c := range counts {
		if c == 0 {
			missing = append(missing, id)
		}
	}
	if len(outOfRange)+len(duplicates)+len(missing) == 0 {
		return nil
	}
	sort.Ints(outOfRange)
	sort.Ints(duplicates)
	return &domain.IncompleteRetrievalError{
		Expected:   n,
		Got:        len(ids),
		Missing:    missing,
		Duplicates: duplicates,
		OutOfRange: outOfRange,
	}
}
