// Package reducer projects embedding matrices onto their principal components.
package reducer

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"tabvec/internal/domain"
)

// Projection is an n×k matrix of principal component scores, row aligned with
// the matrix it was computed from.
type Projection struct {
	Points [][]float64
	// ExplainedVarianceRatio holds the share of total variance of each kept component.
	ExplainedVarianceRatio []float64
}

// Dims returns the number of rows and components.
func (p *Projection) Dims() (rows, cols int) {
	if len(p.Points) == 0 {
		return 0, len(p.ExplainedVarianceRatio)
	}
	return len(p.Points), len(p.Points[0])
}

// Component returns column j of the projection.
func (p *Projection) Component(j int) []float64 {
	out := make([]float64, len(p.Points))
	for i, row := range p.Points {
		out[i] = row[j]
	}
	return out
}

// PCA mean-centres m and projects it onto its first k principal components,
// ordered by descending explained variance. Each component direction is signed
// so that its largest-magnitude loading is positive, which makes the result
// deterministic. Components beyond the rank of the centred data are zero.
// It fails with domain.ErrInsufficientRank when k exceeds the column count.
func PCA(m domain.Matrix, k int) (*Projection, error) {
	n, d := m.Dims()
	if n == 0 || d == 0 {
		return nil, errors.New("empty matrix")
	}
	if k < 1 {
		return nil, fmt.Errorf("invalid component count %d", k)
	}
	if k > d {
		return nil, &domain.InsufficientRankError{Requested: k, Columns: d}
	}
	x, err := centred(m)
	if err != nil {
		return nil, err
	}

	proj := &Projection{
		Points:                 make([][]float64, n),
		ExplainedVarianceRatio: make([]float64, k),
	}
	for i := range proj.Points {
		proj.Points[i] = make([]float64, k)
	}
	if n == 1 {
		return proj, nil
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, errors.New("svd factorization failed")
	}
	values := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	total := 0.0
	for _, s := range values {
		total += s * s
	}
	var scores mat.VecDense
	for j := 0; j < k && j < len(values); j++ {
		dir := mat.Col(nil, j, &v)
		orient(dir)
		scores.MulVec(x, mat.NewVecDense(d, dir))
		for i := 0; i < n; i++ {
			proj.Points[i][j] = scores.AtVec(i)
		}
		if total > 0 {
			proj.ExplainedVarianceRatio[j] = values[j] * values[j] / total
		}
	}
	return proj, nil
}

func centred(m domain.Matrix) (*mat.Dense, error) {
	n, d := m.Dims()
	data := make([]float64, n*d)
	for i, row := range m {
		if len(row) != d {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(row), d)
		}
		for j, val := range row {
			data[i*d+j] = float64(val)
		}
	}
	x := mat.NewDense(n, d, data)
	for j := 0; j < d; j++ {
		mean := stat.Mean(mat.Col(nil, j, x), nil)
		for i := 0; i < n; i++ {
			x.Set(i, j, x.At(i, j)-mean)
		}
	}
	return x, nil
}

// orient flips dir in place so that its largest-magnitude entry is positive.
func orient(dir []float64) {
	best := 0
	for i, val := range dir {
		if math.Abs(val) > math.Abs(dir[best]) {
			best = i
		}
	}
	if dir[best] < 0 {
		for i := range dir {
			dir[i] = -dir[i]
		}
	}
}
