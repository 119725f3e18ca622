package reducer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabvec/internal/domain"
)

func randomMatrix(rng *rand.Rand, n, d int) domain.Matrix {
	m := make(domain.Matrix, n)
	for i := range m {
		m[i] = make([]float32, d)
		for j := range m[i] {
			// decreasing scale per column keeps singular values well separated
			m[i][j] = float32(rng.NormFloat64() * float64(d-j))
		}
	}
	return m
}

func TestPCAPrefixStable(t *testing.T) {
	m := randomMatrix(rand.New(rand.NewSource(1)), 12, 6)

	two, err := PCA(m, 2)
	require.NoError(t, err)
	three, err := PCA(m, 3)
	require.NoError(t, err)

	rows, cols := two.Dims()
	assert.Equal(t, 12, rows)
	assert.Equal(t, 2, cols)
	_, cols = three.Dims()
	assert.Equal(t, 3, cols)

	for i := range m {
		assert.InDelta(t, two.Points[i][0], three.Points[i][0], 1e-9)
		assert.InDelta(t, two.Points[i][1], three.Points[i][1], 1e-9)
	}
	assert.InDeltaSlice(t, two.ExplainedVarianceRatio, three.ExplainedVarianceRatio[:2], 1e-12)
}

func TestPCAInsufficientRank(t *testing.T) {
	m := domain.Matrix{{1, 2}, {3, 4}, {5, 7}}
	_, err := PCA(m, 3)
	require.ErrorIs(t, err, domain.ErrInsufficientRank)

	var ir *domain.InsufficientRankError
	require.ErrorAs(t, err, &ir)
	assert.Equal(t, 3, ir.Requested)
	assert.Equal(t, 2, ir.Columns)
}

func TestPCALineAndSignConvention(t *testing.T) {
	// points on y = 2x; the principal direction is (1, 2)/sqrt(5)
	m := domain.Matrix{{-2, -4}, {-1, -2}, {0, 0}, {1, 2}, {2, 4}}
	p, err := PCA(m, 2)
	require.NoError(t, err)

	s5 := math.Sqrt(5)
	want := []float64{-2 * s5, -s5, 0, s5, 2 * s5}
	assert.InDeltaSlice(t, want, p.Component(0), 1e-9, "largest loading is positive")
	assert.InDeltaSlice(t, []float64{0, 0, 0, 0, 0}, p.Component(1), 1e-9)
	assert.InDelta(t, 1.0, p.ExplainedVarianceRatio[0], 1e-9)
}

func TestPCAIsTranslationInvariant(t *testing.T) {
	m := randomMatrix(rand.New(rand.NewSource(3)), 8, 4)
	shifted := make(domain.Matrix, len(m))
	for i, row := range m {
		shifted[i] = make([]float32, len(row))
		for j, v := range row {
			shifted[i][j] = v + 10
		}
	}
	a, err := PCA(m, 2)
	require.NoError(t, err)
	b, err := PCA(shifted, 2)
	require.NoError(t, err)
	for i := range a.Points {
		assert.InDeltaSlice(t, a.Points[i], b.Points[i], 1e-4)
	}
}

func TestPCAKeepsRowAlignment(t *testing.T) {
	m := randomMatrix(rand.New(rand.NewSource(5)), 10, 5)
	p, err := PCA(m, 3)
	require.NoError(t, err)

	perm := rand.New(rand.NewSource(9)).Perm(len(m))
	permuted := make(domain.Matrix, len(m))
	for i, src := range perm {
		permuted[i] = m[src]
	}
	pp, err := PCA(permuted, 3)
	require.NoError(t, err)
	for i, src := range perm {
		assert.InDeltaSlice(t, p.Points[src], pp.Points[i], 1e-9)
	}
}

func TestPCAMoreComponentsThanRows(t *testing.T) {
	m := domain.Matrix{{1, 0, 0, 2}, {0, 1, 3, 0}}
	p, err := PCA(m, 3)
	require.NoError(t, err)
	rows, cols := p.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.InDeltaSlice(t, []float64{0, 0}, p.Component(1), 1e-9)
	assert.InDeltaSlice(t, []float64{0, 0}, p.Component(2), 1e-9)
	assert.InDelta(t, -p.Points[0][0], p.Points[1][0], 1e-9)
}

func TestPCAVarianceRatiosDescending(t *testing.T) {
	m := randomMatrix(rand.New(rand.NewSource(11)), 20, 5)
	p, err := PCA(m, 3)
	require.NoError(t, err)
	r := p.ExplainedVarianceRatio
	assert.GreaterOrEqual(t, r[0], r[1])
	assert.GreaterOrEqual(t, r[1], r[2])
	assert.LessOrEqual(t, r[0]+r[1]+r[2], 1.0+1e-9)
}

func TestPCAInvalidInput(t *testing.T) {
	_, err := PCA(nil, 2)
	assert.Error(t, err)
	_, err = PCA(domain.Matrix{{1, 2}}, 0)
	assert.Error(t, err)
	_, err = PCA(domain.Matrix{{1, 2}, {1}}, 1)
	assert.Error(t, err)

	single, err := PCA(domain.Matrix{{1, 2, 3}}, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 0}}, single.Points)
}
