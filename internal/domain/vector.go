package domain

// VectorRecord pairs a row identifier with the vector computed for that row.
type VectorRecord struct {
	ID     int
	Vector []float32
}

// Matrix is a dense row-major embedding matrix. Row i belongs to dataset row i.
type Matrix [][]float32

// Dims returns the number of rows and columns. Columns are taken from the first row.
func (m Matrix) Dims() (rows, cols int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m), len(m[0])
}
