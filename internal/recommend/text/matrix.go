// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package text

// SparseVector holds the non-zero counts of one document.
// Indices are strictly increasing and parallel to Counts.
type SparseVector struct {
	Indices []int
	Counts  []int
}

// NNZ returns the number of non-zero entries.
func (s SparseVector) NNZ() int {
	return len(s.Indices)
}

// SquaredNorm returns the sum of squared counts.
func (s SparseVector) SquaredNorm() float64 {
	var sum float64
	for _, c := range s.Counts {
		sum += float64(c) * float64(c)
	}
	return sum
}

// IsZero reports whether the document kept no vocabulary terms.
func (s SparseVector) IsZero() bool {
	return len(s.Indices) == 0
}

// FeatureMatrix is the corpus x vocabulary count matrix.
type FeatureMatrix struct {
	cols int
	rows []SparseVector
}

// NewFeatureMatrix wraps precomputed rows. Callers must not modify rows
// afterwards.
func NewFeatureMatrix(cols int, rows []SparseVector) *FeatureMatrix {
	return &FeatureMatrix{cols: cols, rows: rows}
}

// Rows returns the number of documents.
func (m *FeatureMatrix) Rows() int {
	return len(m.rows)
}

// Cols returns the vocabulary size.
func (m *FeatureMatrix) Cols() int {
	return m.cols
}

// Row returns the sparse counts of document i.
func (m *FeatureMatrix) Row(i int) SparseVector {
	return m.rows[i]
}

// Dense expands row i to a full-length vector.
func (m *FeatureMatrix) Dense(i int) []float64 {
	out := make([]float64, m.cols)
	r := m.rows[i]
	for k, col := range r.Indices {
		out[col] = float64(r.Counts[k])
	}
	return out
}
