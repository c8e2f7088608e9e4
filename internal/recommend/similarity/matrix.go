// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

// Package similarity builds the all-pairs cosine similarity matrix over a
// count feature matrix and answers nearest-neighbour queries against it.
//
// The matrix is stored as a packed upper triangle (diagonal included) of
// float32 scores. It is immutable once built, so any number of goroutines
// may query it without locking.
package similarity

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrIndexOutOfRange is returned when a row index is outside the matrix.
var ErrIndexOutOfRange = errors.New("row index out of range")

// Neighbor is one ranked result of TopSimilar.
type Neighbor struct {
	Row   int
	Score float64
}

// Matrix is a symmetric n x n similarity matrix.
type Matrix struct {
	n    int
	data []float32
}

// triangleLen is the packed length for an n x n upper triangle.
func triangleLen(n int) int {
	return n * (n + 1) / 2
}

// offset returns the packed position of (i, j) with i <= j.
func (m *Matrix) offset(i, j int) int {
	return i*m.n - i*(i-1)/2 + (j - i)
}

// FromTriangle restores a matrix from its packed upper triangle.
func FromTriangle(n int, data []float32) (*Matrix, error) {
	if n < 0 {
		return nil, fmt.Errorf("similarity: negative size %d", n)
	}
	if want := triangleLen(n); len(data) != want {
		return nil, fmt.Errorf("similarity: triangle has %d entries, want %d for n=%d", len(data), want, n)
	}
	return &Matrix{n: n, data: data}, nil
}

// Triangle returns the packed upper triangle. The slice is shared with the
// matrix and must not be modified.
func (m *Matrix) Triangle() []float32 {
	return m.data
}

// Size returns the number of rows.
func (m *Matrix) Size() int {
	return m.n
}

// At returns sim(i, j). Both indices must be in range.
func (m *Matrix) At(i, j int) float64 {
	if i > j {
		i, j = j, i
	}
	return float64(m.data[m.offset(i, j)])
}

func (m *Matrix) checkRow(i int) error {
	if i < 0 || i >= m.n {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, m.n)
	}
	return nil
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) ([]float64, error) {
	if err := m.checkRow(i); err != nil {
		return nil, err
	}
	row := make([]float64, m.n)
	for j := range row {
		row[j] = m.At(i, j)
	}
	return row, nil
}

// TopSimilar returns at most k rows most similar to index, best first.
// Columns are stable-sorted by descending score, so ties keep column order.
// The query row itself is never returned, even when it does not sort first
// (a zero vector scores 0 against itself and ties with every other row).
func (m *Matrix) TopSimilar(index, k int) ([]Neighbor, error) {
	if err := m.checkRow(index); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []Neighbor{}, nil
	}

	candidates := make([]Neighbor, 0, m.n)
	for j := 0; j < m.n; j++ {
		candidates = append(candidates, Neighbor{Row: j, Score: m.At(index, j)})
	}
	slices.SortStableFunc(candidates, func(a, b Neighbor) int {
		return cmp.Compare(b.Score, a.Score)
	})

	out := make([]Neighbor, 0, min(k, m.n-1))
	for _, c := range candidates {
		if c.Row == index {
			continue
		}
		out = append(out, c)
		if len(out) == k {
			break
		}
	}
	return out, nil
}
