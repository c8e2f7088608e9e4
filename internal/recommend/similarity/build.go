// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package similarity

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/plotmatch/internal/recommend/text"
)

// BuildOption configures Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	workers  int
	progress func(done, total int)
}

// WithWorkers sets the number of goroutines computing rows.
// Values <= 0 use GOMAXPROCS.
func WithWorkers(n int) BuildOption {
	return func(o *buildOptions) {
		o.workers = n
	}
}

// WithProgress registers a callback invoked after each completed row.
// It is called from worker goroutines and must be safe for concurrent use.
func WithProgress(fn func(done, total int)) BuildOption {
	return func(o *buildOptions) {
		o.progress = fn
	}
}

// posting is one (row, count) entry of a column's inverted list.
type posting struct {
	row   int
	count float64
}

// Build computes cosine similarity for every pair of rows of m.
//
// sim(i,j) = dot(v_i, v_j) / sqrt(|v_i|^2 * |v_j|^2). Zero rows score 0
// against every row, including themselves; non-zero rows score exactly 1
// on the diagonal. Dot products are accumulated through per-column posting
// lists, so the cost follows the number of shared terms rather than the
// vocabulary size. Build returns ctx.Err() if cancelled.
func Build(ctx context.Context, m *text.FeatureMatrix, opts ...BuildOption) (*Matrix, error) {
	o := buildOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}

	n := m.Rows()
	out := &Matrix{n: n, data: make([]float32, triangleLen(n))}
	if n == 0 {
		return out, nil
	}

	sq := make([]float64, n)
	postings := make([][]posting, m.Cols())
	for i := 0; i < n; i++ {
		row := m.Row(i)
		sq[i] = row.SquaredNorm()
		for k, col := range row.Indices {
			postings[col] = append(postings[col], posting{row: i, count: float64(row.Counts[k])})
		}
	}

	rows := make(chan int)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(rows)
		for i := 0; i < n; i++ {
			select {
			case rows <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < o.workers; w++ {
		g.Go(func() error {
			// Each row writes only its own slice of the triangle.
			acc := make([]float64, n)
			for i := range rows {
				if err := gctx.Err(); err != nil {
					return err
				}
				out.fillRow(i, m.Row(i), postings, sq, acc)
				d := done.Add(1)
				if o.progress != nil {
					o.progress(int(d), n)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build similarity matrix: %w", err)
	}
	return out, nil
}

// fillRow writes sim(i, j) for j >= i. acc is scratch space of length n
// and is left zeroed on return.
func (m *Matrix) fillRow(i int, row text.SparseVector, postings [][]posting, sq, acc []float64) {
	if sq[i] == 0 {
		return
	}
	m.data[m.offset(i, i)] = 1

	for k, col := range row.Indices {
		c := float64(row.Counts[k])
		for _, p := range postings[col] {
			if p.row > i {
				acc[p.row] += c * p.count
			}
		}
	}

	base := m.offset(i, i)
	for j := i + 1; j < m.n; j++ {
		dot := acc[j]
		if dot == 0 {
			continue
		}
		acc[j] = 0
		m.data[base+(j-i)] = float32(clamp(dot / math.Sqrt(sq[i]*sq[j])))
	}
}

func clamp(s float64) float64 {
	switch {
	case s > 1:
		return 1
	case s < 0:
		return 0
	default:
		return s
	}
}
