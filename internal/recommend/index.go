// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package recommend

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"time"

	"github.com/tomtom215/plotmatch/internal/recommend/similarity"
	"github.com/tomtom215/plotmatch/internal/recommend/text"
)

// Index is the immutable result of initialization: corpus, vocabulary and
// similarity matrix, all addressed by the same row numbers. It is shared by
// pointer with every reader and never modified after construction.
type Index struct {
	corpus      *Corpus
	vocabulary  *text.Vocabulary
	similarity  *similarity.Matrix
	fingerprint string
	builtAt     time.Time
}

// NewIndex assembles an index. The matrix must have one row per movie.
func NewIndex(corpus *Corpus, vocabulary *text.Vocabulary, sim *similarity.Matrix, fingerprint string, builtAt time.Time) (*Index, error) {
	if sim.Size() != corpus.Len() {
		return nil, fmt.Errorf("similarity matrix has %d rows, corpus has %d movies", sim.Size(), corpus.Len())
	}
	return &Index{
		corpus:      corpus,
		vocabulary:  vocabulary,
		similarity:  sim,
		fingerprint: fingerprint,
		builtAt:     builtAt,
	}, nil
}

// BuildIndex vectorizes the corpus and computes the similarity matrix.
func BuildIndex(ctx context.Context, corpus *Corpus, vectorizer *text.Vectorizer, opts ...similarity.BuildOption) (*Index, error) {
	if corpus.Len() == 0 {
		return nil, ErrEmptyCorpus
	}
	vocab, features, err := vectorizer.FitTransform(ctx, corpus.Overviews())
	if err != nil {
		return nil, err
	}
	sim, err := similarity.Build(ctx, features, opts...)
	if err != nil {
		return nil, err
	}
	return NewIndex(corpus, vocab, sim, Fingerprint(corpus, vectorizer.Settings()), time.Now().UTC())
}

// Corpus returns the indexed movies.
func (x *Index) Corpus() *Corpus { return x.corpus }

// Vocabulary returns the fitted vocabulary.
func (x *Index) Vocabulary() *text.Vocabulary { return x.vocabulary }

// Similarity returns the similarity matrix.
func (x *Index) Similarity() *similarity.Matrix { return x.similarity }

// Fingerprint identifies the corpus and vectorizer settings the index was
// built from.
func (x *Index) Fingerprint() string { return x.fingerprint }

// BuiltAt is when the similarity matrix was computed.
func (x *Index) BuiltAt() time.Time { return x.builtAt }

// Neighbors returns the k movies most similar to row, best first.
func (x *Index) Neighbors(row, k int) ([]ScoredMovie, error) {
	neighbors, err := x.similarity.TopSimilar(row, k)
	if err != nil {
		return nil, err
	}
	out := make([]ScoredMovie, len(neighbors))
	for i, n := range neighbors {
		out[i] = ScoredMovie{Movie: x.corpus.movies[n.Row], Row: n.Row, Score: n.Score}
	}
	return out, nil
}

// Similar resolves title and returns its k nearest neighbours. The query
// movie is never part of the result.
func (x *Index) Similar(title string, k int) ([]ScoredMovie, error) {
	row, err := x.corpus.Resolve(title)
	if err != nil {
		return nil, err
	}
	return x.Neighbors(row, k)
}

// Fingerprint hashes the corpus contents and the vectorizer settings.
// Artifacts whose fingerprint differs were built from other inputs.
func Fingerprint(corpus *Corpus, settings string) string {
	h := sha256.New()
	writeField(h, settings)
	var buf [8]byte
	for _, m := range corpus.movies {
		binary.BigEndian.PutUint64(buf[:], uint64(m.ID)) //nolint:gosec // bit pattern only
		h.Write(buf[:])
		writeField(h, m.Title)
		writeField(h, m.Overview)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeField writes a length-prefixed string so field boundaries are
// unambiguous.
func writeField(h hash.Hash, s string) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(s)))
	h.Write(buf[:])
	h.Write([]byte(s))
}
