// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

// Package text turns movie overviews into bag-of-words count vectors.
//
// The vocabulary is fitted once over the whole corpus: stop words are
// dropped, the max-features most frequent terms are kept, and columns are
// assigned in lexicographic term order so that the same corpus always maps
// to the same feature space.
package text

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// DefaultMaxFeatures caps the vocabulary when no option overrides it.
const DefaultMaxFeatures = 5000

// Option configures a Vectorizer.
type Option func(*Vectorizer)

// WithMaxFeatures caps the vocabulary size. Values <= 0 mean unbounded.
func WithMaxFeatures(n int) Option {
	return func(v *Vectorizer) {
		v.maxFeatures = n
	}
}

// WithStopWords replaces the stop word set.
func WithStopWords(words StopWords) Option {
	return func(v *Vectorizer) {
		v.stopWords = words
		v.stopWordsName = "custom"
	}
}

// WithoutStopWords disables stop word removal.
func WithoutStopWords() Option {
	return func(v *Vectorizer) {
		v.stopWords = nil
		v.stopWordsName = "none"
	}
}

// Vectorizer fits a vocabulary and produces count vectors.
// It holds no per-corpus state and is safe for concurrent use.
type Vectorizer struct {
	maxFeatures   int
	stopWords     StopWords
	stopWordsName string
}

// NewVectorizer creates a Vectorizer using English stop words and
// DefaultMaxFeatures unless overridden.
func NewVectorizer(opts ...Option) *Vectorizer {
	v := &Vectorizer{
		maxFeatures:   DefaultMaxFeatures,
		stopWords:     EnglishStopWords,
		stopWordsName: "english",
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// MaxFeatures returns the configured vocabulary cap.
func (v *Vectorizer) MaxFeatures() int {
	return v.maxFeatures
}

// Settings describes the configuration in a stable form. Artifacts record
// it so that a change of settings invalidates them.
func (v *Vectorizer) Settings() string {
	return fmt.Sprintf("count;max_features=%d;stop_words=%s;min_token=%d",
		v.maxFeatures, v.stopWordsName, minTokenLen)
}

// terms tokenizes doc and removes stop words.
func (v *Vectorizer) terms(doc string) []string {
	tokens := Tokenize(doc)
	if len(v.stopWords) == 0 {
		return tokens
	}
	kept := tokens[:0]
	for _, tok := range tokens {
		if !v.stopWords.Contains(tok) {
			kept = append(kept, tok)
		}
	}
	return kept
}

// FitTransform learns the vocabulary from docs and returns one count row per
// document, in input order. The only error is ctx cancellation.
func (v *Vectorizer) FitTransform(ctx context.Context, docs []string) (*Vocabulary, *FeatureMatrix, error) {
	tokenized := make([][]string, len(docs))
	totals := make(map[string]int)

	for i, doc := range docs {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, fmt.Errorf("vectorize: %w", err)
			}
		}
		terms := v.terms(doc)
		tokenized[i] = terms
		for _, t := range terms {
			totals[t]++
		}
	}

	vocab := newVocabulary(selectTerms(totals, v.maxFeatures))

	m := &FeatureMatrix{
		cols: vocab.Len(),
		rows: make([]SparseVector, len(docs)),
	}
	for i, terms := range tokenized {
		m.rows[i] = vocab.countVector(terms)
	}

	return vocab, m, nil
}

// selectTerms keeps the maxFeatures most frequent terms. Equal counts are
// ordered by term so the cut is deterministic.
func selectTerms(totals map[string]int, maxFeatures int) []string {
	terms := make([]string, 0, len(totals))
	for t := range totals {
		terms = append(terms, t)
	}

	if maxFeatures > 0 && len(terms) > maxFeatures {
		slices.SortFunc(terms, func(a, b string) int {
			if c := cmp.Compare(totals[b], totals[a]); c != 0 {
				return c
			}
			return strings.Compare(a, b)
		})
		terms = terms[:maxFeatures]
	}

	sort.Strings(terms)
	return terms
}

// Vocabulary maps terms to feature columns. Immutable after construction.
type Vocabulary struct {
	terms []string
	index map[string]int
}

func newVocabulary(sortedTerms []string) *Vocabulary {
	idx := make(map[string]int, len(sortedTerms))
	for i, t := range sortedTerms {
		idx[t] = i
	}
	return &Vocabulary{terms: sortedTerms, index: idx}
}

// VocabularyFromTerms rebuilds a vocabulary from its persisted term list.
// Terms must be unique; their order defines the columns.
func VocabularyFromTerms(terms []string) (*Vocabulary, error) {
	v := newVocabulary(slices.Clone(terms))
	if len(v.index) != len(v.terms) {
		return nil, fmt.Errorf("vocabulary: %d terms but %d unique", len(v.terms), len(v.index))
	}
	return v, nil
}

// Len returns the number of feature columns.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Index returns the column of term.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Terms returns the terms in column order.
func (v *Vocabulary) Terms() []string {
	return slices.Clone(v.terms)
}

// countVector drops terms outside the vocabulary.
func (v *Vocabulary) countVector(terms []string) SparseVector {
	counts := make(map[int]int)
	for _, t := range terms {
		if col, ok := v.index[t]; ok {
			counts[col]++
		}
	}

	sv := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Counts:  make([]int, 0, len(counts)),
	}
	for col := range counts {
		sv.Indices = append(sv.Indices, col)
	}
	sort.Ints(sv.Indices)
	for _, col := range sv.Indices {
		sv.Counts = append(sv.Counts, counts[col])
	}
	return sv
}
