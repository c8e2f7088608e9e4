// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package text

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercases", "Cat DOG", []string{"cat", "dog"}},
		{"drops single chars", "a cat and a dog", []string{"cat", "and", "dog"}},
		{"punctuation separates", "sci-fi, space!", []string{"sci", "fi", "space"}},
		{"digits and underscore", "agent_007 in 1999", []string{"agent_007", "in", "1999"}},
		{"unicode letters", "Amélie à Paris", []string{"amélie", "paris"}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Tokenize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFitTransform_IdenticalBagsWithoutStopWords(t *testing.T) {
	t.Parallel()

	docs := []string{"a cat and a dog", "a dog and a cat", "a spaceship"}
	vocab, m, err := NewVectorizer(WithoutStopWords()).FitTransform(context.Background(), docs)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	wantTerms := []string{"and", "cat", "dog", "spaceship"}
	if got := vocab.Terms(); !reflect.DeepEqual(got, wantTerms) {
		t.Errorf("Terms() = %v, want %v", got, wantTerms)
	}
	if m.Rows() != 3 || m.Cols() != 4 {
		t.Fatalf("shape = %dx%d, want 3x4", m.Rows(), m.Cols())
	}
	if !reflect.DeepEqual(m.Dense(0), m.Dense(1)) {
		t.Errorf("rows 0 and 1 differ: %v vs %v", m.Dense(0), m.Dense(1))
	}
	if want := []float64{0, 0, 0, 1}; !reflect.DeepEqual(m.Dense(2), want) {
		t.Errorf("Dense(2) = %v, want %v", m.Dense(2), want)
	}
}

func TestFitTransform_StopWordsRemoved(t *testing.T) {
	t.Parallel()

	vocab, _, err := NewVectorizer().FitTransform(context.Background(), []string{"The hero and the villain"})
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	for _, stop := range []string{"the", "and"} {
		if _, ok := vocab.Index(stop); ok {
			t.Errorf("stop word %q is in the vocabulary", stop)
		}
	}
	if _, ok := vocab.Index("villain"); !ok {
		t.Error("expected villain in vocabulary")
	}
}

func TestFitTransform_MaxFeaturesKeepsMostFrequent(t *testing.T) {
	t.Parallel()

	docs := []string{
		"robot robot robot alien",
		"robot alien ghost",
		"zombie",
	}
	vocab, m, err := NewVectorizer(WithMaxFeatures(2), WithoutStopWords()).FitTransform(context.Background(), docs)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	want := []string{"alien", "robot"}
	if got := vocab.Terms(); !reflect.DeepEqual(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
	// Out-of-vocabulary terms are dropped, not rejected.
	if !m.Row(2).IsZero() {
		t.Errorf("row 2 = %+v, want zero vector", m.Row(2))
	}
	if got := m.Dense(0); !reflect.DeepEqual(got, []float64{1, 3}) {
		t.Errorf("Dense(0) = %v, want [1 3]", got)
	}
}

func TestFitTransform_TieBreakIsDeterministic(t *testing.T) {
	t.Parallel()

	docs := []string{"delta charlie bravo alpha"}
	for i := 0; i < 5; i++ {
		vocab, _, err := NewVectorizer(WithMaxFeatures(2), WithoutStopWords()).FitTransform(context.Background(), docs)
		if err != nil {
			t.Fatalf("FitTransform() error = %v", err)
		}
		if got := vocab.Terms(); !reflect.DeepEqual(got, []string{"alpha", "bravo"}) {
			t.Fatalf("Terms() = %v, want [alpha bravo]", got)
		}
	}
}

func TestFitTransform_EmptyCorpus(t *testing.T) {
	t.Parallel()

	vocab, m, err := NewVectorizer().FitTransform(context.Background(), nil)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	if vocab.Len() != 0 || m.Rows() != 0 {
		t.Errorf("got vocab=%d rows=%d, want empty", vocab.Len(), m.Rows())
	}
}

func TestFitTransform_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewVectorizer().FitTransform(ctx, []string{"anything"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("FitTransform() error = %v, want context.Canceled", err)
	}
}

func TestVocabularyFromTerms(t *testing.T) {
	t.Parallel()

	v, err := VocabularyFromTerms([]string{"alien", "robot"})
	if err != nil {
		t.Fatalf("VocabularyFromTerms() error = %v", err)
	}
	if i, ok := v.Index("robot"); !ok || i != 1 {
		t.Errorf("Index(robot) = %d, %v, want 1, true", i, ok)
	}

	if _, err := VocabularyFromTerms([]string{"x1", "x1"}); err == nil {
		t.Error("expected error for duplicate terms")
	}
}

func TestSettingsChangeWithOptions(t *testing.T) {
	t.Parallel()

	a := NewVectorizer().Settings()
	b := NewVectorizer(WithMaxFeatures(10)).Settings()
	c := NewVectorizer(WithoutStopWords()).Settings()
	if a == b || a == c || b == c {
		t.Errorf("settings not distinct: %q %q %q", a, b, c)
	}
}
