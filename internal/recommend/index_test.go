// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/plotmatch/internal/recommend/similarity"
	"github.com/tomtom215/plotmatch/internal/recommend/text"
)

func buildTestIndex(t *testing.T, movies []Movie) *Index {
	t.Helper()
	idx, err := BuildIndex(context.Background(), NewCorpus(movies), text.NewVectorizer())
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	return idx
}

func TestIndex_Similar_Scenario(t *testing.T) {
	t.Parallel()

	idx := buildTestIndex(t, []Movie{
		{ID: 1, Title: "A", Overview: "cat dog"},
		{ID: 2, Title: "B", Overview: "dog cat"},
		{ID: 3, Title: "C", Overview: "spaceship"},
	})

	got, err := idx.Similar("A", 2)
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Title != "B" || got[0].Score != 1 {
		t.Errorf("first = %+v, want B with score 1", got[0])
	}
	if got[1].Title != "C" || got[1].Score != 0 {
		t.Errorf("second = %+v, want C with score 0", got[1])
	}
	if got[0].Row != 1 || got[0].ID != 2 {
		t.Errorf("first row/id = %d/%d, want 1/2", got[0].Row, got[0].ID)
	}
}

func TestIndex_Similar_FewerThanK(t *testing.T) {
	t.Parallel()

	idx := buildTestIndex(t, []Movie{
		{ID: 1, Title: "A", Overview: "red apple"},
		{ID: 2, Title: "B", Overview: "green apple"},
		{ID: 3, Title: "C", Overview: "red car"},
	})

	got, err := idx.Similar("A", 10)
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
	for _, m := range got {
		if m.Title == "A" {
			t.Error("query movie returned in its own results")
		}
	}
}

func TestIndex_Similar_UnknownTitle(t *testing.T) {
	t.Parallel()
	idx := buildTestIndex(t, []Movie{{ID: 1, Title: "A", Overview: "words here"}})

	if _, err := idx.Similar("Nope", 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("Similar() error = %v, want ErrNotFound", err)
	}
}

func TestIndex_Neighbors_OutOfRange(t *testing.T) {
	t.Parallel()
	idx := buildTestIndex(t, []Movie{{ID: 1, Title: "A", Overview: "words here"}})

	if _, err := idx.Neighbors(3, 5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Neighbors() error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestBuildIndex_EmptyCorpus(t *testing.T) {
	t.Parallel()

	_, err := BuildIndex(context.Background(), NewCorpus([]Movie{{Title: "A", Overview: "  "}}), text.NewVectorizer())
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("BuildIndex() error = %v, want ErrEmptyCorpus", err)
	}
}

func TestNewIndex_SizeMismatch(t *testing.T) {
	t.Parallel()

	corpus := NewCorpus([]Movie{{Title: "A", Overview: "x y"}, {Title: "B", Overview: "y z"}})
	sim, err := similarity.FromTriangle(1, []float32{1})
	if err != nil {
		t.Fatal(err)
	}
	vocab, _ := text.VocabularyFromTerms(nil)
	if _, err := NewIndex(corpus, vocab, sim, "", time.Now()); err == nil {
		t.Error("NewIndex() expected size mismatch error")
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	base := NewCorpus([]Movie{{ID: 1, Title: "A", Overview: "one"}, {ID: 2, Title: "B", Overview: "two"}})
	same := NewCorpus([]Movie{{ID: 1, Title: "A", Overview: "one"}, {ID: 2, Title: "B", Overview: "two"}})
	reordered := NewCorpus([]Movie{{ID: 2, Title: "B", Overview: "two"}, {ID: 1, Title: "A", Overview: "one"}})
	edited := NewCorpus([]Movie{{ID: 1, Title: "A", Overview: "one!"}, {ID: 2, Title: "B", Overview: "two"}})
	// length prefixes keep "one"+"two" distinct from "onet"+"wo"
	shifted := NewCorpus([]Movie{{ID: 1, Title: "A", Overview: "onet"}, {ID: 2, Title: "B", Overview: "wo"}})

	fp := Fingerprint(base, "s")
	if fp != Fingerprint(same, "s") {
		t.Error("identical corpora produced different fingerprints")
	}
	for name, other := range map[string]string{
		"reordered": Fingerprint(reordered, "s"),
		"edited":    Fingerprint(edited, "s"),
		"shifted":   Fingerprint(shifted, "s"),
		"settings":  Fingerprint(base, "t"),
	} {
		if other == fp {
			t.Errorf("%s corpus has the same fingerprint", name)
		}
	}
}
