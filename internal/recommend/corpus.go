// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package recommend

import (
	"fmt"
	"strings"
)

// Corpus is the ordered, filtered movie list. A movie's position is its row
// in the feature and similarity matrices. A Corpus is immutable.
type Corpus struct {
	movies []Movie
	// first row of each title; later duplicates are shadowed
	byTitle    map[string]int
	duplicates []string
}

// NewCorpus keeps the records that have a non-blank overview, in input order.
func NewCorpus(records []Movie) *Corpus {
	c := &Corpus{
		movies:  make([]Movie, 0, len(records)),
		byTitle: make(map[string]int, len(records)),
	}
	for _, m := range records {
		if strings.TrimSpace(m.Overview) == "" {
			continue
		}
		row := len(c.movies)
		c.movies = append(c.movies, m)
		if _, seen := c.byTitle[m.Title]; seen {
			c.duplicates = append(c.duplicates, m.Title)
			continue
		}
		c.byTitle[m.Title] = row
	}
	return c
}

// Len returns the number of movies.
func (c *Corpus) Len() int {
	return len(c.movies)
}

// Movie returns the movie at row i.
func (c *Corpus) Movie(i int) (Movie, error) {
	if i < 0 || i >= len(c.movies) {
		return Movie{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(c.movies))
	}
	return c.movies[i], nil
}

// Movies returns a copy of all movies in row order.
func (c *Corpus) Movies() []Movie {
	out := make([]Movie, len(c.movies))
	copy(out, c.movies)
	return out
}

// Titles returns all titles in row order.
func (c *Corpus) Titles() []string {
	out := make([]string, len(c.movies))
	for i, m := range c.movies {
		out[i] = m.Title
	}
	return out
}

// Overviews returns all overviews in row order.
func (c *Corpus) Overviews() []string {
	out := make([]string, len(c.movies))
	for i, m := range c.movies {
		out[i] = m.Overview
	}
	return out
}

// Resolve returns the row of the first movie whose title equals title
// exactly. Matching is case-sensitive and never fuzzy.
func (c *Corpus) Resolve(title string) (int, error) {
	row, ok := c.byTitle[title]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, title)
	}
	return row, nil
}

// Duplicates lists titles that appear more than once, one entry per
// shadowed occurrence. Only the first occurrence can be resolved.
func (c *Corpus) Duplicates() []string {
	out := make([]string, len(c.duplicates))
	copy(out, c.duplicates)
	return out
}

// Search returns up to limit movies whose title contains query,
// case-insensitively, in row order. An empty query matches everything.
// limit <= 0 means no limit.
func (c *Corpus) Search(query string, limit int) []Movie {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Movie, 0)
	for _, m := range c.movies {
		if q != "" && !strings.Contains(strings.ToLower(m.Title), q) {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
