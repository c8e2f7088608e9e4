// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package text

import (
	"strings"
	"unicode"
)

// minTokenLen is the shortest run of word characters kept as a term.
// Single letters ("a", "I") never become features.
const minTokenLen = 2

// Tokenize lowercases s and splits it into word tokens of at least two
// word characters (letters, digits or underscore). Everything else is a
// separator, so "sci-fi" yields "sci" and "fi".
func Tokenize(s string) []string {
	s = strings.ToLower(s)

	tokens := make([]string, 0, len(s)/5)
	start := -1
	for i, r := range s {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = appendToken(tokens, s[start:i])
			start = -1
		}
	}
	if start >= 0 {
		tokens = appendToken(tokens, s[start:])
	}
	return tokens
}

func appendToken(tokens []string, tok string) []string {
	// Count runes, not bytes, so "é" alone is still one character.
	n := 0
	for range tok {
		n++
		if n >= minTokenLen {
			return append(tokens, tok)
		}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
