// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

// Package sanitize cleans user-supplied profile text.
//
// Profile fields are rendered by the SPA as plain text, so every tag is
// stripped rather than allow-listed.
package sanitize

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text strips all markup from input and trims surrounding whitespace.
func Text(input string) string {
	// StrictPolicy escapes entities; the SPA escapes on render, so undo it here.
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(input)))
}

// # Content Filtering

// ContentFilter flags text that must not be stored.
type ContentFilter interface {
	IsOffensive(text string) bool
}

// WordFilter flags text containing any blocked word as a whole token.
type WordFilter struct {
	blocked map[string]struct{}
}

// NewWordFilter builds a [WordFilter] from a word list (case-insensitive).
func NewWordFilter(words ...string) *WordFilter {
	blocked := make(map[string]struct{}, len(words))
	for _, word := range words {
		if word = strings.ToLower(strings.TrimSpace(word)); word != "" {
			blocked[word] = struct{}{}
		}
	}
	return &WordFilter{blocked: blocked}
}

// DefaultWordFilter returns a filter with a small built-in list.
func DefaultWordFilter() *WordFilter {
	return NewWordFilter("fuck", "shit", "bitch", "cunt", "asshole", "bastard", "dick", "slut", "whore", "retard")
}

// IsOffensive implements [ContentFilter].
func (filter *WordFilter) IsOffensive(text string) bool {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, token := range tokens {
		if _, found := filter.blocked[token]; found {
			return true
		}
	}
	return false
}

// NoopFilter never flags anything.
type NoopFilter struct{}

// IsOffensive implements [ContentFilter].
func (NoopFilter) IsOffensive(string) bool { return false }
