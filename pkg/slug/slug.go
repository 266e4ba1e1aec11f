// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

// Package slug derives ASCII identifiers from arbitrary Unicode strings.
//
// # Usage
//
// Usernames are derived from the local part of an email address when a
// member signs up without choosing one (e.g., "Jané.Doe" → "jane_doe").
// This package handles normalization, accent removal, and character sanitization.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Username length bounds. A derived base leaves room for a numeric suffix.
const (
	UsernameMinLength  = 3
	UsernameMaxLength  = 30
	UsernameBaseLength = 26
)

var (
	// nonAlphanumeric matches any sequence of non-alphanumeric, non-hyphen characters.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9-]+`)
	// multiHyphen collapses multiple consecutive hyphens into one.
	multiHyphen = regexp.MustCompile(`-{2,}`)
	// multiUnderscore collapses runs of underscores in usernames.
	multiUnderscore = regexp.MustCompile(`_{2,}`)
)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Converts to lowercase.
// 4. Replaces non-alphanumeric characters with hyphens.
// 5. Collapses multiple hyphens and trims leading/trailing hyphens.
func From(s string) string {
	result := stripMarks(s)
	result = strings.ToLower(result)

	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '-'
	}, result)

	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	return result
}

// Username turns an email local part into a valid base username.
//
// The result matches ^[a-z0-9_]{3,26}$: accents are stripped, anything else
// becomes an underscore, short results are padded with underscores.
func Username(localPart string) string {
	result := strings.ToLower(stripMarks(strings.TrimSpace(localPart)))

	result = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, result)

	result = multiUnderscore.ReplaceAllString(result, "_")

	if len(result) > UsernameBaseLength {
		result = result[:UsernameBaseLength]
	}

	for len(result) < UsernameMinLength {
		result += "_"
	}

	return result
}

// UsernameCandidates lists the names tried in order for a derived base:
// base, base1 … base9. Callers fall back to [UsernameFallback] when all are taken.
func UsernameCandidates(base string) []string {
	candidates := make([]string, 0, 10)
	candidates = append(candidates, base)
	for i := 1; i <= 9; i++ {
		candidates = append(candidates, fmt.Sprintf("%s%d", base, i))
	}
	return candidates
}

// UsernameFallback returns base_<millis>, trimmed to the maximum username length.
func UsernameFallback(base string, unixMillis int64) string {
	suffix := fmt.Sprintf("_%d", unixMillis)
	if len(base)+len(suffix) > UsernameMaxLength {
		base = base[:UsernameMaxLength-len(suffix)]
	}
	return base + suffix
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)
	return result
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
