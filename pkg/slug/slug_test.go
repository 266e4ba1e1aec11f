// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wayneaws/studenthub/pkg/slug"
)

func TestUsername(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"jane", "jane"},
		{"Jane.Doe", "jane_doe"},
		{"jané", "jane"},
		{"a", "a__"},
		{"x+y", "x_y"},
		{"a..b", "a_b"},
		{"abcdefghijklmnopqrstuvwxyz0123", "abcdefghijklmnopqrstuvwxyz"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, slug.Username(tt.input), tt.input)
	}
}

func TestUsernameCandidates(t *testing.T) {
	candidates := slug.UsernameCandidates("jane")

	assert.Len(t, candidates, 10)
	assert.Equal(t, "jane", candidates[0])
	assert.Equal(t, "jane1", candidates[1])
	assert.Equal(t, "jane9", candidates[9])
}

func TestUsernameFallback(t *testing.T) {
	assert.Equal(t, "jane_1700000000000", slug.UsernameFallback("jane", 1700000000000))

	long := slug.UsernameFallback("abcdefghijklmnopqrstuvwxyz", 1700000000000)
	assert.Len(t, long, slug.UsernameMaxLength)
}

func TestFrom(t *testing.T) {
	assert.Equal(t, "cloud-club-2026", slug.From("  Cloud Club / 2026! "))
}
