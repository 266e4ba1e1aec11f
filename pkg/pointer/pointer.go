// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

// Package pointer holds small generic helpers for optional fields such as
// bannedAt or lastLogin.
package pointer

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}

// Clone copies the value behind p into fresh memory. Nil stays nil.
//
// Stores that hand out account snapshots use it so callers never share a
// timestamp or ban record with the stored copy.
func Clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	return To(*p)
}
