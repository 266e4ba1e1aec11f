// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

/*
Package uuid issues the identifiers StudentHub stores: account ids and
server-assigned device ids.

Values are UUIDv7, so ids sort by creation time and append to the right edge
of PostgreSQL B-tree indexes.
*/
package uuid

import "github.com/google/uuid"

// New returns a fresh UUIDv7 in canonical form. It panics only when the OS
// entropy source fails.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Valid reports whether s is a UUID of any version. Repositories use it to
// turn malformed path ids into "not found" before querying a UUID column.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
