// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor. Tests lower it through [Hasher].
const PasswordCost = 12

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	cost int

	// dummyHash is compared against when no account matched, so unknown
	// identifiers cost the same as wrong passwords.
	dummyHash []byte
}

// NewHasher returns a Hasher using cost, or [PasswordCost] when cost is out of range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = PasswordCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("studenthub-dummy-password"), cost)
	return &Hasher{cost: cost, dummyHash: dummy}
}

// Hash hashes a plain-text password. The result embeds its own salt.
func (hasher *Hasher) Hash(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Verify compares a plain-text password with a stored hash. An empty hash
// (account without a local password) never matches but still burns one
// comparison.
func (hasher *Hasher) Verify(plainTextPassword, existingHash string) bool {
	if existingHash == "" {
		_ = bcrypt.CompareHashAndPassword(hasher.dummyHash, []byte(plainTextPassword))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword)) == nil
}

// Burn performs one throwaway comparison.
func (hasher *Hasher) Burn(plainTextPassword string) {
	_ = bcrypt.CompareHashAndPassword(hasher.dummyHash, []byte(plainTextPassword))
}
