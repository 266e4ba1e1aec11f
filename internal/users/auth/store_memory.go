// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package auth

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/wayneaws/studenthub/internal/platform/dberr"
	"github.com/wayneaws/studenthub/pkg/pointer"
)

// MemoryStore is a process-local credential store implementing both
// [UserRepository] and [SessionRepository]. It backs STORAGE_DRIVER=memory
// and the service tests.
//
// # Concurrency
//
// A single mutex serializes every operation, which makes
// [MemoryStore.Rotate] atomic.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]*Account
	tokens   map[string][]RefreshToken
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*Account),
		tokens:   make(map[string][]RefreshToken),
	}
}

// # User Repository

// FindByID implements [UserRepository].
func (store *MemoryStore) FindByID(_ context.Context, id string) (*Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	account, found := store.accounts[id]
	if !found {
		return nil, dberr.ErrNotFound
	}
	return cloneAccount(account), nil
}

// FindByEmail implements [UserRepository].
func (store *MemoryStore) FindByEmail(_ context.Context, email string) (*Account, error) {
	return store.findFirst(func(account *Account) bool {
		return strings.EqualFold(account.Email, strings.TrimSpace(email))
	})
}

// FindByUsername implements [UserRepository].
func (store *MemoryStore) FindByUsername(_ context.Context, username string) (*Account, error) {
	return store.findFirst(func(account *Account) bool {
		return account.Username == username
	})
}

// FindByExternalID implements [UserRepository].
func (store *MemoryStore) FindByExternalID(_ context.Context, externalID string) (*Account, error) {
	if externalID == "" {
		return nil, dberr.ErrNotFound
	}
	return store.findFirst(func(account *Account) bool {
		return account.ExternalID == externalID
	})
}

// UsernameTaken implements [UserRepository].
func (store *MemoryStore) UsernameTaken(_ context.Context, username, excludeID string) (bool, error) {
	_, err := store.findFirst(func(account *Account) bool {
		return account.Username == username && account.ID != excludeID
	})
	return err == nil, nil
}

// Create implements [UserRepository].
func (store *MemoryStore) Create(_ context.Context, account *Account) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, existing := range store.accounts {
		if strings.EqualFold(existing.Email, account.Email) || existing.Username == account.Username {
			return ErrDuplicateAccount
		}
		if account.ExternalID != "" && existing.ExternalID == account.ExternalID {
			return ErrDuplicateAccount
		}
	}

	store.accounts[account.ID] = cloneAccount(account)
	return nil
}

// UpdatePassword implements [UserRepository].
func (store *MemoryStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return store.Mutate(id, func(account *Account) error {
		account.PasswordHash = passwordHash
		account.ResetCodeHash = ""
		account.ResetCodeExpiresAt = nil
		return nil
	})
}

// SetResetCode implements [UserRepository].
func (store *MemoryStore) SetResetCode(_ context.Context, id, codeHash string, expiresAt time.Time) error {
	return store.Mutate(id, func(account *Account) error {
		account.ResetCodeHash = codeHash
		account.ResetCodeExpiresAt = &expiresAt
		return nil
	})
}

// TouchLastLogin implements [UserRepository].
func (store *MemoryStore) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	return store.Mutate(id, func(account *Account) error {
		account.LastLogin = &at
		return nil
	})
}

// LinkExternalID implements [UserRepository].
func (store *MemoryStore) LinkExternalID(_ context.Context, id, externalID string) error {
	return store.Mutate(id, func(account *Account) error {
		account.ExternalID = externalID
		return nil
	})
}

// # Session Repository

// Register implements [SessionRepository].
func (store *MemoryStore) Register(_ context.Context, token *RefreshToken, limit int) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.registerLocked(*token, limit)
	return nil
}

// Rotate implements [SessionRepository].
func (store *MemoryStore) Rotate(_ context.Context, presentedHash, deviceID string, next *RefreshToken, limit int) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for accountID, tokens := range store.tokens {
		index := slices.IndexFunc(tokens, func(token RefreshToken) bool {
			return token.TokenHash == presentedHash && token.DeviceID == deviceID
		})
		if index < 0 {
			continue
		}

		presented := tokens[index]
		store.tokens[accountID] = slices.Delete(tokens, index, index+1)

		if presented.Expired(next.CreatedAt) {
			return ErrInvalidRefreshToken
		}

		next.AccountID = accountID
		next.DeviceID = deviceID
		store.registerLocked(*next, limit)
		return nil
	}

	return ErrInvalidRefreshToken
}

// Delete implements [SessionRepository].
func (store *MemoryStore) Delete(_ context.Context, accountID, tokenHash string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.tokens[accountID] = slices.DeleteFunc(store.tokens[accountID], func(token RefreshToken) bool {
		return token.TokenHash == tokenHash
	})
	return nil
}

// DeleteDevice implements [SessionRepository].
func (store *MemoryStore) DeleteDevice(_ context.Context, accountID, deviceID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.tokens[accountID] = slices.DeleteFunc(store.tokens[accountID], func(token RefreshToken) bool {
		return token.DeviceID == deviceID
	})
	return nil
}

// RevokeAll implements [SessionRepository].
func (store *MemoryStore) RevokeAll(_ context.Context, accountID string) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	account, found := store.accounts[accountID]
	if !found {
		return 0, dberr.ErrNotFound
	}

	delete(store.tokens, accountID)
	account.TokenVersion++
	return account.TokenVersion, nil
}

// List implements [SessionRepository].
func (store *MemoryStore) List(_ context.Context, accountID string, now time.Time) ([]RefreshToken, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	live := make([]RefreshToken, 0, len(store.tokens[accountID]))
	for _, token := range store.tokens[accountID] {
		if !token.Expired(now) {
			live = append(live, token)
		}
	}

	slices.SortFunc(live, func(a, b RefreshToken) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return live, nil
}

// DeleteExpired implements [SessionRepository].
func (store *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var removed int64
	for accountID, tokens := range store.tokens {
		before := len(tokens)
		store.tokens[accountID] = slices.DeleteFunc(tokens, func(token RefreshToken) bool {
			return token.Expired(now)
		})
		removed += int64(before - len(store.tokens[accountID]))
	}
	return removed, nil
}

// # Shared Helpers
//
// The account and admin packages build their in-memory repositories on these.

// Accounts returns a copy of every stored account.
func (store *MemoryStore) Accounts() []*Account {
	store.mu.Lock()
	defer store.mu.Unlock()

	accounts := make([]*Account, 0, len(store.accounts))
	for _, account := range store.accounts {
		accounts = append(accounts, cloneAccount(account))
	}
	return accounts
}

// Mutate applies fn to the stored account under the store lock.
func (store *MemoryStore) Mutate(id string, fn func(account *Account) error) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	account, found := store.accounts[id]
	if !found {
		return dberr.ErrNotFound
	}

	updated := cloneAccount(account)
	if err := fn(updated); err != nil {
		return err
	}

	updated.UpdatedAt = time.Now()
	store.accounts[id] = updated
	return nil
}

// Remove deletes an account and its tokens.
func (store *MemoryStore) Remove(id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, found := store.accounts[id]; !found {
		return dberr.ErrNotFound
	}

	delete(store.accounts, id)
	delete(store.tokens, id)
	return nil
}

// TokenCount returns the number of stored tokens (live or not) for an account.
func (store *MemoryStore) TokenCount(accountID string) int {
	store.mu.Lock()
	defer store.mu.Unlock()

	return len(store.tokens[accountID])
}

func (store *MemoryStore) findFirst(match func(account *Account) bool) (*Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, account := range store.accounts {
		if match(account) {
			return cloneAccount(account), nil
		}
	}
	return nil, dberr.ErrNotFound
}

// registerLocked applies device supersession, the expiry sweep, and the cap.
func (store *MemoryStore) registerLocked(token RefreshToken, limit int) {
	tokens := slices.DeleteFunc(store.tokens[token.AccountID], func(existing RefreshToken) bool {
		return existing.DeviceID == token.DeviceID || existing.Expired(token.CreatedAt)
	})
	tokens = append(tokens, token)

	if len(tokens) > limit {
		slices.SortStableFunc(tokens, func(a, b RefreshToken) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
		tokens = slices.Clone(tokens[len(tokens)-limit:])
	}

	store.tokens[token.AccountID] = tokens
}

func cloneAccount(account *Account) *Account {
	clone := *account
	clone.ProgrammingLanguages = slices.Clone(account.ProgrammingLanguages)
	clone.BannedAt = pointer.Clone(account.BannedAt)
	clone.BannedBy = pointer.Clone(account.BannedBy)
	clone.ResetCodeExpiresAt = pointer.Clone(account.ResetCodeExpiresAt)
	clone.LastLogin = pointer.Clone(account.LastLogin)
	return &clone
}
