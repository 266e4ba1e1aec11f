// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package account

import (
	"context"
	"slices"
	"strings"

	"github.com/wayneaws/studenthub/internal/users/auth"
)

// MemoryRepository implements [Repository] on top of the in-memory
// credential store, for the memory storage driver and tests.
type MemoryRepository struct {
	store *auth.MemoryStore
}

// NewMemoryRepository wraps store.
func NewMemoryRepository(store *auth.MemoryStore) *MemoryRepository {
	return &MemoryRepository{store: store}
}

// FindByID implements [Repository].
func (repository *MemoryRepository) FindByID(context context.Context, id string) (*auth.Account, error) {
	return repository.store.FindByID(context, id)
}

// FindByUsername implements [Repository].
func (repository *MemoryRepository) FindByUsername(context context.Context, username string) (*auth.Account, error) {
	return repository.store.FindByUsername(context, username)
}

// UsernameTaken implements [Repository].
func (repository *MemoryRepository) UsernameTaken(context context.Context, username, excludeID string) (bool, error) {
	return repository.store.UsernameTaken(context, username, excludeID)
}

// UpdateProfile implements [Repository].
func (repository *MemoryRepository) UpdateProfile(context context.Context, account *auth.Account) error {
	taken, err := repository.store.UsernameTaken(context, account.Username, account.ID)
	if err != nil {
		return err
	}
	if taken {
		return auth.ErrDuplicateAccount
	}

	return repository.store.Mutate(account.ID, func(stored *auth.Account) error {
		stored.FullName = account.FullName
		stored.Username = account.Username
		stored.Bio = account.Bio
		stored.Major = account.Major
		stored.Grade = account.Grade
		stored.ProgrammingLanguages = slices.Clone(account.ProgrammingLanguages)
		stored.WantsEmails = account.WantsEmails
		stored.ProfileSetupCompleted = account.ProfileSetupCompleted
		return nil
	})
}

// SetProfilePicture implements [Repository].
func (repository *MemoryRepository) SetProfilePicture(_ context.Context, id, url string) error {
	return repository.store.Mutate(id, func(stored *auth.Account) error {
		stored.ProfilePicture = url
		return nil
	})
}

// Recent implements [Repository].
func (repository *MemoryRepository) Recent(_ context.Context, limit int) ([]*auth.Account, error) {
	accounts := activeAccounts(repository.store.Accounts())
	slices.SortFunc(accounts, func(a, b *auth.Account) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return truncate(accounts, limit), nil
}

// Search implements [Repository].
func (repository *MemoryRepository) Search(_ context.Context, query string, limit int) ([]*auth.Account, error) {
	needle := strings.ToLower(query)
	accounts := slices.DeleteFunc(activeAccounts(repository.store.Accounts()), func(account *auth.Account) bool {
		return !strings.Contains(strings.ToLower(account.Username), needle) &&
			!strings.Contains(strings.ToLower(account.FullName), needle)
	})
	slices.SortFunc(accounts, func(a, b *auth.Account) int {
		return strings.Compare(a.Username, b.Username)
	})
	return truncate(accounts, limit), nil
}

func activeAccounts(accounts []*auth.Account) []*auth.Account {
	return slices.DeleteFunc(accounts, func(account *auth.Account) bool {
		return !account.IsActive()
	})
}

func truncate(accounts []*auth.Account, limit int) []*auth.Account {
	if limit > 0 && len(accounts) > limit {
		return accounts[:limit]
	}
	return accounts
}
