// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package admin

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/wayneaws/studenthub/internal/platform/sec"
	"github.com/wayneaws/studenthub/internal/users/auth"
	"github.com/wayneaws/studenthub/pkg/pointer"
)

// MemoryRepository implements [Repository] on top of the in-memory
// credential store.
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

// FindByEmail implements [Repository].
func (repository *MemoryRepository) FindByEmail(context context.Context, email string) (*auth.Account, error) {
	return repository.store.FindByEmail(context, email)
}

// Counts implements [Repository].
func (repository *MemoryRepository) Counts(_ context.Context, since time.Time) (AccountCounts, error) {
	var counts AccountCounts
	for _, account := range repository.store.Accounts() {
		counts.Total++
		switch account.Status {
		case auth.StatusActive:
			counts.Active++
		case auth.StatusBanned:
			counts.Banned++
		}
		if account.Role.AtLeast(sec.RoleAdmin) {
			counts.Admins++
		}
		if !account.CreatedAt.Before(since) {
			counts.Recent++
		}
	}
	return counts, nil
}

// List implements [Repository].
func (repository *MemoryRepository) List(_ context.Context, filter Filter, limit, offset int) ([]*auth.Account, int, error) {
	needle := strings.ToLower(filter.Search)

	accounts := slices.DeleteFunc(repository.store.Accounts(), func(account *auth.Account) bool {
		if filter.Role != "" && account.Role != filter.Role {
			return true
		}
		if filter.Status != "" && account.Status != filter.Status {
			return true
		}
		if needle == "" {
			return false
		}
		return !strings.Contains(strings.ToLower(account.Username), needle) &&
			!strings.Contains(strings.ToLower(account.FullName), needle) &&
			!strings.Contains(strings.ToLower(account.Email), needle)
	})

	slices.SortFunc(accounts, func(a, b *auth.Account) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	total := len(accounts)
	if offset >= total {
		return []*auth.Account{}, total, nil
	}
	end := min(offset+limit, total)
	return accounts[offset:end], total, nil
}

// SetRole implements [Repository].
func (repository *MemoryRepository) SetRole(_ context.Context, id string, role sec.UserRole) error {
	return repository.store.Mutate(id, func(account *auth.Account) error {
		account.Role = role
		return nil
	})
}

// Ban implements [Repository].
func (repository *MemoryRepository) Ban(_ context.Context, id string, actor auth.BanActor, reason string, at time.Time) error {
	return repository.store.Mutate(id, func(account *auth.Account) error {
		account.Status = auth.StatusBanned
		account.BannedAt = pointer.To(at)
		account.BannedBy = &actor
		account.BanReason = reason
		return nil
	})
}

// Unban implements [Repository].
func (repository *MemoryRepository) Unban(_ context.Context, id string) error {
	return repository.store.Mutate(id, func(account *auth.Account) error {
		account.Status = auth.StatusActive
		account.BannedAt = nil
		account.BannedBy = nil
		account.BanReason = ""
		return nil
	})
}

// Delete implements [Repository].
func (repository *MemoryRepository) Delete(_ context.Context, id string) error {
	return repository.store.Remove(id)
}
