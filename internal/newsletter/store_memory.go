// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package newsletter

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/wayneaws/studenthub/internal/platform/dberr"
	"github.com/wayneaws/studenthub/pkg/pointer"
	"github.com/wayneaws/studenthub/pkg/slice"
)

// MemoryRepository implements [Repository] in process memory. Data is lost
// on restart.
type MemoryRepository struct {
	mu          sync.Mutex
	subscribers map[string]Subscriber
}

// NewMemoryRepository creates an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{subscribers: make(map[string]Subscriber)}
}

// Subscribe implements [Repository].
func (repository *MemoryRepository) Subscribe(_ context.Context, email string, at time.Time) (Outcome, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	existing, found := repository.subscribers[email]
	if found && existing.IsActive {
		return 0, ErrAlreadySubscribed
	}

	repository.subscribers[email] = Subscriber{Email: email, IsActive: true, SubscribedAt: at}
	if found {
		return OutcomeReactivated, nil
	}
	return OutcomeSubscribed, nil
}

// Unsubscribe implements [Repository].
func (repository *MemoryRepository) Unsubscribe(_ context.Context, email string, at time.Time) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	subscriber, found := repository.subscribers[email]
	if !found {
		return dberr.ErrNotFound
	}

	subscriber.IsActive = false
	subscriber.UnsubscribedAt = pointer.To(at)
	repository.subscribers[email] = subscriber
	return nil
}

// ListActive implements [Repository].
func (repository *MemoryRepository) ListActive(_ context.Context) ([]Subscriber, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	active := slice.Filter(slices.Collect(maps.Values(repository.subscribers)), func(subscriber Subscriber) bool {
		return subscriber.IsActive
	})

	slices.SortFunc(active, func(a, b Subscriber) int {
		return b.SubscribedAt.Compare(a.SubscribedAt)
	})
	return active, nil
}

// CountActive implements [Repository].
func (repository *MemoryRepository) CountActive(context context.Context) (int, error) {
	active, err := repository.ListActive(context)
	return len(active), err
}
