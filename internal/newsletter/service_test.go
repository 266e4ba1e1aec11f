// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package newsletter_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayneaws/studenthub/internal/newsletter"
	"github.com/wayneaws/studenthub/internal/platform/apperr"
)

// tickingClock advances one minute per call.
func tickingClock() func() time.Time {
	var ticks atomic.Int64
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		return start.Add(time.Duration(ticks.Add(1)) * time.Minute)
	}
}

func newService() *newsletter.Service {
	return newsletter.NewService(newsletter.NewMemoryRepository(), tickingClock())
}

func TestSubscribe_Lifecycle(t *testing.T) {
	service := newService()
	ctx := context.Background()

	outcome, err := service.Subscribe(ctx, "  Ada@Club.EDU ")
	require.NoError(t, err)
	assert.Equal(t, newsletter.OutcomeSubscribed, outcome)

	_, err = service.Subscribe(ctx, "ada@club.edu")
	assert.ErrorIs(t, err, newsletter.ErrAlreadySubscribed)

	require.NoError(t, service.Unsubscribe(ctx, "ADA@club.edu"))
	require.NoError(t, service.Unsubscribe(ctx, "ada@club.edu"), "repeat unsubscribe succeeds")

	count, err := service.CountSubscribers(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	outcome, err = service.Subscribe(ctx, "ada@club.edu")
	require.NoError(t, err)
	assert.Equal(t, newsletter.OutcomeReactivated, outcome)

	active, err := service.ActiveSubscribers(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "ada@club.edu", active[0].Email)
	assert.Nil(t, active[0].UnsubscribedAt)
}

func TestSubscribe_InvalidEmail(t *testing.T) {
	service := newService()

	for _, email := range []string{"", "   ", "not-an-email", "Ada <ada@club.edu>", "ada@localhost"} {
		_, err := service.Subscribe(context.Background(), email)
		require.Error(t, err, email)
		assert.Equal(t, apperr.CodeValidation, apperr.As(err).Code, email)
	}
}

func TestUnsubscribe_Unknown(t *testing.T) {
	err := newService().Unsubscribe(context.Background(), "ghost@club.edu")
	assert.ErrorIs(t, err, newsletter.ErrNotSubscribed)
	assert.Equal(t, 404, apperr.As(err).HTTPStatus)
}

func TestActiveSubscribers_NewestFirst(t *testing.T) {
	service := newService()
	ctx := context.Background()

	for _, email := range []string{"first@club.edu", "second@club.edu", "third@club.edu"} {
		_, err := service.Subscribe(ctx, email)
		require.NoError(t, err)
	}
	require.NoError(t, service.Unsubscribe(ctx, "second@club.edu"))

	active, err := service.ActiveSubscribers(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "third@club.edu", active[0].Email)
	assert.Equal(t, "first@club.edu", active[1].Email)
}

func TestSubscribe_ConcurrentSameEmail(t *testing.T) {
	service := newService()

	var (
		wg        sync.WaitGroup
		created   atomic.Int32
		conflicts atomic.Int32
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Subscribe(context.Background(), "race@club.edu")
			if err == nil {
				created.Add(1)
				return
			}
			if apperr.As(err).Code == newsletter.CodeAlreadySubscribed {
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, created.Load())
	assert.EqualValues(t, 15, conflicts.Load())
}
