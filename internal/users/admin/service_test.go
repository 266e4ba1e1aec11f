// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package admin_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wayneaws/studenthub/internal/platform/apperr"
	"github.com/wayneaws/studenthub/internal/platform/constants"
	"github.com/wayneaws/studenthub/internal/platform/mailer"
	"github.com/wayneaws/studenthub/internal/platform/sec"
	"github.com/wayneaws/studenthub/internal/users/admin"
	"github.com/wayneaws/studenthub/internal/users/auth"
	"github.com/wayneaws/studenthub/pkg/uuid"
)

const testSecret = "admin-console-test-secret-32byte"

var fixedNow = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

type subscriberCount int

func (count subscriberCount) CountSubscribers(context.Context) (int, error) {
	return int(count), nil
}

type fixture struct {
	service *admin.Service
	auth    *auth.Service
	store   *auth.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	store := auth.NewMemoryStore()

	tokens, err := sec.NewTokenService(testSecret, "studenthub.test", 15*time.Minute, clock)
	require.NoError(t, err)

	authService := auth.NewService(store, store, tokens, sec.NewHasher(bcrypt.MinCost),
		mailer.NewLogMailer(slog.New(slog.DiscardHandler)), auth.Options{Clock: clock})

	service := admin.NewService(admin.NewMemoryRepository(store), authService, subscriberCount(3), clock)
	return &fixture{service: service, auth: authService, store: store}
}

func (f *fixture) seed(t *testing.T, username string, role sec.UserRole, status auth.Status, created time.Time) *auth.Account {
	t.Helper()
	account := &auth.Account{
		ID:        uuid.New(),
		Username:  username,
		Email:     username + "@club.edu",
		FullName:  "Member " + username,
		Provider:  auth.ProviderLocal,
		Role:      role,
		Status:    status,
		Profile:   auth.Profile{ProgrammingLanguages: []string{}},
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, f.store.Create(context.Background(), account))
	return account
}

func (f *fixture) giveSession(t *testing.T, accountID, deviceID string) {
	t.Helper()
	require.NoError(t, f.store.Register(context.Background(), &auth.RefreshToken{
		TokenHash: accountID + deviceID,
		AccountID: accountID,
		DeviceID:  deviceID,
		CreatedAt: fixedNow,
		ExpiresAt: fixedNow.Add(time.Hour),
	}, constants.DefaultSessionCap))
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr, "expected an AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

// # Dashboard

func TestStats(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "fresh", sec.RoleMember, auth.StatusActive, fixedNow.Add(-time.Hour))
	f.seed(t, "boundary", sec.RoleMember, auth.StatusActive, fixedNow.Add(-admin.RecentSignupWindow))
	f.seed(t, "old_banned", sec.RoleMember, auth.StatusBanned, fixedNow.AddDate(0, -2, 0))
	f.seed(t, "chief", sec.RoleSuperuser, auth.StatusActive, fixedNow.AddDate(-1, 0, 0))
	f.seed(t, "boss", sec.RoleAdmin, auth.StatusSuspended, fixedNow.AddDate(-1, 0, 0))

	stats, err := f.service.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, admin.Stats{
		TotalUsers:            5,
		ActiveUsers:           3,
		BannedUsers:           1,
		AdminUsers:            2,
		RecentSignups:         2,
		NewsletterSubscribers: 3,
	}, *stats)
}

// # Listing

func TestListMembers(t *testing.T) {
	f := newFixture(t)
	for i, name := range []string{"alice", "bob", "carol", "dave"} {
		f.seed(t, name, sec.RoleMember, auth.StatusActive, fixedNow.Add(time.Duration(i)*time.Minute))
	}
	f.seed(t, "eve", sec.RoleModerator, auth.StatusBanned, fixedNow.Add(-time.Hour))

	t.Run("newest first with paging", func(t *testing.T) {
		page, total, err := f.service.ListMembers(context.Background(), admin.Filter{}, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, page, 2)
		assert.Equal(t, "bob", page[0].Username)
		assert.Equal(t, "alice", page[1].Username)
	})

	t.Run("offset past the end", func(t *testing.T) {
		page, total, err := f.service.ListMembers(context.Background(), admin.Filter{}, 20, 40)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Empty(t, page)
	})

	t.Run("filters combine", func(t *testing.T) {
		page, total, err := f.service.ListMembers(context.Background(), admin.Filter{
			Role:   sec.RoleModerator,
			Status: auth.StatusBanned,
		}, 20, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "eve", page[0].Username)
	})

	t.Run("search matches email", func(t *testing.T) {
		page, total, err := f.service.ListMembers(context.Background(), admin.Filter{Search: " CAROL@club "}, 20, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "carol", page[0].Username)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, _, err := f.service.ListMembers(context.Background(), admin.Filter{Role: "owner"}, 20, 0)
		assertCode(t, err, apperr.CodeValidation)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, _, err := f.service.ListMembers(context.Background(), admin.Filter{Status: "deleted"}, 20, 0)
		assertCode(t, err, apperr.CodeValidation)
	})
}

// # Moderation

func TestChangeRole(t *testing.T) {
	f := newFixture(t)
	chief := f.seed(t, "chief", sec.RoleSuperuser, auth.StatusActive, fixedNow)
	boss := f.seed(t, "boss", sec.RoleAdmin, auth.StatusActive, fixedNow)
	mod := f.seed(t, "mod", sec.RoleModerator, auth.StatusActive, fixedNow)
	member := f.seed(t, "member", sec.RoleMember, auth.StatusActive, fixedNow)

	t.Run("admin promotes member to moderator", func(t *testing.T) {
		updated, err := f.service.ChangeRole(context.Background(), boss.ID, member.ID, sec.RoleModerator)
		require.NoError(t, err)
		assert.Equal(t, sec.RoleModerator, updated.Role)
	})

	t.Run("only superusers grant admin", func(t *testing.T) {
		_, err := f.service.ChangeRole(context.Background(), boss.ID, mod.ID, sec.RoleAdmin)
		assertCode(t, err, apperr.CodeForbidden)

		updated, err := f.service.ChangeRole(context.Background(), chief.ID, mod.ID, sec.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, sec.RoleAdmin, updated.Role)
	})

	t.Run("cannot manage an equal", func(t *testing.T) {
		_, err := f.service.ChangeRole(context.Background(), boss.ID, mod.ID, sec.RoleMember)
		assertCode(t, err, apperr.CodeForbidden)
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := f.service.ChangeRole(context.Background(), chief.ID, member.ID, "owner")
		assertCode(t, err, apperr.CodeValidation)
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := f.service.ChangeRole(context.Background(), chief.ID, uuid.New(), sec.RoleMember)
		assertCode(t, err, apperr.CodeNotFound)
	})
}

func TestBan(t *testing.T) {
	f := newFixture(t)
	mod := f.seed(t, "mod", sec.RoleModerator, auth.StatusActive, fixedNow)
	boss := f.seed(t, "boss", sec.RoleAdmin, auth.StatusActive, fixedNow)
	member := f.seed(t, "member", sec.RoleMember, auth.StatusActive, fixedNow)
	f.giveSession(t, member.ID, "laptop")
	f.giveSession(t, member.ID, "phone")

	banned, err := f.service.Ban(context.Background(), mod.ID, member.ID, "  ")
	require.NoError(t, err)

	assert.Equal(t, auth.StatusBanned, banned.Status)
	assert.Equal(t, admin.DefaultBanReason, banned.BanReason)
	require.NotNil(t, banned.BannedAt)
	assert.True(t, fixedNow.Equal(*banned.BannedAt))
	require.NotNil(t, banned.BannedBy)
	assert.Equal(t, auth.BanActor{ID: mod.ID, Username: "mod", DisplayName: "Member mod"}, *banned.BannedBy)

	stored, err := f.store.FindByID(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TokenVersion)
	assert.Zero(t, f.store.TokenCount(member.ID))

	t.Run("moderator cannot ban an admin", func(t *testing.T) {
		_, err := f.service.Ban(context.Background(), mod.ID, boss.ID, "spam")
		assertCode(t, err, apperr.CodeForbidden)
	})

	t.Run("unban clears the record", func(t *testing.T) {
		unbanned, err := f.service.Unban(context.Background(), mod.ID, member.ID)
		require.NoError(t, err)
		assert.Equal(t, auth.StatusActive, unbanned.Status)
		assert.Nil(t, unbanned.BannedAt)
		assert.Nil(t, unbanned.BannedBy)
		assert.Empty(t, unbanned.BanReason)
	})
}

func TestMemberDetails_BannedBy(t *testing.T) {
	f := newFixture(t)
	chief := f.seed(t, "chief", sec.RoleSuperuser, auth.StatusActive, fixedNow)
	mod := f.seed(t, "mod", sec.RoleModerator, auth.StatusActive, fixedNow)
	member := f.seed(t, "member", sec.RoleMember, auth.StatusActive, fixedNow)

	_, err := f.service.Ban(context.Background(), mod.ID, member.ID, "spam")
	require.NoError(t, err)

	t.Run("live lookup", func(t *testing.T) {
		require.NoError(t, f.store.Mutate(mod.ID, func(account *auth.Account) error {
			account.FullName = "Renamed Mod"
			return nil
		}))

		details, err := f.service.MemberDetails(context.Background(), member.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed Mod", details.BannedBy.DisplayName)
		assert.Equal(t, "spam", details.BanReason)
	})

	t.Run("deleted moderator", func(t *testing.T) {
		require.NoError(t, f.service.Delete(context.Background(), chief.ID, mod.ID))

		details, err := f.service.MemberDetails(context.Background(), member.ID)
		require.NoError(t, err)
		assert.Equal(t, auth.BanActor{ID: mod.ID, DisplayName: admin.UnknownModerator}, *details.BannedBy)

		page, _, err := f.service.ListMembers(context.Background(), admin.Filter{Status: auth.StatusBanned}, 20, 0)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, admin.UnknownModerator, page[0].BannedBy.DisplayName)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := f.service.MemberDetails(context.Background(), uuid.New())
		assertCode(t, err, apperr.CodeNotFound)
	})
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	boss := f.seed(t, "boss", sec.RoleAdmin, auth.StatusActive, fixedNow)
	other := f.seed(t, "other_boss", sec.RoleAdmin, auth.StatusActive, fixedNow)
	member := f.seed(t, "member", sec.RoleMember, auth.StatusActive, fixedNow)
	f.giveSession(t, member.ID, "laptop")

	assertCode(t, f.service.Delete(context.Background(), boss.ID, boss.ID), apperr.CodeValidation)
	assertCode(t, f.service.Delete(context.Background(), boss.ID, other.ID), apperr.CodeForbidden)
	assertCode(t, f.service.Delete(context.Background(), boss.ID, uuid.New()), apperr.CodeNotFound)

	require.NoError(t, f.service.Delete(context.Background(), boss.ID, member.ID))
	_, err := f.store.FindByID(context.Background(), member.ID)
	assert.Error(t, err)
	assert.Zero(t, f.store.TokenCount(member.ID))
}

func TestRevokeSessions(t *testing.T) {
	f := newFixture(t)
	boss := f.seed(t, "boss", sec.RoleAdmin, auth.StatusActive, fixedNow)
	member := f.seed(t, "member", sec.RoleMember, auth.StatusActive, fixedNow)
	f.giveSession(t, member.ID, "laptop")

	require.NoError(t, f.service.RevokeSessions(context.Background(), boss.ID, member.ID))

	stored, err := f.store.FindByID(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.StatusActive, stored.Status)
	assert.Equal(t, 1, stored.TokenVersion)
	assert.Zero(t, f.store.TokenCount(member.ID))
}

func TestInactiveCallerRejected(t *testing.T) {
	f := newFixture(t)
	boss := f.seed(t, "boss", sec.RoleAdmin, auth.StatusSuspended, fixedNow)
	member := f.seed(t, "member", sec.RoleMember, auth.StatusActive, fixedNow)

	_, err := f.service.Ban(context.Background(), boss.ID, member.ID, "")
	assert.ErrorIs(t, err, auth.ErrAccountNotActive)
}

// # Bootstrap

func TestPromoteSuperuser(t *testing.T) {
	f := newFixture(t)
	chief := f.seed(t, "chief", sec.RoleSuperuser, auth.StatusActive, fixedNow)
	member := f.seed(t, "member", sec.RoleMember, auth.StatusActive, fixedNow)
	_, err := f.service.Ban(context.Background(), chief.ID, member.ID, "spam")
	require.NoError(t, err)

	promotion, err := f.service.PromoteSuperuser(context.Background(), "  MEMBER@club.edu ")
	require.NoError(t, err)
	assert.False(t, promotion.Unchanged)
	assert.Equal(t, sec.RoleMember, promotion.PreviousRole)
	assert.Equal(t, sec.RoleSuperuser, promotion.Account.Role)
	assert.Equal(t, auth.StatusActive, promotion.Account.Status)
	assert.Nil(t, promotion.Account.BannedAt)

	t.Run("already an active superuser", func(t *testing.T) {
		again, err := f.service.PromoteSuperuser(context.Background(), "member@club.edu")
		require.NoError(t, err)
		assert.True(t, again.Unchanged)
		assert.Equal(t, sec.RoleSuperuser, again.PreviousRole)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.service.PromoteSuperuser(context.Background(), "ghost@club.edu")
		assertCode(t, err, apperr.CodeNotFound)
	})

	t.Run("malformed email", func(t *testing.T) {
		_, err := f.service.PromoteSuperuser(context.Background(), "not-an-email")
		assertCode(t, err, apperr.CodeValidation)
	})
}
