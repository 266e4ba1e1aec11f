// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

/*
Package admin implements the moderation console: dashboard counters, member
listing, role changes, bans, deletion and forced session revocation.

# Authority

Every mutating operation requires the caller to outrank the target account
(strictly higher role level). Roles are read from the live account record,
never from token claims.
*/
package admin

import (
	"context"
	"time"

	"github.com/wayneaws/studenthub/internal/platform/sec"
	"github.com/wayneaws/studenthub/internal/users/auth"
)

const (
	// DefaultBanReason is stored when a moderator gives no reason.
	DefaultBanReason = "No reason provided"

	// UnknownModerator is shown when the banning moderator no longer exists.
	UnknownModerator = "Unknown moderator"

	// RecentSignupWindow bounds the "recent signups" dashboard counter.
	RecentSignupWindow = 7 * 24 * time.Hour

	// MaxBanReasonLength caps the stored ban reason.
	MaxBanReasonLength = 500
)

// Field names used in validation details.
const (
	FieldRole   = "role"
	FieldStatus = "status"
	FieldReason = "reason"
	FieldEmail  = "email"
)

// Success messages.
const (
	MessageBanned          = "User banned successfully"
	MessageUnbanned        = "User unbanned successfully"
	MessageDeleted         = "User deleted successfully"
	MessageSessionsRevoked = "User sessions revoked"
)

// # Read Models

// Stats is the dashboard summary.
type Stats struct {
	TotalUsers            int `json:"totalUsers"`
	ActiveUsers           int `json:"activeUsers"`
	BannedUsers           int `json:"bannedUsers"`
	AdminUsers            int `json:"adminUsers"`
	RecentSignups         int `json:"recentSignups"`
	NewsletterSubscribers int `json:"newsletterSubscribers"`
}

// AccountCounts is the account half of [Stats], computed by the repository.
type AccountCounts struct {
	Total  int
	Active int
	Banned int
	Admins int
	Recent int
}

// Filter narrows the member list. Empty fields match everything.
type Filter struct {
	Search string
	Role   sec.UserRole
	Status auth.Status
}

// # Dependencies

// Repository is the moderation view of the account store.
//
// Mutations return dberr.ErrNotFound when the account does not exist.
type Repository interface {
	FindByID(context context.Context, id string) (*auth.Account, error)
	FindByEmail(context context.Context, email string) (*auth.Account, error)

	// Counts computes the dashboard counters; since bounds the recent signups.
	Counts(context context.Context, since time.Time) (AccountCounts, error)

	// List returns one page of accounts matching filter, newest first, plus
	// the total number of matches.
	List(context context.Context, filter Filter, limit, offset int) ([]*auth.Account, int, error)

	SetRole(context context.Context, id string, role sec.UserRole) error
	Ban(context context.Context, id string, actor auth.BanActor, reason string, at time.Time) error
	Unban(context context.Context, id string) error
	Delete(context context.Context, id string) error
}

// SessionRevoker ends every session of an account.
type SessionRevoker interface {
	RevokeEverywhere(ctx context.Context, accountID string) (int, error)
}

// SubscriberCounter reports the newsletter audience size.
type SubscriberCounter interface {
	CountSubscribers(context context.Context) (int, error)
}
