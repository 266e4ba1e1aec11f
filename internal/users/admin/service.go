// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wayneaws/studenthub/internal/platform/apperr"
	"github.com/wayneaws/studenthub/internal/platform/ctxutil"
	"github.com/wayneaws/studenthub/internal/platform/dberr"
	"github.com/wayneaws/studenthub/internal/platform/sanitize"
	"github.com/wayneaws/studenthub/internal/platform/sec"
	"github.com/wayneaws/studenthub/internal/platform/validate"
	"github.com/wayneaws/studenthub/internal/users/auth"
)

// Service implements the moderation use cases.
type Service struct {
	accounts    Repository
	sessions    SessionRevoker
	subscribers SubscriberCounter
	now         func() time.Time
}

// NewService constructs an admin [Service]. subscribers may be nil, in which
// case the newsletter counter reads zero.
func NewService(accounts Repository, sessions SessionRevoker, subscribers SubscriberCounter, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{accounts: accounts, sessions: sessions, subscribers: subscribers, now: now}
}

// # Dashboard

// Stats returns the dashboard counters.
func (service *Service) Stats(ctx context.Context) (*Stats, error) {
	counts, err := service.accounts.Counts(ctx, service.now().Add(-RecentSignupWindow))
	if err != nil {
		return nil, fmt.Errorf("admin_service_counts_failed: %w", err)
	}

	stats := &Stats{
		TotalUsers:    counts.Total,
		ActiveUsers:   counts.Active,
		BannedUsers:   counts.Banned,
		AdminUsers:    counts.Admins,
		RecentSignups: counts.Recent,
	}

	if service.subscribers != nil {
		subscribers, err := service.subscribers.CountSubscribers(ctx)
		if err != nil {
			return nil, fmt.Errorf("admin_service_count_subscribers_failed: %w", err)
		}
		stats.NewsletterSubscribers = subscribers
	}
	return stats, nil
}

// # Listing

/*
ListMembers returns one page of accounts, newest first.

Parameters:
  - ctx: context.Context
  - filter: Filter (role and status must be known values when set)
  - limit, offset: int

Returns:
  - []*auth.Account: Accounts with bannedBy resolved
  - int: Total matches
  - error: Validation or storage failures
*/
func (service *Service) ListMembers(ctx context.Context, filter Filter, limit, offset int) ([]*auth.Account, int, error) {
	filter.Search = strings.TrimSpace(filter.Search)

	if filter.Role != "" && !filter.Role.Valid() {
		return nil, 0, invalid(FieldRole, "Invalid role specified")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, invalid(FieldStatus, "Invalid status specified")
	}

	accounts, total, err := service.accounts.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("admin_service_list_failed: %w", err)
	}

	moderators := make(map[string]*auth.BanActor)
	for _, account := range accounts {
		if err := service.resolveBannedBy(ctx, account, moderators); err != nil {
			return nil, 0, err
		}
	}
	return accounts, total, nil
}

// MemberDetails returns one account with bannedBy resolved.
func (service *Service) MemberDetails(ctx context.Context, id string) (*auth.Account, error) {
	account, err := service.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := service.resolveBannedBy(ctx, account, nil); err != nil {
		return nil, err
	}
	return account, nil
}

// # Moderation

/*
ChangeRole assigns a new role to target.

Description: Only superusers may grant admin or superuser. The caller must
outrank the target's current role.

Parameters:
  - ctx: context.Context
  - callerID: string
  - targetID: string
  - role: sec.UserRole

Returns:
  - *auth.Account: The updated account
  - error: VALIDATION_ERROR, FORBIDDEN, NOT_FOUND or storage failures
*/
func (service *Service) ChangeRole(ctx context.Context, callerID, targetID string, role sec.UserRole) (*auth.Account, error) {
	if !role.Valid() {
		return nil, invalid(FieldRole, "Invalid role specified")
	}

	caller, target, err := service.authorize(ctx, callerID, targetID)
	if err != nil {
		return nil, err
	}

	if role.AtLeast(sec.RoleAdmin) && caller.Role != sec.RoleSuperuser {
		return nil, apperr.Forbidden("Only superusers can assign admin or superuser roles")
	}

	if err := service.accounts.SetRole(ctx, target.ID, role); err != nil {
		return nil, service.mutationError(err, "set_role")
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "admin_role_changed",
		slog.String("actor_id", caller.ID),
		slog.String("target_id", target.ID),
		slog.String("from", string(target.Role)),
		slog.String("to", string(role)),
	)
	return service.MemberDetails(ctx, target.ID)
}

/*
Ban suspends target and ends all of its sessions.

Parameters:
  - ctx: context.Context
  - callerID: string
  - targetID: string
  - reason: string (defaults to [DefaultBanReason])

Returns:
  - *auth.Account: The banned account
  - error: VALIDATION_ERROR, FORBIDDEN, NOT_FOUND or storage failures
*/
func (service *Service) Ban(ctx context.Context, callerID, targetID, reason string) (*auth.Account, error) {
	reason = sanitize.Text(reason)
	if reason == "" {
		reason = DefaultBanReason
	}
	if utf8.RuneCountInString(reason) > MaxBanReasonLength {
		return nil, invalid(FieldReason, fmt.Sprintf("Reason must be at most %d characters", MaxBanReasonLength))
	}

	caller, target, err := service.authorize(ctx, callerID, targetID)
	if err != nil {
		return nil, err
	}

	actor := auth.BanActor{ID: caller.ID, Username: caller.Username, DisplayName: caller.FullName}
	if err := service.accounts.Ban(ctx, target.ID, actor, reason, service.now()); err != nil {
		return nil, service.mutationError(err, "ban")
	}

	if _, err := service.sessions.RevokeEverywhere(ctx, target.ID); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "admin_account_banned",
		slog.String("actor_id", caller.ID),
		slog.String("target_id", target.ID),
	)
	return service.MemberDetails(ctx, target.ID)
}

// Unban reactivates target and clears the ban record.
func (service *Service) Unban(ctx context.Context, callerID, targetID string) (*auth.Account, error) {
	caller, target, err := service.authorize(ctx, callerID, targetID)
	if err != nil {
		return nil, err
	}

	if err := service.accounts.Unban(ctx, target.ID); err != nil {
		return nil, service.mutationError(err, "unban")
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "admin_account_unbanned",
		slog.String("actor_id", caller.ID),
		slog.String("target_id", target.ID),
	)
	return service.MemberDetails(ctx, target.ID)
}

// Delete removes target permanently. Callers cannot delete themselves.
func (service *Service) Delete(ctx context.Context, callerID, targetID string) error {
	if callerID == targetID {
		return apperr.ValidationError("Cannot delete your own account")
	}

	caller, target, err := service.authorize(ctx, callerID, targetID)
	if err != nil {
		return err
	}

	if err := service.accounts.Delete(ctx, target.ID); err != nil {
		return service.mutationError(err, "delete")
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "admin_account_deleted",
		slog.String("actor_id", caller.ID),
		slog.String("target_id", target.ID),
	)
	return nil
}

// RevokeSessions ends every session of target without changing its status.
func (service *Service) RevokeSessions(ctx context.Context, callerID, targetID string) error {
	caller, target, err := service.authorize(ctx, callerID, targetID)
	if err != nil {
		return err
	}

	if _, err := service.sessions.RevokeEverywhere(ctx, target.ID); err != nil {
		return err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "admin_sessions_revoked",
		slog.String("actor_id", caller.ID),
		slog.String("target_id", target.ID),
	)
	return nil
}

// # Bootstrap

// Promotion reports the outcome of [Service.PromoteSuperuser].
type Promotion struct {
	Account      *auth.Account
	PreviousRole sec.UserRole

	// Unchanged is true when the account already was an active superuser.
	Unchanged bool
}

/*
PromoteSuperuser makes the account registered under email an active
superuser. It bypasses the can-manage rule and is meant for the operator CLI,
never for HTTP.

Returns:
  - *Promotion: The refreshed account and its previous role
  - error: VALIDATION_ERROR for a malformed email, NOT_FOUND when nobody registered with it
*/
func (service *Service) PromoteSuperuser(ctx context.Context, email string) (*Promotion, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).Email(FieldEmail, email)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	account, err := service.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, service.mutationError(err, "find_by_email")
	}

	promotion := &Promotion{Account: account, PreviousRole: account.Role}
	if account.Role == sec.RoleSuperuser && account.Status == auth.StatusActive {
		promotion.Unchanged = true
		return promotion, nil
	}

	if err := service.accounts.SetRole(ctx, account.ID, sec.RoleSuperuser); err != nil {
		return nil, service.mutationError(err, "promote")
	}
	if account.Status != auth.StatusActive {
		if err := service.accounts.Unban(ctx, account.ID); err != nil {
			return nil, service.mutationError(err, "activate")
		}
	}

	if promotion.Account, err = service.find(ctx, account.ID); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "admin_superuser_promoted",
		slog.String("target_id", account.ID),
		slog.String("previous_role", string(promotion.PreviousRole)),
	)
	return promotion, nil
}

// # Helpers

// authorize loads both accounts and enforces the can-manage rule.
func (service *Service) authorize(ctx context.Context, callerID, targetID string) (*auth.Account, *auth.Account, error) {
	caller, err := service.accounts.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, nil, apperr.Unauthorized("Authentication required")
		}
		return nil, nil, fmt.Errorf("admin_service_find_caller_failed: %w", err)
	}
	if !caller.IsActive() {
		return nil, nil, auth.ErrAccountNotActive
	}

	target, err := service.find(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}

	if !caller.Role.Outranks(target.Role) {
		return nil, nil, apperr.Forbidden("Insufficient permissions to manage this user")
	}
	return caller, target, nil
}

func (service *Service) find(ctx context.Context, id string) (*auth.Account, error) {
	account, err := service.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("admin_service_find_failed: %w", err)
	}
	return account, nil
}

// resolveBannedBy replaces the cached moderator reference with live data.
// seen memoizes lookups across a page; it may be nil.
func (service *Service) resolveBannedBy(ctx context.Context, account *auth.Account, seen map[string]*auth.BanActor) error {
	if account.BannedBy == nil || account.BannedBy.ID == "" {
		return nil
	}

	id := account.BannedBy.ID
	if actor, ok := seen[id]; ok {
		account.BannedBy = actor
		return nil
	}

	actor := &auth.BanActor{ID: id, DisplayName: UnknownModerator}
	moderator, err := service.accounts.FindByID(ctx, id)
	switch {
	case err == nil:
		actor.Username = moderator.Username
		actor.DisplayName = moderator.FullName
	case !errors.Is(err, dberr.ErrNotFound):
		return fmt.Errorf("admin_service_resolve_moderator_failed: %w", err)
	}

	if seen != nil {
		seen[id] = actor
	}
	account.BannedBy = actor
	return nil
}

func (service *Service) mutationError(err error, action string) error {
	if errors.Is(err, dberr.ErrNotFound) {
		return apperr.NotFound("User")
	}
	return fmt.Errorf("admin_service_%s_failed: %w", action, err)
}

func invalid(field, message string) error {
	return apperr.ValidationError("Validation failed", apperr.FieldError{Field: field, Message: message})
}
