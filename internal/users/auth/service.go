// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wayneaws/studenthub/internal/platform/apperr"
	"github.com/wayneaws/studenthub/internal/platform/constants"
	"github.com/wayneaws/studenthub/internal/platform/dberr"
	"github.com/wayneaws/studenthub/internal/platform/mailer"
	"github.com/wayneaws/studenthub/internal/platform/sec"
	"github.com/wayneaws/studenthub/internal/platform/validate"
	"github.com/wayneaws/studenthub/pkg/slug"
	"github.com/wayneaws/studenthub/pkg/uuid"
)

// # Configuration

// Options tunes the session and recovery lifetimes. Zero values fall back to
// the platform defaults.
type Options struct {
	RefreshTTL         time.Duration
	SessionCap         int
	ResetCodeTTL       time.Duration
	LoginLookupTimeout time.Duration

	// Clock replaces time.Now in tests.
	Clock func() time.Time
}

func (options Options) withDefaults() Options {
	if options.RefreshTTL <= 0 {
		options.RefreshTTL = constants.DefaultRefreshTokenTTL
	}
	if options.SessionCap <= 0 {
		options.SessionCap = constants.DefaultSessionCap
	}
	if options.ResetCodeTTL <= 0 {
		options.ResetCodeTTL = constants.DefaultResetCodeTTL
	}
	if options.LoginLookupTimeout <= 0 {
		options.LoginLookupTimeout = constants.DefaultLoginLookupTimeout
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	return options
}

// # Service

// Service implements the member authentication use cases: signup, login,
// refresh-token rotation, revocation, and password recovery.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, login or
// reset logic must keep the enumeration-safe responses intact.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	tokens   *sec.TokenService
	hasher   *sec.Hasher
	mailer   mailer.Mailer
	issuer   *Issuer
	options  Options
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	users UserRepository,
	sessions SessionRepository,
	tokens *sec.TokenService,
	hasher *sec.Hasher,
	mail mailer.Mailer,
	options Options,
) *Service {
	options = options.withDefaults()
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		mailer:   mail,
		issuer:   NewIssuer(tokens, sessions, options.RefreshTTL, options.SessionCap, options.Clock),
		options:  options,
	}
}

func (service *Service) now() time.Time {
	return service.options.Clock()
}

// # Registration Flow

// SignupInput holds the data required to enroll a new member.
type SignupInput struct {
	FullName string
	Email    string
	Password string
	Username string // Optional; derived from the email when empty.
	DeviceID string
}

/*
Signup validates, hashes, and persists a brand new account, then logs it in.

Description: When no username is supplied one is derived from the email
local part, trying base, base1 … base9 before falling back to a
timestamp suffix.

Parameters:
  - context: context.Context
  - input: SignupInput

Returns:
  - *TokenPair: Tokens for the new session
  - error: ValidationError, ErrDuplicateAccount, or storage failures
*/
func (service *Service) Signup(context context.Context, input SignupInput) (*TokenPair, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FullName = strings.TrimSpace(input.FullName)
	input.Username = strings.TrimSpace(input.Username)

	validator := &validate.Validator{}
	validator.Required(FieldFullName, input.FullName).MinLen(FieldFullName, input.FullName, 2).MaxLen(FieldFullName, input.FullName, 100)
	validator.Email(FieldEmail, input.Email)
	validator.Password(FieldPassword, input.Password)
	if input.Username != "" {
		validator.Username(FieldUsername, input.Username)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Reject a known email up front; the insert still guards the race.
	if _, err := service.users.FindByEmail(context, input.Email); err == nil {
		return nil, ErrDuplicateAccount
	} else if !errors.Is(err, dberr.ErrNotFound) {
		return nil, fmt.Errorf("auth_service_signup_lookup_failed: %w", err)
	}

	username := input.Username
	if username == "" {
		derived, err := service.deriveUsername(context, input.Email)
		if err != nil {
			return nil, err
		}
		username = derived
	} else {
		taken, err := service.users.UsernameTaken(context, username, "")
		if err != nil {
			return nil, fmt.Errorf("auth_service_signup_username_failed: %w", err)
		}
		if taken {
			return nil, ErrDuplicateAccount
		}
	}

	passwordHash, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	now := service.now()
	account := &Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: passwordHash,
		Provider:     ProviderLocal,
		Role:         sec.RoleMember,
		Status:       StatusActive,
		Profile:      Profile{ProgrammingLanguages: []string{}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := service.users.Create(context, account); err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("auth_service_signup_failed: %w", err)
	}

	pair, err := service.issuer.Issue(context, account, input.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_signup_issue_failed: %w", err)
	}

	return pair, nil
}

// deriveUsername picks the first free username for an email address.
func (service *Service) deriveUsername(context context.Context, email string) (string, error) {
	localPart, _, _ := strings.Cut(email, "@")
	base := slug.Username(localPart)

	for _, candidate := range slug.UsernameCandidates(base) {
		taken, err := service.users.UsernameTaken(context, candidate, "")
		if err != nil {
			return "", fmt.Errorf("auth_service_derive_username_failed: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return slug.UsernameFallback(base, service.now().UnixMilli()), nil
}

// # Profile Access

/*
Me returns the caller's own account.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *Account: The live account (password hash is never serialized)
  - error: NotFound or retrieval failures
*/
func (service *Service) Me(context context.Context, accountID string) (*Account, error) {
	account, err := service.users.FindByID(context, accountID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("auth_service_me_failed: %w", err)
	}
	return account, nil
}
