// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wayneaws/studenthub/internal/platform/constants"
	"github.com/wayneaws/studenthub/internal/platform/ctxutil"
	"github.com/wayneaws/studenthub/internal/platform/dberr"
	"github.com/wayneaws/studenthub/internal/platform/mailer"
	"github.com/wayneaws/studenthub/internal/platform/sec"
	"github.com/wayneaws/studenthub/internal/platform/validate"
)

// Response wording for the recovery endpoints. The generic message is shared
// by every outcome that must not reveal whether an account exists.
const (
	MessageResetGeneric      = "If an account with that email exists, a password reset code has been sent."
	MessageConfirmEmail      = "Please confirm the email address associated with this account."
	MessageCodeVerified      = "Reset code verified"
	MessagePasswordResetDone = "Password has been reset successfully"
)

// ForgotPasswordResult is the enumeration-safe outcome of a recovery request.
type ForgotPasswordResult struct {
	Message                   string `json:"message"`
	RequiresEmailVerification bool   `json:"requiresEmailVerification,omitempty"`
	MaskedEmail               string `json:"maskedEmail,omitempty"`
}

func genericResetResult() *ForgotPasswordResult {
	return &ForgotPasswordResult{Message: MessageResetGeneric}
}

// # Recovery Flow

/*
ForgotPassword starts password recovery for an email or a username.

Description: An email resolving to a local-password account receives a
6-digit code. A username resolving to one gets the masked email back and
must confirm the full address through VerifyEmail first. Every other case
(unknown account, social-only account) returns the generic message.

Parameters:
  - ctx: context.Context
  - identifier: string

Returns:
  - *ForgotPasswordResult: Response body
  - error: ValidationError or storage failures
*/
func (service *Service) ForgotPassword(ctx context.Context, identifier string) (*ForgotPasswordResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, validate.RequiredError(FieldIdentifier, "Email or username is required")
	}

	account, err := service.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return genericResetResult(), nil
		}
		return nil, fmt.Errorf("auth_service_forgot_lookup_failed: %w", err)
	}

	if !account.HasPassword() {
		return genericResetResult(), nil
	}

	if !strings.Contains(identifier, "@") {
		return &ForgotPasswordResult{
			Message:                   MessageConfirmEmail,
			RequiresEmailVerification: true,
			MaskedEmail:               MaskEmail(account.Email),
		}, nil
	}

	if err := service.issueResetCode(ctx, account); err != nil {
		return nil, err
	}
	return genericResetResult(), nil
}

/*
VerifyEmail confirms the full email for a username-initiated recovery and,
on match, issues the code.

Description: A mismatch returns the same generic message as an unknown
account.

Parameters:
  - ctx: context.Context
  - username: string
  - email: string

Returns:
  - *ForgotPasswordResult: Response body
  - error: ValidationError or storage failures
*/
func (service *Service) VerifyEmail(ctx context.Context, username, email string) (*ForgotPasswordResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	validator := &validate.Validator{}
	validator.Required(FieldUsername, username).Required(FieldEmail, email)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	account, err := service.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return genericResetResult(), nil
		}
		return nil, fmt.Errorf("auth_service_verify_email_lookup_failed: %w", err)
	}

	if !account.HasPassword() || !strings.EqualFold(account.Email, email) {
		return genericResetResult(), nil
	}

	if err := service.issueResetCode(ctx, account); err != nil {
		return nil, err
	}
	return genericResetResult(), nil
}

/*
VerifyResetCode checks a code without consuming it.

Parameters:
  - ctx: context.Context
  - identifier: string (email or username)
  - code: string

Returns:
  - error: ErrInvalidOrExpiredCode or storage failures
*/
func (service *Service) VerifyResetCode(ctx context.Context, identifier, code string) error {
	_, err := service.accountWithValidCode(ctx, identifier, code)
	return err
}

// ResetPasswordInput completes a recovery attempt.
type ResetPasswordInput struct {
	Identifier  string
	Code        string
	NewPassword string
}

/*
ResetPassword re-validates the code, stores the new password, and ends every
session of the account.

Description: The code is checked again regardless of any earlier
VerifyResetCode call. Both reset fields are cleared with the new hash.

Parameters:
  - ctx: context.Context
  - input: ResetPasswordInput

Returns:
  - error: ErrInvalidOrExpiredCode, ValidationError, or storage failures
*/
func (service *Service) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	account, err := service.accountWithValidCode(ctx, input.Identifier, input.Code)
	if err != nil {
		return err
	}

	if err := (&validate.Validator{}).Password(FieldNewPassword, input.NewPassword).Err(); err != nil {
		return err
	}

	passwordHash, err := service.hasher.Hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if err := service.users.UpdatePassword(ctx, account.ID, passwordHash); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	if _, err := service.RevokeEverywhere(ctx, account.ID); err != nil {
		return err
	}

	return nil
}

// # Helpers

// issueResetCode stores a fresh code and mails it. Mail failures are logged
// and never reach the caller.
func (service *Service) issueResetCode(ctx context.Context, account *Account) error {
	code, err := sec.GenerateNumericCode(constants.ResetCodeDigits)
	if err != nil {
		return fmt.Errorf("auth_service_generate_reset_code_failed: %w", err)
	}

	expiresAt := service.now().Add(service.options.ResetCodeTTL)
	if err := service.users.SetResetCode(ctx, account.ID, sec.HashToken(code), expiresAt); err != nil {
		return fmt.Errorf("auth_service_save_reset_code_failed: %w", err)
	}

	err = service.mailer.SendResetCode(ctx, mailer.ResetCodeMessage{
		To:        account.Email,
		FullName:  account.FullName,
		Code:      code,
		ExpiresIn: service.options.ResetCodeTTL,
	})
	if err != nil {
		ctxutil.GetLogger(ctx).ErrorContext(ctx, "auth_reset_mail_failed",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// accountWithValidCode resolves the account and checks its reset code. Every
// failure, including an unknown identifier, is ErrInvalidOrExpiredCode.
func (service *Service) accountWithValidCode(ctx context.Context, identifier, code string) (*Account, error) {
	identifier = strings.TrimSpace(identifier)
	code = strings.TrimSpace(code)
	if identifier == "" || code == "" {
		return nil, ErrInvalidOrExpiredCode
	}

	account, err := service.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, ErrInvalidOrExpiredCode
		}
		return nil, fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
	}

	if account.ResetCodeHash == "" || account.ResetCodeExpiresAt == nil {
		return nil, ErrInvalidOrExpiredCode
	}

	// Valid strictly before the expiry instant.
	if !service.now().Before(*account.ResetCodeExpiresAt) {
		return nil, ErrInvalidOrExpiredCode
	}

	if !sec.EqualTokens(sec.HashToken(code), account.ResetCodeHash) {
		return nil, ErrInvalidOrExpiredCode
	}

	return account, nil
}

// MaskEmail keeps the first two characters of the local part and the domain:
// "johndoe@x.edu" becomes "jo***@x.edu".
func MaskEmail(email string) string {
	localPart, domain, found := strings.Cut(email, "@")
	if !found {
		return "***"
	}

	visible := []rune(localPart)
	if len(visible) > 2 {
		visible = visible[:2]
	}
	return string(visible) + "***@" + domain
}
