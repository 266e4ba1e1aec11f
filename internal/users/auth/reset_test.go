// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayneaws/studenthub/internal/platform/sec"
	"github.com/wayneaws/studenthub/internal/users/auth"
)

// seedSocialAccount stores an account that has never had a password.
func (f *fixture) seedSocialAccount(t *testing.T, username, email string) *auth.Account {
	t.Helper()
	account := &auth.Account{
		ID:         "0195a1f0-0000-7000-8000-000000000001",
		Username:   username,
		Email:      email,
		FullName:   "Social Member",
		Provider:   auth.ProviderSocial,
		ExternalID: "idp|" + username,
		Role:       sec.RoleMember,
		Status:     auth.StatusActive,
		Profile:    auth.Profile{ProgrammingLanguages: []string{}},
		CreatedAt:  f.clock.Now(),
		UpdatedAt:  f.clock.Now(),
	}
	require.NoError(t, f.store.Create(context.Background(), account))
	return account
}

// # Forgot Password

/*
TestForgotPassword_ByEmail covers code delivery for a local account.
*/
func TestForgotPassword_ByEmail(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Jane Doe", "jane@x.edu", "Abc123!")

	result, err := f.service.ForgotPassword(context.Background(), "Jane@x.edu")
	require.NoError(t, err)
	assert.Equal(t, auth.MessageResetGeneric, result.Message)
	assert.False(t, result.RequiresEmailVerification)
	assert.Empty(t, result.MaskedEmail)

	require.Equal(t, 1, f.mail.count())
	code := f.mail.lastCode(t)
	assert.Len(t, code, 6)
	assert.Equal(t, "jane@x.edu", f.mail.messages[0].To)
	assert.Equal(t, 10*time.Minute, f.mail.messages[0].ExpiresIn)
}

/*
TestForgotPassword_EnumerationSafe covers the cases that must look identical.
*/
func TestForgotPassword_EnumerationSafe(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Jane Doe", "jane@x.edu", "Abc123!")
	f.seedSocialAccount(t, "sociallite", "social@x.edu")

	known, err := f.service.ForgotPassword(context.Background(), "jane@x.edu")
	require.NoError(t, err)
	unknown, err := f.service.ForgotPassword(context.Background(), "nobody@x.edu")
	require.NoError(t, err)
	social, err := f.service.ForgotPassword(context.Background(), "social@x.edu")
	require.NoError(t, err)
	socialByName, err := f.service.ForgotPassword(context.Background(), "sociallite")
	require.NoError(t, err)
	unknownName, err := f.service.ForgotPassword(context.Background(), "nobody")
	require.NoError(t, err)

	assert.Equal(t, known, unknown)
	assert.Equal(t, known, social)
	assert.Equal(t, known, socialByName)
	assert.Equal(t, known, unknownName)

	// Only the real local account got a code.
	assert.Equal(t, 1, f.mail.count())
}

/*
TestForgotPassword_MailFailureHidden covers a failing mail transport.
*/
func TestForgotPassword_MailFailureHidden(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Jane Doe", "jane@x.edu", "Abc123!")
	f.mail.err = errors.New("smtp down")

	result, err := f.service.ForgotPassword(context.Background(), "jane@x.edu")
	require.NoError(t, err)
	assert.Equal(t, auth.MessageResetGeneric, result.Message)
}

/*
TestForgotPassword_ByUsername covers the masked-email confirmation step.
*/
func TestForgotPassword_ByUsername(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "John Doe", "johndoe@x.edu", "Abc123!")

	result, err := f.service.ForgotPassword(context.Background(), "johndoe")
	require.NoError(t, err)
	assert.Equal(t, auth.MessageConfirmEmail, result.Message)
	assert.True(t, result.RequiresEmailVerification)
	assert.Equal(t, "jo***@x.edu", result.MaskedEmail)
	assert.Zero(t, f.mail.count())

	mismatch, err := f.service.VerifyEmail(context.Background(), "johndoe", "someone@x.edu")
	require.NoError(t, err)
	assert.Equal(t, auth.MessageResetGeneric, mismatch.Message)
	assert.Zero(t, f.mail.count())

	confirmed, err := f.service.VerifyEmail(context.Background(), "johndoe", "JohnDoe@x.edu")
	require.NoError(t, err)
	assert.Equal(t, mismatch, confirmed)
	assert.Equal(t, 1, f.mail.count())
}

/*
TestForgotPassword_EmptyIdentifier covers request validation.
*/
func TestForgotPassword_EmptyIdentifier(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ForgotPassword(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperrCode(err))
}

// # Reset Code

/*
TestResetCode_ExpiryBoundary checks the ten minute window on both sides.
*/
func TestResetCode_ExpiryBoundary(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		valid   bool
	}{
		{"fresh", 0, true},
		{"just before expiry", 9*time.Minute + 59*time.Second, true},
		{"exactly at expiry", 10 * time.Minute, false},
		{"just after expiry", 10*time.Minute + time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.signup(t, "Jane Doe", "jane@x.edu", "Abc123!")
			_, err := f.service.ForgotPassword(context.Background(), "jane@x.edu")
			require.NoError(t, err)
			code := f.mail.lastCode(t)

			f.clock.Advance(tt.elapsed)
			err = f.service.VerifyResetCode(context.Background(), "jane@x.edu", code)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assertCode(t, err, auth.ErrInvalidOrExpiredCode)
			}
		})
	}
}

/*
TestResetCode_Rejections covers wrong codes and unknown identifiers.
*/
func TestResetCode_Rejections(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Jane Doe", "jane@x.edu", "Abc123!")

	// No code has been requested yet.
	assertCode(t, f.service.VerifyResetCode(context.Background(), "jane", "123456"), auth.ErrInvalidOrExpiredCode)

	_, err := f.service.ForgotPassword(context.Background(), "jane@x.edu")
	require.NoError(t, err)
	code := f.mail.lastCode(t)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	assertCode(t, f.service.VerifyResetCode(context.Background(), "jane", wrong), auth.ErrInvalidOrExpiredCode)
	assertCode(t, f.service.VerifyResetCode(context.Background(), "nobody", code), auth.ErrInvalidOrExpiredCode)
	assertCode(t, f.service.VerifyResetCode(context.Background(), "", code), auth.ErrInvalidOrExpiredCode)

	// Verification does not consume the code; username works as identifier.
	assert.NoError(t, f.service.VerifyResetCode(context.Background(), "jane", code))
	assert.NoError(t, f.service.VerifyResetCode(context.Background(), "jane", code))
}

/*
TestResetCode_NewCodeReplacesOld covers requesting a second code.
*/
func TestResetCode_NewCodeReplacesOld(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Jane Doe", "jane@x.edu", "Abc123!")

	_, err := f.service.ForgotPassword(context.Background(), "jane@x.edu")
	require.NoError(t, err)
	first := f.mail.lastCode(t)

	_, err = f.service.ForgotPassword(context.Background(), "jane@x.edu")
	require.NoError(t, err)
	second := f.mail.lastCode(t)

	assert.NoError(t, f.service.VerifyResetCode(context.Background(), "jane@x.edu", second))
	if first != second {
		assertCode(t, f.service.VerifyResetCode(context.Background(), "jane@x.edu", first), auth.ErrInvalidOrExpiredCode)
	}
}

// # Reset Password

/*
TestResetPassword_Success covers the full recovery and its side effects.
*/
func TestResetPassword_Success(t *testing.T) {
	f := newFixture(t)
	created := f.signup(t, "Jane Doe", "jane@x.edu", "Abc123!")
	session := f.login(t, "jane", "Abc123!", "laptop")

	_, err := f.service.ForgotPassword(context.Background(), "jane@x.edu")
	require.NoError(t, err)
	code := f.mail.lastCode(t)

	err = f.service.ResetPassword(context.Background(), auth.ResetPasswordInput{
		Identifier:  "jane@x.edu",
		Code:        code,
		NewPassword: "NewPass1",
	})
	require.NoError(t, err)

	// Old password fails, new password works.
	_, err = f.service.Login(context.Background(), auth.LoginInput{Identifier: "jane", Password: "Abc123!"})
	assertCode(t, err, auth.ErrInvalidCredentials)
	f.login(t, "jane", "NewPass1", "laptop")

	// Every earlier session is gone.
	_, err = f.service.VerifyAccessToken(context.Background(), session.AccessToken)
	assertCode(t, err, auth.ErrTokenRevoked)
	_, err = f.service.VerifyAccessToken(context.Background(), created.AccessToken)
	assertCode(t, err, auth.ErrTokenRevoked)

	// The code is single use.
	err = f.service.ResetPassword(context.Background(), auth.ResetPasswordInput{
		Identifier:  "jane@x.edu",
		Code:        code,
		NewPassword: "Another1",
	})
	assertCode(t, err, auth.ErrInvalidOrExpiredCode)
}

/*
TestResetPassword_WeakPassword keeps the code usable after a policy failure.
*/
func TestResetPassword_WeakPassword(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Jane Doe", "jane@x.edu", "Abc123!")
	_, err := f.service.ForgotPassword(context.Background(), "jane@x.edu")
	require.NoError(t, err)
	code := f.mail.lastCode(t)

	err = f.service.ResetPassword(context.Background(), auth.ResetPasswordInput{Identifier: "jane@x.edu", Code: code, NewPassword: "short"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperrCode(err))

	assert.NoError(t, f.service.VerifyResetCode(context.Background(), "jane@x.edu", code))
}

/*
TestResetPassword_AfterExpiry walks the recovery with a late reset.
*/
func TestResetPassword_AfterExpiry(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Jane Doe", "jane@x.edu", "Abc123!")

	_, err := f.service.ForgotPassword(context.Background(), "jane@x.edu")
	require.NoError(t, err)
	code := f.mail.lastCode(t)

	f.clock.Advance(2 * time.Minute)
	require.NoError(t, f.service.VerifyResetCode(context.Background(), "jane@x.edu", code))

	f.clock.Advance(9 * time.Minute)
	err = f.service.ResetPassword(context.Background(), auth.ResetPasswordInput{Identifier: "jane@x.edu", Code: code, NewPassword: "NewPass1"})
	assertCode(t, err, auth.ErrInvalidOrExpiredCode)

	f.login(t, "jane", "Abc123!", "laptop")
}

// # Masking

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"johndoe@x.edu", "jo***@x.edu"},
		{"ab@x.edu", "ab***@x.edu"},
		{"a@x.edu", "a***@x.edu"},
		{"étienne@uni.fr", "ét***@uni.fr"},
		{"not-an-email", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, auth.MaskEmail(tt.input))
		})
	}
}
