// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// Handlers validate request shape; services re-validate business rules
// (password policy, username format) so non-HTTP callers get the same checks.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wayneaws/studenthub/internal/platform/apperr"
)

// Username and password policy shared by signup, profile edits and resets.
const (
	UsernameMinLength = 3
	UsernameMaxLength = 30
	PasswordMinLength = 6
	PasswordMaxLength = 72
)

var (
	// usernameRegex matches letters, digits and underscores only.
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	// uuidRegex matches a UUIDv4 or UUIDv7 string.
	uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	// codeRegex matches a six-digit reset code.
	codeRegex = regexp.MustCompile(`^[0-9]{6}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Email fails if the value is not a bare RFC 5322 address ("a@b.c", no display name).
func (v *Validator) Email(field, value string) *Validator {
	address, err := mail.ParseAddress(value)
	if err != nil || address.Address != strings.TrimSpace(value) || !strings.Contains(address.Address, ".") {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// Username fails unless the value is 3-30 characters of letters, digits and underscores.
func (v *Validator) Username(field, value string) *Validator {
	length := utf8.RuneCountInString(value)
	switch {
	case length < UsernameMinLength || length > UsernameMaxLength:
		v.add(field, fmt.Sprintf("Must be between %d and %d characters", UsernameMinLength, UsernameMaxLength))
	case !usernameRegex.MatchString(value):
		v.add(field, "Only letters, numbers, and underscores are allowed")
	}
	return v
}

// Password enforces the password policy: at least six characters with a
// lowercase letter, an uppercase letter, and a digit.
func (v *Validator) Password(field, value string) *Validator {
	var hasLower, hasUpper, hasDigit bool
	for _, r := range value {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	switch {
	case utf8.RuneCountInString(value) < PasswordMinLength:
		v.add(field, fmt.Sprintf("Minimum %d characters", PasswordMinLength))
	case len(value) > PasswordMaxLength:
		v.add(field, fmt.Sprintf("Maximum %d bytes", PasswordMaxLength))
	case !hasLower || !hasUpper || !hasDigit:
		v.add(field, "Must contain at least one lowercase letter, one uppercase letter, and one number")
	}
	return v
}

// ResetCode fails unless the value is exactly six digits.
func (v *Validator) ResetCode(field, value string) *Validator {
	if !codeRegex.MatchString(value) {
		v.add(field, "Must be a 6-digit code")
	}
	return v
}

// UUID fails if the value is not a valid UUID string (case-insensitive).
func (v *Validator) UUID(field, value string) *Validator {
	if !uuidRegex.MatchString(strings.ToLower(value)) {
		v.add(field, "Must be a valid UUID")
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("bio", filter.IsOffensive(bio), "Contains inappropriate language")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
