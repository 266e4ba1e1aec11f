// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayneaws/studenthub/internal/platform/apperr"
)

/*
TestAppError_IsMatchesByCode verifies that sentinels match fresh instances
carrying the same code, even through fmt.Errorf wrapping.
*/
func TestAppError_IsMatchesByCode(t *testing.T) {
	sentinel := apperr.New("TOKEN_EXPIRED", "Token expired", http.StatusUnauthorized)

	fresh := sentinel.WithCause(errors.New("jwt: exp"))
	wrapped := fmt.Errorf("middleware: %w", fresh)

	assert.ErrorIs(t, wrapped, sentinel)
	assert.NotErrorIs(t, wrapped, apperr.NotFound("User"))

	// The sentinel itself is not mutated.
	assert.Nil(t, sentinel.Cause)
	assert.NotNil(t, fresh.Cause)
}

/*
TestAppError_As extracts the typed error from a wrapped chain.
*/
func TestAppError_As(t *testing.T) {
	err := fmt.Errorf("outer: %w", apperr.Forbidden("nope"))

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusForbidden, ae.HTTPStatus)
	assert.True(t, apperr.IsAppError(err))

	assert.Nil(t, apperr.As(errors.New("plain")))
}
