// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayneaws/studenthub/internal/platform/middleware"
	"github.com/wayneaws/studenthub/internal/users/auth"
)

func (f *fixture) router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Authenticate(f.service))
	router.Mount("/auth", auth.NewHandler(f.service, nil, auth.RouteLimits{}).Routes())
	return router
}

func doJSON(t *testing.T, handler http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		request.Header.Set("Authorization", "Bearer "+bearer)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

type pairEnvelope struct {
	Data auth.TokenPair `json:"data"`
}

type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var target T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &target))
	return target
}

/*
TestHTTP_SignupThenCollision walks two signups sharing a local part.
*/
func TestHTTP_SignupThenCollision(t *testing.T) {
	f := newFixture(t)
	router := f.router()

	first := doJSON(t, router, http.MethodPost, "/auth/signup", "", map[string]string{
		"fullName": "Jane Doe", "email": "jane@x.edu", "password": "Abc123!",
	})
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	firstPair := decode[pairEnvelope](t, first).Data
	assert.Equal(t, "jane", firstPair.User.Username)
	assert.NotEmpty(t, firstPair.AccessToken)
	assert.NotEmpty(t, firstPair.RefreshToken)
	assert.NotContains(t, first.Body.String(), "passwordHash")

	second := doJSON(t, router, http.MethodPost, "/auth/signup", "", map[string]string{
		"fullName": "Jane Roe", "email": "jane@y.edu", "password": "Abc123!",
	})
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())
	assert.Equal(t, "jane1", decode[pairEnvelope](t, second).Data.User.Username)

	duplicate := doJSON(t, router, http.MethodPost, "/auth/signup", "", map[string]string{
		"fullName": "Jane Doe", "email": "jane@x.edu", "password": "Abc123!",
	})
	assert.Equal(t, http.StatusBadRequest, duplicate.Code)
	assert.Equal(t, auth.CodeDuplicateAccount, decode[errorEnvelope](t, duplicate).Code)
}

/*
TestHTTP_LoginFailuresAreIdentical compares wrong-password and unknown-user bodies.
*/
func TestHTTP_LoginFailuresAreIdentical(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Jane Doe", "jane@x.edu", "Abc123!")
	router := f.router()

	wrongPassword := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "jane", "password": "Wrong123",
	})
	unknownUser := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "ghost", "password": "Wrong123",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.Bytes(), unknownUser.Body.Bytes())
	assert.Equal(t, auth.CodeInvalidCredentials, decode[errorEnvelope](t, wrongPassword).Code)

	ok := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "jane@x.edu", "password": "Abc123!", "deviceId": "laptop",
	})
	require.Equal(t, http.StatusOK, ok.Code, ok.Body.String())
	assert.Equal(t, "laptop", decode[pairEnvelope](t, ok).Data.DeviceID)
}

/*
TestHTTP_ForgotPasswordIdenticalBodies compares an unknown email with a
social-only account.
*/
func TestHTTP_ForgotPasswordIdenticalBodies(t *testing.T) {
	f := newFixture(t)
	f.seedSocialAccount(t, "sociallite", "social@x.edu")
	f.signup(t, "Jane Doe", "jane@x.edu", "Abc123!")
	router := f.router()

	unknown := doJSON(t, router, http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": "nobody@x.edu"})
	social := doJSON(t, router, http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": "social@x.edu"})
	local := doJSON(t, router, http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": "jane@x.edu"})

	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, unknown.Code, social.Code)
	assert.Equal(t, unknown.Body.Bytes(), social.Body.Bytes())
	assert.Equal(t, unknown.Body.Bytes(), local.Body.Bytes())
	assert.Contains(t, unknown.Body.String(), auth.MessageResetGeneric)
}

/*
TestHTTP_RecoveryFlow resets a password over HTTP.
*/
func TestHTTP_RecoveryFlow(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Jane Doe", "jane@x.edu", "Abc123!")
	router := f.router()

	forgot := doJSON(t, router, http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": "jane@x.edu"})
	require.Equal(t, http.StatusOK, forgot.Code)
	code := f.mail.lastCode(t)

	verify := doJSON(t, router, http.MethodPost, "/auth/verify-reset-code", "", map[string]string{"email": "jane@x.edu", "code": code})
	require.Equal(t, http.StatusOK, verify.Code, verify.Body.String())
	assert.Contains(t, verify.Body.String(), auth.MessageCodeVerified)

	reset := doJSON(t, router, http.MethodPost, "/auth/reset-password", "", map[string]string{
		"email": "jane@x.edu", "code": code, "newPassword": "NewPass1",
	})
	require.Equal(t, http.StatusOK, reset.Code, reset.Body.String())
	assert.Contains(t, reset.Body.String(), auth.MessagePasswordResetDone)

	again := doJSON(t, router, http.MethodPost, "/auth/reset-password", "", map[string]string{
		"email": "jane@x.edu", "code": code, "newPassword": "NewPass2",
	})
	assert.Equal(t, http.StatusBadRequest, again.Code)
	assert.Equal(t, auth.CodeInvalidOrExpired, decode[errorEnvelope](t, again).Code)
}

/*
TestHTTP_ProtectedRoutes covers bearer handling and logout everywhere.
*/
func TestHTTP_ProtectedRoutes(t *testing.T) {
	f := newFixture(t)
	created := f.signup(t, "Jane Doe", "jane@x.edu", "Abc123!")
	router := f.router()

	anonymous := doJSON(t, router, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)

	garbage := doJSON(t, router, http.MethodGet, "/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, garbage.Code)
	assert.Equal(t, auth.CodeTokenMalformed, decode[errorEnvelope](t, garbage).Code)

	me := doJSON(t, router, http.MethodGet, "/auth/me", created.AccessToken, nil)
	require.Equal(t, http.StatusOK, me.Code, me.Body.String())
	assert.Contains(t, me.Body.String(), `"username":"jane"`)

	sessions := doJSON(t, router, http.MethodGet, "/auth/sessions", created.AccessToken, nil)
	require.Equal(t, http.StatusOK, sessions.Code)
	assert.Contains(t, sessions.Body.String(), created.DeviceID)

	logout := doJSON(t, router, http.MethodPost, "/auth/logout", created.AccessToken, map[string]bool{"allDevices": true})
	require.Equal(t, http.StatusOK, logout.Code, logout.Body.String())
	assert.JSONEq(t, `{"data":{"success":true}}`, logout.Body.String())

	revoked := doJSON(t, router, http.MethodGet, "/auth/me", created.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, revoked.Code)
	assert.Equal(t, auth.CodeTokenRevoked, decode[errorEnvelope](t, revoked).Code)
}

/*
TestHTTP_RefreshValidation covers missing fields and a rotated token.
*/
func TestHTTP_RefreshValidation(t *testing.T) {
	f := newFixture(t)
	created := f.signup(t, "Jane Doe", "jane@x.edu", "Abc123!")
	router := f.router()

	missing := doJSON(t, router, http.MethodPost, "/auth/refresh-token", "", map[string]string{"refreshToken": created.RefreshToken})
	assert.Equal(t, http.StatusBadRequest, missing.Code)

	rotated := doJSON(t, router, http.MethodPost, "/auth/refresh-token", "", map[string]string{
		"refreshToken": created.RefreshToken, "deviceId": created.DeviceID,
	})
	require.Equal(t, http.StatusOK, rotated.Code, rotated.Body.String())

	replay := doJSON(t, router, http.MethodPost, "/auth/refresh-token", "", map[string]string{
		"refreshToken": created.RefreshToken, "deviceId": created.DeviceID,
	})
	assert.Equal(t, http.StatusUnauthorized, replay.Code)
	assert.Equal(t, auth.CodeInvalidRefreshToken, decode[errorEnvelope](t, replay).Code)
}

/*
TestHTTP_SocialDisabled covers the routes without an identity provider.
*/
func TestHTTP_SocialDisabled(t *testing.T) {
	f := newFixture(t)

	recorder := doJSON(t, f.router(), http.MethodGet, "/auth/social/login", "", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, auth.CodeSocialNotConfigured, decode[errorEnvelope](t, recorder).Code)
}
