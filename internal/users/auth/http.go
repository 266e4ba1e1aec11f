// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

/*
Package auth provides the HTTP delivery layer for member identity management.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: JSON bodies in, {"data": ...} envelopes out.
  - Security: Per-route rate limits are injected as middleware; the access
    token is verified upstream by middleware.Authenticate.
  - Verification: Request shape is validated here; business rules live in [Service].
*/
package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wayneaws/studenthub/internal/platform/middleware"
	requestutil "github.com/wayneaws/studenthub/internal/platform/request"
	"github.com/wayneaws/studenthub/internal/platform/respond"
	"github.com/wayneaws/studenthub/internal/platform/validate"
)

// # Definitions & Constructors

// RouteLimits holds the per-route rate limit middlewares. Nil entries
// disable limiting for that group.
type RouteLimits struct {
	Login  func(http.Handler) http.Handler
	Auth   func(http.Handler) http.Handler
	Reset  func(http.Handler) http.Handler
	Signup func(http.Handler) http.Handler
}

func limitOrPass(limit func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if limit == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return limit
}

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
	social      *SocialService
	limits      RouteLimits
}

// NewHandler constructs a new [Handler]. social may be nil when no identity
// provider is configured.
func NewHandler(service *Service, social *SocialService, limits RouteLimits) *Handler {
	return &Handler{authService: service, social: social, limits: limits}
}

// Routes returns a [chi.Router] with the authentication routes.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

// RegisterRoutes mounts the authentication routes on router. It lets /auth
// be shared with the account handler.
//
// # Endpoints
//   - POST /signup, /login, /refresh-token
//   - POST /forgot-password, /verify-email, /verify-reset-code, /reset-password
//   - GET  /social/login, /social/callback
//   - POST /logout, GET /me, GET /sessions (authenticated)
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.With(limitOrPass(handler.limits.Signup)).Post("/signup", handler.signup)
	router.With(limitOrPass(handler.limits.Login)).Post("/login", handler.login)

	router.Group(func(r chi.Router) {
		r.Use(limitOrPass(handler.limits.Auth))
		r.Post("/refresh-token", handler.refresh)
		r.Post("/verify-email", handler.verifyEmail)
		r.Post("/verify-reset-code", handler.verifyResetCode)
		r.Get("/social/login", handler.socialLogin)
		r.Get("/social/callback", handler.socialCallback)
	})

	router.Group(func(r chi.Router) {
		r.Use(limitOrPass(handler.limits.Reset))
		r.Post("/forgot-password", handler.forgotPassword)
		r.Post("/reset-password", handler.resetPassword)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Get("/me", handler.me)
		r.Get("/sessions", handler.sessions)
	})
}

// # Request Payloads

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	DeviceID string `json:"deviceId"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
	DeviceID     string `json:"deviceId"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
	DeviceID     string `json:"deviceId"`
	AllDevices   bool   `json:"allDevices"`
}

// identifierRequest accepts an email, a username, or a generic identifier.
type identifierRequest struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Identifier string `json:"identifier"`
}

// value returns the first non-empty of email, username and identifier.
func (payload identifierRequest) value() string {
	for _, candidate := range []string{payload.Email, payload.Username, payload.Identifier} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

type verifyEmailRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type verifyResetCodeRequest struct {
	identifierRequest
	Code string `json:"code"`
}

type resetPasswordRequest struct {
	identifierRequest
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
	Password    string `json:"password"`
}

type logoutResponse struct {
	Success bool `json:"success"`
}

// # Session Endpoints

/*
signup handles the creation of a new account.

POST /auth/signup

Response:
  - 201: TokenPair
  - 400: VALIDATION_ERROR or DUPLICATE_ACCOUNT
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Signup(request.Context(), SignupInput{
		FullName: input.FullName,
		Email:    input.Email,
		Password: input.Password,
		Username: input.Username,
		DeviceID: strings.TrimSpace(input.DeviceID),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, pair)
}

/*
login authenticates a member by email or username.

POST /auth/login

Response:
  - 200: TokenPair
  - 401: INVALID_CREDENTIALS (unknown account and wrong password alike)
  - 403: ACCOUNT_NOT_ACTIVE
  - 503: SERVICE_UNAVAILABLE
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identifier := strings.TrimSpace(input.Email)
	if identifier == "" {
		identifier = strings.TrimSpace(input.Username)
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, identifier).Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Login(request.Context(), LoginInput{
		Identifier: identifier,
		Password:   input.Password,
		DeviceID:   strings.TrimSpace(input.DeviceID),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
refresh rotates a refresh token.

POST /auth/refresh-token

Response:
  - 200: TokenPair
  - 401: INVALID_REFRESH_TOKEN
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldRefreshToken, input.RefreshToken).Required(FieldDeviceID, input.DeviceID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Refresh(request.Context(), input.RefreshToken, strings.TrimSpace(input.DeviceID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
logout ends one session, one device, or all sessions of the caller.

POST /auth/logout

Description: An empty body ends nothing and still succeeds.

Response:
  - 200: {"success": true}
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input logoutRequest
	if request.ContentLength != 0 {
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	err = handler.authService.Logout(request.Context(), userID, LogoutInput{
		RefreshToken: input.RefreshToken,
		DeviceID:     strings.TrimSpace(input.DeviceID),
		AllDevices:   input.AllDevices,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, logoutResponse{Success: true})
}

// me returns the caller's own account. GET /auth/me
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.authService.Me(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// sessions lists the caller's live devices. GET /auth/sessions
func (handler *Handler) sessions(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessions, err := handler.authService.ListSessions(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessions)
}

// # Recovery Endpoints

/*
forgotPassword starts the reset-code flow.

POST /auth/forgot-password

Response:
  - 200: ForgotPasswordResult (generic unless a username matched)
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input identifierRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.ForgotPassword(request.Context(), input.value())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

// verifyEmail confirms the full email after a username request.
// POST /auth/verify-email
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	var input verifyEmailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.VerifyEmail(request.Context(), input.Username, input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
verifyResetCode checks a code without consuming it.

POST /auth/verify-reset-code

Response:
  - 200: {"message": "Reset code verified"}
  - 400: INVALID_OR_EXPIRED_CODE
*/
func (handler *Handler) verifyResetCode(writer http.ResponseWriter, request *http.Request) {
	var input verifyResetCodeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.VerifyResetCode(request.Context(), input.value(), input.Code); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, MessageCodeVerified)
}

/*
resetPassword sets a new password with a valid code.

POST /auth/reset-password

Response:
  - 200: {"message": "Password has been reset successfully"}
  - 400: INVALID_OR_EXPIRED_CODE or VALIDATION_ERROR
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	newPassword := input.NewPassword
	if newPassword == "" {
		newPassword = input.Password
	}

	err := handler.authService.ResetPassword(request.Context(), ResetPasswordInput{
		Identifier:  input.value(),
		Code:        input.Code,
		NewPassword: newPassword,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, MessagePasswordResetDone)
}

// # Social Login Endpoints

// socialLogin redirects to the identity provider. GET /auth/social/login
func (handler *Handler) socialLogin(writer http.ResponseWriter, request *http.Request) {
	if handler.social == nil {
		respond.Error(writer, request, ErrSocialNotConfigured)
		return
	}

	target, err := handler.social.AuthorizeURL(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.Redirect(writer, request, target, http.StatusFound)
}

// socialCallback finishes the provider redirect. GET /auth/social/callback
func (handler *Handler) socialCallback(writer http.ResponseWriter, request *http.Request) {
	if handler.social == nil {
		respond.Error(writer, request, ErrSocialNotConfigured)
		return
	}

	query := request.URL.Query()
	pair, err := handler.social.Callback(request.Context(),
		query.Get(FieldCode),
		query.Get(FieldState),
		strings.TrimSpace(query.Get(FieldDeviceID)),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}
