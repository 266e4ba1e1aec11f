// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

/*
Package account provides the HTTP delivery layer for profiles and discovery.

# Security

Profile edits, username checks, search and uploads require an authenticated
caller (middleware.Authenticate upstream, RequireAuth here). The recent-members
list and public profiles are open to anyone.
*/
package account

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wayneaws/studenthub/internal/platform/apperr"
	"github.com/wayneaws/studenthub/internal/platform/middleware"
	requestutil "github.com/wayneaws/studenthub/internal/platform/request"
	"github.com/wayneaws/studenthub/internal/platform/respond"
	"github.com/wayneaws/studenthub/internal/platform/validate"
	"github.com/wayneaws/studenthub/internal/users/auth"
)

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 64 << 10

// Handler implements the HTTP layer for member profiles.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// RegisterRoutes mounts the profile routes on the shared /auth router.
//
// # Endpoints
//   - GET  /recent-users, /public-profile/{username}
//   - PUT  /profile, POST /check-username, GET /search (authenticated)
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/recent-users", handler.recentMembers)
	router.Get("/public-profile/{username}", handler.publicProfile)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Put("/profile", handler.updateProfile)
		r.Post("/check-username", handler.checkUsername)
		r.Get("/search", handler.search)
	})
}

// UploadRoutes returns the router mounted at /upload.
func (handler *Handler) UploadRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)
	router.Post("/profile-picture", handler.uploadPicture)
	return router
}

// # Profile Endpoints

// updateProfileRequest defines the expected JSON payload for profile updates.
type updateProfileRequest struct {
	FullName              *string   `json:"fullName"`
	Username              *string   `json:"username"`
	WantsEmails           *bool     `json:"wantsEmails"`
	Bio                   *string   `json:"bio"`
	Major                 *string   `json:"major"`
	Grade                 *string   `json:"grade"`
	ProgrammingLanguages  *[]string `json:"programmingLanguages"`
	ProfileSetupCompleted *bool     `json:"profileSetupCompleted"`
}

type profileResponse struct {
	Message string        `json:"message"`
	User    *auth.Account `json:"user"`
}

/*
PUT /auth/profile.

Description: Applies partial updates to the caller's profile.

Response:
  - 200: {message, user}
  - 400: VALIDATION_ERROR or DUPLICATE_ACCOUNT
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.UpdateProfile(request.Context(), userID, UpdateProfileInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profileResponse{Message: MessageProfileUpdated, User: account})
}

type checkUsernameRequest struct {
	Username string `json:"username"`
}

// checkUsername answers whether a username is free. POST /auth/check-username
func (handler *Handler) checkUsername(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input checkUsernameRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.accountService.CheckUsername(request.Context(), userID, input.Username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

// # Discovery Endpoints

// recentMembers lists the newest members. GET /auth/recent-users?limit
func (handler *Handler) recentMembers(writer http.ResponseWriter, request *http.Request) {
	limit := requestutil.QueryInt(request, "limit", DefaultRecentLimit, MaxRecentLimit)

	members, err := handler.accountService.RecentMembers(request.Context(), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, members)
}

// publicProfile returns one member's public fields. GET /auth/public-profile/{username}
func (handler *Handler) publicProfile(writer http.ResponseWriter, request *http.Request) {
	profile, err := handler.accountService.PublicProfileOf(request.Context(), requestutil.Param(request, "username"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// search finds members by name. GET /auth/search?q&limit
func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	limit := requestutil.QueryInt(request, "limit", DefaultSearchLimit, MaxSearchLimit)

	members, err := handler.accountService.Search(request.Context(), request.URL.Query().Get(FieldQuery), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, members)
}

// # Upload Endpoints

type pictureResponse struct {
	Message        string        `json:"message"`
	ProfilePicture string        `json:"profilePicture"`
	User           *auth.Account `json:"user"`
}

/*
POST /upload/profile-picture.

Description: Accepts a multipart form with a single image in the
"profilePicture" field, at most 5 MiB.

Response:
  - 200: {message, profilePicture, user}
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) uploadPicture(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	request.Body = http.MaxBytesReader(writer, request.Body, MaxPictureBytes+multipartOverhead)
	file, header, err := request.FormFile(FieldProfilePicture)
	if err != nil {
		respond.Error(writer, request, uploadError(err))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, MaxPictureBytes+1))
	if err != nil {
		respond.Error(writer, request, uploadError(err))
		return
	}

	account, err := handler.accountService.UploadProfilePicture(request.Context(), userID, raw, header.Header.Get("Content-Type"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pictureResponse{
		Message:        MessagePictureUpdated,
		ProfilePicture: account.ProfilePicture,
		User:           account,
	})
}

// uploadError maps multipart failures to validation errors.
func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.ValidationError("Validation failed", apperr.FieldError{Field: FieldProfilePicture, Message: "File exceeds 5MB"})
	}
	if errors.Is(err, http.ErrMissingFile) {
		return validate.RequiredError(FieldProfilePicture, "No file uploaded")
	}
	return apperr.ValidationError("Invalid multipart form").WithCause(err)
}
