// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/wayneaws/studenthub/internal/platform/apperr"
	"github.com/wayneaws/studenthub/internal/platform/ctxutil"
	"github.com/wayneaws/studenthub/internal/platform/dberr"
	"github.com/wayneaws/studenthub/internal/platform/imaging"
	"github.com/wayneaws/studenthub/internal/platform/sanitize"
	"github.com/wayneaws/studenthub/internal/platform/storage"
	"github.com/wayneaws/studenthub/internal/platform/validate"
	"github.com/wayneaws/studenthub/internal/users/auth"
)

// # Service Layer

// Service orchestrates profile edits, picture uploads and member discovery.
type Service struct {
	accounts Repository
	objects  storage.ObjectStore
	images   imaging.Normalizer
	filter   sanitize.ContentFilter
	now      func() time.Time
}

// NewService constructs a new [Service]. A nil filter accepts all text and a
// nil clock means time.Now.
func NewService(
	accounts Repository,
	objects storage.ObjectStore,
	images imaging.Normalizer,
	filter sanitize.ContentFilter,
	now func() time.Time,
) *Service {
	if filter == nil {
		filter = sanitize.NoopFilter{}
	}
	if now == nil {
		now = time.Now
	}
	return &Service{accounts: accounts, objects: objects, images: images, filter: filter, now: now}
}

// # Profile Management

// UpdateProfileInput defines the mutable subset of profile fields. Nil
// pointers leave the field untouched.
type UpdateProfileInput struct {
	FullName              *string
	Username              *string
	WantsEmails           *bool
	Bio                   *string
	Major                 *string
	Grade                 *string
	ProgrammingLanguages  *[]string
	ProfileSetupCompleted *bool
}

/*
UpdateProfile applies a partial set of changes to the caller's profile.

Description: Free text is stripped of markup before validation and checked
against the content filter. A new username must be free.

Parameters:
  - context: context.Context
  - accountID: string
  - input: UpdateProfileInput

Returns:
  - *auth.Account: The updated account
  - error: ValidationError, ErrDuplicateAccount, NotFound or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, accountID string, input UpdateProfileInput) (*auth.Account, error) {
	account, err := service.find(context, accountID)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}

	if input.FullName != nil {
		fullName := sanitize.Text(*input.FullName)
		validator.Required(FieldFullName, fullName).MinLen(FieldFullName, fullName, 2).MaxLen(FieldFullName, fullName, 100)
		service.screen(validator, FieldFullName, fullName)
		account.FullName = fullName
	}

	usernameChanged := false
	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		validator.Username(FieldUsername, username)
		service.screen(validator, FieldUsername, username)
		usernameChanged = username != account.Username
		account.Username = username
	}

	if input.Bio != nil {
		bio := sanitize.Text(*input.Bio)
		validator.MaxLen(FieldBio, bio, MaxBioLength)
		service.screen(validator, FieldBio, bio)
		account.Bio = bio
	}

	if input.Major != nil {
		major := sanitize.Text(*input.Major)
		validator.MaxLen(FieldMajor, major, MaxMajorLength)
		service.screen(validator, FieldMajor, major)
		account.Major = major
	}

	if input.Grade != nil {
		validator.OneOf(FieldGrade, *input.Grade, Grades...)
		account.Grade = *input.Grade
	}

	if input.ProgrammingLanguages != nil {
		languages := cleanLanguages(*input.ProgrammingLanguages)
		validator.Custom(FieldProgrammingLanguages, len(languages) > MaxLanguages,
			fmt.Sprintf("At most %d languages", MaxLanguages))
		for _, language := range languages {
			validator.MaxLen(FieldProgrammingLanguages, language, MaxLanguageLength)
		}
		account.ProgrammingLanguages = languages
	}

	if input.WantsEmails != nil {
		account.WantsEmails = *input.WantsEmails
	}

	if input.ProfileSetupCompleted != nil {
		account.ProfileSetupCompleted = *input.ProfileSetupCompleted
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if usernameChanged {
		taken, err := service.accounts.UsernameTaken(context, account.Username, account.ID)
		if err != nil {
			return nil, fmt.Errorf("account_service_username_check_failed: %w", err)
		}
		if taken {
			return nil, auth.ErrDuplicateAccount
		}
	}

	if err := service.accounts.UpdateProfile(context, account); err != nil {
		if errors.Is(err, auth.ErrDuplicateAccount) {
			return nil, auth.ErrDuplicateAccount
		}
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "account_profile_updated", slog.String("account_id", accountID))
	return account, nil
}

/*
CheckUsername reports whether username is free for the caller.

Parameters:
  - context: context.Context
  - accountID: string (the caller, never counted as a collision)
  - username: string

Returns:
  - *UsernameAvailability: Outcome and message
  - error: ValidationError or storage failures
*/
func (service *Service) CheckUsername(context context.Context, accountID, username string) (*UsernameAvailability, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, validate.RequiredError(FieldUsername, "Username is required")
	}

	taken, err := service.accounts.UsernameTaken(context, username, accountID)
	if err != nil {
		return nil, fmt.Errorf("account_service_check_username_failed: %w", err)
	}

	if taken {
		return &UsernameAvailability{Available: false, Message: MessageUsernameTaken}, nil
	}
	return &UsernameAvailability{Available: true, Message: MessageUsernameAvailable}, nil
}

// # Discovery

// RecentMembers lists the newest active members. limit is clamped to
// [1, MaxRecentLimit].
func (service *Service) RecentMembers(context context.Context, limit int) ([]PublicProfile, error) {
	accounts, err := service.accounts.Recent(context, clamp(limit, DefaultRecentLimit, MaxRecentLimit))
	if err != nil {
		return nil, fmt.Errorf("account_service_recent_failed: %w", err)
	}
	return PublicViews(accounts), nil
}

/*
PublicProfileOf returns the public view of an active member.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *PublicProfile: Public fields only
  - error: NotFound (also for non-active accounts) or storage failures
*/
func (service *Service) PublicProfileOf(context context.Context, username string) (*PublicProfile, error) {
	account, err := service.accounts.FindByUsername(context, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("account_service_public_profile_failed: %w", err)
	}

	if !account.IsActive() {
		return nil, apperr.NotFound("User")
	}

	view := PublicView(account)
	return &view, nil
}

// Search finds active members by username or full name. Queries shorter
// than MinSearchLength return an empty list.
func (service *Service) Search(context context.Context, query string, limit int) ([]PublicProfile, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSearchLength {
		return []PublicProfile{}, nil
	}

	accounts, err := service.accounts.Search(context, query, clamp(limit, DefaultSearchLimit, MaxSearchLimit))
	if err != nil {
		return nil, fmt.Errorf("account_service_search_failed: %w", err)
	}
	return PublicViews(accounts), nil
}

// # Profile Picture

/*
UploadProfilePicture normalizes and stores a new picture for the caller.

Description: The image is cropped to a square JPEG, stored under
profile-pictures/<id>-<unixmillis>.jpg, and recorded on the account. The
previous picture is removed best-effort.

Parameters:
  - context: context.Context
  - accountID: string
  - raw: []byte
  - contentType: string (as declared by the client)

Returns:
  - *auth.Account: The updated account
  - error: ValidationError, NotFound, or storage failures
*/
func (service *Service) UploadProfilePicture(context context.Context, accountID string, raw []byte, contentType string) (*auth.Account, error) {
	switch {
	case len(raw) == 0:
		return nil, validate.RequiredError(FieldProfilePicture, "No file uploaded")
	case len(raw) > MaxPictureBytes:
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{Field: FieldProfilePicture, Message: "File exceeds 5MB"})
	case !strings.HasPrefix(strings.ToLower(contentType), "image/"):
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{Field: FieldProfilePicture, Message: "Only image files are allowed"})
	}

	account, err := service.find(context, accountID)
	if err != nil {
		return nil, err
	}

	picture, err := service.images.Normalize(raw)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedImage) {
			return nil, apperr.ValidationError("Validation failed", apperr.FieldError{Field: FieldProfilePicture, Message: "Unsupported or corrupt image"})
		}
		return nil, fmt.Errorf("account_service_normalize_failed: %w", err)
	}

	key := fmt.Sprintf("%s/%s-%d.jpg", PictureFolder, account.ID, service.now().UnixMilli())
	url, err := service.objects.Put(context, key, imaging.ContentType, picture)
	if err != nil {
		return nil, fmt.Errorf("account_service_upload_failed: %w", err)
	}

	if err := service.accounts.SetProfilePicture(context, account.ID, url); err != nil {
		return nil, fmt.Errorf("account_service_set_picture_failed: %w", err)
	}

	previous := account.ProfilePicture
	account.ProfilePicture = url
	service.removePicture(context, previous)

	ctxutil.GetLogger(context).InfoContext(context, "account_picture_updated",
		slog.String("account_id", account.ID),
		slog.String("key", key),
	)
	return account, nil
}

// removePicture deletes an object this store owns. Failures are logged only.
func (service *Service) removePicture(context context.Context, url string) {
	if url == "" {
		return
	}

	key, owned := service.objects.KeyFromURL(url)
	if !owned {
		return
	}

	if err := service.objects.Delete(context, key); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "account_picture_delete_failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// # Helpers

func (service *Service) find(context context.Context, accountID string) (*auth.Account, error) {
	account, err := service.accounts.FindByID(context, accountID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("account_service_lookup_failed: %w", err)
	}
	return account, nil
}

func (service *Service) screen(validator *validate.Validator, field, text string) {
	validator.Custom(field, text != "" && service.filter.IsOffensive(text), "Contains inappropriate language")
}

// cleanLanguages trims, drops empties and removes case-insensitive duplicates.
func cleanLanguages(languages []string) []string {
	cleaned := make([]string, 0, len(languages))
	for _, language := range languages {
		language = sanitize.Text(language)
		if language == "" {
			continue
		}
		duplicate := slices.ContainsFunc(cleaned, func(existing string) bool {
			return strings.EqualFold(existing, language)
		})
		if !duplicate {
			cleaned = append(cleaned, language)
		}
	}
	return cleaned
}

func clamp(limit, fallback, max int) int {
	switch {
	case limit <= 0:
		return fallback
	case limit > max:
		return max
	default:
		return limit
	}
}
