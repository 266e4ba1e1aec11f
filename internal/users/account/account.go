// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

/*
Package account handles member profiles, profile pictures, and member discovery.

It lets members complete and edit their own profile, and lets anyone look up
the public side of other members.

# Architecture

  - Entities: PublicProfile (DTO), UsernameAvailability.
  - Domain: This package depends on the auth package for the Account entity.
  - Storage: Repository is implemented on PostgreSQL and on the in-memory
    credential store.
*/
package account

import (
	"context"
	"time"

	"github.com/wayneaws/studenthub/internal/users/auth"
)

// # Profile Constraints

const (
	MaxBioLength      = 500
	MaxMajorLength    = 100
	MaxLanguages      = 20
	MaxLanguageLength = 40

	DefaultRecentLimit = 6
	MaxRecentLimit     = 20
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
	MinSearchLength    = 2

	// MaxPictureBytes bounds profile picture uploads.
	MaxPictureBytes = 5 << 20

	// PictureFolder prefixes every stored profile picture key.
	PictureFolder = "profile-pictures"
)

// Grades lists the accepted values of the grade field.
var Grades = []string{"", "Freshman", "Sophomore", "Junior", "Senior", "Graduate", "Other"}

// Field identifiers for validation details.
const (
	FieldFullName             = "fullName"
	FieldUsername             = "username"
	FieldBio                  = "bio"
	FieldMajor                = "major"
	FieldGrade                = "grade"
	FieldProgrammingLanguages = "programmingLanguages"
	FieldProfilePicture       = "profilePicture"
	FieldQuery                = "q"
)

// Availability messages for the username check.
const (
	MessageUsernameAvailable = "Username is available"
	MessageUsernameTaken     = "Username is already taken"
	MessageProfileUpdated    = "Profile updated successfully"
	MessagePictureUpdated    = "Profile picture updated successfully"
)

// # Domain Entities

// PublicProfile is the part of an account anyone may see.
type PublicProfile struct {
	ID                   string    `json:"id"`
	Username             string    `json:"username"`
	FullName             string    `json:"fullName"`
	Bio                  string    `json:"bio"`
	Major                string    `json:"major"`
	Grade                string    `json:"grade"`
	ProgrammingLanguages []string  `json:"programmingLanguages"`
	ProfilePicture       string    `json:"profilePicture"`
	Role                 string    `json:"role"`
	CreatedAt            time.Time `json:"createdAt"`
}

// PublicView projects an account onto its public fields.
func PublicView(account *auth.Account) PublicProfile {
	languages := account.ProgrammingLanguages
	if languages == nil {
		languages = []string{}
	}
	return PublicProfile{
		ID:                   account.ID,
		Username:             account.Username,
		FullName:             account.FullName,
		Bio:                  account.Bio,
		Major:                account.Major,
		Grade:                account.Grade,
		ProgrammingLanguages: languages,
		ProfilePicture:       account.ProfilePicture,
		Role:                 string(account.Role),
		CreatedAt:            account.CreatedAt,
	}
}

// PublicViews projects a list of accounts.
func PublicViews(accounts []*auth.Account) []PublicProfile {
	views := make([]PublicProfile, 0, len(accounts))
	for _, account := range accounts {
		views = append(views, PublicView(account))
	}
	return views
}

// UsernameAvailability answers a username check.
type UsernameAvailability struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// # Repository Contracts

// Repository defines the persistence contract for member profiles.
type Repository interface {
	/*
		FindByID retrieves an account by its unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.Account: Loaded account entity
		  - error: dberr.ErrNotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.Account, error)

	// FindByUsername retrieves an account by its exact username.
	FindByUsername(context context.Context, username string) (*auth.Account, error)

	// UsernameTaken reports whether an account other than excludeID uses username.
	UsernameTaken(context context.Context, username, excludeID string) (bool, error)

	/*
		UpdateProfile persists the editable fields of an account: full name,
		username and every [auth.Profile] field except the picture.

		Parameters:
		  - context: context.Context
		  - account: *auth.Account (Hydrated entity with changes)

		Returns:
		  - error: auth.ErrDuplicateAccount on a username collision, or storage failures
	*/
	UpdateProfile(context context.Context, account *auth.Account) error

	// SetProfilePicture stores the public URL of the account's picture.
	SetProfilePicture(context context.Context, id, url string) error

	/*
		Recent lists the newest active accounts.

		Parameters:
		  - context: context.Context
		  - limit: int

		Returns:
		  - []*auth.Account: Newest first
		  - error: Retrieval failures
	*/
	Recent(context context.Context, limit int) ([]*auth.Account, error)

	/*
		Search finds active accounts whose username or full name contains query,
		case-insensitively.

		Parameters:
		  - context: context.Context
		  - query: string
		  - limit: int

		Returns:
		  - []*auth.Account: Matches ordered by username
		  - error: Retrieval failures
	*/
	Search(context context.Context, query string, limit int) ([]*auth.Account, error)
}
