// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

// Package schema names the tables and columns of the credential store so
// repositories never spell identifiers by hand.
package schema

import "strings"

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table                 string
	ID                    string
	Username              string
	Email                 string
	FullName              string
	Password              string
	Provider              string
	ExternalID            string
	Role                  string
	Status                string
	BannedAt              string
	BannedByID            string
	BannedByUsername      string
	BannedByDisplayName   string
	BanReason             string
	TokenVersion          string
	ResetCodeHash         string
	ResetCodeExpiresAt    string
	Bio                   string
	Major                 string
	Grade                 string
	ProgrammingLanguages  string
	ProfilePicture        string
	WantsEmails           string
	ProfileSetupCompleted string
	LastLoginAt           string
	CreatedAt             string
	UpdatedAt             string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:                 "users.account",
	ID:                    "id",
	Username:              "username",
	Email:                 "email",
	FullName:              "fullname",
	Password:              "passwordhash",
	Provider:              "provider",
	ExternalID:            "externalid",
	Role:                  "role",
	Status:                "status",
	BannedAt:              "bannedat",
	BannedByID:            "bannedbyid",
	BannedByUsername:      "bannedbyusername",
	BannedByDisplayName:   "bannedbydisplayname",
	BanReason:             "banreason",
	TokenVersion:          "tokenversion",
	ResetCodeHash:         "resetcodehash",
	ResetCodeExpiresAt:    "resetcodeexpiresat",
	Bio:                   "bio",
	Major:                 "major",
	Grade:                 "grade",
	ProgrammingLanguages:  "programminglanguages",
	ProfilePicture:        "profilepicture",
	WantsEmails:           "wantsemails",
	ProfileSetupCompleted: "profilesetupcompleted",
	LastLoginAt:           "lastloginat",
	CreatedAt:             "createdat",
	UpdatedAt:             "updatedat",
}

// Unique constraints raised on insert or update.
const (
	UserAccountEmailKey      = "account_email_key"
	UserAccountUsernameKey   = "account_username_key"
	UserAccountExternalIDKey = "account_externalid_key"
)

// Columns returns all standard column names, in scan order.
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.FullName, t.Password, t.Provider, t.ExternalID,
		t.Role, t.Status, t.BannedAt, t.BannedByID, t.BannedByUsername, t.BannedByDisplayName, t.BanReason,
		t.TokenVersion, t.ResetCodeHash, t.ResetCodeExpiresAt,
		t.Bio, t.Major, t.Grade, t.ProgrammingLanguages, t.ProfilePicture, t.WantsEmails, t.ProfileSetupCompleted,
		t.LastLoginAt, t.CreatedAt, t.UpdatedAt,
	}
}

// SelectList returns [UserAccountTable.Columns] joined for a SELECT clause.
func (t UserAccountTable) SelectList() string {
	return strings.Join(t.Columns(), ", ")
}
