// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package account_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayneaws/studenthub/internal/platform/apperr"
	"github.com/wayneaws/studenthub/internal/platform/imaging"
	"github.com/wayneaws/studenthub/internal/platform/sanitize"
	"github.com/wayneaws/studenthub/internal/platform/sec"
	"github.com/wayneaws/studenthub/internal/platform/storage"
	"github.com/wayneaws/studenthub/internal/users/account"
	"github.com/wayneaws/studenthub/internal/users/auth"
	"github.com/wayneaws/studenthub/pkg/pointer"
)

const objectBaseURL = "https://cdn.test"

var fixedNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	service *account.Service
	store   *auth.MemoryStore
	objects *storage.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := auth.NewMemoryStore()
	objects := storage.NewMemoryStore(objectBaseURL)
	service := account.NewService(
		account.NewMemoryRepository(store),
		objects,
		imaging.NewResizer(),
		sanitize.DefaultWordFilter(),
		func() time.Time { return fixedNow },
	)
	return &fixture{service: service, store: store, objects: objects}
}

func (f *fixture) seed(t *testing.T, username, fullName string, created time.Time, status auth.Status) *auth.Account {
	t.Helper()
	member := &auth.Account{
		ID:        fmt.Sprintf("0195a1f0-0000-7000-8000-%012d", len(f.store.Accounts())+1),
		Username:  username,
		Email:     username + "@x.edu",
		FullName:  fullName,
		Provider:  auth.ProviderLocal,
		Role:      sec.RoleMember,
		Status:    status,
		Profile:   auth.Profile{ProgrammingLanguages: []string{}},
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, f.store.Create(context.Background(), member))
	return member
}

func assertValidation(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr, "expected an AppError, got %v", err)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)

	fields := make([]string, 0, len(appErr.Details))
	for _, detail := range appErr.Details {
		fields = append(fields, detail.Field)
	}
	assert.Contains(t, fields, field)
}

// # Profile Updates

/*
TestUpdateProfile_AppliesFields covers a full quick-setup submission.
*/
func TestUpdateProfile_AppliesFields(t *testing.T) {
	f := newFixture(t)
	member := f.seed(t, "jane", "Jane Doe", fixedNow, auth.StatusActive)

	updated, err := f.service.UpdateProfile(context.Background(), member.ID, account.UpdateProfileInput{
		Bio:                   pointer.To("  I like <b>Go</b>  "),
		Major:                 pointer.To("Computer Science"),
		Grade:                 pointer.To("Junior"),
		ProgrammingLanguages:  pointer.To([]string{"Go", " go ", "", "Rust"}),
		WantsEmails:           pointer.To(true),
		ProfileSetupCompleted: pointer.To(true),
	})
	require.NoError(t, err)

	assert.Equal(t, "I like Go", updated.Bio)
	assert.Equal(t, []string{"Go", "Rust"}, updated.ProgrammingLanguages)
	assert.Equal(t, "jane", updated.Username)

	stored, err := f.store.FindByID(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, "Junior", stored.Grade)
	assert.True(t, stored.WantsEmails)
	assert.True(t, stored.ProfileSetupCompleted)
	assert.Equal(t, "Jane Doe", stored.FullName)
}

/*
TestUpdateProfile_Rejections covers validation, filtering and collisions.
*/
func TestUpdateProfile_Rejections(t *testing.T) {
	f := newFixture(t)
	member := f.seed(t, "jane", "Jane Doe", fixedNow, auth.StatusActive)
	f.seed(t, "john", "John Roe", fixedNow, auth.StatusActive)

	tests := []struct {
		name  string
		input account.UpdateProfileInput
		field string
	}{
		{"unknown grade", account.UpdateProfileInput{Grade: pointer.To("Postdoc")}, account.FieldGrade},
		{"bio too long", account.UpdateProfileInput{Bio: pointer.To(strings.Repeat("a", 501))}, account.FieldBio},
		{"offensive bio", account.UpdateProfileInput{Bio: pointer.To("you are a bastard")}, account.FieldBio},
		{"short name", account.UpdateProfileInput{FullName: pointer.To("J")}, account.FieldFullName},
		{"bad username", account.UpdateProfileInput{Username: pointer.To("j!")}, account.FieldUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.UpdateProfile(context.Background(), member.ID, tt.input)
			assertValidation(t, err, tt.field)
		})
	}

	t.Run("username taken", func(t *testing.T) {
		_, err := f.service.UpdateProfile(context.Background(), member.ID, account.UpdateProfileInput{Username: pointer.To("john")})
		assert.True(t, errors.Is(err, auth.ErrDuplicateAccount))
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := f.service.UpdateProfile(context.Background(), "missing", account.UpdateProfileInput{})
		require.Error(t, err)
		assert.Equal(t, apperr.CodeNotFound, apperr.As(err).Code)
	})

	stored, err := f.store.FindByID(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane", stored.Username)
	assert.Empty(t, stored.Bio)
}

/*
TestCheckUsername excludes the caller from collisions.
*/
func TestCheckUsername(t *testing.T) {
	f := newFixture(t)
	jane := f.seed(t, "jane", "Jane Doe", fixedNow, auth.StatusActive)
	f.seed(t, "john", "John Roe", fixedNow, auth.StatusActive)

	own, err := f.service.CheckUsername(context.Background(), jane.ID, "jane")
	require.NoError(t, err)
	assert.True(t, own.Available)

	taken, err := f.service.CheckUsername(context.Background(), jane.ID, "john")
	require.NoError(t, err)
	assert.False(t, taken.Available)
	assert.Equal(t, account.MessageUsernameTaken, taken.Message)

	_, err = f.service.CheckUsername(context.Background(), jane.ID, " ")
	assertValidation(t, err, account.FieldUsername)
}

// # Discovery

/*
TestRecentMembers lists active accounts newest first.
*/
func TestRecentMembers(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "oldest", "Old Member", fixedNow.Add(-3*time.Hour), auth.StatusActive)
	f.seed(t, "banned", "Banned Member", fixedNow.Add(-2*time.Hour), auth.StatusBanned)
	f.seed(t, "middle", "Mid Member", fixedNow.Add(-1*time.Hour), auth.StatusActive)
	f.seed(t, "newest", "New Member", fixedNow, auth.StatusActive)

	members, err := f.service.RecentMembers(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "newest", members[0].Username)
	assert.Equal(t, "middle", members[1].Username)

	all, err := f.service.RecentMembers(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

/*
TestPublicProfile hides inactive accounts.
*/
func TestPublicProfile(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "jane", "Jane Doe", fixedNow, auth.StatusActive)
	f.seed(t, "gone", "Gone Member", fixedNow, auth.StatusSuspended)

	profile, err := f.service.PublicProfileOf(context.Background(), "jane")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", profile.FullName)
	assert.NotNil(t, profile.ProgrammingLanguages)

	for _, username := range []string{"gone", "nobody"} {
		_, err := f.service.PublicProfileOf(context.Background(), username)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeNotFound, apperr.As(err).Code)
	}
}

/*
TestSearch matches username and full name case-insensitively.
*/
func TestSearch(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "jane", "Jane Doe", fixedNow, auth.StatusActive)
	f.seed(t, "johnny", "John Roe", fixedNow, auth.StatusActive)
	f.seed(t, "hidden_doe", "Hidden Doe", fixedNow, auth.StatusBanned)

	byName, err := f.service.Search(context.Background(), "DOE", 10)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "jane", byName[0].Username)

	byUsername, err := f.service.Search(context.Background(), "john", 10)
	require.NoError(t, err)
	require.Len(t, byUsername, 1)

	short, err := f.service.Search(context.Background(), "j", 10)
	require.NoError(t, err)
	assert.Empty(t, short)
}

// # Profile Picture

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			canvas.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buffer bytes.Buffer
	require.NoError(t, png.Encode(&buffer, canvas))
	return buffer.Bytes()
}

/*
TestUploadProfilePicture normalizes, stores and replaces the picture.
*/
func TestUploadProfilePicture(t *testing.T) {
	f := newFixture(t)
	member := f.seed(t, "jane", "Jane Doe", fixedNow, auth.StatusActive)

	oldKey := "profile-pictures/old.jpg"
	oldURL, err := f.objects.Put(context.Background(), oldKey, "image/jpeg", []byte("old"))
	require.NoError(t, err)
	require.NoError(t, f.store.Mutate(member.ID, func(stored *auth.Account) error {
		stored.ProfilePicture = oldURL
		return nil
	}))

	updated, err := f.service.UploadProfilePicture(context.Background(), member.ID, pngBytes(t, 640, 480), "image/png")
	require.NoError(t, err)

	expectedKey := fmt.Sprintf("profile-pictures/%s-%d.jpg", member.ID, fixedNow.UnixMilli())
	assert.Equal(t, objectBaseURL+"/"+expectedKey, updated.ProfilePicture)
	assert.True(t, f.objects.Has(expectedKey))
	assert.False(t, f.objects.Has(oldKey))

	stored, err := f.store.FindByID(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.ProfilePicture, stored.ProfilePicture)
}

/*
TestUploadProfilePicture_Rejections covers size, type and content checks.
*/
func TestUploadProfilePicture_Rejections(t *testing.T) {
	f := newFixture(t)
	member := f.seed(t, "jane", "Jane Doe", fixedNow, auth.StatusActive)

	tests := []struct {
		name        string
		raw         []byte
		contentType string
	}{
		{"empty", nil, "image/png"},
		{"not an image type", []byte("%PDF-1.4"), "application/pdf"},
		{"corrupt image", []byte("not really a png"), "image/png"},
		{"too large", make([]byte, account.MaxPictureBytes+1), "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.UploadProfilePicture(context.Background(), member.ID, tt.raw, tt.contentType)
			assertValidation(t, err, account.FieldProfilePicture)
		})
	}
}
