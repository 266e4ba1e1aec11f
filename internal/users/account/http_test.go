// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package account_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayneaws/studenthub/internal/platform/ctxutil"
	"github.com/wayneaws/studenthub/internal/platform/sec"
	"github.com/wayneaws/studenthub/internal/users/account"
	"github.com/wayneaws/studenthub/internal/users/auth"
)

// asCaller authenticates every request as member.
func asCaller(member *auth.Account) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if member != nil {
				principal := &sec.Principal{UserID: member.ID, Username: member.Username, Role: member.Role}
				request = request.WithContext(ctxutil.WithPrincipal(request.Context(), principal))
			}
			next.ServeHTTP(writer, request)
		})
	}
}

func (f *fixture) router(caller *auth.Account) http.Handler {
	handler := account.NewHandler(f.service)

	router := chi.NewRouter()
	router.Use(asCaller(caller))
	router.Route("/auth", handler.RegisterRoutes)
	router.Mount("/upload", handler.UploadRoutes())
	return router
}

/*
TestHTTP_PublicRoutes covers the anonymous discovery endpoints.
*/
func TestHTTP_PublicRoutes(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "jane", "Jane Doe", fixedNow, auth.StatusActive)
	router := f.router(nil)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/auth/recent-users?limit=5", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"username":"jane"`)
	assert.NotContains(t, recorder.Body.String(), "jane@x.edu")

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/auth/public-profile/jane", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"fullName":"Jane Doe"`)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/auth/search?q=jane", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestHTTP_UpdateProfile covers the authenticated profile edit.
*/
func TestHTTP_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	member := f.seed(t, "jane", "Jane Doe", fixedNow, auth.StatusActive)
	router := f.router(member)

	body := `{"username":"jane_doe","grade":"Senior","programmingLanguages":["Go"],"profileSetupCompleted":true}`
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, "/auth/profile", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.Contains(t, recorder.Body.String(), account.MessageProfileUpdated)
	assert.Contains(t, recorder.Body.String(), `"username":"jane_doe"`)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/auth/check-username", strings.NewReader(`{"username":"jane_doe"}`)))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"available":true,"message":"Username is available"}}`, recorder.Body.String())
}

func multipartPicture(t *testing.T, field, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="me.png"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &body, writer.FormDataContentType()
}

/*
TestHTTP_UploadPicture covers the multipart upload endpoint.
*/
func TestHTTP_UploadPicture(t *testing.T) {
	f := newFixture(t)
	member := f.seed(t, "jane", "Jane Doe", fixedNow, auth.StatusActive)
	router := f.router(member)

	body, contentType := multipartPicture(t, account.FieldProfilePicture, "image/png", pngBytes(t, 50, 50))
	request := httptest.NewRequest(http.MethodPost, "/upload/profile-picture", body)
	request.Header.Set("Content-Type", contentType)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.Contains(t, recorder.Body.String(), account.MessagePictureUpdated)
	assert.Contains(t, recorder.Body.String(), objectBaseURL+"/profile-pictures/")

	wrongField, contentType := multipartPicture(t, "avatar", "image/png", pngBytes(t, 10, 10))
	request = httptest.NewRequest(http.MethodPost, "/upload/profile-picture", wrongField)
	request.Header.Set("Content-Type", contentType)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

/*
TestHTTP_UploadRequiresAuth rejects anonymous uploads.
*/
func TestHTTP_UploadRequiresAuth(t *testing.T) {
	f := newFixture(t)
	body, contentType := multipartPicture(t, account.FieldProfilePicture, "image/png", pngBytes(t, 10, 10))

	request := httptest.NewRequest(http.MethodPost, "/upload/profile-picture", body)
	request.Header.Set("Content-Type", contentType)

	recorder := httptest.NewRecorder()
	f.router(nil).ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
