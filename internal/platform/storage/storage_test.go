// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayneaws/studenthub/internal/platform/storage"
)

func TestPublicBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		cfg      storage.S3Config
		expected string
	}{
		{"explicit", storage.S3Config{PublicBaseURL: "https://cdn.hub.edu/", Bucket: "b"}, "https://cdn.hub.edu"},
		{"custom_endpoint", storage.S3Config{Endpoint: "http://minio:9000", Bucket: "pics"}, "http://minio:9000/pics"},
		{"aws", storage.S3Config{Bucket: "pics", Region: "eu-west-1"}, "https://pics.s3.eu-west-1.amazonaws.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, storage.PublicBaseURL(tt.cfg))
		})
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := storage.NewMemoryStore("http://localhost:8080/media")
	ctx := context.Background()

	url, err := store.Put(ctx, "profile-pictures/u1-1.jpg", "image/jpeg", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/profile-pictures/u1-1.jpg", url)

	key, ok := store.KeyFromURL(url)
	require.True(t, ok)
	assert.Equal(t, "profile-pictures/u1-1.jpg", key)
	assert.True(t, store.Has(key))

	require.NoError(t, store.Delete(ctx, key))
	assert.False(t, store.Has(key))

	_, ok = store.KeyFromURL("https://elsewhere.example.com/x.jpg")
	assert.False(t, ok)
}
