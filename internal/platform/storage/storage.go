// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

/*
Package storage persists user-uploaded objects (profile pictures).

Architecture:

  - ObjectStore: the contract domain services depend on.
  - S3Store: AWS S3 or any S3-compatible endpoint (MinIO, R2).
  - MemoryStore: process-local store for development and tests.

Objects are addressed by key; the public URL is derived from the key so the
previous object can be located again from a stored URL.
*/
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore stores and removes public objects.
type ObjectStore interface {

	/*
		Put uploads body under key and returns its public URL.

		Parameters:
		  - context: context.Context
		  - key: string
		  - contentType: string
		  - body: []byte

		Returns:
		  - string: Public URL of the object
		  - error: Upload failures
	*/
	Put(context context.Context, key, contentType string, body []byte) (string, error)

	/*
		Delete removes the object under key. Missing objects are not an error.

		Parameters:
		  - context: context.Context
		  - key: string

		Returns:
		  - error: Deletion failures
	*/
	Delete(context context.Context, key string) error

	/*
		KeyFromURL recovers the key of an object previously returned by Put.

		Returns:
		  - string: The object key
		  - bool: false when the URL does not belong to this store
	*/
	KeyFromURL(url string) (string, bool)
}

// # S3 Implementation

// S3Config holds bucket and credential settings.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

// S3Store implements [ObjectStore] on top of aws-sdk-go-v2.
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Store builds the S3 client. Static credentials and a custom endpoint
// are used when configured; otherwise the default AWS credential chain applies.
func NewS3Store(context context.Context, cfg S3Config) (*S3Store, error) {
	options := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}

	if cfg.AccessKeyID != "" {
		options = append(options, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(context, options...)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: PublicBaseURL(cfg),
	}, nil
}

// PublicBaseURL returns the URL prefix objects are served from.
func PublicBaseURL(cfg S3Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// Put implements [ObjectStore].
func (store *S3Store) Put(context context.Context, key, contentType string, body []byte) (string, error) {
	_, err := store.client.PutObject(context, &s3.PutObjectInput{
		Bucket:      aws.String(store.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage_s3_put_failed: %w", err)
	}

	return store.baseURL + "/" + key, nil
}

// Delete implements [ObjectStore].
func (store *S3Store) Delete(context context.Context, key string) error {
	_, err := store.client.DeleteObject(context, &s3.DeleteObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage_s3_delete_failed: %w", err)
	}
	return nil
}

// KeyFromURL implements [ObjectStore].
func (store *S3Store) KeyFromURL(url string) (string, bool) {
	return keyFromURL(store.baseURL, url)
}

func keyFromURL(baseURL, url string) (string, bool) {
	prefix := baseURL + "/"
	if !strings.HasPrefix(url, prefix) || len(url) == len(prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// # In-Memory Implementation

// MemoryStore keeps objects in a map. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

// NewMemoryStore creates a [MemoryStore] serving URLs under baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte), baseURL: strings.TrimRight(baseURL, "/")}
}

// Put implements [ObjectStore].
func (store *MemoryStore) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.objects[key] = bytes.Clone(body)
	return store.baseURL + "/" + key, nil
}

// Delete implements [ObjectStore].
func (store *MemoryStore) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.objects, key)
	return nil
}

// KeyFromURL implements [ObjectStore].
func (store *MemoryStore) KeyFromURL(url string) (string, bool) {
	return keyFromURL(store.baseURL, url)
}

// Has reports whether key is stored.
func (store *MemoryStore) Has(key string) bool {
	store.mu.RLock()
	defer store.mu.RUnlock()

	_, found := store.objects[key]
	return found
}
