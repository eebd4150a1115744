// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package supabase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	supa "github.com/nedpals/supabase-go"
)

// defaultContentType is stored for documents whose type the browser did not
// send.
const defaultContentType = "application/octet-stream"

// Storage keeps application documents in a private bucket.
type Storage struct {
	client  *supa.Client
	bucket  string
	baseURL string
}

// NewStorage returns object storage for bucket. The client must use the
// service key; the bucket has no public read policy.
func NewStorage(client *supa.Client, baseURL, bucket string) *Storage {
	return &Storage{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// guard turns a panic inside the SDK into an error.
func guard(op string, err *error) {
	if rec := recover(); rec != nil {
		*err = fmt.Errorf("storage %s: %v", op, rec)
	}
}

// Put uploads body under key with the given content type. Objects are
// never overwritten: the storage API answers 409 for an existing key.
func (s *Storage) Put(ctx context.Context, key string, body io.Reader, _ int64, contentType string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer guard("upload", &err)

	if contentType == "" {
		contentType = defaultContentType
	}
	resp := s.client.Storage.From(s.bucket).Upload(key, body, &supa.FileUploadOptions{
		ContentType: contentType,
		MimeType:    contentType,
		Upsert:      false,
	})
	if resp.Key == "" {
		msg := resp.Message
		if msg == "" {
			msg = "upload rejected"
		}
		return errors.New(msg)
	}
	return nil
}

// SignedURL asks the storage API for a link to key valid for ttl. The API
// answers with a path relative to the storage endpoint.
func (s *Storage) SignedURL(ctx context.Context, key string, ttl time.Duration) (link string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	defer guard("sign", &err)

	secs := int(ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	resp := s.client.Storage.From(s.bucket).CreateSignedUrl(key, secs)
	if resp.SignedUrl == "" {
		return "", fmt.Errorf("storage sign: no url returned for %q", key)
	}
	if strings.HasPrefix(resp.SignedUrl, "http://") || strings.HasPrefix(resp.SignedUrl, "https://") {
		return resp.SignedUrl, nil
	}
	return s.baseURL + "/storage/v1" + resp.SignedUrl, nil
}
