// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package objectstore keeps uploaded application documents on the local
// filesystem and hands out short-lived signed download URLs for them.
package objectstore

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ostaff-go/internal/util"
)

// ErrExists is returned by Put when an object already exists under the key.
var ErrExists = errors.New("object already exists")

// ErrInvalidKey is returned for keys that are empty or escape the root.
var ErrInvalidKey = errors.New("invalid object key")

// DefaultPrefix is the URL path the download handler is mounted on.
const DefaultPrefix = "/files"

// Local is a filesystem object store rooted at a private directory.
type Local struct {
	root   string
	secret []byte
	prefix string
	now    func() time.Time
}

// NewLocal creates the root directory if needed. secret keys the URL
// signatures and must not be empty.
func NewLocal(root string, secret []byte) (*Local, error) {
	if len(secret) == 0 {
		return nil, errors.New("objectstore: empty signing secret")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	return &Local{
		root:   root,
		secret: secret,
		prefix: DefaultPrefix,
		now:    time.Now,
	}, nil
}

func (s *Local) resolve(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") ||
		path.Clean(key) != key || strings.HasPrefix(key, "../") || key == ".." {
		return "", ErrInvalidKey
	}
	full, err := util.SafeJoinPath(s.root, filepath.FromSlash(key))
	if err != nil {
		return "", ErrInvalidKey
	}
	return full, nil
}

// Put writes body under key. It never overwrites: an existing object yields
// ErrExists and is left untouched.
func (s *Local) Put(ctx context.Context, key string, body io.Reader, _ int64, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("creating object dir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if errors.Is(err, fs.ErrExist) {
		return ErrExists
	}
	if err != nil {
		return fmt.Errorf("creating object: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return fmt.Errorf("writing object: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return fmt.Errorf("closing object: %w", err)
	}
	return nil
}

// SignedURL returns a relative download URL for key valid for ttl. Every
// call carries a fresh nonce, so repeated calls yield different URLs.
func (s *Local) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); err != nil {
		return "", fmt.Errorf("object %q: %w", key, err)
	}

	exp := strconv.FormatInt(s.now().Add(ttl).Unix(), 10)
	nonce := uuid.NewString()
	q := url.Values{}
	q.Set("exp", exp)
	q.Set("nonce", nonce)
	q.Set("sig", s.sign(key, exp, nonce))
	return s.prefix + "/" + (&url.URL{Path: key}).EscapedPath() + "?" + q.Encode(), nil
}

func (s *Local) sign(key, exp, nonce string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = io.WriteString(mac, key+"\n"+exp+"\n"+nonce)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Handler serves objects whose URL signature verifies and has not expired.
// It expects the full request path including the prefix.
func (s *Local) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, s.prefix+"/")
		q := r.URL.Query()
		exp, nonce, sig := q.Get("exp"), q.Get("nonce"), q.Get("sig")

		expUnix, err := strconv.ParseInt(exp, 10, 64)
		if err != nil || nonce == "" || sig == "" {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if !hmac.Equal([]byte(sig), []byte(s.sign(key, exp, nonce))) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if !s.now().Before(time.Unix(expUnix, 0)) {
			http.Error(w, "Link expired", http.StatusGone)
			return
		}

		full, err := s.resolve(key)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		f, err := os.Open(full)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer func() { _ = f.Close() }()
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Cache-Control", "private, no-store")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
		w.Header().Set("X-Content-Type-Options", "nosniff")
		http.ServeContent(w, r, path.Base(key), info.ModTime(), f)
	})
}
