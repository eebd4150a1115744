// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package supabase

import (
	"context"
	"strings"
	"time"

	supa "github.com/nedpals/supabase-go"

	"github.com/olegiv/ostaff-go/internal/auth"
)

// Identity signs users in with Supabase Auth's password grant.
type Identity struct {
	client *supa.Client
	now    func() time.Time
}

// NewIdentity returns a provider using client, which should carry the
// anon key.
func NewIdentity(client *supa.Client) *Identity {
	return &Identity{client: client, now: time.Now}
}

// SignIn exchanges email and password for a session. Rejected credentials
// come back as *auth.CredentialsError carrying the provider's wording; any
// other error is returned as is.
func (p *Identity) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	details, err := p.client.Auth.SignIn(ctx, supa.UserCredentials{
		Email:    strings.TrimSpace(email),
		Password: password,
	})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "invalid login credentials") {
			return nil, &auth.CredentialsError{Message: err.Error()}
		}
		return nil, err
	}
	return &auth.Session{
		Subject:      details.User.ID,
		Email:        details.User.Email,
		AccessToken:  details.AccessToken,
		RefreshToken: details.RefreshToken,
		SignedInAt:   p.now().UTC(),
	}, nil
}

// SignOut revokes the session's access token.
func (p *Identity) SignOut(ctx context.Context, sess *auth.Session) error {
	if sess == nil || sess.AccessToken == "" {
		return nil
	}
	return p.client.Auth.SignOut(ctx, sess.AccessToken)
}
