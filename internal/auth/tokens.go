// Copyright (c) 2025 The sessionctl Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"fmt"
	"time"

	"sessionctl/cli/internal/backend"
)

// TokenSet is an immutable credential bundle. It is replaced wholesale on every
// login or refresh and never mutated in place.
// A zero AccessExpiresAt means the expiry is unknown.
type TokenSet struct {
	Access           string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessTokenExpiresAt,omitzero"`
	Refresh          string    `json:"refreshToken,omitempty"`
	RefreshExpiresAt time.Time `json:"refreshTokenExpiresAt,omitzero"`
}

// String never includes the token values.
func (t TokenSet) String() string {
	exp := "unknown"
	if !t.AccessExpiresAt.IsZero() {
		exp = t.AccessExpiresAt.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("tokens(access=***, expires=%s, refresh=%t)", exp, t.Refresh != "")
}

// refreshable reports whether the bundle carries what a scheduled refresh needs.
func (t TokenSet) refreshable() bool {
	return !t.AccessExpiresAt.IsZero() && t.Refresh != ""
}

// User is the profile of the logged-in user.
type User struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Credentials are the inputs to Login.
type Credentials struct {
	Email    string
	Password string
}

func tokensFromBackend(t *backend.Tokens) TokenSet {
	return TokenSet{
		Access:           t.AccessToken,
		AccessExpiresAt:  t.AccessTokenExpiresAt.Time,
		Refresh:          t.RefreshToken,
		RefreshExpiresAt: t.RefreshTokenExpiresAt.Time,
	}
}

func userFromBackend(u *backend.User) User {
	return User{
		UserID: u.UserID,
		Name:   u.DisplayName,
		Email:  u.Email,
	}
}
