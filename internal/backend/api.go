// Copyright (c) 2025 The sessionctl Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides interfaces and implementations for communicating with the auth service.
// It defines the API contract for login, token refresh and profile lookup, and a generic
// request function (Fetcher) the contract is built on. The package includes both
// interface definitions and an HTTP-based Fetcher implementation.
package backend

import (
	"context"
	"time"
)

// API defines the auth service operations the session layer depends on.
// Implementations may call real HTTP endpoints or provide fakes for tests.
type API interface {
	// GetMe retrieves the profile of the user owning the current access token.
	GetMe(ctx context.Context) (*User, error)
	// Login exchanges email and password for a fresh token bundle.
	Login(ctx context.Context, email, password string) (*Tokens, error)
	// RefreshToken exchanges a refresh token for a new token bundle.
	RefreshToken(ctx context.Context, refreshToken string) (*Tokens, error)
}

// Tokens is the token bundle returned by the login and refresh endpoints.
type Tokens struct {
	AccessToken           string    `json:"accessToken"`
	AccessTokenExpiresAt  Timestamp `json:"accessTokenExpiresAt"`
	RefreshToken          string    `json:"refreshToken"`
	RefreshTokenExpiresAt Timestamp `json:"refreshTokenExpiresAt"`
}

// User is the profile returned by the current-user endpoint.
type User struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// Endpoints contains REST API endpoint paths.
type Endpoints struct {
	Me      string // e.g., "/v1/users/me"
	Login   string // e.g., "/v3/auth/login"
	Refresh string // e.g., "/v3/auth/refresh"
}

// DefaultEndpoints returns the paths served by the auth API.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Me:      "/v1/users/me",
		Login:   "/v3/auth/login",
		Refresh: "/v3/auth/refresh",
	}
}

// Timestamp is an expiry instant on the wire. The zero value means "not provided".
type Timestamp struct {
	time.Time
}
