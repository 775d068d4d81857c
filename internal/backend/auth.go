// Copyright (c) 2025 The sessionctl Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Login calls POST <Login> with { email, password }.
// A rejected login is returned as *APIError carrying the server message.
func (c *Client) Login(ctx context.Context, email, password string) (*Tokens, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	return c.postTokens(ctx, c.endpoints.Login, body)
}

// RefreshToken calls POST <Refresh> with { refreshToken }.
// The service rotates the refresh token, so the returned bundle replaces the old one entirely.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*Tokens, error) {
	body := map[string]string{
		"refreshToken": refreshToken,
	}
	return c.postTokens(ctx, c.endpoints.Refresh, body)
}

// postTokens posts body to path and decodes a token bundle from an ok response.
func (c *Client) postTokens(ctx context.Context, path string, body any) (*Tokens, error) {
	resp, err := c.fetch.Fetch(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, errorFromResponse(resp)
	}

	var out Tokens
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return nil, fmt.Errorf("decode token bundle: %w", err)
	}
	if out.AccessToken == "" {
		return nil, errors.New("no accessToken in response")
	}
	return &out, nil
}
