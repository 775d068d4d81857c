// Copyright (c) 2025 The sessionctl Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// GetMe calls GET <Me>. The bearer token is attached by the Fetcher.
// Returns *APIError when the service rejects the token.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	resp, err := c.fetch.Fetch(ctx, http.MethodGet, c.endpoints.Me, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, errorFromResponse(resp)
	}

	var u User
	if err := json.Unmarshal(resp.Data, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}
