// Copyright (c) 2025 The sessionctl Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

// Client implements API on top of any Fetcher.
type Client struct {
	fetch     Fetcher
	endpoints Endpoints
}

// New creates a backend API implementation over the given fetcher.
// Empty endpoint paths fall back to DefaultEndpoints.
func New(fetch Fetcher, endpoints Endpoints) *Client {
	def := DefaultEndpoints()
	if endpoints.Me == "" {
		endpoints.Me = def.Me
	}
	if endpoints.Login == "" {
		endpoints.Login = def.Login
	}
	if endpoints.Refresh == "" {
		endpoints.Refresh = def.Refresh
	}
	return &Client{fetch: fetch, endpoints: endpoints}
}

var _ API = (*Client)(nil)
