// Copyright (c) 2025 The sessionctl Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"fmt"
)

// Fetcher is the generic request function the API is built on.
// It returns a transport error only when no response was obtained; a response the
// service rejected is reported through Response.OK.
type Fetcher interface {
	Fetch(ctx context.Context, method, path string, body any) (*Response, error)
}

// FetcherFunc adapts an ordinary function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, method, path string, body any) (*Response, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, method, path string, body any) (*Response, error) {
	return f(ctx, method, path, body)
}

// Response is the {ok, data} envelope produced by a Fetcher.
type Response struct {
	OK     bool
	Status int
	Data   json.RawMessage
}

// APIError is returned when the service answers with a non-ok response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int { return e.Status }

// errorFromResponse builds an APIError from the {message} payload of a failed response.
func errorFromResponse(resp *Response) *APIError {
	var payload struct {
		Message string `json:"message"`
	}
	if len(resp.Data) > 0 {
		_ = json.Unmarshal(resp.Data, &payload)
	}
	return &APIError{Status: resp.Status, Message: payload.Message}
}
