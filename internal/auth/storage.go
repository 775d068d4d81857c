// Copyright (c) 2025 The sessionctl Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth implements persistence for authentication state.
//
// This file stores the serialized token bundle in the OS keychain via internal/keychain.
// The session core itself keeps no persistent state; the CLI wires these helpers as
// the initial-token source and the change callback.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"sessionctl/cli/internal/backend"
)

// Store is the byte-level secret storage the bundle is kept in.
// keychain.Manager implements it. LoadAuthState returns empty data when nothing is stored.
type Store interface {
	LoadAuthState() ([]byte, error)
	SaveAuthState(data []byte) error
	ClearAuthState() error
}

// Load reads the saved bundle. Missing state yields nil.
func Load(store Store) (*TokenSet, error) {
	data, err := store.LoadAuthState()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var t TokenSet
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if t.Access == "" {
		return nil, nil
	}
	return &t, nil
}

// Save writes the bundle.
func Save(store Store, t TokenSet) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return store.SaveAuthState(b)
}

// Clear removes the saved bundle.
func Clear(store Store) error {
	return store.ClearAuthState()
}

// StoredTokens is an initial-token source reading the bundle saved by Persist.
// A bundle whose access token expires within leeway is exchanged through api
// first, so the session never resumes with a dead bearer. A rejected refresh
// token resolves to no session.
func StoredTokens(store Store, api backend.API, leeway time.Duration) InitialTokens {
	return Loader(func(ctx context.Context) (*TokenSet, error) {
		t, err := Load(store)
		if err != nil || t == nil {
			return t, err
		}
		if !t.refreshable() || time.Until(t.AccessExpiresAt) > leeway {
			return t, nil
		}
		next, err := api.RefreshToken(ctx, t.Refresh)
		if err != nil {
			var apiErr *backend.APIError
			if errors.As(err, &apiErr) {
				return nil, nil
			}
			return nil, err
		}
		fresh := tokensFromBackend(next)
		return &fresh, nil
	})
}

// Persist returns a change callback mirroring the session into store: present
// tokens are saved, None clears the entry.
func Persist(store Store, log zerolog.Logger) func(State[TokenSet]) {
	return func(st State[TokenSet]) {
		t, ok := st.Get()
		if !ok {
			if err := Clear(store); err != nil {
				log.Warn().Err(err).Msg("could not clear stored tokens")
			}
			return
		}
		if err := Save(store, t); err != nil {
			log.Warn().Err(err).Msg("could not store tokens")
			return
		}
		log.Debug().Stringer("tokens", t).Msg("tokens stored")
	}
}
