// Copyright (c) 2025 The sessionctl Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build !darwin

package keychain

import "errors"

// securityBackend is unused outside macOS; the keyring library covers
// Windows Credential Manager and the Linux Secret Service.
type securityBackend struct{}

// newSecurityBackend returns an error on non-macOS platforms.
func newSecurityBackend() (*securityBackend, error) {
	return nil, errNoSecurityBackend
}

var errNoSecurityBackend = errors.New("native security backend requires macOS")

func (s *securityBackend) Set(string, string) error { return errNoSecurityBackend }

func (s *securityBackend) Get(string) (string, error) { return "", errNoSecurityBackend }

func (s *securityBackend) Delete(string) error { return errNoSecurityBackend }
