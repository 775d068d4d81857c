// Copyright (c) 2025 The sessionctl Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides the diagnostic logger and utilities for secure
// error presentation. It masks credentials in messages before they reach a
// terminal or a log file.
//
// Access tokens, refresh tokens and passwords must never be printed in full;
// every user-facing error path goes through Mask or FormatSessionError.
package logging

import (
	"regexp"
)

var (
	rePassword  = regexp.MustCompile(`(?i)(password=)([^\s;&]+)`)
	reToken     = regexp.MustCompile(`(?i)(token=|bearer\s+)([A-Za-z0-9._~+/=-]+)`)
	reJSONField = regexp.MustCompile(`(?i)("(?:accessToken|refreshToken|password)"\s*:\s*")([^"]*)(")`)
	reEnvSecret = regexp.MustCompile(`(SESSIONCTL_[A-Z_]*(?:TOKEN|PASSWORD)=)(\S+)`)
)

// Mask replaces sensitive values in the input string with "***".
func Mask(s string) string {
	out := s
	out = rePassword.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reJSONField.ReplaceAllString(out, "$1***$3")
	out = reEnvSecret.ReplaceAllString(out, "$1***")
	return out
}
