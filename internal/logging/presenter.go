// Copyright (c) 2025 The sessionctl Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"strings"

	"github.com/pterm/pterm"

	errs "sessionctl/cli/internal/errors"
)

// Category groups session failures by what the user can do about them.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryRejected
	CategorySession
	CategoryStorage
	CategoryConfig
	CategoryServer
)

// statusCoder is satisfied by transport errors that carry an HTTP status.
type statusCoder interface {
	HTTPStatus() int
}

// Categorize maps an error to a Category.
func Categorize(err error) Category {
	switch errs.KindOf(err) {
	case errs.LoginFailed:
		return CategoryRejected
	case errs.AlreadyLoggedIn, errs.NotLoggedIn:
		return CategorySession
	case errs.StorageUnavailable:
		return CategoryStorage
	case errs.InvalidConfig:
		return CategoryConfig
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		switch code := sc.HTTPStatus(); {
		case code == 401 || code == 403:
			return CategoryRejected
		case code >= 500:
			return CategoryServer
		}
	}
	return CategoryUnknown
}

// FormatSessionError renders err as a titled, masked block with a hint.
func FormatSessionError(title string, err error) string {
	var b strings.Builder
	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(title))
	b.WriteString("\n")

	var hint string
	switch Categorize(err) {
	case CategoryRejected:
		hint = "The auth service rejected the credentials. Check your email and password."
	case CategorySession:
		hint = "Run 'sessionctl whoami' to see the current session."
	case CategoryStorage:
		hint = "The OS credential store is unavailable. Unlock it or install a supported backend."
	case CategoryConfig:
		hint = "Fix the setting in config.yaml or the SESSIONCTL_* environment."
	case CategoryServer:
		hint = "The auth service had a problem. Try again in a few minutes."
	}
	if hint != "" {
		b.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ " + hint))
		b.WriteString("\n")
	}
	b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Details: " + Mask(err.Error())))
	return b.String()
}
