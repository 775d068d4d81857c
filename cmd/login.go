// Copyright (c) 2025 The sessionctl Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sessionctl/cli/internal/auth"
	"sessionctl/cli/internal/backend"
	"sessionctl/cli/internal/config"
	errs "sessionctl/cli/internal/errors"
	"sessionctl/cli/internal/httperrors"
	"sessionctl/cli/internal/terminal"
)

var (
	loginEmail         string
	loginPasswordStdin bool
)

// loginCmd exchanges email and password for a token bundle.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with email and password",
	Long: `The login command asks for your email and password and exchanges them for
an access token and a refresh token. The tokens are stored in the OS keychain
and the access token is refreshed automatically while a command is running.

If a session is already present the command reports the current user and
does not contact the auth service.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, runLogin)
	},
}

func runLogin(ctx context.Context, cfg config.Config) error {
	session := auth.MustFromContext(ctx)

	if session.Tokens().IsPresent() {
		snap, _ := settled(ctx)
		if u, ok := snap.User.Get(); ok {
			fmt.Printf("Already logged in as %s\n", displayName(u))
			return nil
		}
		// Otherwise the stored session was rejected while loading the
		// profile and has been discarded.
	}

	creds, err := promptCredentials()
	if err != nil {
		return err
	}

	stop := startInlineSpinner(os.Stderr, "Signing in", 120*time.Millisecond)
	err = session.Login(ctx, creds)
	stop()
	if err != nil {
		return loginError(err, cfg)
	}

	waitCtx, cancel := context.WithTimeout(ctx, cfg.API.Timeout)
	defer cancel()
	snap, _ := settled(waitCtx)
	if u, ok := snap.User.Get(); ok {
		fmt.Println(loginGreeting(displayName(u)))
		return nil
	}
	if !snap.Tokens.IsPresent() {
		return errs.New(errs.LoginFailed, "logged in, but the profile could not be loaded; the session was discarded")
	}
	fmt.Println("✅ Login successful!")
	return nil
}

// promptCredentials reads the email (unless given by flag) and the password.
// Prompts are cleared once answered.
func promptCredentials() (auth.Credentials, error) {
	in := bufio.NewReader(os.Stdin)
	email := loginEmail
	if email == "" {
		const prompt = "Email: "
		v, err := terminal.ReadLine(in, prompt)
		if err != nil {
			return auth.Credentials{}, err
		}
		if terminal.IsInteractive() {
			terminal.ClearPreviousLines(len(prompt) + len(v))
		}
		email = v
	}
	if email == "" {
		return auth.Credentials{}, errs.New(errs.LoginFailed, "email is required")
	}

	var password string
	var err error
	if loginPasswordStdin {
		password, err = terminal.ReadLine(in, "")
	} else {
		password, err = terminal.ReadSecret(in, "Password: ")
	}
	if err != nil {
		return auth.Credentials{}, err
	}
	if password == "" {
		return auth.Credentials{}, errs.New(errs.LoginFailed, "password is required")
	}
	return auth.Credentials{Email: email, Password: password}, nil
}

// loginError turns a failed login into the error reported to the user.
func loginError(err error, cfg config.Config) error {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, auth.ErrAlreadyLoggedIn):
		return err
	case errors.As(err, &apiErr):
		return errs.Wrap(errs.LoginFailed, "the auth service rejected the login", err)
	case httperrors.IsNetworkError(err):
		return httperrors.FormatNetworkError(err, "logging in", cfg.API.URL)
	default:
		return err
	}
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email address (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")
}
