// Copyright (c) 2025 The sessionctl Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sessionctl/cli/internal/auth"
	"sessionctl/cli/internal/config"
)

// logoutCmd clears the local session.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved session from this machine",
	Long: `The logout command discards the access and refresh tokens and removes them
from the OS keychain. The auth service is not contacted.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, _ config.Config) error {
			err := auth.MustFromContext(ctx).Logout(ctx)
			if errors.Is(err, auth.ErrNotLoggedIn) {
				printNotLoggedIn(cmd.OutOrStdout())
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✅ Logged out. Tokens have been removed from the keychain.")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
