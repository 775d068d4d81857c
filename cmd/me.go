// Copyright (c) 2025 The sessionctl Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sessionctl/cli/internal/auth"
	"sessionctl/cli/internal/config"
)

// meCmd shows the full profile and the token lifetimes of the session.
var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the current user profile and session details",
	Long: `The me command displays the profile of the logged-in user together with
the expiry of the access and refresh tokens. Token values are never printed.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, _ config.Config) error {
			snap, err := settled(ctx)
			if err != nil {
				return err
			}
			u, ok := snap.User.Get()
			t, present := snap.Tokens.Get()
			if !ok || !present {
				printNotLoggedIn(cmd.OutOrStdout())
				return nil
			}
			return pterm.DefaultTable.WithWriter(cmd.OutOrStdout()).WithData(profileRows(u, t, time.Now())).Render()
		})
	},
}

// profileRows lays out u and the lifetimes of t as a two-column table.
func profileRows(u auth.User, t auth.TokenSet, now time.Time) pterm.TableData {
	return pterm.TableData{
		{"User ID", u.UserID},
		{"Name", u.Name},
		{"Email", u.Email},
		{"Access token", describeExpiry(t.AccessExpiresAt, now)},
		{"Refresh token", describeRefresh(t, now)},
	}
}

func describeRefresh(t auth.TokenSet, now time.Time) string {
	if t.Refresh == "" {
		return "none"
	}
	return describeExpiry(t.RefreshExpiresAt, now)
}

// describeExpiry renders an expiry relative to now.
func describeExpiry(at, now time.Time) string {
	if at.IsZero() {
		return "expiry unknown"
	}
	d := at.Sub(now).Round(time.Second)
	if d <= 0 {
		return "expired " + (-d).String() + " ago"
	}
	return "expires in " + d.String() + " (" + at.Local().Format(time.DateTime) + ")"
}

func init() {
	rootCmd.AddCommand(meCmd)
}
