package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sessionctl/cli/internal/config"
)

// whoamiCmd prints the identifier of the logged-in user.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current user",
	Long: `The whoami command loads the stored session, validates it by fetching the
user profile and prints who you are logged in as. A session the auth service
no longer accepts is discarded.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, _ config.Config) error {
			snap, err := settled(ctx)
			if err != nil {
				return err
			}
			u, ok := snap.User.Get()
			if !ok {
				printNotLoggedIn(cmd.OutOrStdout())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "👤 Current user: %s\n", displayName(u))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
