package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sessionctl/cli/internal/auth"
	"sessionctl/cli/internal/config"
)

var tokenInspect bool

// tokenCmd prints the access token for use in scripts, or its claims.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print the current access token",
	Long: `The token command prints the access token of the current session so it can
be passed to other tools, for example:

  curl -H "Authorization: Bearer $(sessionctl token)" ...

An access token inside the refresh window is refreshed first. With --inspect
the decoded claims are shown instead of the token.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, cfg config.Config) error {
			if _, err := settled(ctx); err != nil {
				return err
			}
			waitCtx, cancel := context.WithTimeout(ctx, cfg.API.Timeout)
			defer cancel()
			t, ok := freshTokens(waitCtx, cfg.Refresh.Leeway)
			if !ok {
				printNotLoggedIn(cmd.ErrOrStderr())
				return nil
			}
			if !tokenInspect {
				fmt.Fprintln(cmd.OutOrStdout(), t.Access)
				return nil
			}
			claims, err := auth.InspectAccessToken(t.Access)
			if err != nil {
				pterm.Warning.Println("The access token is not a JWT; no claims to show.")
				return nil
			}
			return pterm.DefaultTable.WithWriter(cmd.OutOrStdout()).WithData(pterm.TableData{
				{"Subject", claims.Subject},
				{"Issuer", claims.Issuer},
				{"Issued", formatInstant(claims.IssuedAt)},
				{"Expires", describeExpiry(claims.ExpiresAt, time.Now())},
			}).Render()
		})
	},
}

// freshTokens returns the session tokens, first waiting for a due refresh to
// land. On timeout the tokens at hand are returned.
func freshTokens(ctx context.Context, leeway time.Duration) (auth.TokenSet, bool) {
	svc, ok := auth.FromContext(ctx)
	if !ok {
		return auth.TokenSet{}, false
	}
	for {
		changed := svc.Changed()
		t, present := svc.Tokens().Get()
		if !present {
			return t, false
		}
		due := !t.AccessExpiresAt.IsZero() && t.Refresh != "" &&
			time.Until(t.AccessExpiresAt) <= leeway
		if !due {
			return t, true
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return t, true
		}
	}
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().BoolVar(&tokenInspect, "inspect", false, "Show decoded claims instead of the raw token")
}
