package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sessionctl/cli/internal/auth"
	"sessionctl/cli/internal/config"
	"sessionctl/cli/internal/keychain"
)

// watchCmd keeps the session alive and shows its state until interrupted.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the session refreshed and show its state live",
	Long: `The watch command holds the session open, refreshing the access token
shortly before it expires and saving each new token bundle to the keychain.
The status view updates on every change. A logout from another terminal
ends the watched session too. Press Ctrl+C to stop.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, runWatch)
	},
}

func runWatch(ctx context.Context, cfg config.Config) error {
	svc, ok := auth.FromContext(ctx)
	if !ok {
		return fmt.Errorf("watch: no session in context")
	}

	area, err := pterm.DefaultArea.Start()
	if err != nil {
		return err
	}
	cursor.Hide()
	defer func() {
		_ = area.Stop()
		cursor.Show()
	}()

	log := zerolog.Ctx(ctx)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var refreshes int
	last := svc.Tokens()
	for {
		changed := svc.Changed()
		snap := svc.Snapshot()
		if t, ok := snap.Tokens.Get(); ok {
			if prev, had := last.Get(); had && prev.Access != t.Access {
				refreshes++
			}
		}
		last = snap.Tokens
		area.Update(renderWatch(snap, cfg.Refresh.Leeway, refreshes, time.Now()))

		select {
		case <-ctx.Done():
			return nil
		case <-changed:
		case <-ticker.C:
			followExternalLogout(ctx, svc, log)
		}
	}
}

// followExternalLogout ends the session when another sessionctl process
// removed the stored tokens, so a later refresh does not write them back.
func followExternalLogout(ctx context.Context, svc *auth.Service, log *zerolog.Logger) {
	km, err := keychain.GetManager()
	if err != nil {
		return
	}
	stored, err := auth.Load(km)
	if err != nil {
		log.Debug().Err(err).Msg("watch: could not read stored tokens")
		return
	}
	if loggedOutElsewhere(svc.Tokens(), stored) {
		log.Info().Msg("stored session was removed by another process")
		_ = svc.Logout(ctx)
	}
}

// loggedOutElsewhere reports whether a live session lost its stored copy.
func loggedOutElsewhere(session auth.State[auth.TokenSet], stored *auth.TokenSet) bool {
	return session.IsPresent() && stored == nil
}

// renderWatch formats the live status block.
func renderWatch(snap auth.Snapshot, leeway time.Duration, refreshes int, now time.Time) string {
	var b strings.Builder
	b.WriteString(pterm.NewStyle(pterm.Bold).Sprint("Session") + "\n")

	switch snap.Tokens.Status() {
	case auth.StatusUnresolved:
		b.WriteString("  state:   loading\n")
	case auth.StatusNone:
		b.WriteString("  state:   " + pterm.Red("logged out") + "\n")
		b.WriteString("  Run 'sessionctl login', then start watch again.\n")
	case auth.StatusPresent:
		t, _ := snap.Tokens.Get()
		b.WriteString("  state:   " + pterm.Green("logged in") + "\n")
		if u, ok := snap.User.Get(); ok {
			b.WriteString("  user:    " + displayName(u) + "\n")
		} else {
			b.WriteString("  user:    loading\n")
		}
		b.WriteString("  access:  " + describeExpiry(t.AccessExpiresAt, now) + "\n")
		if !t.AccessExpiresAt.IsZero() && t.Refresh != "" {
			at := t.AccessExpiresAt.Add(-leeway)
			if at.Before(now) {
				at = now
			}
			b.WriteString("  refresh: at " + at.Local().Format(time.TimeOnly) + "\n")
		} else {
			b.WriteString("  refresh: not scheduled\n")
		}
	}
	fmt.Fprintf(&b, "  refreshed %d time(s) since start\n", refreshes)
	return b.String()
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
