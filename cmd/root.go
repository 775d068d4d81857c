// Copyright (c) 2025 The sessionctl Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for sessionctl.
// It implements subcommands to log in, log out, inspect and watch the session
// using the Cobra CLI framework. Every session-aware command runs inside a
// context carrying a started auth.Service, so tokens are loaded from the OS
// keychain, refreshed before they expire and written back on every change.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sessionctl/cli/internal/logging"
)

var (
	showVersion bool
	verbose     bool
	configPath  string
	apiURL      string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sessionctl",
	Short: "Manage an authenticated session against the auth service",
	Long: `sessionctl keeps a login session for the auth service. It stores tokens in the
OS keychain, loads the current user profile and refreshes the access token
shortly before it expires.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion(cmd.OutOrStdout())
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application. Interrupts cancel the command context so
// long-running commands such as watch shut down cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, logging.FormatSessionError("sessionctl failed", err))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr and the state log file")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (default: XDG config dir)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Override the auth service base URL")
}
