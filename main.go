// Package main is the entry point for the sessionctl CLI application.
// It keeps an authenticated session against the auth service.
package main

import (
	"sessionctl/cli/cmd"
)

// main is the entry point for the sessionctl CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
