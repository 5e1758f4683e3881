// Package main is the entry point for the devpulse CLI.
//
// Usage:
//
//	devpulse serve [-c devpulse.yaml]  # Start the landing page
//	devpulse check [-c devpulse.yaml]  # Run one poll cycle and print the result
//	devpulse validate -c devpulse.yaml # Validate configuration
//	devpulse version                   # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time via ldflags, e.g.
// go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "devpulse",
	Short: "Landing page and status widget for a local development stack",
	Long: `devpulse serves a landing page for a local development stack.

It polls the backend's /health, /api/db-check and /api endpoints every
10 seconds and shows API status, database status, version and environment
with live updates.

Quick start:
  1. Start your backend on http://localhost:8080
  2. Run: devpulse serve
  3. Open http://localhost:3000 in your browser

Point it elsewhere with API_URL or a config file:
  API_URL=http://api.local:9000 devpulse serve
  devpulse serve -c devpulse.yaml`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "devpulse %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(versionCmd)
}
