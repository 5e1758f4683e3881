package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/devpulse"
	"github.com/jpalmerr/devpulse/config"
)

// errUnhealthy makes check exit with code 1.
var errUnhealthy = errors.New("backend is unhealthy")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one poll cycle and print the status",
	Long: `Run a single poll cycle against the configured backend and print the
resulting status record. Useful in scripts and CI before running tests
against a local stack.

Exit codes:
  0 - API is OK and the database is connected
  1 - API is in error, the database is disconnected, or the config is invalid

Example:
  devpulse check
  API_URL=http://localhost:9000 devpulse check`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringP("config", "c", "", "path to config file")
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger, err := loggerFor(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	be, err := config.BuildBackend(cfg)
	if err != nil {
		return err
	}

	p, err := devpulse.NewPoller(be, devpulse.WithPollerLogger(logger))
	if err != nil {
		return err
	}
	defer p.Stop()

	rec := pollOnce(contextOrBackground(cmd), p)
	printRecord(cmd.OutOrStdout(), be, rec)

	if rec.APIStatus != devpulse.APIOK || rec.DBStatus != devpulse.DBConnected {
		return errUnhealthy
	}
	return nil
}

func pollOnce(ctx context.Context, p *devpulse.Poller) devpulse.StatusRecord {
	p.PollOnce(ctx)
	return p.Snapshot()
}

func printRecord(w io.Writer, be devpulse.Backend, rec devpulse.StatusRecord) {
	fmt.Fprintf(w, "Backend:     %s\n", be.BaseURL())
	fmt.Fprintf(w, "API Server:  %s\n", rec.APIStatus.Label())
	fmt.Fprintf(w, "Database:    %s\n", rec.DBStatus.Label())
	fmt.Fprintf(w, "Version:     %s\n", rec.Version)
	fmt.Fprintf(w, "Environment: %s\n", rec.Environment)
}
