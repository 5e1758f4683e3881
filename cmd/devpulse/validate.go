package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/devpulse/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a devpulse configuration file without starting the server.

This command parses the YAML, applies environment overrides, expands
environment variables and validates all fields.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  devpulse validate -c devpulse.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	be, err := config.BuildBackend(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Port:          %d\n", cfg.Port)
	fmt.Fprintf(out, "  Poll interval: %s\n", cfg.PollInterval.Duration())
	fmt.Fprintf(out, "  Health check:  %s\n", be.HealthURL())
	fmt.Fprintf(out, "  DB check:      %s\n", be.DBCheckURL())
	fmt.Fprintf(out, "  Info:          %s\n", be.InfoURL())
	fmt.Fprintf(out, "  Timeout:       %s\n", be.Timeout())
	fmt.Fprintf(out, "  Links:         %d\n", len(cfg.Links))

	return nil
}
