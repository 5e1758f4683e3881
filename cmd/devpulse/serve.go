package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jpalmerr/devpulse"
	"github.com/jpalmerr/devpulse/config"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the landing page",
	Long: `Start the devpulse landing page.

The server will:
  - Load configuration from the optional YAML file and the environment
  - Poll the backend immediately and then every poll_interval
  - Serve the landing page on the configured port

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  devpulse serve
  devpulse serve -c devpulse.yaml
  DEVPULSE_PORT=3001 devpulse serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("config", "c", "", "path to config file")
}

func runServe(cmd *cobra.Command, args []string) error {
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

	logger.Info("config loaded",
		zap.String("file", configFile),
		zap.String("api", cfg.API.BaseURL),
		zap.Int("port", cfg.Port),
		zap.Duration("poll_interval", cfg.PollInterval.Duration()),
	)

	opts, err := config.BuildOptions(cfg)
	if err != nil {
		return fmt.Errorf("failed to build options: %w", err)
	}
	opts = append(opts, devpulse.WithLogger(logger))

	dp, err := devpulse.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create devpulse: %w", err)
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- dp.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				zap.Duration("timeout", shutdownTimeout),
				zap.String("action", "forcing exit"),
			)
			return nil
		}
	}
}

// contextOrBackground keeps commands usable when executed without a context.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
