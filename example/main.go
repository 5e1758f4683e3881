package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jpalmerr/devpulse"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	// start mock backend (see mock_server.go)
	go StartMockAPI(":9999", logger.Named("mock"))
	time.Sleep(100 * time.Millisecond)

	be, err := devpulse.NewBackend("http://localhost:9999",
		devpulse.WithTimeout(2*time.Second),
	)
	if err != nil {
		logger.Error("failed to create backend", zap.Error(err))
		os.Exit(1)
	}

	dp, err := devpulse.New(
		devpulse.WithBackend(be),
		devpulse.WithPollingInterval(5*time.Second),
		devpulse.WithPort(3000),
		devpulse.WithTitle("devpulse demo"),
		devpulse.WithLinks(
			devpulse.Link{Name: "Frontend", URL: "http://localhost:3000"},
			devpulse.Link{Name: "Backend", URL: be.BaseURL()},
		),
		devpulse.WithLogger(logger),
		devpulse.WithStatusCallback(func(r devpulse.StatusRecord) {
			if r.DBStatus == devpulse.DBDisconnected {
				logger.Warn("database is down")
			}
		}),
	)
	if err != nil {
		logger.Error("failed to create devpulse", zap.Error(err))
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  devpulse demo")
	fmt.Println()
	fmt.Println("  Open http://localhost:3000 in your browser")
	fmt.Println("  The mock database goes up and down every 20-60 seconds")
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := dp.Start(ctx); err != nil {
		logger.Error("devpulse error", zap.Error(err))
		os.Exit(1)
	}
}
