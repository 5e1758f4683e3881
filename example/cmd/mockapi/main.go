// Standalone mock backend for trying devpulse without a real API.
//
// Usage:
//
//	go run ./example/cmd/mockapi
//
// Then in another terminal:
//
//	go run ./cmd/devpulse serve
//
// Environment:
//
//	PORT              listen port (default 8080)
//	APP_ENV           value reported as "env" by GET /api (default development)
//	APP_VERSION       value reported as "version" by GET /api (default 0.0.1)
//	DATABASE_URL      Postgres DSN; when set, /api/db-check runs SELECT 1
//	MOCK_DB_UP        db check result without DATABASE_URL (default true)
//	MOCK_HEALTH_FAIL  make /health return 503
//	MOCK_DELAY        delay added to every response, e.g. 6s to trigger timeouts
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg := loadMockConfig()

	var db *sql.DB
	if cfg.databaseURL != "" {
		var err error
		db, err = openDB(cfg.databaseURL)
		if err != nil {
			logger.Warn("database connection failed, db check will report disconnected", zap.Error(err))
		} else {
			defer func() { _ = db.Close() }()
			logger.Info("database connected")
		}
	}

	e := newMockAPI(cfg, db, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("mock api starting", zap.String("port", cfg.port), zap.String("env", cfg.appEnv))
		if err := e.Start(":" + cfg.port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("mock api error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("mock api shutdown error", zap.Error(err))
		os.Exit(1)
	}
}

func loadMockConfig() mockConfig {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_VERSION", "0.0.1")
	v.SetDefault("MOCK_DB_UP", true)

	return mockConfig{
		port:        v.GetString("PORT"),
		appEnv:      v.GetString("APP_ENV"),
		version:     v.GetString("APP_VERSION"),
		databaseURL: v.GetString("DATABASE_URL"),
		dbUp:        v.GetBool("MOCK_DB_UP"),
		healthFail:  v.GetBool("MOCK_HEALTH_FAIL"),
		delay:       v.GetDuration("MOCK_DELAY"),
	}
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetConnMaxIdleTime(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
