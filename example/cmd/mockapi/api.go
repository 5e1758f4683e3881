package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const dbCheckTimeout = 2 * time.Second

type mockConfig struct {
	port        string
	appEnv      string
	version     string
	databaseURL string
	dbUp        bool
	healthFail  bool
	delay       time.Duration
}

type mockAPI struct {
	cfg    mockConfig
	db     *sql.DB
	logger *zap.Logger
}

// newMockAPI builds the backend routes devpulse probes. db may be nil, in
// which case the db check follows cfg.dbUp.
func newMockAPI(cfg mockConfig, db *sql.DB, logger *zap.Logger) *echo.Echo {
	m := &mockAPI{cfg: cfg, db: db, logger: logger}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{http.MethodGet},
	}))
	if cfg.delay > 0 {
		e.Use(m.delay)
	}

	e.GET("/health", m.health)
	e.GET("/api", m.info)
	e.GET("/api/db-check", m.dbCheck)
	return e
}

func (m *mockAPI) delay(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		select {
		case <-time.After(m.cfg.delay):
		case <-c.Request().Context().Done():
			return nil
		}
		return next(c)
	}
}

func (m *mockAPI) health(c echo.Context) error {
	if m.cfg.healthFail {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (m *mockAPI) info(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"name":    "devpulse mock API",
		"version": m.cfg.version,
		"env":     m.cfg.appEnv,
	})
}

func (m *mockAPI) dbCheck(c echo.Context) error {
	if m.db == nil {
		if !m.cfg.dbUp {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status":  "error",
				"message": "Database not connected",
			})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "connected"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbCheckTimeout)
	defer cancel()

	var one int
	if err := m.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		m.logger.Warn("db check failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "connected",
		"message": "Database connection successful",
	})
}
