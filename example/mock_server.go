package main

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// flappingDB reports the database as up or down, flipping every 20-60 seconds.
type flappingDB struct {
	mu           sync.Mutex
	up           bool
	nextChangeAt time.Time
	logger       *zap.Logger
}

func newFlappingDB(logger *zap.Logger) *flappingDB {
	return &flappingDB{
		up:           true,
		nextChangeAt: time.Now().Add(nextFlip()),
		logger:       logger,
	}
}

func nextFlip() time.Duration {
	return time.Duration(20+rand.Intn(41)) * time.Second
}

func (f *flappingDB) isUp() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if time.Now().After(f.nextChangeAt) {
		f.up = !f.up
		f.nextChangeAt = time.Now().Add(nextFlip())
		f.logger.Info("mock database flipped", zap.Bool("up", f.up))
	}
	return f.up
}

// StartMockAPI serves /health, /api and /api/db-check on addr. The db check
// flaps so the landing page has something to show. Call it in a goroutine.
func StartMockAPI(addr string, logger *zap.Logger) {
	db := newFlappingDB(logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/health", func(c echo.Context) error {
		// small latency variance
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
	e.GET("/api", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"name":    "demo API",
			"version": "0.0.1",
			"env":     "demo",
		})
	})
	e.GET("/api/db-check", func(c echo.Context) error {
		if !db.isUp() {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "error"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "connected"})
	})

	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Error("mock api error", zap.Error(err))
	}
}
