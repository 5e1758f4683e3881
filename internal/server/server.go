package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/jpalmerr/devpulse/internal/store"
)

const (
	// sseWriteTimeout bounds a single SSE write so a stalled client cannot
	// pin the handler goroutine. Must not exceed shutdownTimeout.
	sseWriteTimeout = 5 * time.Second

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second

	defaultTitle    = "devpulse"
	defaultSubtitle = "Development Environment"

	pageTemplate = "index.html"
)

// Link is a service address listed in the landing page footer.
type Link struct {
	Name string
	URL  string
}

// Page is the static part of the landing page.
type Page struct {
	Title    string
	Subtitle string
	Links    []Link
}

// Server serves the landing page and the status widget's data:
//
//   - GET /: landing page rendered from the embedded template
//   - GET /api/status: current status record as JSON
//   - GET /api/sse: Server-Sent Events stream of the record
//   - GET /healthz: liveness of the page server itself
type Server struct {
	store      store.Store
	port       int
	page       Page
	echo       *echo.Echo
	httpServer *http.Server
	listener   net.Listener
	logger     *zap.Logger
}

// NewServer creates a [Server]. assets may be nil, in which case only the
// API routes are registered. The page template is parsed here, so a broken
// template is reported before anything listens.
func NewServer(st store.Store, port int, assets fs.FS, page Page, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if page.Title == "" {
		page.Title = defaultTitle
	}
	if page.Subtitle == "" {
		page.Subtitle = defaultSubtitle
	}

	s := &Server{
		store:  st,
		port:   port,
		page:   page,
		logger: logger,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(requestLogger(logger))

	if assets != nil {
		tmpl, err := template.ParseFS(assets, "assets/"+pageTemplate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page template: %w", err)
		}
		e.Renderer = &templateRenderer{tmpl: tmpl}
		e.GET("/", s.handleDashboard)
	}

	e.GET("/healthz", s.handleHealthz)
	e.GET("/api/status", s.handleStatus)
	e.GET("/api/sse", s.handleSSE)

	s.echo = e
	return s, nil
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the address the server listens on, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start binds the port and serves in the background.
//
// Binding happens synchronously so a port conflict is returned as an error.
// Cancelling ctx cancels every request context (ending SSE streams) and
// triggers a graceful shutdown bounded by 5 seconds.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", zap.Error(err))
		}
	}()

	s.logger.Info("landing page listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// pageView is the data handed to the page template.
type pageView struct {
	Title    string
	Subtitle string
	Links    []Link
}

func (s *Server) handleDashboard(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.Render(http.StatusOK, pageTemplate, pageView{
		Title:    s.page.Title,
		Subtitle: s.page.Subtitle,
		Links:    s.page.Links,
	})
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.JSON(http.StatusOK, s.store.Get())
}

// handleSSE streams the record: the current snapshot first, then one event
// per applied write, until the client or the server goes away.
func (s *Server) handleSSE(c echo.Context) error {
	w := c.Response()
	rc := http.NewResponseController(w)

	deadlinesSupported := true

	writeAndFlush := func(rec store.Record) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				deadlinesSupported = false
			}
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	if err := writeAndFlush(s.store.Get()); err != nil {
		s.logger.Debug("sse initial write failed", zap.Error(err))
		return nil
	}

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case rec, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeAndFlush(rec); err != nil {
				s.logger.Debug("sse write failed, closing stream", zap.Error(err))
				return nil
			}
		}
	}
}

// templateRenderer adapts html/template to echo.Renderer.
type templateRenderer struct {
	tmpl *template.Template
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}

// requestLogger logs every request through zap, skipping the SSE stream and
// liveness probes.
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/healthz" || strings.HasPrefix(path, "/api/sse")
		},
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				logger.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Debug("request completed", fields...)
			return nil
		},
	})
}
