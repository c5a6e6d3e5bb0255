// Package api exposes the storefront cache over HTTP: catalog and cart
// endpoints for upstream callers, plus a token-protected admin surface for
// bulk cache invalidation.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Options struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Logger          *zap.Logger
	Middlewares     []echo.MiddlewareFunc
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Address:         ":8080",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		Logger:          zap.NewNop(),
	}
}

func WithAddress(addr string) Option {
	return func(o *Options) {
		if addr != "" {
			o.Address = addr
		}
	}
}

func WithTimeouts(read, write time.Duration) Option {
	return func(o *Options) {
		if read > 0 {
			o.ReadTimeout = read
		}
		if write > 0 {
			o.WriteTimeout = write
		}
	}
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.ShutdownTimeout = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// AppendMiddlewares adds middleware after the built-in recover handler.
func AppendMiddlewares(mw ...echo.MiddlewareFunc) Option {
	return func(o *Options) {
		o.Middlewares = append(o.Middlewares, mw...)
	}
}

type Server struct {
	echo *echo.Echo
	opts Options
}

// NewServer builds the route tree and returns a server ready to Start.
func NewServer(h *Handler, opts ...Option) *Server {
	cfg := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	for _, mw := range cfg.Middlewares {
		e.Use(mw)
	}
	h.Register(e)

	return &Server{echo: e, opts: cfg}
}

// Handler exposes the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is canceled, then shuts down gracefully within the
// configured timeout.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Address,
		Handler:      s.echo,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("api listening", zap.String("address", s.opts.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
