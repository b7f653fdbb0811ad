// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/authdemo/authdemo/internal/auth"
	"github.com/authdemo/authdemo/internal/session"
)

// Server serves the pages.
type Server struct {
	addr     string
	sessions *session.Manager
	dir      auth.Directory

	logger       *slog.Logger
	recorder     RequestRecorder
	authRecorder auth.Recorder
	cookieSecure bool
	version      string
	skip         []glob.Glob

	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets the request and handler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// WithRequestRecorder reports every request to r.
func WithRequestRecorder(r RequestRecorder) Option {
	return func(s *Server) error {
		s.recorder = r
		return nil
	}
}

// WithAuthRecorder reports login and register outcomes to r.
func WithAuthRecorder(r auth.Recorder) Option {
	return func(s *Server) error {
		s.authRecorder = r
		return nil
	}
}

// WithCookieSecure marks the session cookie Secure.
func WithCookieSecure(secure bool) Option {
	return func(s *Server) error {
		s.cookieSecure = secure
		return nil
	}
}

// WithVersion sets the version reported by /version.
func WithVersion(v string) Option {
	return func(s *Server) error {
		s.version = v
		return nil
	}
}

// WithSkipPaths replaces the glob patterns of paths served without a browser
// session.
func WithSkipPaths(patterns ...string) Option {
	return func(s *Server) error {
		globs, err := compileGlobs(patterns)
		if err != nil {
			return oops.Code("WEB_INVALID_SKIP_PATH").With("patterns", patterns).Wrap(err)
		}
		s.skip = globs
		return nil
	}
}

// NewServer creates a page server listening on addr.
func NewServer(addr string, sessions *session.Manager, dir auth.Directory, opts ...Option) (*Server, error) {
	if sessions == nil {
		return nil, oops.Code("WEB_INVALID_CONFIG").Errorf("session manager is required")
	}
	if dir == nil {
		return nil, oops.Code("WEB_INVALID_CONFIG").Errorf("directory is required")
	}

	s := &Server{
		addr:     addr,
		sessions: sessions,
		dir:      dir,
		logger:   slog.Default(),
		version:  "dev",
	}
	if err := WithSkipPaths(DefaultSkipPaths...)(s); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Handler returns the page router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.browserSession)

	r.Get("/", s.handleHome)
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Get("/register", s.handleRegisterPage)
	r.Post("/register", s.handleRegister)
	r.Get("/profile", s.handleProfile)
	r.Post("/logout", s.handleLogout)
	r.Get("/version", s.handleVersion)

	return r
}

// Start begins serving pages. The returned channel receives a serve error if
// the listener fails later and is closed on Stop.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Code("WEB_ALREADY_RUNNING").Errorf("page server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.Code("WEB_LISTEN_FAILED").With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("page server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("page server listening", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the page server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_page_server").Wrap(err)
		}
	}

	s.logger.Info("page server stopped")
	return nil
}

// Addr returns the address the server is listening on, or "" if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
