// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gobwas/glob"
	"github.com/oklog/ulid/v2"

	"github.com/authdemo/authdemo/internal/logging"
	"github.com/authdemo/authdemo/internal/session"
)

// CookieName is the browser session cookie.
const CookieName = "authdemo_session"

// DefaultSkipPaths bypass the browser session middleware.
var DefaultSkipPaths = []string{"/healthz/*", "/static/*", "/favicon.ico", "/version"}

type controllerKey struct{}

// RequestRecorder observes served requests.
type RequestRecorder interface {
	RecordHTTPRequest(method, route string, status int)
}

func withController(ctx context.Context, c *session.Controller) context.Context {
	return context.WithValue(ctx, controllerKey{}, c)
}

// ControllerFromContext returns the session controller attached by the
// browser session middleware.
func ControllerFromContext(ctx context.Context) (*session.Controller, bool) {
	c, ok := ctx.Value(controllerKey{}).(*session.Controller)
	return c, ok
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// browserSession reads or issues the session cookie and attaches the
// initialized controller to the request context.
func (s *Server) browserSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if matchAny(s.skip, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		id := ""
		if c, err := r.Cookie(CookieName); err == nil {
			if parsed, err := ulid.ParseStrict(c.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = ulid.Make().String()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.cookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := logging.WithSessionID(r.Context(), id)
		ctrl := s.sessions.Acquire(ctx, id)
		next.ServeHTTP(w, r.WithContext(withController(ctx, ctrl)))
	})
}

// requestLogger logs every request once it completes and reports it to the
// recorder under its route pattern.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
		if s.recorder != nil {
			s.recorder.RecordHTTPRequest(r.Method, route, status)
		}
	})
}
