// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package main

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/authdemo/authdemo/internal/config"
	"github.com/authdemo/authdemo/internal/logging"
	"github.com/authdemo/authdemo/internal/observability"
	"github.com/authdemo/authdemo/internal/session"
	"github.com/authdemo/authdemo/internal/user"
	"github.com/authdemo/authdemo/internal/web"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo pages",
		Long: `Serve the Home, Login, Register and Profile pages together with the
metrics and health endpoints. Session state is kept in the configured backend.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}
}

// runServeWithDeps starts the page server with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.StorageFactory == nil {
		deps.StorageFactory = openStorage
	}
	if deps.RemoteFactory == nil {
		deps.RemoteFactory = defaultRemote
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}

	if deps.MigratorFactory == nil {
		deps.MigratorFactory = defaultMigratorFactory
	}
	if deps.AutoMigrateGetter == nil {
		deps.AutoMigrateGetter = parseAutoMigrate
	}

	logger := logging.SetDefault("authdemo", version, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
	logger.Info("starting authdemo",
		"addr", cfg.Server.Addr,
		"session_backend", cfg.Session.Backend,
		"offline", cfg.Directory.Offline,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ready atomic.Bool
	obsServer := deps.ObservabilityServerFactory(cfg.Server.MetricsAddr, ready.Load)
	metrics := obsServer.Metrics()

	if cfg.Session.Backend == config.BackendPostgres {
		if deps.AutoMigrateGetter() {
			if err := runAutoMigration(cfg.Session.DatabaseURL, deps.MigratorFactory); err != nil {
				return err
			}
			logger.Info("session schema migrations applied")
		} else {
			logger.Info("auto-migration disabled", "env", autoMigrateEnv)
		}
	}

	backend, err := deps.StorageFactory(ctx, cfg.Session)
	if err != nil {
		return oops.With("operation", "open session storage").Wrap(err)
	}
	defer backend.Close()
	logger.Info("session storage ready", "backend", cfg.Session.Backend)

	dir, err := buildDirectory(cfg.Directory, deps.RemoteFactory(cfg.Directory),
		user.WithLogger(logger),
		user.WithFetchRecorder(metrics),
	)
	if err != nil {
		return err
	}

	sessions := session.NewManager(backend.Storage,
		session.WithIdleTimeout(cfg.Session.IdleTimeout),
		session.WithManagerLogger(logger),
		session.WithRecorder(metrics),
	)
	defer sessions.Close()

	pages, err := web.NewServer(cfg.Server.Addr, sessions, dir,
		web.WithLogger(logger),
		web.WithRequestRecorder(metrics),
		web.WithAuthRecorder(metrics),
		web.WithCookieSecure(cfg.Server.CookieSecure),
		web.WithVersion(version),
	)
	if err != nil {
		return err
	}

	pageErrCh, err := pages.Start()
	if err != nil {
		return err
	}
	go monitorServerErrors(ctx, cancel, pageErrCh, "pages")
	logger.Info("page server started", "addr", pages.Addr())

	obsStarted := false
	if cfg.Server.MetricsAddr != "" {
		obsErrCh, err := obsServer.Start()
		if err != nil {
			stopServer(cfg.Server.ShutdownTimeout, "pages", pages.Stop)
			return oops.With("operation", "start observability server").Wrap(err)
		}
		obsStarted = true
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability")
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	if backend.Sweep != nil {
		go runSweeper(ctx, sweepInterval(cfg.Session.TTL), backend.Sweep)
	}

	ready.Store(true)
	cmd.Println("authdemo listening on " + pages.Addr())
	if deps.Ready != nil {
		deps.Ready(pages.Addr())
	}

	<-ctx.Done()
	ready.Store(false)
	logger.Info("shutting down...")

	stopServer(cfg.Server.ShutdownTimeout, "pages", pages.Stop)
	if obsStarted {
		stopServer(cfg.Server.ShutdownTimeout, "observability", obsServer.Stop)
	}

	logger.Info("shutdown complete")
	return nil
}

// stopServer stops a server, giving it at most timeout to drain.
func stopServer(timeout time.Duration, name string, stop func(context.Context) error) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()
	if err := stop(shutdownCtx); err != nil {
		slog.Warn("error stopping server", "server", name, "error", err)
	}
}

// monitorServerErrors monitors a server's error channel and cancels the context on error.
// It exits when either an error is received, the channel is closed, or the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
