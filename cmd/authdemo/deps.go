// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package main

import (
	"context"

	"github.com/authdemo/authdemo/internal/config"
	"github.com/authdemo/authdemo/internal/observability"
	"github.com/authdemo/authdemo/internal/session"
	"github.com/authdemo/authdemo/internal/user"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// StorageFactory opens the session storage backend.
	// Default: openStorage
	StorageFactory func(ctx context.Context, cfg config.SessionConfig) (*Backend, error)

	// RemoteFactory creates the remote user API client. Returning nil serves
	// mock users only.
	// Default: user.NewHTTPRemote unless the directory is offline
	RemoteFactory func(cfg config.DirectoryConfig) user.Remote

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// MigratorFactory creates the migrator applied before a postgres backend opens.
	// Default: postgres.NewMigrator
	MigratorFactory func(databaseURL string) (AutoMigrator, error)

	// AutoMigrateGetter reports whether startup migrations run.
	// Default: parseAutoMigrate
	AutoMigrateGetter func() bool

	// Ready is called once the page server is listening. Tests use it to
	// learn the bound address.
	Ready func(pageAddr string)
}

// Backend is an opened session storage with its lifecycle hooks.
type Backend struct {
	Storage session.Storage
	// Sweep removes stored sessions untouched since the cutoff age. Nil when
	// the backend expires entries itself.
	Sweep func(ctx context.Context) (int64, error)
	Close func()
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}
