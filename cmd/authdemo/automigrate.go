// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/samber/oops"

	"github.com/authdemo/authdemo/internal/session/postgres"
)

// autoMigrateEnv disables startup migrations of the postgres session schema when false.
const autoMigrateEnv = "AUTHDEMO_DB_AUTO_MIGRATE"

// AutoMigrator is the subset of postgres.Migrator used at startup.
type AutoMigrator interface {
	Up() error
	Close() error
}

func defaultMigratorFactory(databaseURL string) (AutoMigrator, error) {
	return postgres.NewMigrator(databaseURL)
}

// parseAutoMigrate reads autoMigrateEnv. Unset or unrecognized values enable
// migrations.
func parseAutoMigrate() bool {
	raw, ok := os.LookupEnv(autoMigrateEnv)
	if !ok || raw == "" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		slog.Warn("unrecognized auto-migrate value, defaulting to true",
			"env", autoMigrateEnv,
			"value", raw,
		)
		return true
	}
}

// runAutoMigration applies pending session schema migrations.
func runAutoMigration(databaseURL string, factory func(string) (AutoMigrator, error)) error {
	migrator, err := factory(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_INIT_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			slog.Warn("error closing migrator, connection may leak", "error", closeErr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return oops.Code("AUTO_MIGRATION_FAILED").With("operation", "apply migrations").Errorf("%v", err)
	}
	return nil
}
