// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

// Package postgres provides a PostgreSQL session.Storage and its schema
// migrations.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/authdemo/authdemo/internal/session"
)

// poolIface is the subset of pgxpool.Pool used by Storage, so tests can use pgxmock.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Storage implements session.Storage on the session_values table.
type Storage struct {
	pool poolIface
}

var _ session.Storage = (*Storage)(nil)

// NewStorage creates a Storage over an open pool.
func NewStorage(pool poolIface) *Storage {
	return &Storage{pool: pool}
}

// Connect opens a pgx pool for databaseURL.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("SESSION_DB_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}
	return pool, nil
}

// Get implements session.Storage.
func (s *Storage) Get(ctx context.Context, scope, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM session_values WHERE scope = $1 AND key = $2`,
		scope, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", session.ErrNotFound
	}
	if err != nil {
		return "", wrap(err, "SESSION_STORAGE_READ", scope)
	}
	return value, nil
}

// Set implements session.Storage.
func (s *Storage) Set(ctx context.Context, scope, key, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO session_values (scope, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (scope, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, scope, key, value, time.Now().UTC())
	if err != nil {
		return wrap(err, "SESSION_STORAGE_WRITE", scope)
	}
	return nil
}

// Delete implements session.Storage.
func (s *Storage) Delete(ctx context.Context, scope, key string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM session_values WHERE scope = $1 AND key = $2`,
		scope, key,
	)
	if err != nil {
		return wrap(err, "SESSION_STORAGE_DELETE", scope)
	}
	return nil
}

// DeleteStale removes values not written since cutoff and returns how many
// rows were removed.
func (s *Storage) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM session_values WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, wrap(err, "SESSION_STORAGE_PURGE", "")
	}
	return tag.RowsAffected(), nil
}

// Ping checks connectivity.
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return oops.Code("SESSION_DB_UNAVAILABLE").Wrap(err)
	}
	return nil
}

// wrap tags err with code, or with SESSION_STORAGE_SCHEMA_MISSING when the
// table has not been created yet.
func wrap(err error, code, scope string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return oops.Code("SESSION_STORAGE_SCHEMA_MISSING").
			With("backend", "postgres").
			Hint("run `authdemo migrate` to create the session_values table").
			Wrap(err)
	}
	return oops.Code(code).
		With("backend", "postgres").
		With("scope", scope).
		Wrap(err)
}
