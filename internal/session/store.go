// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/samber/oops"

	"github.com/authdemo/authdemo/internal/user"
)

// Key is the storage key of the current user record.
const Key = "user"

// ErrCorrupt is returned by Store.Load when the stored record could not be
// decoded. The record has been removed by the time the error is returned.
var ErrCorrupt = errors.New("stored session is unreadable")

// Store holds the current user of one browser session.
type Store struct {
	storage Storage
	scope   string
}

// NewStore binds storage to the browser session identified by scope.
func NewStore(storage Storage, scope string) *Store {
	return &Store{storage: storage, scope: scope}
}

// Scope returns the browser session the store is bound to.
func (s *Store) Scope() string {
	return s.scope
}

// Load returns the stored user, or nil when none is stored. An empty value or
// a JSON null counts as absent.
func (s *Store) Load(ctx context.Context) (*user.User, error) {
	raw, err := s.storage.Get(ctx, s.scope, Key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("SESSION_LOAD_FAILED").With("scope", s.scope).Wrap(err)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}

	var u user.User
	decodeErr := json.Unmarshal([]byte(raw), &u)
	if decodeErr == nil && u.ID > 0 {
		return &u, nil
	}

	reason := "missing id"
	if decodeErr != nil {
		reason = decodeErr.Error()
	}
	clearErr := s.storage.Delete(ctx, s.scope, Key)
	return nil, oops.Code("SESSION_STORAGE_CORRUPT").
		With("scope", s.scope).
		With("reason", reason).
		With("cleared", clearErr == nil).
		Wrap(ErrCorrupt)
}

// Save stores u, replacing any previous record.
func (s *Store) Save(ctx context.Context, u *user.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return oops.Code("SESSION_ENCODE_FAILED").With("scope", s.scope).Wrap(err)
	}
	if err := s.storage.Set(ctx, s.scope, Key, string(data)); err != nil {
		return oops.Code("SESSION_PERSIST_FAILED").With("scope", s.scope).Wrap(err)
	}
	return nil
}

// Clear removes the stored record.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, s.scope, Key); err != nil {
		return oops.Code("SESSION_CLEAR_FAILED").With("scope", s.scope).Wrap(err)
	}
	return nil
}
