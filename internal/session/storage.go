// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package session

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Storage.Get when no value is stored.
var ErrNotFound = errors.New("session value not found")

// Storage is browser-session scoped key/value storage.
type Storage interface {
	// Get returns the value stored under key in scope, or ErrNotFound.
	Get(ctx context.Context, scope, key string) (string, error)

	// Set stores value under key in scope, replacing any previous value.
	Set(ctx context.Context, scope, key, value string) error

	// Delete removes key from scope. Deleting a missing key is not an error.
	Delete(ctx context.Context, scope, key string) error
}

// MemoryStorage keeps values in process memory. Values are lost on restart.
type MemoryStorage struct {
	mu     sync.RWMutex
	scopes map[string]map[string]string
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{scopes: make(map[string]map[string]string)}
}

// Get implements Storage.
func (s *MemoryStorage) Get(_ context.Context, scope, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.scopes[scope][key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements Storage.
func (s *MemoryStorage) Set(_ context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.scopes[scope]
	if !ok {
		values = make(map[string]string)
		s.scopes[scope] = values
	}
	values[key] = value
	return nil
}

// Delete implements Storage.
func (s *MemoryStorage) Delete(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.scopes[scope]
	if !ok {
		return nil
	}
	delete(values, key)
	if len(values) == 0 {
		delete(s.scopes, scope)
	}
	return nil
}
