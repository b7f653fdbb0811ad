// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package session_test

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/authdemo/authdemo/internal/session"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Get(ctx context.Context, scope, key string) (string, error) {
	args := m.Called(ctx, scope, key)
	return args.String(0), args.Error(1)
}

func (m *mockStorage) Set(ctx context.Context, scope, key, value string) error {
	return m.Called(ctx, scope, key, value).Error(0)
}

func (m *mockStorage) Delete(ctx context.Context, scope, key string) error {
	return m.Called(ctx, scope, key).Error(0)
}

// flakyStorage fails the first failures reads and then defers to Storage.
type flakyStorage struct {
	session.Storage

	mu       sync.Mutex
	failures int
}

func (f *flakyStorage) Get(ctx context.Context, scope, key string) (string, error) {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return "", errors.New("connection reset")
	}
	f.mu.Unlock()
	return f.Storage.Get(ctx, scope, key)
}

type recorder struct {
	mu         sync.Mutex
	recoveries []string
	active     int
}

func (r *recorder) RecordSessionRecovery(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recoveries = append(r.recoveries, reason)
}

func (r *recorder) SetActiveSessions(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = n
}
