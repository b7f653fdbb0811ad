// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

//go:build integration

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/authdemo/authdemo/internal/session"
	"github.com/authdemo/authdemo/internal/user"
)

func TestRedisStorage(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := session.NewRedisClient(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	storage := session.NewRedisStorage(client, time.Minute)
	require.NoError(t, storage.Ping(ctx))

	_, err = storage.Get(ctx, "browser-1", session.Key)
	assert.ErrorIs(t, err, session.ErrNotFound)

	store := session.NewStore(storage, "browser-1")
	jane := user.DefaultSeed()[1]
	require.NoError(t, store.Save(ctx, &jane))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, &jane, loaded)

	ttl, err := client.TTL(ctx, "authdemo:session:browser-1:user").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	require.NoError(t, storage.Set(ctx, "browser-2", session.Key, "{not json"))
	_, err = session.NewStore(storage, "browser-2").Load(ctx)
	assert.ErrorIs(t, err, session.ErrCorrupt)
	_, err = storage.Get(ctx, "browser-2", session.Key)
	assert.ErrorIs(t, err, session.ErrNotFound)
}
