// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package user_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/authdemo/authdemo/internal/user"
	"github.com/authdemo/authdemo/pkg/errutil"
)

type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) ListUsers(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]user.User)
	return users, args.Error(1)
}

func (m *mockRemote) GetUser(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

type fetchCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *fetchCounter) RecordDirectoryFetch(source, outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[source+"/"+outcome]++
}

func remoteUsers(n int) []user.User {
	users := make([]user.User, n)
	for i := range users {
		users[i] = user.User{
			ID:     int64(1000 + i),
			Name:   fmt.Sprintf("Remote %d", i),
			Email:  fmt.Sprintf("remote%d@example.org", i),
			Gender: user.GenderFemale,
			Status: user.StatusInactive,
		}
	}
	return users
}

func newDirectory(remote user.Remote, opts ...user.DirectoryOption) *user.Directory {
	opts = append([]user.DirectoryOption{user.WithCreateDelay(0)}, opts...)
	return user.NewDirectory(remote, opts...)
}

func TestNewDirectory_DefaultSeed(t *testing.T) {
	dir := newDirectory(nil)

	users := dir.MockUsers()
	require.Len(t, users, 2)
	assert.Equal(t, int64(1), users[0].ID)
	assert.Equal(t, "John Doe", users[0].Name)
	assert.Equal(t, user.GenderMale, users[0].Gender)
	assert.Equal(t, int64(2), users[1].ID)
	assert.Equal(t, "Jane Smith", users[1].Name)
	assert.Equal(t, user.GenderFemale, users[1].Gender)
	for _, u := range users {
		assert.Equal(t, user.StatusActive, u.Status)
	}
}

func TestNewDirectory_InstancesAreIndependent(t *testing.T) {
	ctx := context.Background()
	a := newDirectory(nil)
	b := newDirectory(nil)

	_, err := a.CreateUser(ctx, user.CreateInput{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)

	assert.Len(t, a.MockUsers(), 3)
	assert.Len(t, b.MockUsers(), 2)
}

func TestDirectory_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id, defaults and appends", func(t *testing.T) {
		dir := newDirectory(nil)

		created, err := dir.CreateUser(ctx, user.CreateInput{Name: "Ann", Email: "ann@example.com"})
		require.NoError(t, err)

		assert.Greater(t, created.ID, int64(2))
		assert.Equal(t, "Ann", created.Name)
		assert.Equal(t, user.GenderMale, created.Gender)
		assert.Equal(t, user.StatusActive, created.Status)

		users := dir.MockUsers()
		require.Len(t, users, 3)
		assert.Equal(t, *created, users[2])
	})

	t.Run("keeps provided gender", func(t *testing.T) {
		dir := newDirectory(nil)

		created, err := dir.CreateUser(ctx, user.CreateInput{Name: "Eve", Email: "eve@example.com", Gender: user.GenderFemale})
		require.NoError(t, err)
		assert.Equal(t, user.GenderFemale, created.Gender)
	})

	t.Run("rejects unknown gender", func(t *testing.T) {
		dir := newDirectory(nil)

		_, err := dir.CreateUser(ctx, user.CreateInput{Name: "X", Email: "x@example.com", Gender: "robot"})
		errutil.AssertErrorCode(t, err, "USER_INVALID_INPUT")
		assert.Len(t, dir.MockUsers(), 2)
	})

	t.Run("duplicate email is case-insensitive and leaves list unchanged", func(t *testing.T) {
		dir := newDirectory(nil)

		_, err := dir.CreateUser(ctx, user.CreateInput{Name: "Johnny", Email: "JOHN.DOE@Example.com"})
		require.Error(t, err)
		assert.ErrorIs(t, err, user.ErrDuplicateEmail)
		errutil.AssertErrorCode(t, err, "USER_DUPLICATE_EMAIL")
		assert.Len(t, dir.MockUsers(), 2)
	})

	t.Run("rapid registrations get distinct ids", func(t *testing.T) {
		dir := newDirectory(nil)

		seen := map[int64]bool{}
		for i := range 50 {
			created, err := dir.CreateUser(ctx, user.CreateInput{
				Name:  "User",
				Email: fmt.Sprintf("user%d@example.com", i),
			})
			require.NoError(t, err)
			assert.False(t, seen[created.ID], "id %d reused", created.ID)
			seen[created.ID] = true
		}
	})

	t.Run("returned user is a copy", func(t *testing.T) {
		dir := newDirectory(nil)

		created, err := dir.CreateUser(ctx, user.CreateInput{Name: "Ann", Email: "ann@example.com"})
		require.NoError(t, err)
		created.Name = "mutated"

		assert.Equal(t, "Ann", dir.MockUsers()[2].Name)
	})
}

func TestDirectory_CreateUser_Latency(t *testing.T) {
	t.Run("waits for the configured delay", func(t *testing.T) {
		dir := user.NewDirectory(nil, user.WithCreateDelay(20*time.Millisecond))

		start := time.Now()
		_, err := dir.CreateUser(context.Background(), user.CreateInput{Name: "Ann", Email: "ann@example.com"})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("cancelled context aborts without appending", func(t *testing.T) {
		dir := user.NewDirectory(nil, user.WithCreateDelay(time.Hour))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := dir.CreateUser(ctx, user.CreateInput{Name: "Ann", Email: "ann@example.com"})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		errutil.AssertErrorCode(t, err, "USER_CREATE_CANCELLED")
		assert.Len(t, dir.MockUsers(), 2)
	})
}

func TestDirectory_ListUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("merges mock users before first eight remote users", func(t *testing.T) {
		remote := &mockRemote{}
		remote.On("ListUsers", mock.Anything).Return(remoteUsers(20), nil)
		counter := &fetchCounter{}
		dir := newDirectory(remote, user.WithFetchRecorder(counter))

		users := dir.ListUsers(ctx)

		require.Len(t, users, 10)
		assert.Equal(t, int64(1), users[0].ID)
		assert.Equal(t, int64(2), users[1].ID)
		assert.Equal(t, int64(1000), users[2].ID)
		assert.Equal(t, int64(1007), users[9].ID)
		assert.Equal(t, 1, counter.counts["remote/success"])
		remote.AssertExpectations(t)
	})

	t.Run("fewer remote users than the limit", func(t *testing.T) {
		remote := &mockRemote{}
		remote.On("ListUsers", mock.Anything).Return(remoteUsers(3), nil)
		dir := newDirectory(remote)

		assert.Len(t, dir.ListUsers(ctx), 5)
	})

	t.Run("custom remote limit", func(t *testing.T) {
		remote := &mockRemote{}
		remote.On("ListUsers", mock.Anything).Return(remoteUsers(20), nil)
		dir := newDirectory(remote, user.WithRemoteLimit(1))

		assert.Len(t, dir.ListUsers(ctx), 3)
	})

	t.Run("remote failure falls back to mock users", func(t *testing.T) {
		remote := &mockRemote{}
		remote.On("ListUsers", mock.Anything).Return(nil, errors.New("connection refused"))
		counter := &fetchCounter{}
		dir := newDirectory(remote, user.WithFetchRecorder(counter))

		users := dir.ListUsers(ctx)

		assert.Equal(t, dir.MockUsers(), users)
		assert.Equal(t, 1, counter.counts["remote/fallback"])
	})

	t.Run("shared fetch outlives a cancelled caller", func(t *testing.T) {
		remote := &mockRemote{}
		remote.On("ListUsers", mock.MatchedBy(func(fetchCtx context.Context) bool {
			_, bounded := fetchCtx.Deadline()
			return fetchCtx.Err() == nil && bounded
		})).Return(remoteUsers(3), nil)
		dir := newDirectory(remote, user.WithRemoteTimeout(time.Minute))

		gone, cancel := context.WithCancel(ctx)
		cancel()

		assert.Len(t, dir.ListUsers(gone), 5)
		remote.AssertExpectations(t)
	})

	t.Run("no remote serves mock users", func(t *testing.T) {
		dir := newDirectory(nil)
		assert.Len(t, dir.ListUsers(ctx), 2)
	})

	t.Run("created user appears exactly once", func(t *testing.T) {
		remote := &mockRemote{}
		remote.On("ListUsers", mock.Anything).Return(remoteUsers(8), nil)
		dir := newDirectory(remote)

		created, err := dir.CreateUser(ctx, user.CreateInput{Name: "Ann", Email: "ann@example.com"})
		require.NoError(t, err)

		count := 0
		for _, u := range dir.ListUsers(ctx) {
			if u.ID == created.ID {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})
}

func TestDirectory_GetUserByID(t *testing.T) {
	ctx := context.Background()

	t.Run("mock user found without remote call", func(t *testing.T) {
		remote := &mockRemote{}
		dir := newDirectory(remote)

		u, err := dir.GetUserByID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "Jane Smith", u.Name)
		remote.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("falls through to remote", func(t *testing.T) {
		remote := &mockRemote{}
		want := &user.User{ID: 4242, Name: "Remote", Email: "r@example.org", Gender: user.GenderMale, Status: user.StatusActive}
		remote.On("GetUser", mock.Anything, int64(4242)).Return(want, nil)
		dir := newDirectory(remote)

		u, err := dir.GetUserByID(ctx, 4242)
		require.NoError(t, err)
		assert.Equal(t, want, u)
	})

	t.Run("remote failure is not found", func(t *testing.T) {
		remote := &mockRemote{}
		remote.On("GetUser", mock.Anything, int64(99)).Return(nil, errors.New("timeout"))
		dir := newDirectory(remote)

		_, err := dir.GetUserByID(ctx, 99)
		require.Error(t, err)
		assert.ErrorIs(t, err, user.ErrNotFound)
		errutil.AssertErrorCode(t, err, "USER_NOT_FOUND")
		errutil.AssertErrorContext(t, err, "id", int64(99))
	})

	t.Run("no remote is not found", func(t *testing.T) {
		dir := newDirectory(nil)

		_, err := dir.GetUserByID(ctx, 99)
		assert.ErrorIs(t, err, user.ErrNotFound)
	})
}

func TestDirectory_ConcurrentCreates(t *testing.T) {
	dir := newDirectory(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = dir.CreateUser(ctx, user.CreateInput{Name: "U", Email: fmt.Sprintf("u%d@example.com", i)})
		}()
	}
	wg.Wait()

	users := dir.MockUsers()
	require.Len(t, users, 22)
	ids := map[int64]bool{}
	for _, u := range users {
		ids[u.ID] = true
	}
	assert.Len(t, ids, 22)
}
