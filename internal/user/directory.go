// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package user

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"
	"golang.org/x/sync/singleflight"
)

// Defaults for directory behaviour.
const (
	DefaultCreateDelay = time.Second
	DefaultRemoteLimit   = 8
	DefaultRemoteTimeout = 10 * time.Second
)

// Fetch sources and outcomes reported to a FetchRecorder.
const (
	SourceRemote = "remote"
	SourceMock   = "mock"

	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
	OutcomeMiss     = "miss"
)

// FetchRecorder observes directory lookups.
type FetchRecorder interface {
	RecordDirectoryFetch(source, outcome string)
}

// Remote is the public user API the directory merges with.
type Remote interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
}

// Directory is the mock user list plus the remote API.
type Directory struct {
	mu    sync.RWMutex
	users []User

	remote      Remote
	ids         IDGenerator
	createDelay time.Duration
	remoteLimit int
	remoteWait  time.Duration
	logger      *slog.Logger
	recorder    FetchRecorder

	listGroup singleflight.Group
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithSeed replaces the default seed users.
func WithSeed(users []User) DirectoryOption {
	return func(d *Directory) {
		d.users = append([]User(nil), users...)
	}
}

// WithCreateDelay sets the simulated latency of CreateUser. Zero disables it.
func WithCreateDelay(delay time.Duration) DirectoryOption {
	return func(d *Directory) { d.createDelay = delay }
}

// WithRemoteLimit caps how many remote users ListUsers appends.
func WithRemoteLimit(n int) DirectoryOption {
	return func(d *Directory) { d.remoteLimit = n }
}

// WithRemoteTimeout bounds the shared remote list fetch. Zero leaves it to
// the Remote.
func WithRemoteTimeout(d time.Duration) DirectoryOption {
	return func(dir *Directory) { dir.remoteWait = d }
}

// WithIDGenerator overrides the id source for new users.
func WithIDGenerator(ids IDGenerator) DirectoryOption {
	return func(d *Directory) { d.ids = ids }
}

// WithLogger sets the logger used to report remote failures.
func WithLogger(logger *slog.Logger) DirectoryOption {
	return func(d *Directory) { d.logger = logger }
}

// WithFetchRecorder reports every lookup to r.
func WithFetchRecorder(r FetchRecorder) DirectoryOption {
	return func(d *Directory) { d.recorder = r }
}

// NewDirectory creates a Directory seeded with DefaultSeed unless WithSeed is
// given. remote may be nil, in which case only the mock list is served.
func NewDirectory(remote Remote, opts ...DirectoryOption) *Directory {
	d := &Directory{
		users:       DefaultSeed(),
		remote:      remote,
		createDelay: DefaultCreateDelay,
		remoteLimit: DefaultRemoteLimit,
		remoteWait:  DefaultRemoteTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}

	var maxID int64
	for _, u := range d.users {
		maxID = max(maxID, u.ID)
	}
	switch ids := d.ids.(type) {
	case nil:
		d.ids = NewClockIDGenerator(maxID)
	case *ClockIDGenerator:
		ids.raise(maxID)
	}
	return d
}

// CreateUser appends a new user to the mock list after the simulated latency.
// It returns ErrDuplicateEmail when the email is already registered.
func (d *Directory) CreateUser(ctx context.Context, in CreateInput) (*User, error) {
	gender := in.Gender
	if gender == "" {
		gender = GenderMale
	}
	if !gender.Valid() {
		return nil, oops.Code("USER_INVALID_INPUT").
			With("gender", in.Gender).
			Errorf("unknown gender %q", in.Gender)
	}

	if d.createDelay > 0 {
		timer := time.NewTimer(d.createDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, oops.Code("USER_CREATE_CANCELLED").Wrap(ctx.Err())
		case <-timer.C:
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.users {
		if SameEmail(existing.Email, in.Email) {
			return nil, oops.Code("USER_DUPLICATE_EMAIL").
				With("email", in.Email).
				Wrap(ErrDuplicateEmail)
		}
	}

	created := User{
		ID:     d.ids.NextID(),
		Name:   in.Name,
		Email:  in.Email,
		Gender: gender,
		Status: StatusActive,
	}
	d.users = append(d.users, created)
	return &created, nil
}

// ListUsers returns the mock users followed by the first remote users. When
// the remote API is unavailable it returns the mock users only.
func (d *Directory) ListUsers(ctx context.Context) []User {
	local := d.MockUsers()
	if d.remote == nil {
		d.record(SourceMock, OutcomeSuccess)
		return local
	}

	// The fetch is shared, so one caller going away must not cancel it for
	// the others.
	v, err, _ := d.listGroup.Do("users", func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)
		if d.remoteWait > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, d.remoteWait)
			defer cancel()
		}
		return d.remote.ListUsers(fetchCtx)
	})
	if err != nil {
		d.logger.WarnContext(ctx, "remote directory unavailable, serving mock users",
			"error", err,
			"mock_users", len(local),
		)
		d.record(SourceRemote, OutcomeFallback)
		return local
	}

	remote, _ := v.([]User)
	n := min(d.remoteLimit, len(remote))
	if n < 0 {
		n = 0
	}
	merged := make([]User, 0, len(local)+n)
	merged = append(merged, local...)
	merged = append(merged, remote[:n]...)
	d.record(SourceRemote, OutcomeSuccess)
	return merged
}

// GetUserByID looks in the mock list first and then asks the remote API.
func (d *Directory) GetUserByID(ctx context.Context, id int64) (*User, error) {
	d.mu.RLock()
	for _, u := range d.users {
		if u.ID == id {
			found := u
			d.mu.RUnlock()
			d.record(SourceMock, OutcomeSuccess)
			return &found, nil
		}
	}
	d.mu.RUnlock()

	if d.remote != nil {
		u, err := d.remote.GetUser(ctx, id)
		if err == nil && u != nil {
			d.record(SourceRemote, OutcomeSuccess)
			return u, nil
		}
		if err != nil {
			d.logger.DebugContext(ctx, "remote user lookup failed", "id", id, "error", err)
		}
	}

	d.record(SourceRemote, OutcomeMiss)
	return nil, oops.Code("USER_NOT_FOUND").With("id", id).Wrap(ErrNotFound)
}

// MockUsers returns a copy of the mock list in insertion order.
func (d *Directory) MockUsers() []User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]User(nil), d.users...)
}

func (d *Directory) record(source, outcome string) {
	if d.recorder != nil {
		d.recorder.RecordDirectoryFetch(source, outcome)
	}
}
