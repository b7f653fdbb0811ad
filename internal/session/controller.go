// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package session

import (
	"context"
	"errors"
	"sync"

	"github.com/samber/oops"

	"github.com/authdemo/authdemo/internal/user"
)

// ErrInvalidUser is returned when Login or Register is called without a user.
var ErrInvalidUser = errors.New("session requires a user")

// State is a snapshot of a Controller.
type State struct {
	User          *user.User
	Loading       bool
	Initialized   bool
	Authenticated bool
}

// Controller is the session state of one browser session. The in-memory user
// is updated before the Store is written, and a failed write restores the
// previous user.
type Controller struct {
	mu          sync.Mutex
	store       *Store
	user        *user.User
	loading     bool
	initialized bool
}

// NewController creates a controller with no user. It reports Loading until
// Init has run.
func NewController(store *Store) *Controller {
	return &Controller{store: store, loading: true}
}

// Init reads the persisted user. A corrupt record has already been cleared by
// the Store; its error is returned for the caller to log and the controller
// is initialized. Any other read failure leaves the controller uninitialized
// so the next Init reads again. Once initialized, later calls do nothing.
func (c *Controller) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}

	stored, err := c.store.Load(ctx)
	c.loading = false
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	c.initialized = true
	if stored != nil && c.user == nil {
		c.user = stored
	}
	return err
}

// Login makes u the current user and persists it.
func (c *Controller) Login(ctx context.Context, u *user.User) error {
	return c.establish(ctx, "login", u)
}

// Register makes a freshly created u the current user and persists it.
// Registration establishes a session exactly like Login does.
func (c *Controller) Register(ctx context.Context, u *user.User) error {
	return c.establish(ctx, "register", u)
}

func (c *Controller) establish(ctx context.Context, op string, u *user.User) error {
	if u == nil {
		return oops.Code("SESSION_INVALID_USER").With("operation", op).Wrap(ErrInvalidUser)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.user
	current := *u
	c.user = &current

	if err := c.store.Save(ctx, &current); err != nil {
		c.user = previous
		return err
	}
	return nil
}

// Logout clears the current user and the persisted record. The in-memory
// user is cleared even if the storage delete fails.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.user = nil
	return c.store.Clear(ctx)
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	var u *user.User
	if c.user != nil {
		cp := *c.user
		u = &cp
	}
	return State{
		User:          u,
		Loading:       c.loading,
		Initialized:   c.initialized,
		Authenticated: c.user != nil,
	}
}

// IsAuthenticated reports whether a user is logged in.
func (c *Controller) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user != nil
}

// Scope returns the browser session the controller belongs to.
func (c *Controller) Scope() string {
	return c.store.Scope()
}

// Close drops the in-memory state. The persisted record is left alone so a
// new controller for the same browser session picks it up again.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
	c.loading = false
	c.initialized = false
}
