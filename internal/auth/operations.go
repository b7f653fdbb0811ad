// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/authdemo/authdemo/internal/user"
	"github.com/authdemo/authdemo/pkg/errutil"
)

// Operation names and outcomes reported to a Recorder.
const (
	OperationLogin    = "login"
	OperationRegister = "register"

	OutcomeSuccess   = "success"
	OutcomeNotFound  = "not_found"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

var tracer = otel.Tracer("authdemo/auth")

// Directory is the subset of the user directory the operations need.
type Directory interface {
	ListUsers(ctx context.Context) []user.User
	CreateUser(ctx context.Context, in user.CreateInput) (*user.User, error)
}

// SessionMutator establishes the current user of a browser session.
type SessionMutator interface {
	Login(ctx context.Context, u *user.User) error
	Register(ctx context.Context, u *user.User) error
}

// Recorder observes operation outcomes.
type Recorder interface {
	RecordAuthOperation(operation, outcome string)
}

// LoginRequest is a submitted login form.
type LoginRequest struct {
	Email    string
	Password string
}

// State is a snapshot of an Operations value.
type State struct {
	Loading bool
	Error   string
}

// Operations runs login and registration against one browser session.
type Operations struct {
	dir      Directory
	sess     SessionMutator
	logger   *slog.Logger
	recorder Recorder

	mu      sync.Mutex
	loading bool
	lastErr string
}

// Option configures Operations.
type Option func(*Operations)

// WithLogger sets the logger for unexpected failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Operations) { o.logger = logger }
}

// WithRecorder reports every outcome to r.
func WithRecorder(r Recorder) Option {
	return func(o *Operations) { o.recorder = r }
}

// NewOperations binds the directory to a session.
func NewOperations(dir Directory, sess SessionMutator, opts ...Option) (*Operations, error) {
	if dir == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("directory is required")
	}
	if sess == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("session is required")
	}
	o := &Operations{dir: dir, sess: sess, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Login finds the directory user with req.Email and makes it the session
// user. It returns ErrUserNotFound when nobody has that email.
func (o *Operations) Login(ctx context.Context, req LoginRequest) (*user.User, error) {
	email := strings.TrimSpace(req.Email)
	ctx, span := tracer.Start(ctx, "auth.login",
		trace.WithAttributes(attribute.String("auth.email", email)))
	defer span.End()

	o.begin()

	var found *user.User
	for _, u := range o.dir.ListUsers(ctx) {
		if user.SameEmail(u.Email, email) {
			found = &u
			break
		}
	}

	if found == nil {
		err := oops.Code("AUTH_USER_NOT_FOUND").With("email", email).Wrap(ErrUserNotFound)
		o.finish(ctx, OperationLogin, err)
		return nil, err
	}

	if err := o.sess.Login(ctx, found); err != nil {
		o.finish(ctx, OperationLogin, err)
		return nil, err
	}
	o.finish(ctx, OperationLogin, nil)
	return found, nil
}

// Register creates a directory user and makes it the session user. A taken
// email fails with user.ErrDuplicateEmail and leaves the session untouched.
func (o *Operations) Register(ctx context.Context, in user.CreateInput) (*user.User, error) {
	ctx, span := tracer.Start(ctx, "auth.register",
		trace.WithAttributes(attribute.String("auth.email", strings.TrimSpace(in.Email))))
	defer span.End()

	o.begin()

	created, err := o.dir.CreateUser(ctx, in)
	if err != nil {
		o.finish(ctx, OperationRegister, err)
		return nil, err
	}

	if err := o.sess.Register(ctx, created); err != nil {
		o.finish(ctx, OperationRegister, err)
		return nil, err
	}
	o.finish(ctx, OperationRegister, nil)
	return created, nil
}

// State returns a snapshot of the in-flight flag and the last error message.
func (o *Operations) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return State{Loading: o.loading, Error: o.lastErr}
}

func (o *Operations) begin() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loading = true
	o.lastErr = ""
}

func (o *Operations) finish(ctx context.Context, op string, err error) {
	o.mu.Lock()
	o.loading = false
	o.lastErr = Message(err)
	o.mu.Unlock()

	outcome := outcomeOf(err)
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("auth.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if outcome == OutcomeError {
		errutil.LogErrorContext(ctx, o.logger, slog.LevelError, op+" failed", err)
	}
	if o.recorder != nil {
		o.recorder.RecordAuthOperation(op, outcome)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrUserNotFound):
		return OutcomeNotFound
	case errors.Is(err, user.ErrDuplicateEmail):
		return OutcomeDuplicate
	default:
		return OutcomeError
	}
}
