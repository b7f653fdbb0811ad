// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package auth

import (
	"errors"

	"github.com/authdemo/authdemo/internal/user"
)

// ErrUserNotFound is returned by Login when no directory user has the email.
var ErrUserNotFound = errors.New("User not found. Please register first.") //nolint:staticcheck // shown to users as-is

const msgDuplicateEmail = "User with this email already exists"

// Message returns the text shown to the user for err.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUserNotFound):
		return ErrUserNotFound.Error()
	case errors.Is(err, user.ErrDuplicateEmail):
		return msgDuplicateEmail
	default:
		return err.Error()
	}
}
