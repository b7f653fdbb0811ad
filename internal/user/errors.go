// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package user

import "errors"

// ErrNotFound is returned when a user exists neither in the mock directory
// nor in the remote API.
var ErrNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned when registering an email already present in
// the mock directory.
var ErrDuplicateEmail = errors.New("user with this email already exists")
