// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

// Package user provides the user directory: an append-only mock list seeded
// at construction, merged with a remote public user API.
//
// The remote API is best effort. ListUsers never fails and falls back to the
// mock entries alone; GetUserByID checks the mock list before asking the
// remote API. Users created through CreateUser live only as long as the
// Directory value.
package user
