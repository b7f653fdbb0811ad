// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

// Package auth implements the login and registration use cases on top of the
// user directory and a browser session.
//
// # Login
//
// Login is a lookup: the directory listing is searched for the email,
// compared case-insensitively, and the match becomes the session user. The
// password is accepted and never checked.
//
// # Register
//
// Register creates the user in the directory and then establishes the session
// with the created record, exactly as a login would.
//
// Operations tracks whether a call is in flight and the message of the last
// failure so pages can render it next to the form.
package auth
