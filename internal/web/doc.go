// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

// Package web serves the Home, Login, Register and Profile pages as JSON view
// models with redirects.
//
// Every page request carries a browser session cookie. The cookie has no
// expiry, so the browser drops it when the browser session ends; its value
// selects the session controller and scopes the stored user record.
//
// Redirect decisions are made by Decide from a controller snapshot and only
// once the controller has finished initializing.
package web
