// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

// Package session keeps track of which user, if any, is logged in on a
// browser session.
//
// # Layers
//
//   - Storage is a key/value backend scoped by browser session
//     (MemoryStorage, RedisStorage, or postgres.Storage).
//   - Store binds a Storage to one browser session and holds the single
//     "user" record, encoded as JSON.
//   - Controller is the in-memory session state for one browser session. It
//     is initialized once from its Store and writes through on every mutation.
//   - Manager owns the controllers of all live browser sessions.
//
// Mutators return errors instead of logging; the Manager and the web layer
// decide what gets logged.
package session
