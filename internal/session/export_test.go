// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package session

import "time"

// SetClock replaces the manager's time source.
func SetClock(m *Manager, now func() time.Time) {
	m.now = now
}
