// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package user

import (
	"sync"
	"time"
)

// IDGenerator hands out ids for newly created users.
type IDGenerator interface {
	NextID() int64
}

// ClockIDGenerator derives ids from the wall clock in milliseconds. Two calls
// within the same millisecond, or a clock that moves backwards, still yield
// strictly increasing ids.
type ClockIDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewClockIDGenerator returns a generator whose ids are always greater than floor.
func NewClockIDGenerator(floor int64) *ClockIDGenerator {
	return &ClockIDGenerator{now: time.Now, last: floor}
}

// NextID returns the next id.
func (g *ClockIDGenerator) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// raise makes sure future ids exceed floor.
func (g *ClockIDGenerator) raise(floor int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if floor > g.last {
		g.last = floor
	}
}
