// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode fails t unless Code reports code for err. The message
// carries the full error text so a wrong code is easy to trace.
func AssertErrorCode(t testing.TB, err error, code string) {
	t.Helper()
	require.Error(t, err, "want error with code %s", code)
	assert.Equal(t, code, Code(err), "error: %v", err)
}

// AssertErrorContext fails t unless err carries key with value in its oops
// context.
func AssertErrorContext(t testing.TB, err error, key string, value any) {
	t.Helper()
	require.Error(t, err, "want error with context %s", key)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "want oops error, got %T: %v", err, err)
	got, found := oopsErr.Context()[key]
	require.True(t, found, "no %q in context of %v", key, err)
	assert.Equal(t, value, got)
}
