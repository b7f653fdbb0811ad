// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package errutil_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/authdemo/authdemo/pkg/errutil"
)

type failRecorder struct {
	testing.TB
	failed bool
}

func (f *failRecorder) Helper()               {}
func (f *failRecorder) Errorf(string, ...any) { f.failed = true }
func (f *failRecorder) FailNow()              { f.failed = true }

func TestAssertErrorCode(t *testing.T) {
	inner := oops.Code("SESSION_LOAD_FAILED").With("scope", "b1").Errorf("read failed")
	wrapped := fmt.Errorf("acquire: %w", oops.With("attempt", 2).Wrap(inner))

	errutil.AssertErrorCode(t, wrapped, "SESSION_LOAD_FAILED")
	errutil.AssertErrorContext(t, wrapped, "scope", "b1")

	rec := &failRecorder{TB: t}
	errutil.AssertErrorCode(rec, wrapped, "SESSION_PERSIST_FAILED")
	assert.True(t, rec.failed, "wrong code")

	rec = &failRecorder{TB: t}
	errutil.AssertErrorCode(rec, errors.New("plain"), "SESSION_LOAD_FAILED")
	assert.True(t, rec.failed, "no code")

	rec = &failRecorder{TB: t}
	errutil.AssertErrorContext(rec, wrapped, "missing", "x")
	assert.True(t, rec.failed, "missing context key")
}
