// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package postgres

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/authdemo/authdemo/pkg/errutil"
)

type mockMigrate struct {
	mock.Mock
}

func (m *mockMigrate) Up() error   { return m.Called().Error(0) }
func (m *mockMigrate) Down() error { return m.Called().Error(0) }

func (m *mockMigrate) Version() (uint, bool, error) {
	args := m.Called()
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

func (m *mockMigrate) Close() (error, error) {
	args := m.Called()
	return args.Error(0), args.Error(1)
}

func TestMigrator_Up(t *testing.T) {
	t.Run("no change is success", func(t *testing.T) {
		mm := &mockMigrate{}
		mm.On("Up").Return(migrate.ErrNoChange)
		require.NoError(t, (&Migrator{m: mm}).Up())
	})

	t.Run("failure is coded", func(t *testing.T) {
		mm := &mockMigrate{}
		mm.On("Up").Return(errors.New("syntax error"))
		errutil.AssertErrorCode(t, (&Migrator{m: mm}).Up(), "MIGRATION_UP_FAILED")
	})
}

func TestMigrator_Down(t *testing.T) {
	mm := &mockMigrate{}
	mm.On("Down").Return(nil)
	require.NoError(t, (&Migrator{m: mm}).Down())
	mm.AssertExpectations(t)
}

func TestMigrator_Version(t *testing.T) {
	t.Run("nothing applied", func(t *testing.T) {
		mm := &mockMigrate{}
		mm.On("Version").Return(uint(0), false, migrate.ErrNilVersion)

		v, dirty, err := (&Migrator{m: mm}).Version()
		require.NoError(t, err)
		assert.Equal(t, uint(0), v)
		assert.False(t, dirty)
	})

	t.Run("applied", func(t *testing.T) {
		mm := &mockMigrate{}
		mm.On("Version").Return(uint(1), false, nil)

		v, _, err := (&Migrator{m: mm}).Version()
		require.NoError(t, err)
		assert.Equal(t, uint(1), v)
	})
}

func TestMigrator_Close(t *testing.T) {
	mm := &mockMigrate{}
	mm.On("Close").Return(errors.New("source"), errors.New("database"))

	err := (&Migrator{m: mm}).Close()
	errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
	assert.Contains(t, err.Error(), "source")
	assert.Contains(t, err.Error(), "database")
}
