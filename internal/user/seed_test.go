// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package user_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authdemo/authdemo/internal/user"
	"github.com/authdemo/authdemo/pkg/errutil"
)

func TestParseSeed_Valid(t *testing.T) {
	data := []byte(`
users:
  - id: 10
    name: Grace Hopper
    email: grace@example.com
    gender: female
    status: active
  - id: 11
    name: Alan Turing
    email: alan@example.com
    gender: male
    status: inactive
`)

	users, err := user.ParseSeed(data)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, user.User{ID: 10, Name: "Grace Hopper", Email: "grace@example.com", Gender: user.GenderFemale, Status: user.StatusActive}, users[0])
	assert.Equal(t, user.StatusInactive, users[1].Status)
}

func TestParseSeed_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "not yaml", data: "users: [\n"},
		{name: "no users", data: "users: []\n"},
		{name: "missing name", data: "users:\n  - {id: 1, email: a@b.co, gender: male, status: active}\n"},
		{name: "bad gender", data: "users:\n  - {id: 1, name: A, email: a@b.co, gender: other, status: active}\n"},
		{name: "bad status", data: "users:\n  - {id: 1, name: A, email: a@b.co, gender: male, status: gone}\n"},
		{name: "zero id", data: "users:\n  - {id: 0, name: A, email: a@b.co, gender: male, status: active}\n"},
		{
			name: "duplicate id",
			data: "users:\n  - {id: 1, name: A, email: a@b.co, gender: male, status: active}\n  - {id: 1, name: B, email: b@b.co, gender: male, status: active}\n",
		},
		{
			name: "duplicate email ignoring case",
			data: "users:\n  - {id: 1, name: A, email: a@b.co, gender: male, status: active}\n  - {id: 2, name: B, email: A@B.CO, gender: male, status: active}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := user.ParseSeed([]byte(tt.data))
			errutil.AssertErrorCode(t, err, "SEED_INVALID")
		})
	}
}

func TestUser_Validate(t *testing.T) {
	valid := user.DefaultSeed()[0]
	require.NoError(t, valid.Validate())

	var nilUser *user.User
	assert.Error(t, nilUser.Validate())
}
