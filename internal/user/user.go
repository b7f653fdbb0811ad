// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package user

import (
	"strings"

	"github.com/samber/oops"
)

// Gender of a directory user.
type Gender string

// Genders accepted by the directory.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Status of a directory user.
type Status string

// Statuses reported by the directory.
const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// User is a directory entry. The JSON shape matches the remote user API.
type User struct {
	ID     int64  `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Email  string `json:"email" yaml:"email"`
	Gender Gender `json:"gender" yaml:"gender"`
	Status Status `json:"status" yaml:"status"`
}

// Validate checks that u is a well-formed record.
func (u *User) Validate() error {
	if u == nil {
		return oops.Code("USER_INVALID").Errorf("user cannot be nil")
	}
	if u.ID <= 0 {
		return oops.Code("USER_INVALID").With("id", u.ID).Errorf("user id must be positive")
	}
	if strings.TrimSpace(u.Name) == "" {
		return oops.Code("USER_INVALID").With("id", u.ID).Errorf("user name cannot be empty")
	}
	if strings.TrimSpace(u.Email) == "" {
		return oops.Code("USER_INVALID").With("id", u.ID).Errorf("user email cannot be empty")
	}
	if !u.Gender.Valid() {
		return oops.Code("USER_INVALID").With("id", u.ID).With("gender", u.Gender).Errorf("unknown gender %q", u.Gender)
	}
	if !u.Status.Valid() {
		return oops.Code("USER_INVALID").With("id", u.ID).With("status", u.Status).Errorf("unknown status %q", u.Status)
	}
	return nil
}

// SameEmail reports whether two addresses match case-insensitively.
func SameEmail(a, b string) bool {
	return strings.EqualFold(a, b)
}

// CreateInput is the data needed to register a new directory user.
// Gender may be empty, in which case it defaults to male.
type CreateInput struct {
	Name   string
	Email  string
	Gender Gender
}
