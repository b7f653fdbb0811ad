// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package user

import (
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// DefaultSeed returns the two demo users every directory starts with.
func DefaultSeed() []User {
	return []User{
		{ID: 1, Name: "John Doe", Email: "john.doe@example.com", Gender: GenderMale, Status: StatusActive},
		{ID: 2, Name: "Jane Smith", Email: "jane.smith@example.com", Gender: GenderFemale, Status: StatusActive},
	}
}

// seedFile is the YAML layout of a seed file:
//
//	users:
//	  - id: 1
//	    name: John Doe
//	    email: john.doe@example.com
//	    gender: male
//	    status: active
type seedFile struct {
	Users []User `yaml:"users"`
}

// ParseSeed decodes and validates a YAML seed file. Ids and emails must be
// unique; emails are compared case-insensitively.
func ParseSeed(data []byte) ([]User, error) {
	if len(data) == 0 {
		return nil, oops.Code("SEED_INVALID").Errorf("seed data is empty")
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, oops.Code("SEED_INVALID").With("operation", "decode yaml").Wrap(err)
	}
	if len(f.Users) == 0 {
		return nil, oops.Code("SEED_INVALID").Errorf("seed contains no users")
	}

	ids := make(map[int64]struct{}, len(f.Users))
	for i := range f.Users {
		u := &f.Users[i]
		if err := u.Validate(); err != nil {
			// %v keeps the SEED_INVALID code outermost; oops reports the deepest code.
			return nil, oops.Code("SEED_INVALID").With("index", i).Errorf("user %d: %v", i, err)
		}
		if _, dup := ids[u.ID]; dup {
			return nil, oops.Code("SEED_INVALID").With("id", u.ID).Errorf("duplicate user id %d", u.ID)
		}
		ids[u.ID] = struct{}{}
		for _, prev := range f.Users[:i] {
			if SameEmail(prev.Email, u.Email) {
				return nil, oops.Code("SEED_INVALID").With("email", u.Email).Errorf("duplicate email %q", u.Email)
			}
		}
	}
	return f.Users, nil
}
