// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

// Package form validates the registration and login forms.
//
// Every field is checked independently, so a form with several problems
// reports all of them at once. Within one field only the first failing rule
// is reported.
package form

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/authdemo/authdemo/internal/user"
)

// Messages shown next to invalid fields.
const (
	MsgRequired         = "This field is required"
	MsgInvalidEmail     = "Please enter a valid email address"
	MsgPasswordTooShort = "Password must be at least 6 characters"
	MsgPasswordMismatch = "Passwords do not match"
	MsgInvalidGender    = "Please select a valid gender"
)

// MinPasswordLength is the shortest accepted registration password.
const MinPasswordLength = 6

// emailPattern accepts local@domain.tld shaped addresses.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldErrors maps a field name to the message shown for it. Empty means valid.
type FieldErrors map[string]string

// Valid reports whether no field failed.
func (e FieldErrors) Valid() bool {
	return len(e) == 0
}

// RegistrationForm is the data submitted on the registration page.
type RegistrationForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Gender          string `json:"gender"`
}

// CreateInput converts the form into directory input.
func (f RegistrationForm) CreateInput() user.CreateInput {
	return user.CreateInput{
		Name:   strings.TrimSpace(f.Name),
		Email:  strings.TrimSpace(f.Email),
		Gender: user.Gender(f.Gender),
	}
}

// LoginForm is the data submitted on the login page.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ValidateRegistration checks a registration form.
func ValidateRegistration(f RegistrationForm) FieldErrors {
	return collect(validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.By(notBlank)),
		validation.Field(&f.Email, validation.By(notBlank), validation.Match(emailPattern).Error(MsgInvalidEmail)),
		validation.Field(&f.Password,
			validation.Required.Error(MsgRequired),
			validation.Length(MinPasswordLength, 0).Error(MsgPasswordTooShort),
		),
		validation.Field(&f.ConfirmPassword, validation.By(equals(f.Password, MsgPasswordMismatch))),
		validation.Field(&f.Gender, validation.In(string(user.GenderMale), string(user.GenderFemale)).Error(MsgInvalidGender)),
	))
}

// ValidateLogin checks a login form. The password only has to be present.
func ValidateLogin(f LoginForm) FieldErrors {
	return collect(validation.ValidateStruct(&f,
		validation.Field(&f.Email, validation.By(notBlank), validation.Match(emailPattern).Error(MsgInvalidEmail)),
		validation.Field(&f.Password, validation.Required.Error(MsgRequired)),
	))
}

// notBlank fails on strings that are empty after trimming whitespace.
func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New(MsgRequired)
	}
	return nil
}

// equals fails when the value differs from want, empty values included.
func equals(want, msg string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != want {
			return errors.New(msg)
		}
		return nil
	}
}

func collect(err error) FieldErrors {
	out := FieldErrors{}
	if err == nil {
		return out
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		// Only reachable through a programming error in the rule set.
		out["form"] = err.Error()
		return out
	}
	for field, fieldErr := range errs {
		if fieldErr != nil {
			out[field] = fieldErr.Error()
		}
	}
	return out
}
