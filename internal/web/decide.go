// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package web

import "github.com/authdemo/authdemo/internal/session"

// Page identifies one of the served pages.
type Page string

// Pages and their paths.
const (
	PageHome     Page = "/"
	PageLogin    Page = "/login"
	PageRegister Page = "/register"
	PageProfile  Page = "/profile"
)

// Name returns the page name used in view models.
func (p Page) Name() string {
	switch p {
	case PageHome:
		return "home"
	case PageLogin:
		return "login"
	case PageRegister:
		return "register"
	case PageProfile:
		return "profile"
	default:
		return string(p)
	}
}

// Decide returns where a visitor of page should be sent. ok is false when the
// page should render as-is, including while the session is still loading.
func Decide(page Page, st session.State) (target string, ok bool) {
	if !st.Initialized || st.Loading {
		return "", false
	}

	switch page {
	case PageHome:
		if st.Authenticated {
			return string(PageProfile), true
		}
		return string(PageLogin), true
	case PageLogin, PageRegister:
		if st.Authenticated {
			return string(PageProfile), true
		}
	case PageProfile:
		if !st.Authenticated {
			return string(PageLogin), true
		}
	}
	return "", false
}
