// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package web_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/authdemo/authdemo/internal/session"
	"github.com/authdemo/authdemo/internal/user"
	"github.com/authdemo/authdemo/internal/web"
)

// browser is a cookie-keeping client that does not follow redirects.
type browser struct {
	client *http.Client
	base   string
}

func newBrowser(base string) *browser {
	jar, err := cookiejar.New(nil)
	Expect(err).NotTo(HaveOccurred())
	return &browser{
		base: base,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) get(path string) *http.Response {
	resp, err := b.client.Get(b.base + path)
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(resp.Body.Close)
	return resp
}

func (b *browser) post(path string, values url.Values) *http.Response {
	resp, err := b.client.PostForm(b.base+path, values)
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(resp.Body.Close)
	return resp
}

func pageView(resp *http.Response) web.PageView {
	var v web.PageView
	Expect(json.NewDecoder(resp.Body).Decode(&v)).To(Succeed())
	return v
}

func formView(resp *http.Response) web.FormView {
	var v web.FormView
	Expect(json.NewDecoder(resp.Body).Decode(&v)).To(Succeed())
	return v
}

var _ = Describe("Browser flows", func() {
	var (
		ts  *httptest.Server
		dir *user.Directory
	)

	BeforeEach(func() {
		dir = user.NewDirectory(nil, user.WithCreateDelay(0))
		sessions := session.NewManager(session.NewMemoryStorage())
		srv, err := web.NewServer("127.0.0.1:0", sessions, dir, web.WithLogger(slog.New(slog.DiscardHandler)))
		Expect(err).NotTo(HaveOccurred())
		ts = httptest.NewServer(srv.Handler())
		DeferCleanup(ts.Close)
	})

	Describe("registration", func() {
		It("creates the user, logs in and allows logging back in", func() {
			b := newBrowser(ts.URL)

			resp := b.get("/")
			Expect(resp.StatusCode).To(Equal(http.StatusFound))
			Expect(resp.Header.Get("Location")).To(Equal("/login"))

			resp = b.post("/register", url.Values{
				"name":            {"A"},
				"email":           {"a@x.io"},
				"password":        {"abcdef"},
				"confirmPassword": {"abcdef"},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusSeeOther))
			Expect(resp.Header.Get("Location")).To(Equal("/profile"))

			profile := pageView(b.get("/profile"))
			Expect(profile.IsAuthenticated).To(BeTrue())
			Expect(profile.User.Email).To(Equal("a@x.io"))
			Expect(profile.User.Status).To(Equal(user.StatusActive))
			Expect(profile.Users).To(HaveLen(3))

			Expect(b.post("/logout", nil).StatusCode).To(Equal(http.StatusSeeOther))
			Expect(b.get("/profile").Header.Get("Location")).To(Equal("/login"))

			resp = b.post("/login", url.Values{"email": {"A@X.IO"}, "password": {"anything"}})
			Expect(resp.StatusCode).To(Equal(http.StatusSeeOther))
			Expect(pageView(b.get("/profile")).User.Email).To(Equal("a@x.io"))
		})

		It("rejects a taken email and leaves the directory unchanged", func() {
			b := newBrowser(ts.URL)

			resp := b.post("/register", url.Values{
				"name":            {"Copy"},
				"email":           {"Jane.Smith@Example.com"},
				"password":        {"abcdef"},
				"confirmPassword": {"abcdef"},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusConflict))
			Expect(formView(resp).Errors).To(HaveKeyWithValue("submit", "User with this email already exists"))
			Expect(dir.MockUsers()).To(HaveLen(2))
			Expect(b.get("/profile").StatusCode).To(Equal(http.StatusFound))
		})
	})

	Describe("login", func() {
		It("reports unknown emails without creating a session", func() {
			b := newBrowser(ts.URL)

			resp := b.post("/login", url.Values{"email": {"ghost@example.com"}, "password": {"secret"}})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(formView(resp).Error).To(Equal("User not found. Please register first."))
			Expect(b.get("/").Header.Get("Location")).To(Equal("/login"))
		})
	})

	Describe("browser sessions", func() {
		It("keeps separate browsers apart", func() {
			alice := newBrowser(ts.URL)
			bob := newBrowser(ts.URL)

			Expect(alice.post("/login", url.Values{"email": {"john.doe@example.com"}, "password": {"x"}}).StatusCode).
				To(Equal(http.StatusSeeOther))

			Expect(alice.get("/").Header.Get("Location")).To(Equal("/profile"))
			Expect(bob.get("/").Header.Get("Location")).To(Equal("/login"))
		})

		It("logs out idempotently", func() {
			b := newBrowser(ts.URL)
			b.post("/login", url.Values{"email": {"john.doe@example.com"}, "password": {"x"}})

			for range 2 {
				resp := b.post("/logout", nil)
				Expect(resp.StatusCode).To(Equal(http.StatusSeeOther))
				Expect(resp.Header.Get("Location")).To(Equal("/login"))
			}
			login := pageView(b.get("/login"))
			Expect(login.IsAuthenticated).To(BeFalse())
			Expect(login.User).To(BeNil())
		})
	})
})
