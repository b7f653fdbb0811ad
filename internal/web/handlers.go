// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/authdemo/authdemo/internal/auth"
	"github.com/authdemo/authdemo/internal/form"
	"github.com/authdemo/authdemo/internal/session"
	"github.com/authdemo/authdemo/internal/user"
	"github.com/authdemo/authdemo/pkg/errutil"
)

// maxFormBody caps POST bodies.
const maxFormBody = 64 << 10

// PageView is the JSON view model of a GET page.
type PageView struct {
	Page            string      `json:"page"`
	User            *user.User  `json:"user"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	Loading         bool        `json:"loading,omitempty"`
	Users           []user.User `json:"users,omitempty"`
}

// FormView is the JSON body of a rejected form submission.
type FormView struct {
	Page   string           `json:"page"`
	Errors form.FieldErrors `json:"errors"`
	Error  string           `json:"error,omitempty"`
}

// submitKey holds operation failures in FormView.Errors.
const submitKey = "submit"

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, PageHome, nil)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, PageLogin, nil)
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, PageRegister, nil)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, PageProfile, func(v *PageView) {
		v.Users = s.dir.ListUsers(r.Context())
	})
}

// renderPage redirects when Decide says so and otherwise writes the page
// view. fill adds page-specific data to the view.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, page Page, fill func(*PageView)) {
	ctrl, ok := s.controller(w, r)
	if !ok {
		return
	}

	st := ctrl.State()
	if target, redirect := Decide(page, st); redirect {
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	view := PageView{
		Page:            page.Name(),
		User:            st.User,
		IsAuthenticated: st.Authenticated,
		Loading:         st.Loading,
	}
	if fill != nil && st.Initialized {
		fill(&view)
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controller(w, r)
	if !ok {
		return
	}
	if ctrl.IsAuthenticated() {
		http.Redirect(w, r, string(PageProfile), http.StatusSeeOther)
		return
	}

	var f form.LoginForm
	if !s.decodeForm(w, r, PageLogin, &f) {
		return
	}
	if errs := form.ValidateLogin(f); !errs.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, FormView{Page: PageLogin.Name(), Errors: errs})
		return
	}

	ops, err := s.operations(ctrl)
	if err != nil {
		s.internalError(w, r, PageLogin, err)
		return
	}
	if _, err := ops.Login(r.Context(), auth.LoginRequest{Email: f.Email, Password: f.Password}); err != nil {
		s.operationFailed(w, r, PageLogin, ops.State(), err)
		return
	}
	http.Redirect(w, r, string(PageProfile), http.StatusSeeOther)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controller(w, r)
	if !ok {
		return
	}
	if ctrl.IsAuthenticated() {
		http.Redirect(w, r, string(PageProfile), http.StatusSeeOther)
		return
	}

	var f form.RegistrationForm
	if !s.decodeForm(w, r, PageRegister, &f) {
		return
	}
	if errs := form.ValidateRegistration(f); !errs.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, FormView{Page: PageRegister.Name(), Errors: errs})
		return
	}

	ops, err := s.operations(ctrl)
	if err != nil {
		s.internalError(w, r, PageRegister, err)
		return
	}
	if _, err := ops.Register(r.Context(), f.CreateInput()); err != nil {
		s.operationFailed(w, r, PageRegister, ops.State(), err)
		return
	}
	http.Redirect(w, r, string(PageProfile), http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controller(w, r)
	if !ok {
		return
	}
	if err := ctrl.Logout(r.Context()); err != nil {
		// The controller stays so the stale record is not read back in.
		errutil.LogWarn(r.Context(), s.logger, "stored session not removed on logout", err)
	} else {
		s.sessions.Release(ctrl.Scope())
	}
	http.Redirect(w, r, string(PageLogin), http.StatusSeeOther)
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "authdemo",
		"version": s.version,
	})
}

func (s *Server) controller(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	ctrl, ok := ControllerFromContext(r.Context())
	if !ok {
		s.logger.ErrorContext(r.Context(), "session controller missing from request context", "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session unavailable"})
		return nil, false
	}
	return ctrl, true
}

func (s *Server) operations(ctrl *session.Controller) (*auth.Operations, error) {
	opts := []auth.Option{auth.WithLogger(s.logger)}
	if s.authRecorder != nil {
		opts = append(opts, auth.WithRecorder(s.authRecorder))
	}
	return auth.NewOperations(s.dir, ctrl, opts...)
}

// decodeForm reads a JSON body or url-encoded form into dst. Field names are
// the JSON names in both cases.
func (s *Server) decodeForm(w http.ResponseWriter, r *http.Request, page Page, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			s.badRequest(w, r, page, err)
			return false
		}
		return true
	}

	if err := r.ParseForm(); err != nil {
		s.badRequest(w, r, page, err)
		return false
	}
	values := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		values[k] = r.PostForm.Get(k)
	}
	// Round trip through JSON so both encodings share the struct tags.
	data, err := json.Marshal(values)
	if err == nil {
		err = json.Unmarshal(data, dst)
	}
	if err != nil {
		s.badRequest(w, r, page, err)
		return false
	}
	return true
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, page Page, err error) {
	s.logger.WarnContext(r.Context(), "malformed form submission", "page", page.Name(), "error", err)
	msg := "Invalid form submission"
	writeJSON(w, http.StatusBadRequest, FormView{
		Page:   page.Name(),
		Errors: form.FieldErrors{submitKey: msg},
		Error:  msg,
	})
}

func (s *Server) operationFailed(w http.ResponseWriter, r *http.Request, page Page, st auth.State, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		status = http.StatusBadRequest
	case errors.Is(err, user.ErrDuplicateEmail):
		status = http.StatusConflict
	case r.Context().Err() != nil:
		// Client went away during the create latency.
		status = http.StatusRequestTimeout
	}

	msg := st.Error
	if msg == "" {
		msg = auth.Message(err)
	}
	writeJSON(w, status, FormView{
		Page:   page.Name(),
		Errors: form.FieldErrors{submitKey: msg},
		Error:  msg,
	})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, page Page, err error) {
	errutil.LogErrorContext(r.Context(), s.logger, slog.LevelError, page.Name()+" failed", err)
	writeJSON(w, http.StatusInternalServerError, FormView{
		Page:   page.Name(),
		Errors: form.FieldErrors{submitKey: "Something went wrong. Please try again."},
		Error:  "Something went wrong. Please try again.",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
