// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package user

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"
)

// DefaultRemoteBaseURL is the public demo user API.
const DefaultRemoteBaseURL = "https://gorest.co.in/public/v2"

// maxRemoteBody bounds how much of a remote response is decoded.
const maxRemoteBody = 1 << 20

// HTTPRemote reads users from a REST API exposing /users and /users/{id}.
type HTTPRemote struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRemote creates an HTTPRemote. A zero timeout leaves the client
// without a deadline, relying on the request context.
func NewHTTPRemote(baseURL string, timeout time.Duration) *HTTPRemote {
	return &HTTPRemote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// ListUsers fetches GET {base}/users.
func (r *HTTPRemote) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := r.get(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches GET {base}/users/{id}. A 404 maps to ErrNotFound.
func (r *HTTPRemote) GetUser(ctx context.Context, id int64) (*User, error) {
	var u User
	if err := r.get(ctx, "/users/"+strconv.FormatInt(id, 10), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *HTTPRemote) get(ctx context.Context, path string, out any) error {
	url := r.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return oops.Code("DIRECTORY_REMOTE_REQUEST").With("url", url).Wrap(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return oops.Code("DIRECTORY_REMOTE_UNAVAILABLE").With("url", url).Wrap(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return oops.Code("DIRECTORY_REMOTE_NOT_FOUND").With("url", url).Wrap(ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return oops.Code("DIRECTORY_REMOTE_STATUS").
			With("url", url).
			With("status", resp.StatusCode).
			Errorf("remote directory returned %s", resp.Status)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRemoteBody)).Decode(out); err != nil {
		return oops.Code("DIRECTORY_REMOTE_DECODE").With("url", url).Wrap(err)
	}
	return nil
}
