// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func versionServer(t *testing.T, v string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/version" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"service": "authdemo", "version": v})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func readinessServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz/readiness" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func hostOf(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestQueryServerStatus_Running(t *testing.T) {
	pages := versionServer(t, "1.4.0")
	probe := readinessServer(t, http.StatusOK)

	st := queryServerStatus(context.Background(), &http.Client{Timeout: time.Second}, hostOf(pages), hostOf(probe), "1.2.3")

	assert.True(t, st.Running)
	assert.True(t, st.Ready)
	assert.Equal(t, "1.4.0", st.Version)
	assert.Equal(t, compatOK, st.Compatibility)
	assert.Empty(t, st.Error)
}

func TestQueryServerStatus_NotReady(t *testing.T) {
	pages := versionServer(t, "1.0.0")
	probe := readinessServer(t, http.StatusServiceUnavailable)

	st := queryServerStatus(context.Background(), &http.Client{Timeout: time.Second}, hostOf(pages), hostOf(probe), "1.0.0")

	assert.True(t, st.Running)
	assert.False(t, st.Ready)
}

func TestQueryServerStatus_Stopped(t *testing.T) {
	pages := versionServer(t, "1.0.0")
	addr := hostOf(pages)
	pages.Close()

	st := queryServerStatus(context.Background(), &http.Client{Timeout: time.Second}, addr, "", "1.0.0")

	assert.False(t, st.Running)
	assert.NotEmpty(t, st.Error)
	assert.Contains(t, formatStatusTable(st), "stopped")
}

func TestCompareMajor(t *testing.T) {
	tests := []struct {
		local, remote string
		want          string
	}{
		{"1.2.3", "1.9.0", compatOK},
		{"v2.0.0", "2.1.0", compatOK},
		{"1.2.3", "2.0.0", compatMismatch},
		{"dev", "1.0.0", compatUnknown},
		{"1.0.0", "", compatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.local+"_"+tt.remote, func(t *testing.T) {
			assert.Equal(t, tt.want, compareMajor(tt.local, tt.remote))
		})
	}
}

func TestStatusCommand_JSON(t *testing.T) {
	pages := versionServer(t, "dev")

	output, err := executeRoot(t, "status", "--json", "--addr", hostOf(pages), "--metrics-addr", "")
	require.NoError(t, err)

	var st ServerStatus
	require.NoError(t, json.Unmarshal([]byte(output), &st))
	assert.True(t, st.Running)
	assert.True(t, st.Ready)
	assert.Equal(t, compatUnknown, st.Compatibility)
}

func TestStatusCommand_Table(t *testing.T) {
	pages := versionServer(t, "dev")

	output, err := executeRoot(t, "status", "--addr", hostOf(pages), "--metrics-addr", "")
	require.NoError(t, err)
	assert.Contains(t, output, "COMPATIBILITY")
	assert.Contains(t, output, "running")
}
