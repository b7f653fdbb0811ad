// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package observability_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/authdemo/authdemo/internal/auth"
	"github.com/authdemo/authdemo/internal/observability"
	"github.com/authdemo/authdemo/internal/session"
	"github.com/authdemo/authdemo/internal/user"
)

var (
	_ auth.Recorder      = (*observability.Metrics)(nil)
	_ user.FetchRecorder = (*observability.Metrics)(nil)
	_ session.Recorder   = (*observability.Metrics)(nil)
)

func TestMetrics_Recorders(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())

	m.RecordAuthOperation(auth.OperationRegister, auth.OutcomeDuplicate)
	m.RecordDirectoryFetch(user.SourceRemote, user.OutcomeFallback)
	m.RecordDirectoryFetch(user.SourceRemote, user.OutcomeFallback)
	m.RecordSessionRecovery(session.RecoveryCorrupt)
	m.SetActiveSessions(3)
	m.SetActiveSessions(2)
	m.RecordHTTPRequest("GET", "/profile", 200)

	assert.InDelta(t, 1, testutil.ToFloat64(m.AuthOperations.WithLabelValues("register", "duplicate")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.DirectoryFetches.WithLabelValues("remote", "fallback")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SessionRecovered.WithLabelValues("corrupt")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.ActiveSessions), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/profile", "200")), 0)
}

func TestNewMetrics_PanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	observability.NewMetrics(reg)
	assert.Panics(t, func() { observability.NewMetrics(reg) })
}
