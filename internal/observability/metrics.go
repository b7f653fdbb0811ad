// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the application metrics. It satisfies the recorder
// interfaces of the user, session and auth packages as well as the web
// request recorder.
type Metrics struct {
	AuthOperations   *prometheus.CounterVec
	DirectoryFetches *prometheus.CounterVec
	SessionRecovered *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
	HTTPRequests     *prometheus.CounterVec
}

// NewMetrics creates and registers the application metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AuthOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authdemo_auth_operations_total",
				Help: "Total number of login and register attempts by outcome",
			},
			[]string{"operation", "outcome"},
		),
		DirectoryFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authdemo_directory_fetches_total",
				Help: "Total number of user directory lookups by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		SessionRecovered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authdemo_session_recoveries_total",
				Help: "Total number of stored sessions discarded during initialization",
			},
			[]string{"reason"},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "authdemo_active_sessions",
				Help: "Number of browser sessions held in memory",
			},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authdemo_http_requests_total",
				Help: "Total number of page requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
	}

	reg.MustRegister(m.AuthOperations)
	reg.MustRegister(m.DirectoryFetches)
	reg.MustRegister(m.SessionRecovered)
	reg.MustRegister(m.ActiveSessions)
	reg.MustRegister(m.HTTPRequests)

	return m
}

// RecordAuthOperation counts a login or register outcome.
func (m *Metrics) RecordAuthOperation(operation, outcome string) {
	m.AuthOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordDirectoryFetch counts a directory lookup.
func (m *Metrics) RecordDirectoryFetch(source, outcome string) {
	m.DirectoryFetches.WithLabelValues(source, outcome).Inc()
}

// RecordSessionRecovery counts a discarded stored session.
func (m *Metrics) RecordSessionRecovery(reason string) {
	m.SessionRecovered.WithLabelValues(reason).Inc()
}

// SetActiveSessions sets the live session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.ActiveSessions.Set(float64(n))
}

// RecordHTTPRequest counts a served request. route is the matched pattern,
// not the raw path.
func (m *Metrics) RecordHTTPRequest(method, route string, status int) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
