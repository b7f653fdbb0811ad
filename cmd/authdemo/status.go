// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// Compatibility verdicts reported by status.
const (
	compatOK       = "compatible"
	compatMismatch = "major version mismatch"
	compatUnknown  = "unknown"
)

// ServerStatus holds what status learned about a running server.
type ServerStatus struct {
	Addr          string `json:"addr"`
	Running       bool   `json:"running"`
	Ready         bool   `json:"ready"`
	Version       string `json:"version,omitempty"`
	Compatibility string `json:"compatibility"`
	Error         string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
	timeout    time.Duration
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show status of a running authdemo server",
		Long: `Query the readiness probe and /version endpoint of the server named by
--addr and --metrics-addr, and check that its major version matches this binary.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appCfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			client := &http.Client{Timeout: cfg.timeout}
			st := queryServerStatus(cmd.Context(), client, appCfg.Server.Addr, appCfg.Server.MetricsAddr, version)
			return printStatus(cmd, cfg, st)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", 2*time.Second, "per-request timeout")

	return cmd
}

// queryServerStatus asks the page server for its version and the metrics
// server for readiness. An empty metricsAddr skips the readiness probe.
func queryServerStatus(ctx context.Context, client *http.Client, addr, metricsAddr, localVersion string) ServerStatus {
	st := ServerStatus{Addr: addr, Compatibility: compatUnknown}

	var body struct {
		Version string `json:"version"`
	}
	if err := getJSON(ctx, client, "http://"+addr+"/version", &body); err != nil {
		st.Error = err.Error()
		return st
	}
	st.Running = true
	st.Version = body.Version
	st.Compatibility = compareMajor(localVersion, body.Version)

	if metricsAddr == "" {
		st.Ready = true
		return st
	}
	ready, err := probe(ctx, client, "http://"+metricsAddr+"/healthz/readiness")
	if err != nil {
		st.Error = err.Error()
	}
	st.Ready = ready
	return st
}

// compareMajor reports whether two versions share a major version. Builds
// without a semantic version compare as unknown.
func compareMajor(local, remote string) string {
	lv, err := semver.NewVersion(local)
	if err != nil {
		return compatUnknown
	}
	rv, err := semver.NewVersion(remote)
	if err != nil {
		return compatUnknown
	}
	if lv.Major() != rv.Major() {
		return compatMismatch
	}
	return compatOK
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return oops.Code("STATUS_REQUEST_FAILED").With("url", url).Wrap(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return oops.Code("STATUS_UNREACHABLE").With("url", url).Wrap(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return oops.Code("STATUS_UNEXPECTED").With("url", url).With("status", resp.StatusCode).
			Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return oops.Code("STATUS_DECODE_FAILED").With("url", url).Wrap(err)
	}
	return nil
}

func probe(ctx context.Context, client *http.Client, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return false, oops.Code("STATUS_REQUEST_FAILED").With("url", url).Wrap(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, oops.Code("STATUS_UNREACHABLE").With("url", url).Wrap(err)
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func printStatus(cmd *cobra.Command, cfg *statusConfig, st ServerStatus) error {
	if cfg.jsonOutput {
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return oops.Code("OUTPUT_FAILED").Wrap(err)
		}
		cmd.Println(string(data))
		return nil
	}
	cmd.Print(formatStatusTable(st))
	return nil
}

// formatStatusTable formats the status as a human-readable table.
func formatStatusTable(st ServerStatus) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "ADDR\tSTATUS\tREADY\tVERSION\tCOMPATIBILITY")
	_, _ = fmt.Fprintln(w, "----\t------\t-----\t-------\t-------------")
	if st.Running {
		_, _ = fmt.Fprintf(w, "%s\trunning\t%t\t%s\t%s\n", st.Addr, st.Ready, st.Version, st.Compatibility)
	} else {
		reason := "not running"
		if st.Error != "" {
			reason = st.Error
		}
		_, _ = fmt.Fprintf(w, "%s\tstopped\t-\t-\t%s\n", st.Addr, reason)
	}

	_ = w.Flush()
	return buf.String()
}
