// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/authdemo/authdemo/internal/config"
	"github.com/authdemo/authdemo/internal/user"
)

// Output formats of the users command.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// usersConfig holds configuration for the users command.
type usersConfig struct {
	output string
}

// NewUsersCmd creates the users subcommand.
func NewUsersCmd() *cobra.Command {
	cfg := &usersConfig{}

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List the users the directory would serve",
		Long: `List the mock users (the built-in seed or --seed-file) merged with the
remote user API, exactly as the Profile page shows them. Use --offline to skip
the remote API.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUsers(cmd, cfg, defaultRemote)
		},
	}

	cmd.Flags().StringVarP(&cfg.output, "output", "o", outputTable, "output format (table, json or yaml)")

	return cmd
}

func runUsers(cmd *cobra.Command, cfg *usersConfig, remoteFactory func(config.DirectoryConfig) user.Remote) error {
	switch cfg.output {
	case outputTable, outputJSON, outputYAML:
	default:
		return oops.Code("CONFIG_INVALID").With("output", cfg.output).Errorf("output must be table, json or yaml, got %q", cfg.output)
	}

	appCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Directory warnings go to stderr so they never mix with the listing.
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	dir, err := buildDirectory(appCfg.Directory, remoteFactory(appCfg.Directory), user.WithLogger(logger))
	if err != nil {
		return err
	}

	out, err := formatUsers(dir.ListUsers(cmd.Context()), cfg.output)
	if err != nil {
		return err
	}
	cmd.Print(out)
	return nil
}

// formatUsers renders users in the requested output format.
func formatUsers(users []user.User, output string) (string, error) {
	switch output {
	case outputJSON:
		data, err := json.MarshalIndent(users, "", "  ")
		if err != nil {
			return "", oops.Code("OUTPUT_FAILED").With("format", output).Wrap(err)
		}
		return string(data) + "\n", nil
	case outputYAML:
		data, err := yaml.Marshal(map[string][]user.User{"users": users})
		if err != nil {
			return "", oops.Code("OUTPUT_FAILED").With("format", output).Wrap(err)
		}
		return string(data), nil
	default:
		return formatUsersTable(users), nil
	}
}

func formatUsersTable(users []user.User) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "ID\tNAME\tEMAIL\tGENDER\tSTATUS")
	_, _ = fmt.Fprintln(w, "--\t----\t-----\t------\t------")
	for _, u := range users {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			strconv.FormatInt(u.ID, 10), u.Name, u.Email, u.Gender, u.Status)
	}

	_ = w.Flush()
	return buf.String()
}
