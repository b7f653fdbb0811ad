// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Work with mock user seed files",
	}
	cmd.AddCommand(newSeedValidateCmd())
	return cmd
}

func newSeedValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a seed file without starting the server",
		Long: `Parse a YAML seed file and check every user: ids and emails must be
unique, gender must be male or female and status active or inactive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return oops.Code("SEED_READ_FAILED").Errorf("seed file path is empty")
			}
			users, err := readSeed(args[0])
			if err != nil {
				return err
			}
			cmd.Printf("%s: %d users OK\n", args[0], len(users))
			return nil
		},
	}
}

