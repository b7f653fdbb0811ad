// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package main

import (
	"os"

	"github.com/samber/oops"

	"github.com/authdemo/authdemo/internal/config"
	"github.com/authdemo/authdemo/internal/user"
)

// defaultRemote returns the HTTP client for the public user API, or nil when
// the directory runs offline.
func defaultRemote(cfg config.DirectoryConfig) user.Remote {
	if cfg.Offline {
		return nil
	}
	return user.NewHTTPRemote(cfg.RemoteURL, cfg.RemoteTimeout)
}

// readSeed loads the seed users named by the config, or nil for the built-in seed.
func readSeed(path string) ([]user.User, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, oops.Code("SEED_READ_FAILED").With("path", path).Wrap(err)
	}
	users, err := user.ParseSeed(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return users, nil
}

// buildDirectory assembles the user directory from the config.
func buildDirectory(cfg config.DirectoryConfig, remote user.Remote, opts ...user.DirectoryOption) (*user.Directory, error) {
	seed, err := readSeed(cfg.SeedFile)
	if err != nil {
		return nil, err
	}
	all := []user.DirectoryOption{
		user.WithCreateDelay(cfg.CreateDelay),
		user.WithRemoteLimit(cfg.RemoteLimit),
		user.WithRemoteTimeout(cfg.RemoteTimeout),
	}
	if seed != nil {
		all = append(all, user.WithSeed(seed))
	}
	all = append(all, opts...)
	return user.NewDirectory(remote, all...), nil
}
