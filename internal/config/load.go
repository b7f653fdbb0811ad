// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/authdemo/authdemo/internal/xdg"
)

// flagKeys maps command-line flags onto configuration keys. Flags not listed
// here are not configuration.
var flagKeys = map[string]string{
	"addr":            "server.addr",
	"metrics-addr":    "server.metrics_addr",
	"cookie-secure":   "server.cookie_secure",
	"log-format":      "log.format",
	"log-level":       "log.level",
	"remote-url":      "directory.remote_url",
	"offline":         "directory.offline",
	"seed-file":       "directory.seed_file",
	"session-backend": "session.backend",
	"redis-url":       "session.redis_url",
	"database-url":    "session.database_url",
}

// mapProvider feeds an in-memory nested map to koanf.
type mapProvider map[string]any

func (p mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("map provider does not support ReadBytes")
}

func (p mapProvider) Read() (map[string]any, error) {
	return p, nil
}

// DefaultPath returns the config file read when none is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigDir(), "config.yaml")
}

// BindFlags registers the configuration flags on fs. Their defaults mirror
// Default so help output is accurate.
func BindFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("addr", d.Server.Addr, "page server listen address")
	fs.String("metrics-addr", d.Server.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.Bool("cookie-secure", d.Server.CookieSecure, "mark the session cookie Secure")
	fs.String("log-format", d.Log.Format, "log format (json or text)")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
	fs.String("remote-url", d.Directory.RemoteURL, "base URL of the public user API")
	fs.Bool("offline", d.Directory.Offline, "serve mock users only")
	fs.String("seed-file", d.Directory.SeedFile, "YAML file replacing the built-in demo users")
	fs.String("session-backend", d.Session.Backend, "session storage (memory, redis or postgres)")
	fs.String("redis-url", d.Session.RedisURL, "redis URL for the redis session backend")
	fs.String("database-url", d.Session.DatabaseURL, "postgres URL for the postgres session backend (default: $DATABASE_URL)")
}

// Load builds the configuration. path names a YAML file; when empty,
// DefaultPath is used if it exists. flags may be nil. Only flags the user set
// override file values.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(mapProvider(defaults()), nil); err != nil {
		return nil, oops.Code("CONFIG_DEFAULTS_FAILED").Wrap(err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := loadFile(k, path, explicit); err != nil {
		return nil, err
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_DECODE_FAILED").Wrap(err)
	}

	if cfg.Session.DatabaseURL == "" {
		cfg.Session.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string, explicit bool) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	if err != nil {
		return oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
	}

	if err := ValidateFile(data); err != nil {
		return oops.With("path", path).Wrap(err)
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return oops.Code("CONFIG_PARSE_FAILED").With("path", path).Wrap(err)
	}
	return nil
}
