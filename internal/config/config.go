// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

// Package config loads authdemo settings from defaults, an optional YAML file
// and command-line flags, in that order of precedence.
package config

import (
	"time"

	"github.com/authdemo/authdemo/internal/session"
	"github.com/authdemo/authdemo/internal/user"
)

// Session storage backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server" json:"server,omitempty"`
	Log       LogConfig       `koanf:"log" json:"log,omitempty"`
	Directory DirectoryConfig `koanf:"directory" json:"directory,omitempty"`
	Session   SessionConfig   `koanf:"session" json:"session,omitempty"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	Addr            string        `koanf:"addr" json:"addr,omitempty" jsonschema:"description=Page server listen address (host:port)"`
	MetricsAddr     string        `koanf:"metrics_addr" json:"metrics_addr,omitempty" jsonschema:"description=Metrics and health listen address; empty disables it"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout,omitempty"`
	CookieSecure    bool          `koanf:"cookie_secure" json:"cookie_secure,omitempty" jsonschema:"description=Mark the session cookie Secure"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Format string `koanf:"format" json:"format,omitempty" jsonschema:"enum=json,enum=text"`
	Level  string `koanf:"level" json:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// DirectoryConfig holds user directory settings.
type DirectoryConfig struct {
	RemoteURL     string        `koanf:"remote_url" json:"remote_url,omitempty" jsonschema:"description=Base URL of the public user API"`
	Offline       bool          `koanf:"offline" json:"offline,omitempty" jsonschema:"description=Serve mock users only"`
	RemoteTimeout time.Duration `koanf:"remote_timeout" json:"remote_timeout,omitempty"`
	RemoteLimit   int           `koanf:"remote_limit" json:"remote_limit,omitempty" jsonschema:"minimum=0"`
	CreateDelay   time.Duration `koanf:"create_delay" json:"create_delay,omitempty"`
	SeedFile      string        `koanf:"seed_file" json:"seed_file,omitempty" jsonschema:"description=YAML file replacing the built-in demo users"`
}

// SessionConfig holds browser session settings.
type SessionConfig struct {
	Backend         string        `koanf:"backend" json:"backend,omitempty" jsonschema:"enum=memory,enum=redis,enum=postgres"`
	RedisURL        string        `koanf:"redis_url" json:"redis_url,omitempty"`
	DatabaseURL     string        `koanf:"database_url" json:"database_url,omitempty"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" json:"idle_timeout,omitempty"`
	TTL             time.Duration `koanf:"ttl" json:"ttl,omitempty" jsonschema:"description=Expiry of stored sessions in redis"`
	ConnectAttempts int           `koanf:"connect_attempts" json:"connect_attempts,omitempty" jsonschema:"minimum=1"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			MetricsAddr:     "127.0.0.1:9100",
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
		},
		Directory: DirectoryConfig{
			RemoteURL:     user.DefaultRemoteBaseURL,
			RemoteTimeout: 10 * time.Second,
			RemoteLimit:   user.DefaultRemoteLimit,
			CreateDelay:   user.DefaultCreateDelay,
		},
		Session: SessionConfig{
			Backend:         BackendMemory,
			IdleTimeout:     session.DefaultIdleTimeout,
			TTL:             24 * time.Hour,
			ConnectAttempts: 5,
		},
	}
}

// defaults is Default in the nested map shape koanf merges.
func defaults() map[string]any {
	d := Default()
	return map[string]any{
		"server": map[string]any{
			"addr":             d.Server.Addr,
			"metrics_addr":     d.Server.MetricsAddr,
			"shutdown_timeout": d.Server.ShutdownTimeout,
			"cookie_secure":    d.Server.CookieSecure,
		},
		"log": map[string]any{
			"format": d.Log.Format,
			"level":  d.Log.Level,
		},
		"directory": map[string]any{
			"remote_url":     d.Directory.RemoteURL,
			"offline":        d.Directory.Offline,
			"remote_timeout": d.Directory.RemoteTimeout,
			"remote_limit":   d.Directory.RemoteLimit,
			"create_delay":   d.Directory.CreateDelay,
			"seed_file":      d.Directory.SeedFile,
		},
		"session": map[string]any{
			"backend":          d.Session.Backend,
			"redis_url":        d.Session.RedisURL,
			"database_url":     d.Session.DatabaseURL,
			"idle_timeout":     d.Session.IdleTimeout,
			"ttl":              d.Session.TTL,
			"connect_attempts": d.Session.ConnectAttempts,
		},
	}
}
