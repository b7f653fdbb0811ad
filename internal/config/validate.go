// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package config

import (
	"errors"
	"net"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/samber/oops"
)

// Validate checks the configuration for values that would fail at startup.
func (c *Config) Validate() error {
	err := validation.Errors{
		"server":    c.Server.validate(),
		"log":       c.Log.validate(),
		"directory": c.Directory.validate(),
		"session":   c.Session.validate(),
	}.Filter()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return nil
}

func (s *ServerConfig) validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Addr, validation.Required, validation.By(hostPort)),
		validation.Field(&s.MetricsAddr, validation.By(hostPort)),
		validation.Field(&s.ShutdownTimeout, validation.Min(0)),
	)
}

func (l *LogConfig) validate() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.Format, validation.Required, validation.In("json", "text")),
		validation.Field(&l.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
	)
}

func (d *DirectoryConfig) validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.RemoteURL, requiredIf(!d.Offline), validation.By(httpURL)),
		validation.Field(&d.RemoteTimeout, validation.Min(0)),
		validation.Field(&d.RemoteLimit, validation.Min(0)),
		validation.Field(&d.CreateDelay, validation.Min(0)),
	)
}

func (s *SessionConfig) validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Backend, validation.Required, validation.In(BackendMemory, BackendRedis, BackendPostgres)),
		validation.Field(&s.RedisURL, requiredIf(s.Backend == BackendRedis)),
		validation.Field(&s.DatabaseURL, requiredIf(s.Backend == BackendPostgres)),
		validation.Field(&s.IdleTimeout, validation.Min(0)),
		validation.Field(&s.TTL, validation.Min(0)),
		validation.Field(&s.ConnectAttempts, validation.Required, validation.Min(1)),
	)
}

// requiredIf is validation.Required applied only when cond holds.
func requiredIf(cond bool) validation.Rule {
	return validation.By(func(value any) error {
		if !cond {
			return nil
		}
		return validation.Validate(value, validation.Required)
	})
}

func hostPort(value any) error {
	addr, _ := value.(string)
	if addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return errors.New("must be a host:port address")
	}
	return nil
}

func httpURL(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (!strings.EqualFold(u.Scheme, "http") && !strings.EqualFold(u.Scheme, "https")) {
		return errors.New("must be an http or https URL")
	}
	return nil
}
