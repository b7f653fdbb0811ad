// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package xdg

import "testing"

func TestConfigDir_EnvVar(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	got := ConfigDir()
	want := "/custom/config/authdemo"
	if got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}
}

func TestConfigDir_Default(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/testuser")
	got := ConfigDir()
	want := "/home/testuser/.config/authdemo"
	if got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}
}
