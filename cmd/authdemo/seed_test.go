// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authdemo/authdemo/pkg/errutil"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSeedValidate_Valid(t *testing.T) {
	path := writeSeed(t, `users:
  - id: 1
    name: John Doe
    email: john.doe@example.com
    gender: male
    status: active
  - id: 2
    name: Jane Smith
    email: jane.smith@example.com
    gender: female
    status: inactive
`)

	output, err := executeRoot(t, "seed", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, output, "2 users OK")
}

func TestSeedValidate_DuplicateEmail(t *testing.T) {
	path := writeSeed(t, `users:
  - id: 1
    name: John Doe
    email: john.doe@example.com
    gender: male
    status: active
  - id: 2
    name: Johnny Doe
    email: JOHN.DOE@example.com
    gender: male
    status: active
`)

	_, err := executeRoot(t, "seed", "validate", path)
	errutil.AssertErrorCode(t, err, "SEED_INVALID")
}

func TestSeedValidate_MissingFile(t *testing.T) {
	_, err := executeRoot(t, "seed", "validate", filepath.Join(t.TempDir(), "nope.yaml"))
	errutil.AssertErrorCode(t, err, "SEED_READ_FAILED")
}

func TestSeedValidate_RequiresOneArg(t *testing.T) {
	_, err := executeRoot(t, "seed", "validate")
	require.Error(t, err)
}
