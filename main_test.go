package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Keep the user's config and .env out of the run
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestSimulateIsDeterministic(t *testing.T) {
	args := []string{"simulate", "--seed", "7", "--songs", "2", "--song-length", "30s", "--step", "250ms"}

	first, err := execute(t, args...)
	require.NoError(t, err)
	second, err := execute(t, args...)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "2 songs, seed 7")
	assert.Contains(t, first, "phase entrance")
	assert.Contains(t, first, "entrance_fx")
	assert.Contains(t, first, "finale")
	assert.Contains(t, first, "ended in exit")
}

func TestSimulateRejectsBadStep(t *testing.T) {
	_, err := execute(t, "simulate", "--step", "0s")
	assert.Error(t, err)
}

func TestValidateBuiltin(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "built-in catalog")
	assert.Contains(t, out, "guitarist")
	assert.Contains(t, out, "ok")
}

func TestValidateReportsRejectedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clips.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
clips:
  - id: gtr_ok
    role: guitarist
    energy: [0.0, 1.0]
    sections: [all]
    loop: 4
  - id: bad_role
    role: tambourine
    energy: [0.0, 1.0]
    sections: [all]
    loop: 4
`), 0o644))

	out, err := execute(t, "validate", path)
	require.ErrorIs(t, err, errRejected)
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "bad_role")
}

func TestValidateMissingFile(t *testing.T) {
	_, err := execute(t, "validate", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
