package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestSampleCommand(t *testing.T) {
	out := run(t, "sample", "--seed", "11", "--years", "6", "--log-level", "error")

	var row map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &row))
	assert.Contains(t, row, "household_id")
	assert.Contains(t, row, "claims_info")
}

func TestSamplePerVehicle(t *testing.T) {
	out := run(t, "sample", "--seed", "11", "--years", "6", "--per-vehicle", "--log-level", "error")

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.NotEmpty(t, rows)
	assert.Contains(t, rows[0], "annual_mileage")
}

func TestGenerateCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "out.db")
	out := run(t, "generate", "--seed", "3", "--households", "4", "--years", "3",
		"--workers", "2", "--db", db, "--log-level", "error")
	assert.Contains(t, out, "wrote 4 households")
}

func TestBadLogLevel(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"sample", "--log-level", "loud"})
	require.Error(t, cmd.Execute())
}
