package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidirok-cf-server/internal/setup"
)

func TestParseSymptom(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		id        string
		certainty float64
		wantErr   bool
	}{
		{name: "bare id", input: "G07", id: "G07", certainty: 1.0},
		{name: "lower case", input: "g01=0.6", id: "G01", certainty: 0.6},
		{name: "spaces", input: " G12 = 0.8 ", id: "G12", certainty: 0.8},
		{name: "missing id", input: "=0.4", wantErr: true},
		{name: "bad number", input: "G01=high", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSymptom(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, got.SymptomID)
			assert.InDelta(t, tt.certainty, got.Certainty, 1e-9)
		})
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDiagnoseCommand(t *testing.T) {
	t.Setenv("SIDIROK_DATABASE_ENABLED", "false")
	t.Setenv("SIDIROK_HISTORY_BACKEND", "none")

	t.Run("text", func(t *testing.T) {
		out, err := execute(t, "diagnose", "-s", "G07")
		require.NoError(t, err)
		assert.Contains(t, out, "P4")
		assert.Contains(t, out, "97.0%")
	})

	t.Run("profile raises certainty", func(t *testing.T) {
		out, err := execute(t, "diagnose", "-s", "G07", "--age", "50", "--smoking-years", "20", "--cigarettes", "10")
		require.NoError(t, err)
		assert.Contains(t, out, "P4")
		assert.NotContains(t, out, "97.0%")
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "diagnose", "-s", "G07", "--json")
		require.NoError(t, err)
		assert.Contains(t, out, `"disease_id": "P4"`)
	})

	t.Run("certainty out of range", func(t *testing.T) {
		_, err := execute(t, "diagnose", "-s", "G07=0.1")
		assert.Error(t, err)
	})

	t.Run("symptom required", func(t *testing.T) {
		_, err := execute(t, "diagnose")
		assert.Error(t, err)
	})
}

func TestSeedRequiresDatabase(t *testing.T) {
	t.Setenv("SIDIROK_DATABASE_ENABLED", "false")

	_, err := execute(t, "seed")
	assert.ErrorIs(t, err, errDatabaseDisabled)
}

func TestMigrateDownRejectsZeroSteps(t *testing.T) {
	_, err := execute(t, "migrate", "down", "--steps", "0")
	assert.Error(t, err)
}

func TestSetupLifecycle(t *testing.T) {
	dir := t.TempDir()
	clientConfig := filepath.Join(dir, "client.json")
	binary := filepath.Join(dir, setup.BinaryName)
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755))

	out, err := execute(t, "setup", "register", "--client-config", clientConfig, "--binary", binary, "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Registered")

	out, err = execute(t, "setup", "status", "--client-config", clientConfig)
	require.NoError(t, err)
	assert.Contains(t, out, "Registered: true")
	assert.Contains(t, out, binary)

	out, err = execute(t, "setup", "unregister", "--client-config", clientConfig)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed")

	out, err = execute(t, "setup", "unregister", "--client-config", clientConfig)
	require.NoError(t, err)
	assert.Contains(t, out, "was not registered")
}
