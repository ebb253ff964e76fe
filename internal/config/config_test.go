package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velvetlabs/doorman/internal/engines/policy"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, policy.KindPaced, cfg.Policy.Kind)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 8000, cfg.Policy.Formulator.ExpectedTotalArrivals)
	assert.NotEmpty(t, cfg.Policy.Safety.Schedule, "default safety schedule should survive loading")
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doorman.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  baseUrl: http://localhost:8081/api
  scenario: 3
policy:
  kind: dual
  dual:
    updateEvery: 25
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8081/api", cfg.Server.BaseURL)
	assert.Equal(t, 3, cfg.Server.Scenario)
	assert.Equal(t, policy.KindDual, cfg.Policy.Kind)
	assert.Equal(t, 25, cfg.Policy.Dual.UpdateEvery)
	// Untouched values keep their defaults.
	assert.Equal(t, 5, cfg.Server.MaxRetries)
	assert.Equal(t, 0.10, cfg.Policy.Formulator.ScheduleTolerance)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doorman.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
policy:
  kind: simplex
`), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("DOORMAN_SERVER_SCENARIO", "2")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Server.Scenario)
}
