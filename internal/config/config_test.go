package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithNoFile(t *testing.T) {
	os.Unsetenv("DFICTL_REGISTRY_DSN")
	os.Unsetenv("DFICTL_DEBUG")
	os.Unsetenv("DFICTL_EXT_SCOPE_DIR")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dfictl.db", cfg.RegistryDSN)
	assert.False(t, cfg.Debug)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dfictl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("registry_dsn: custom.db\ndebug: true\n"), 0o644))

	os.Unsetenv("DFICTL_REGISTRY_DSN")
	os.Unsetenv("DFICTL_DEBUG")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom.db", cfg.RegistryDSN)
	assert.True(t, cfg.Debug)
}

func TestEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dfictl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("registry_dsn: custom.db\n"), 0o644))

	t.Setenv("DFICTL_REGISTRY_DSN", "env.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.RegistryDSN)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	os.Unsetenv("DFICTL_REGISTRY_DSN")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "dfictl.db", cfg.RegistryDSN)
}
