package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ruteri/snowflake-keypair-provisioner/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Run from an empty directory so no provisioner.yaml is picked up
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "provisioner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
secret_store: vault://vault.internal:8200/secret/snowflake
key_bits: 3072
log_json: true
log_service: provisioner-test
`), 0600))

	t.Setenv("PROVISIONER_SECRET_STORE", "secretsmanager://eu-central-1")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// Environment wins over the file, the file wins over defaults
	assert.Equal(t, "secretsmanager://eu-central-1", cfg.SecretStore)
	assert.Equal(t, 3072, cfg.KeyBits)
	assert.True(t, cfg.LogJSON)
	assert.False(t, cfg.LogDebug)
	assert.Equal(t, "provisioner-test", cfg.LogService)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KeyBits = 1024
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.SecretStore = "s3://bucket"
	assert.ErrorIs(t, cfg.Validate(), interfaces.ErrInvalidLocationURI)

	cfg = DefaultConfig()
	cfg.VaultClientCert = "/etc/provisioner/client.crt"
	assert.Error(t, cfg.Validate())

	cfg.VaultClientKey = "/etc/provisioner/client.key"
	assert.NoError(t, cfg.Validate())
}
