package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "us-west-2", cfg.AWSRegion)
	assert.Equal(t, "slvault_vaults", cfg.TableName)
	assert.NotEmpty(t, cfg.VaultDir)
	assert.Zero(t, cfg.DefaultTTL(), "messages persist until explicitly given a TTL")
	assert.Zero(t, cfg.SweepInterval())
}

func TestDurationHelpers(t *testing.T) {
	cfg := &Config{
		SessionTimeoutMin: 15,
		DefaultTTLSeconds: 90,
		SweepIntervalSec:  10,
	}
	assert.Equal(t, 15*time.Minute, cfg.SessionTimeout())
	assert.Equal(t, 90*time.Second, cfg.DefaultTTL())
	assert.Equal(t, 10*time.Second, cfg.SweepInterval())
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.ConfigPath = filepath.Join(dir, "config.json")
	cfg.RemoteID = "vault-abc"
	cfg.DefaultTTLSeconds = 3600
	require.NoError(t, cfg.SaveConfig())

	// Reload through the raw file rather than LoadConfig, which is pinned
	// to the home directory.
	data, err := os.ReadFile(cfg.ConfigPath)
	require.NoError(t, err)

	loaded := DefaultConfig()
	require.NoError(t, json.Unmarshal(data, loaded))
	assert.Equal(t, "vault-abc", loaded.RemoteID)
	assert.Equal(t, 3600, loaded.DefaultTTLSeconds)
}
