package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds application configuration
type Config struct {
	AWSRegion         string `json:"aws_region"`
	TableName         string `json:"table_name"`
	RemoteID          string `json:"remote_id"`
	VaultDir          string `json:"vault_dir"`
	SessionSecretName string `json:"session_secret_name,omitempty"` // AWS Secrets Manager secret name for session key
	SessionTimeoutMin int    `json:"session_timeout_minutes,omitempty"`
	DefaultTTLSeconds int    `json:"default_ttl_seconds,omitempty"`
	SweepIntervalSec  int    `json:"sweep_interval_seconds,omitempty"`
	ConfigPath        string `json:"-"` // Not stored, just for reference
}

// GetSessionPath returns the path to the session file
func (c *Config) GetSessionPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".slvault", "session.json")
}

// SessionTimeout returns the configured session cache lifetime.
func (c *Config) SessionTimeout() time.Duration {
	if c.SessionTimeoutMin <= 0 {
		return 0
	}
	return time.Duration(c.SessionTimeoutMin) * time.Minute
}

// DefaultTTL returns the default message lifetime; zero means keep forever.
func (c *Config) DefaultTTL() time.Duration {
	if c.DefaultTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.DefaultTTLSeconds) * time.Second
}

// SweepInterval returns the configured sweep tick, or zero for the default.
func (c *Config) SweepInterval() time.Duration {
	if c.SweepIntervalSec <= 0 {
		return 0
	}
	return time.Duration(c.SweepIntervalSec) * time.Second
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		AWSRegion:         "us-west-2",
		TableName:         "slvault_vaults",
		VaultDir:          filepath.Join(homeDir, ".slvault", "vault"),
		SessionSecretName: "slvault/session-key",
		ConfigPath:        filepath.Join(homeDir, ".slvault", "config.json"),
	}
}

// LoadConfig loads configuration from file
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(cfg.ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config if file doesn't exist
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ConfigPath = filepath.Join(filepath.Dir(cfg.ConfigPath), "config.json")
	return cfg, nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig() error {
	dir := filepath.Dir(c.ConfigPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.ConfigPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
