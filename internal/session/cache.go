package session

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/slvault/slvault/internal/crypto"
)

const (
	// DefaultCacheTimeout bounds how long an unlocked key survives on disk
	DefaultCacheTimeout = 30 * time.Minute

	cacheFileMode = 0600
)

// ErrNoSession means there is no usable cached session: none was saved, it
// expired, or it cannot be decrypted on this machine.
var ErrNoSession = errors.New("session: no active session")

// KeySource supplies the key that wraps cached session keys. The AWS
// Secrets Manager escrow implements it; without one, a machine-local key is
// derived instead.
type KeySource interface {
	SessionKey(ctx context.Context) ([]byte, error)
}

// cacheRecord is the on-disk session format. The vault key is encrypted
// under a random session key, which is itself wrapped so the file is useless
// off this machine (or without the escrow secret).
type cacheRecord struct {
	EncryptedVaultKey string    `json:"encrypted_vault_key"`
	VaultKeyIV        string    `json:"vault_key_iv"`
	SessionKey        string    `json:"session_key"`
	SessionKeyIV      string    `json:"session_key_iv"`
	CreatedAt         time.Time `json:"created_at"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// Cache persists the unlocked vault key across CLI invocations, with a TTL.
type Cache struct {
	path    string
	timeout time.Duration
	escrow  KeySource
}

// NewCache creates a session cache at path. escrow may be nil.
func NewCache(path string, timeout time.Duration, escrow KeySource) *Cache {
	if timeout <= 0 {
		timeout = DefaultCacheTimeout
	}
	return &Cache{path: path, timeout: timeout, escrow: escrow}
}

// wrapKey returns the key protecting the cached session key: the escrow
// secret when configured, otherwise a key derived from user-specific
// machine state.
func (c *Cache) wrapKey(ctx context.Context) ([]byte, error) {
	if c.escrow != nil {
		key, err := c.escrow.SessionKey(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch escrow key: %w", err)
		}
		return key, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME")
	}

	salt := []byte(fmt.Sprintf("%s:%s:slvault", homeDir, username))
	return crypto.DeriveKey([]byte(homeDir+username), salt, crypto.DefaultIterations), nil
}

// Save writes the vault key to the session file, encrypted and wrapped.
func (c *Cache) Save(ctx context.Context, vaultKey []byte) error {
	sessionKey := make([]byte, crypto.KeySize)
	if _, err := rand.Read(sessionKey); err != nil {
		return fmt.Errorf("failed to generate session key: %w", err)
	}
	defer crypto.Zeroize(sessionKey)

	encryptedVaultKey, vaultKeyIV, err := crypto.Encrypt(vaultKey, sessionKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt vault key: %w", err)
	}

	wrap, err := c.wrapKey(ctx)
	if err != nil {
		return err
	}
	defer crypto.Zeroize(wrap)

	wrappedSessionKey, sessionKeyIV, err := crypto.Encrypt(sessionKey, wrap)
	if err != nil {
		return fmt.Errorf("failed to wrap session key: %w", err)
	}

	now := time.Now()
	data, err := json.Marshal(cacheRecord{
		EncryptedVaultKey: crypto.EncodeBase64(encryptedVaultKey),
		VaultKeyIV:        crypto.EncodeBase64(vaultKeyIV),
		SessionKey:        crypto.EncodeBase64(wrappedSessionKey),
		SessionKeyIV:      crypto.EncodeBase64(sessionKeyIV),
		CreatedAt:         now,
		ExpiresAt:         now.Add(c.timeout),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, cacheFileMode); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load reads back the vault key, or ErrNoSession.
func (c *Cache) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var record cacheRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	if time.Now().After(record.ExpiresAt) {
		_ = c.Clear()
		return nil, ErrNoSession
	}

	wrap, err := c.wrapKey(ctx)
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(wrap)

	wrappedSessionKey, err := crypto.DecodeBase64(record.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session key: %w", err)
	}
	sessionKeyIV, err := crypto.DecodeBase64(record.SessionKeyIV)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session key iv: %w", err)
	}
	sessionKey, err := crypto.Decrypt(wrappedSessionKey, sessionKeyIV, wrap)
	if err != nil {
		return nil, ErrNoSession
	}
	defer crypto.Zeroize(sessionKey)

	encryptedVaultKey, err := crypto.DecodeBase64(record.EncryptedVaultKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encrypted vault key: %w", err)
	}
	vaultKeyIV, err := crypto.DecodeBase64(record.VaultKeyIV)
	if err != nil {
		return nil, fmt.Errorf("failed to decode vault key iv: %w", err)
	}

	vaultKey, err := crypto.Decrypt(encryptedVaultKey, vaultKeyIV, sessionKey)
	if err != nil {
		return nil, ErrNoSession
	}
	return vaultKey, nil
}

// Clear removes the session file.
func (c *Cache) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// Active reports whether a usable session is cached.
func (c *Cache) Active(ctx context.Context) bool {
	key, err := c.Load(ctx)
	if err != nil {
		return false
	}
	crypto.Zeroize(key)
	return true
}
