// Package session owns the vault key lifecycle: setup, unlock, lock and
// reset. The key exists only while the session is unlocked.
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/slvault/slvault/internal/crypto"
	"github.com/slvault/slvault/internal/storage"
)

// State of the vault as seen by the session layer.
type State string

const (
	StateNoVault  State = "no_vault"
	StateLocked   State = "locked"
	StateUnlocked State = "unlocked"
)

var (
	// ErrNoVault means no salt is persisted: the vault was never set up,
	// or its state is gone.
	ErrNoVault = errors.New("session: vault not found")

	// ErrVaultExists rejects setup while a vault already exists. Reset
	// first; double setup is never treated as an implicit reset.
	ErrVaultExists = errors.New("session: vault already exists")

	// ErrWrongPassword is reported when the canary fails to decrypt under
	// the candidate key.
	ErrWrongPassword = errors.New("session: wrong master password")

	// ErrNotUnlocked refuses store operations while no key is live.
	ErrNotUnlocked = errors.New("session: vault is not unlocked")
)

// The canary is a fixed value encrypted at setup. Unlock decrypts it to
// detect a wrong password immediately instead of on the first record read.
const canaryPlaintext = "slvault/canary/v1"

type canaryRecord struct {
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
}

// Session is the setup/unlock/lock/reset state machine over a storage
// backend. It is owned by a single process; the key is zeroized on lock.
type Session struct {
	backend    storage.Backend
	iterations int
	key        []byte
	salt       []byte
	unlocked   bool
}

// New creates a locked session over the given backend.
func New(backend storage.Backend) *Session {
	return &Session{backend: backend, iterations: crypto.DefaultIterations}
}

// State reports the current vault state.
func (s *Session) State() State {
	if s.unlocked {
		return StateUnlocked
	}
	if _, err := s.backend.Get(storage.KeySalt); err != nil {
		return StateNoVault
	}
	return StateLocked
}

// Setup creates a new vault: fresh salt, derived key, persisted canary.
// The salt is generated exactly once per vault lifetime.
func (s *Session) Setup(password []byte) error {
	if _, err := s.backend.Get(storage.KeySalt); err == nil {
		return ErrVaultExists
	}

	salt, err := crypto.GenerateSalt()
	if err != nil {
		return err
	}
	if err := s.backend.Set(storage.KeySalt, salt); err != nil {
		return fmt.Errorf("failed to persist salt: %w", err)
	}
	if err := s.backend.Set(storage.KeyVaultID, []byte(uuid.New().String())); err != nil {
		return fmt.Errorf("failed to persist vault id: %w", err)
	}

	key := crypto.DeriveKey(password, salt, s.iterations)
	if err := s.writeCanary(key); err != nil {
		crypto.Zeroize(key)
		return err
	}

	s.key = key
	s.salt = salt
	s.unlocked = true
	return nil
}

// Unlock derives the key from the persisted salt and the supplied password.
// Key derivation itself always succeeds; wrongness is caught by the canary
// when one exists, otherwise lazily by the first failing record decrypt.
func (s *Session) Unlock(password []byte) error {
	salt, err := s.backend.Get(storage.KeySalt)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNoVault
		}
		return fmt.Errorf("failed to read salt: %w", err)
	}

	key := crypto.DeriveKey(password, salt, s.iterations)
	if err := s.checkCanary(key); err != nil {
		crypto.Zeroize(key)
		return err
	}

	s.key = key
	s.salt = salt
	s.unlocked = true
	return nil
}

// Resume unlocks the session with an already-derived key, e.g. one loaded
// from the session cache. The canary guards against a stale key.
func (s *Session) Resume(key []byte) error {
	salt, err := s.backend.Get(storage.KeySalt)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNoVault
		}
		return fmt.Errorf("failed to read salt: %w", err)
	}

	candidate := append([]byte(nil), key...)
	if err := s.checkCanary(candidate); err != nil {
		crypto.Zeroize(candidate)
		return err
	}

	s.key = candidate
	s.salt = salt
	s.unlocked = true
	return nil
}

// Lock zeroizes and drops the key. Store operations refuse to run until the
// next unlock.
func (s *Session) Lock() {
	crypto.Zeroize(s.key)
	s.key = nil
	s.salt = nil
	s.unlocked = false
}

// Reset destroys the vault: locks the session and wipes every persisted
// blob. The next Setup starts from nothing.
func (s *Session) Reset() error {
	s.Lock()
	if err := s.backend.Clear(); err != nil {
		return fmt.Errorf("failed to wipe vault: %w", err)
	}
	return nil
}

// Key returns the live vault key, or ErrNotUnlocked.
func (s *Session) Key() ([]byte, error) {
	if !s.unlocked {
		return nil, ErrNotUnlocked
	}
	return s.key, nil
}

// Salt returns a copy of the vault salt while unlocked.
func (s *Session) Salt() []byte {
	return append([]byte(nil), s.salt...)
}

// VaultID returns the public vault identifier, or empty when absent.
func (s *Session) VaultID() string {
	id, err := s.backend.Get(storage.KeyVaultID)
	if err != nil {
		return ""
	}
	return string(id)
}

func (s *Session) writeCanary(key []byte) error {
	ciphertext, iv, err := crypto.Encrypt([]byte(canaryPlaintext), key)
	if err != nil {
		return fmt.Errorf("failed to encrypt canary: %w", err)
	}
	data, err := json.Marshal(canaryRecord{
		IV:         crypto.EncodeBase64(iv),
		Ciphertext: crypto.EncodeBase64(ciphertext),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal canary: %w", err)
	}
	if err := s.backend.Set(storage.KeyCanary, data); err != nil {
		return fmt.Errorf("failed to persist canary: %w", err)
	}
	return nil
}

// checkCanary verifies the candidate key against the persisted canary.
// A missing or unparseable canary (e.g. an imported bundle that never wrote
// one) is not an error: detection then stays lazy.
func (s *Session) checkCanary(key []byte) error {
	data, err := s.backend.Get(storage.KeyCanary)
	if err != nil {
		return nil
	}

	var record canaryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil
	}
	iv, err := crypto.DecodeBase64(record.IV)
	if err != nil {
		return nil
	}
	ciphertext, err := crypto.DecodeBase64(record.Ciphertext)
	if err != nil {
		return nil
	}

	plaintext, err := crypto.Decrypt(ciphertext, iv, key)
	if err != nil || string(plaintext) != canaryPlaintext {
		return ErrWrongPassword
	}
	return nil
}
