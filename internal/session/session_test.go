package session_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slvault/slvault/internal/crypto"
	"github.com/slvault/slvault/internal/session"
	"github.com/slvault/slvault/internal/storage"
)

func TestSetupUnlockLockReset(t *testing.T) {
	backend := storage.NewMemoryBackend()
	s := session.New(backend)

	assert.Equal(t, session.StateNoVault, s.State())
	_, err := s.Key()
	assert.ErrorIs(t, err, session.ErrNotUnlocked)

	require.NoError(t, s.Setup([]byte("p1")))
	assert.Equal(t, session.StateUnlocked, s.State())

	key, err := s.Key()
	require.NoError(t, err)
	require.Len(t, key, crypto.KeySize)
	require.NotEmpty(t, s.VaultID())

	salt, err := backend.Get(storage.KeySalt)
	require.NoError(t, err)
	assert.Len(t, salt, crypto.SaltSize)

	s.Lock()
	assert.Equal(t, session.StateLocked, s.State())
	_, err = s.Key()
	assert.ErrorIs(t, err, session.ErrNotUnlocked)

	// Unlock re-derives the same key from the persisted salt.
	require.NoError(t, s.Unlock([]byte("p1")))
	key2, err := s.Key()
	require.NoError(t, err)
	assert.Equal(t, key, key2)

	saltAfter, err := backend.Get(storage.KeySalt)
	require.NoError(t, err)
	assert.Equal(t, salt, saltAfter, "unlock must never regenerate the salt")

	require.NoError(t, s.Reset())
	assert.Equal(t, session.StateNoVault, s.State())
	_, err = backend.Get(storage.KeySalt)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDoubleSetupRejected(t *testing.T) {
	s := session.New(storage.NewMemoryBackend())
	require.NoError(t, s.Setup([]byte("p1")))

	err := s.Setup([]byte("p2"))
	assert.ErrorIs(t, err, session.ErrVaultExists)
}

func TestUnlockWrongPasswordCanary(t *testing.T) {
	s := session.New(storage.NewMemoryBackend())
	require.NoError(t, s.Setup([]byte("p1")))
	s.Lock()

	err := s.Unlock([]byte("p2"))
	assert.ErrorIs(t, err, session.ErrWrongPassword)
	assert.Equal(t, session.StateLocked, s.State(), "failed unlock stays retryable")

	require.NoError(t, s.Unlock([]byte("p1")))
}

func TestUnlockWithoutCanaryIsLazy(t *testing.T) {
	backend := storage.NewMemoryBackend()
	s := session.New(backend)
	require.NoError(t, s.Setup([]byte("p1")))
	s.Lock()

	// An imported bundle may carry no canary; the session layer then has no
	// password oracle and any password unlocks syntactically.
	require.NoError(t, backend.Delete(storage.KeyCanary))
	require.NoError(t, s.Unlock([]byte("p2")))
	assert.Equal(t, session.StateUnlocked, s.State())
}

func TestUnlockMissingSalt(t *testing.T) {
	s := session.New(storage.NewMemoryBackend())

	err := s.Unlock([]byte("p1"))
	assert.ErrorIs(t, err, session.ErrNoVault)
	assert.Equal(t, session.StateNoVault, s.State())
}

func TestResume(t *testing.T) {
	s := session.New(storage.NewMemoryBackend())
	require.NoError(t, s.Setup([]byte("p1")))
	key, err := s.Key()
	require.NoError(t, err)
	cached := append([]byte(nil), key...)
	s.Lock()

	require.NoError(t, s.Resume(cached))
	assert.Equal(t, session.StateUnlocked, s.State())

	s.Lock()
	stale := make([]byte, crypto.KeySize)
	err = s.Resume(stale)
	assert.ErrorIs(t, err, session.ErrWrongPassword)
}

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	cache := session.NewCache(path, time.Minute, nil)
	ctx := context.Background()

	_, err := cache.Load(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.False(t, cache.Active(ctx))

	vaultKey := make([]byte, crypto.KeySize)
	for i := range vaultKey {
		vaultKey[i] = byte(i)
	}
	require.NoError(t, cache.Save(ctx, vaultKey))
	assert.True(t, cache.Active(ctx))

	got, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, vaultKey, got)

	require.NoError(t, cache.Clear())
	_, err = cache.Load(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestCacheExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	cache := session.NewCache(path, time.Nanosecond, nil)
	ctx := context.Background()

	require.NoError(t, cache.Save(ctx, make([]byte, crypto.KeySize)))
	time.Sleep(5 * time.Millisecond)

	_, err := cache.Load(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)
}
