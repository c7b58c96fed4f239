package backup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slvault/slvault/internal/backup"
	"github.com/slvault/slvault/internal/session"
	"github.com/slvault/slvault/internal/storage"
)

func seededBackend(t *testing.T) storage.Backend {
	t.Helper()
	backend := storage.NewMemoryBackend()
	require.NoError(t, session.New(backend).Setup([]byte("p1")))
	require.NoError(t, backend.Set(storage.KeyHistory, []byte(`[]`)))
	return backend
}

func TestExportCarriesAllBlobs(t *testing.T) {
	backend := seededBackend(t)

	bundle, err := backup.Export(backend)
	require.NoError(t, err)

	assert.Equal(t, backup.App, bundle.Meta.App)
	assert.Equal(t, backup.FormatVersion, bundle.Meta.Version)
	assert.NotEmpty(t, bundle.Meta.VaultID)
	assert.NotZero(t, bundle.Meta.CreatedAt)
	assert.NotEmpty(t, bundle.Data.Salt)
	assert.NotEmpty(t, bundle.Data.Canary)
	assert.NotEmpty(t, bundle.Data.History)
	assert.Empty(t, bundle.Data.Contacts, "absent blobs stay absent")
}

func TestExportWithoutVault(t *testing.T) {
	_, err := backup.Export(storage.NewMemoryBackend())
	assert.ErrorIs(t, err, backup.ErrMissingSalt)
}

func TestImportReplacesState(t *testing.T) {
	source := seededBackend(t)
	bundle, err := backup.Export(source)
	require.NoError(t, err)

	target := storage.NewMemoryBackend()
	require.NoError(t, session.New(target).Setup([]byte("other")))
	require.NoError(t, backup.Import(target, bundle))

	salt, err := target.Get(storage.KeySalt)
	require.NoError(t, err)
	sourceSalt, err := source.Get(storage.KeySalt)
	require.NoError(t, err)
	assert.Equal(t, sourceSalt, salt, "the target's old salt is gone")

	id, err := target.Get(storage.KeyVaultID)
	require.NoError(t, err)
	assert.Equal(t, bundle.Meta.VaultID, string(id))
}

func TestImportRejectsBeforeTouchingAnything(t *testing.T) {
	target := seededBackend(t)
	before, err := target.Get(storage.KeySalt)
	require.NoError(t, err)

	err = backup.Import(target, &backup.Bundle{})
	assert.ErrorIs(t, err, backup.ErrMissingSalt)

	err = backup.Import(target, &backup.Bundle{
		Data: backup.Data{Salt: "not base64!!!"},
	})
	assert.ErrorIs(t, err, backup.ErrBadBundle)

	after, err := target.Get(storage.KeySalt)
	require.NoError(t, err)
	assert.Equal(t, before, after, "a rejected bundle must not modify the vault")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	bundle, err := backup.Export(seededBackend(t))
	require.NoError(t, err)

	data, err := backup.Encode(bundle)
	require.NoError(t, err)
	got, err := backup.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, bundle, got)
}
