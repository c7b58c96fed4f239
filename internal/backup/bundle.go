// Package backup bundles the raw persisted vault blobs for export, import
// and cloud transfer. It never decrypts anything and never sees the key.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/slvault/slvault/internal/crypto"
	"github.com/slvault/slvault/internal/storage"
	"github.com/slvault/slvault/internal/vault"
)

const (
	// App identifies bundles produced by this application
	App = "slvault"

	// FormatVersion of the bundle layout
	FormatVersion = 1
)

var (
	// ErrMissingSalt rejects a bundle (or an export source) without a
	// salt. A bundle without the salt can never be decrypted again.
	ErrMissingSalt = errors.New("backup: bundle is missing the vault salt")

	// ErrBadBundle means the bundle is not well formed. Nothing is
	// imported from a bad bundle.
	ErrBadBundle = errors.New("backup: malformed bundle")
)

// Meta describes a bundle.
type Meta struct {
	App       string `json:"app"`
	Version   int    `json:"version"`
	CreatedAt int64  `json:"createdAt"`
	VaultID   string `json:"vaultId"`
}

// Data carries the raw persisted blobs, base64 encoded. Only the salt is
// mandatory; the rest may be absent for a fresh vault.
type Data struct {
	Salt     string `json:"salt"`
	Profile  string `json:"profile,omitempty"`
	Contacts string `json:"contacts,omitempty"`
	History  string `json:"history,omitempty"`
	Canary   string `json:"canary,omitempty"`
}

// Bundle is the full exportable vault state.
type Bundle struct {
	Meta Meta `json:"meta"`
	Data Data `json:"data"`
}

// Export snapshots the persisted blobs. Decryptability is not checked; the
// bundle is ciphertext in, ciphertext out.
func Export(backend storage.Backend) (*Bundle, error) {
	salt, err := backend.Get(storage.KeySalt)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrMissingSalt
		}
		return nil, fmt.Errorf("failed to read salt: %w", err)
	}

	bundle := &Bundle{
		Meta: Meta{
			App:       App,
			Version:   FormatVersion,
			CreatedAt: vault.Millis(time.Now()),
		},
		Data: Data{Salt: crypto.EncodeBase64(salt)},
	}

	if id, err := backend.Get(storage.KeyVaultID); err == nil {
		bundle.Meta.VaultID = string(id)
	}
	for key, field := range map[string]*string{
		storage.KeyProfile:  &bundle.Data.Profile,
		storage.KeyContacts: &bundle.Data.Contacts,
		storage.KeyHistory:  &bundle.Data.History,
		storage.KeyCanary:   &bundle.Data.Canary,
	} {
		blob, err := backend.Get(key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		*field = crypto.EncodeBase64(blob)
	}

	return bundle, nil
}

// Import validates the bundle and atomically replaces every persisted blob
// with its contents. Blobs absent from the bundle are discarded. Validation
// happens before the first destructive write: a rejected bundle leaves the
// vault untouched.
func Import(backend storage.Backend, bundle *Bundle) error {
	if bundle == nil {
		return ErrBadBundle
	}
	if bundle.Data.Salt == "" {
		return ErrMissingSalt
	}

	blobs := make(map[string][]byte)
	for key, field := range map[string]string{
		storage.KeySalt:     bundle.Data.Salt,
		storage.KeyProfile:  bundle.Data.Profile,
		storage.KeyContacts: bundle.Data.Contacts,
		storage.KeyHistory:  bundle.Data.History,
		storage.KeyCanary:   bundle.Data.Canary,
	} {
		if field == "" {
			continue
		}
		blob, err := crypto.DecodeBase64(field)
		if err != nil {
			return fmt.Errorf("%w: bad %s encoding", ErrBadBundle, key)
		}
		blobs[key] = blob
	}
	if len(blobs[storage.KeySalt]) == 0 {
		return ErrMissingSalt
	}

	if err := backend.Clear(); err != nil {
		return fmt.Errorf("failed to clear vault: %w", err)
	}
	if bundle.Meta.VaultID != "" {
		if err := backend.Set(storage.KeyVaultID, []byte(bundle.Meta.VaultID)); err != nil {
			return fmt.Errorf("failed to restore vault id: %w", err)
		}
	}
	for key, blob := range blobs {
		if err := backend.Set(key, blob); err != nil {
			return fmt.Errorf("failed to restore %s: %w", key, err)
		}
	}
	return nil
}

// Encode serializes a bundle for a backup file or cloud document.
func Encode(bundle *Bundle) ([]byte, error) {
	return json.MarshalIndent(bundle, "", "  ")
}

// Decode parses a serialized bundle.
func Decode(data []byte) (*Bundle, error) {
	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadBundle, err)
	}
	return &bundle, nil
}
