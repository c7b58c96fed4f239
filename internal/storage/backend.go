// Package storage defines the narrow blob port the vault subsystem persists
// through, the encrypted record formats written to it, and the shipped file
// and in-memory backends.
package storage

import "errors"

// Blob keys. The whole persisted state of a vault lives under these keys.
const (
	KeySalt     = "salt"
	KeyVaultID  = "vault_id"
	KeyCanary   = "canary"
	KeyProfile  = "profile"
	KeyContacts = "contacts"
	KeyHistory  = "history"
)

// ErrNotFound is returned by Get when no blob exists under the key.
var ErrNotFound = errors.New("storage: blob not found")

// Backend is the injected storage port: opaque keyed blobs, nothing else.
// The vault never depends on a process-wide singleton store.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	// Clear wipes every blob. Used by vault reset and bundle import.
	Clear() error
}
