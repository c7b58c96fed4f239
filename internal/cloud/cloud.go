// Package cloud moves ciphertext bundles to and from a remote opaque-blob
// store. The remote is a dumb keyed document store: it never receives the
// key or password and is never asked to decrypt anything.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slvault/slvault/internal/backup"
	"github.com/slvault/slvault/internal/vault"
)

var (
	// ErrRemoteUnavailable wraps any remote transport failure. Local
	// state is untouched when it is returned.
	ErrRemoteUnavailable = errors.New("cloud: remote unavailable")

	// ErrNotFound means no document exists under the remote id.
	ErrNotFound = errors.New("cloud: document not found")
)

// Document is the opaque cloud record. EncryptedData is the JSON-serialized
// bundle payload, salt included; consumers must treat the whole field as
// opaque.
type Document struct {
	EncryptedData string `json:"encryptedData"`
	LastUpdated   int64  `json:"lastUpdated"`
}

// Remote is a keyed opaque-document store.
type Remote interface {
	Put(ctx context.Context, remoteID string, doc Document) error
	Get(ctx context.Context, remoteID string) (Document, error)
}

// Push uploads the bundle as an opaque document under remoteID.
func Push(ctx context.Context, remote Remote, bundle *backup.Bundle, remoteID string) error {
	data, err := backup.Encode(bundle)
	if err != nil {
		return fmt.Errorf("failed to serialize bundle: %w", err)
	}

	doc := Document{
		EncryptedData: string(data),
		LastUpdated:   vault.Millis(time.Now()),
	}
	if err := remote.Put(ctx, remoteID, doc); err != nil {
		return fmt.Errorf("failed to push vault: %w", err)
	}
	return nil
}

// Pull fetches the document under remoteID and decodes the bundle. The
// caller applies it through the same path as a backup import.
func Pull(ctx context.Context, remote Remote, remoteID string) (*backup.Bundle, error) {
	doc, err := remote.Get(ctx, remoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to pull vault: %w", err)
	}

	bundle, err := backup.Decode([]byte(doc.EncryptedData))
	if err != nil {
		return nil, err
	}
	return bundle, nil
}
