// Package store is the conversation-partitioned record store. Saves are
// whole-collection read-modify-write, so every mutation is serialized
// through one lock: one mutation completes, including its persisted write,
// before the next begins, regardless of which conversation it targets.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/slvault/slvault/internal/backup"
	"github.com/slvault/slvault/internal/crypto"
	"github.com/slvault/slvault/internal/session"
	"github.com/slvault/slvault/internal/storage"
	"github.com/slvault/slvault/internal/vault"
)

// ErrInvalidExpiry rejects a message whose expiry is not strictly after its
// creation time.
var ErrInvalidExpiry = errors.New("store: expiresAt must be after createdAt")

// Store reads and writes encrypted records through the storage port, using
// the session's live key.
type Store struct {
	backend storage.Backend
	session *session.Session
	logger  *slog.Logger

	// mu orders all mutations over the shared persisted collection:
	// saves, clears, load-time compactions and bundle imports.
	mu sync.Mutex
}

// New creates a store over the backend and session.
func New(backend storage.Backend, sess *session.Session, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: backend, session: sess, logger: logger}
}

// LoadConversation returns the conversation's decrypted messages ordered by
// creation time. Corrupt records are skipped, never fatal. Records past
// their TTL are dropped and the collection is compacted before returning.
func (s *Store) LoadConversation(ctx context.Context, conversation string) ([]vault.Message, error) {
	if conversation == "" {
		conversation = vault.GlobalConversation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := s.session.Key()
	if err != nil {
		return nil, err
	}

	records := s.readHistory()
	now := vault.Millis(time.Now())

	survivors := make([]storage.EncryptedMessage, 0, len(records))
	expired := 0
	for _, record := range records {
		if record.Expired(now) {
			expired++
			continue
		}
		survivors = append(survivors, record)
	}
	if expired > 0 {
		if err := s.writeHistory(survivors); err != nil {
			return nil, fmt.Errorf("failed to compact history: %w", err)
		}
		s.logger.Info("pruned expired messages on load", "count", expired)
	}

	messages := make([]vault.Message, 0, len(survivors))
	skipped := 0
	for _, record := range survivors {
		if record.ConversationID() != conversation {
			continue
		}
		msg, err := decryptMessage(key, record)
		if err != nil {
			skipped++
			s.logger.Warn("skipping undecryptable message", "id", record.ID, "error", err)
			continue
		}
		messages = append(messages, msg)
	}
	if skipped > 0 {
		s.logger.Warn("conversation loaded with corrupt records skipped",
			"conversation", conversation, "skipped", skipped)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt < messages[j].CreatedAt
	})
	return messages, nil
}

// SaveConversation replaces the conversation's records with the given
// messages, encrypting each field with a fresh IV. Records of every other
// conversation are carried over byte-for-byte: untouched partitions are
// never re-encrypted and their IVs never rotate.
func (s *Store) SaveConversation(ctx context.Context, conversation string, messages []vault.Message) error {
	if conversation == "" {
		conversation = vault.GlobalConversation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := s.session.Key()
	if err != nil {
		return err
	}

	records := s.readHistory()
	kept := make([]storage.EncryptedMessage, 0, len(records)+len(messages))
	for _, record := range records {
		if record.ConversationID() != conversation {
			kept = append(kept, record)
		}
	}
	for _, msg := range messages {
		record, err := encryptMessage(key, msg, conversation)
		if err != nil {
			return err
		}
		kept = append(kept, record)
	}

	return s.writeHistory(kept)
}

// ClearConversation removes every record of the conversation.
func (s *Store) ClearConversation(ctx context.Context, conversation string) error {
	return s.SaveConversation(ctx, conversation, nil)
}

// LoadContacts decrypts the contact collection, skipping corrupt entries.
func (s *Store) LoadContacts(ctx context.Context) ([]vault.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := s.session.Key()
	if err != nil {
		return nil, err
	}

	data, err := s.backend.Get(storage.KeyContacts)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	records, err := storage.DecodeContacts(data)
	if err != nil {
		s.logger.Warn("contacts blob unparseable, treating as empty", "error", err)
		return nil, nil
	}

	contacts := make([]vault.Contact, 0, len(records))
	for _, record := range records {
		name, err := decryptField(key, record.IVName, record.CiphertextName)
		if err != nil {
			s.logger.Warn("skipping undecryptable contact", "id", record.ID, "error", err)
			continue
		}
		contact := vault.Contact{ID: record.ID, Name: string(name), CreatedAt: record.CreatedAt}
		if record.CiphertextPhone != "" {
			phone, err := decryptField(key, record.IVPhone, record.CiphertextPhone)
			if err != nil {
				s.logger.Warn("skipping undecryptable contact", "id", record.ID, "error", err)
				continue
			}
			contact.Phone = string(phone)
		}
		contacts = append(contacts, contact)
	}
	return contacts, nil
}

// SaveContacts replaces the contact collection.
func (s *Store) SaveContacts(ctx context.Context, contacts []vault.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := s.session.Key()
	if err != nil {
		return err
	}

	records := make([]storage.EncryptedContact, 0, len(contacts))
	for _, contact := range contacts {
		record := storage.EncryptedContact{ID: contact.ID, CreatedAt: contact.CreatedAt}
		record.IVName, record.CiphertextName, err = encryptField(key, []byte(contact.Name))
		if err != nil {
			return err
		}
		if contact.Phone != "" {
			record.IVPhone, record.CiphertextPhone, err = encryptField(key, []byte(contact.Phone))
			if err != nil {
				return err
			}
		}
		records = append(records, record)
	}

	data, err := storage.EncodeContacts(records)
	if err != nil {
		return fmt.Errorf("failed to serialize contacts: %w", err)
	}
	return s.backend.Set(storage.KeyContacts, data)
}

// LoadProfile decrypts the profile. An absent profile is empty, not an
// error; an undecryptable field is left blank.
func (s *Store) LoadProfile(ctx context.Context) (vault.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var profile vault.Profile
	if err := ctx.Err(); err != nil {
		return profile, err
	}
	key, err := s.session.Key()
	if err != nil {
		return profile, err
	}

	data, err := s.backend.Get(storage.KeyProfile)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return profile, nil
		}
		return profile, err
	}
	record, err := storage.DecodeProfile(data)
	if err != nil {
		s.logger.Warn("profile blob unparseable, treating as empty", "error", err)
		return profile, nil
	}

	if record.CiphertextDisplayName != "" {
		if name, err := decryptField(key, record.IVDisplayName, record.CiphertextDisplayName); err == nil {
			profile.DisplayName = string(name)
		} else {
			s.logger.Warn("skipping undecryptable profile field", "field", "displayName", "error", err)
		}
	}
	if record.CiphertextAbout != "" {
		if about, err := decryptField(key, record.IVAbout, record.CiphertextAbout); err == nil {
			profile.About = string(about)
		} else {
			s.logger.Warn("skipping undecryptable profile field", "field", "about", "error", err)
		}
	}
	return profile, nil
}

// SaveProfile replaces the profile.
func (s *Store) SaveProfile(ctx context.Context, profile vault.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := s.session.Key()
	if err != nil {
		return err
	}

	var record storage.EncryptedProfile
	if profile.DisplayName != "" {
		record.IVDisplayName, record.CiphertextDisplayName, err = encryptField(key, []byte(profile.DisplayName))
		if err != nil {
			return err
		}
	}
	if profile.About != "" {
		record.IVAbout, record.CiphertextAbout, err = encryptField(key, []byte(profile.About))
		if err != nil {
			return err
		}
	}

	data, err := storage.EncodeProfile(&record)
	if err != nil {
		return fmt.Errorf("failed to serialize profile: %w", err)
	}
	return s.backend.Set(storage.KeyProfile, data)
}

// ExportBundle snapshots the raw persisted blobs under the mutation lock,
// so the bundle is a consistent view. No key required: the serializer never
// decrypts.
func (s *Store) ExportBundle(ctx context.Context) (*backup.Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return backup.Export(s.backend)
}

// ImportBundle replaces the persisted state with the bundle's contents,
// ordered with all other mutations. The caller is responsible for locking
// the session afterwards, since the live key may not match the new salt.
func (s *Store) ImportBundle(ctx context.Context, bundle *backup.Bundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return backup.Import(s.backend, bundle)
}

// readHistory loads the full record collection. A missing blob is an empty
// collection; so is an unparseable one, which is logged and survives only
// until the next write.
func (s *Store) readHistory() []storage.EncryptedMessage {
	data, err := s.backend.Get(storage.KeyHistory)
	if err != nil {
		return nil
	}
	records, err := storage.DecodeHistory(data)
	if err != nil {
		s.logger.Warn("history blob unparseable, treating as empty", "error", err)
		return nil
	}
	return records
}

func (s *Store) writeHistory(records []storage.EncryptedMessage) error {
	data, err := storage.EncodeHistory(records)
	if err != nil {
		return fmt.Errorf("failed to serialize history: %w", err)
	}
	return s.backend.Set(storage.KeyHistory, data)
}

func encryptField(key, plaintext []byte) (iv, ciphertext string, err error) {
	ct, rawIV, err := crypto.Encrypt(plaintext, key)
	if err != nil {
		return "", "", err
	}
	return crypto.EncodeBase64(rawIV), crypto.EncodeBase64(ct), nil
}

func decryptField(key []byte, iv, ciphertext string) ([]byte, error) {
	rawIV, err := crypto.DecodeBase64(iv)
	if err != nil {
		return nil, fmt.Errorf("bad iv encoding: %w", err)
	}
	rawCT, err := crypto.DecodeBase64(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("bad ciphertext encoding: %w", err)
	}
	return crypto.Decrypt(rawCT, rawIV, key)
}

func encryptMessage(key []byte, msg vault.Message, conversation string) (storage.EncryptedMessage, error) {
	if msg.ExpiresAt != 0 && msg.ExpiresAt <= msg.CreatedAt {
		return storage.EncryptedMessage{}, fmt.Errorf("%w: message %s", ErrInvalidExpiry, msg.ID)
	}

	record := storage.EncryptedMessage{
		ID:           msg.ID,
		Role:         string(msg.Role),
		Kind:         string(msg.Kind),
		CreatedAt:    msg.CreatedAt,
		ExpiresAt:    msg.ExpiresAt,
		Conversation: conversation,
	}

	var err error
	record.IV, record.Ciphertext, err = encryptField(key, []byte(msg.Content))
	if err != nil {
		return storage.EncryptedMessage{}, err
	}
	if len(msg.Media) > 0 {
		record.IVMedia, record.CiphertextMedia, err = encryptField(key, msg.Media)
		if err != nil {
			return storage.EncryptedMessage{}, err
		}
	}
	return record, nil
}

func decryptMessage(key []byte, record storage.EncryptedMessage) (vault.Message, error) {
	content, err := decryptField(key, record.IV, record.Ciphertext)
	if err != nil {
		return vault.Message{}, err
	}

	msg := vault.Message{
		ID:           record.ID,
		Role:         vault.Role(record.Role),
		Content:      string(content),
		Kind:         vault.Kind(record.Kind),
		CreatedAt:    record.CreatedAt,
		ExpiresAt:    record.ExpiresAt,
		Conversation: record.ConversationID(),
	}
	if record.CiphertextMedia != "" {
		media, err := decryptField(key, record.IVMedia, record.CiphertextMedia)
		if err != nil {
			return vault.Message{}, err
		}
		msg.Media = media
	}
	return msg, nil
}
