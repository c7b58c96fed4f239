package storage

import (
	"encoding/json"

	"github.com/slvault/slvault/internal/vault"
)

// EncryptedMessage is the persisted form of a message. Every encrypted field
// carries its own IV; metadata needed for partitioning and expiry stays in
// the clear.
type EncryptedMessage struct {
	ID              string `json:"id"`
	Role            string `json:"role"`
	IV              string `json:"iv"`
	Ciphertext      string `json:"ciphertext"`
	Kind            string `json:"kind"`
	IVMedia         string `json:"ivMedia,omitempty"`
	CiphertextMedia string `json:"ciphertextMedia,omitempty"`
	CreatedAt       int64  `json:"createdAt"`
	ExpiresAt       int64  `json:"expiresAt,omitempty"`
	Conversation    string `json:"conversation,omitempty"`
}

// ConversationID returns the record's partition, defaulting to "global"
// when the field is absent.
func (em EncryptedMessage) ConversationID() string {
	if em.Conversation == "" {
		return vault.GlobalConversation
	}
	return em.Conversation
}

// Expired reports whether the record is past its TTL at the given epoch-ms
// instant. Expiry metadata is plaintext, so compaction never needs the key.
func (em EncryptedMessage) Expired(nowMillis int64) bool {
	return em.ExpiresAt != 0 && em.ExpiresAt <= nowMillis
}

// EncryptedContact is the persisted form of a contact, one ciphertext+IV
// pair per human-readable field.
type EncryptedContact struct {
	ID              string `json:"id"`
	IVName          string `json:"ivName"`
	CiphertextName  string `json:"ciphertextName"`
	IVPhone         string `json:"ivPhone,omitempty"`
	CiphertextPhone string `json:"ciphertextPhone,omitempty"`
	CreatedAt       int64  `json:"createdAt"`
}

// EncryptedProfile is the persisted form of the user profile.
type EncryptedProfile struct {
	IVDisplayName         string `json:"ivDisplayName,omitempty"`
	CiphertextDisplayName string `json:"ciphertextDisplayName,omitempty"`
	IVAbout               string `json:"ivAbout,omitempty"`
	CiphertextAbout       string `json:"ciphertextAbout,omitempty"`
}

// EncodeHistory serializes the full message collection.
func EncodeHistory(records []EncryptedMessage) ([]byte, error) {
	if records == nil {
		records = []EncryptedMessage{}
	}
	return json.Marshal(records)
}

// DecodeHistory parses the full message collection. Nil or empty data is an
// empty collection.
func DecodeHistory(data []byte) ([]EncryptedMessage, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var records []EncryptedMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// EncodeContacts serializes the contact collection.
func EncodeContacts(records []EncryptedContact) ([]byte, error) {
	if records == nil {
		records = []EncryptedContact{}
	}
	return json.Marshal(records)
}

// DecodeContacts parses the contact collection.
func DecodeContacts(data []byte) ([]EncryptedContact, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var records []EncryptedContact
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// EncodeProfile serializes the profile record.
func EncodeProfile(record *EncryptedProfile) ([]byte, error) {
	return json.Marshal(record)
}

// DecodeProfile parses the profile record.
func DecodeProfile(data []byte) (*EncryptedProfile, error) {
	var record EncryptedProfile
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
