package vault

import (
	"time"

	"github.com/google/uuid"
)

// GlobalConversation is the default partition for messages not scoped to a
// contact.
const GlobalConversation = "global"

// Role identifies the author of a message.
type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

// Kind identifies the payload type of a message.
type Kind string

const (
	KindText  Kind = "text"
	KindAudio Kind = "audio"
)

// Message is a decrypted message record. Timestamps are epoch milliseconds;
// ExpiresAt of zero means the message never expires.
type Message struct {
	ID           string
	Role         Role
	Content      string
	Kind         Kind
	Media        []byte
	CreatedAt    int64
	ExpiresAt    int64
	Conversation string
}

// NewMessage creates a message in the given conversation. A positive ttl
// sets ExpiresAt to creation time plus ttl, which keeps ExpiresAt strictly
// greater than CreatedAt.
func NewMessage(role Role, content string, conversation string, ttl time.Duration) Message {
	if conversation == "" {
		conversation = GlobalConversation
	}
	now := Millis(time.Now())
	m := Message{
		ID:           uuid.New().String(),
		Role:         role,
		Content:      content,
		Kind:         KindText,
		CreatedAt:    now,
		Conversation: conversation,
	}
	if ttl > 0 {
		m.ExpiresAt = now + ttl.Milliseconds()
	}
	return m
}

// WithMedia attaches a media payload and marks the message as audio.
func (m Message) WithMedia(payload []byte) Message {
	m.Kind = KindAudio
	m.Media = append([]byte(nil), payload...)
	return m
}

// Expired reports whether the message is past its TTL at the given time.
func (m Message) Expired(now time.Time) bool {
	return m.ExpiresAt != 0 && m.ExpiresAt <= Millis(now)
}

// Contact is a decrypted contact record.
type Contact struct {
	ID        string
	Name      string
	Phone     string
	CreatedAt int64
}

// NewContact creates a contact with a fresh id.
func NewContact(name, phone string) Contact {
	return Contact{
		ID:        uuid.New().String(),
		Name:      name,
		Phone:     phone,
		CreatedAt: Millis(time.Now()),
	}
}

// Profile is the decrypted user profile.
type Profile struct {
	DisplayName string
	About       string
}

// Millis converts a time to epoch milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
