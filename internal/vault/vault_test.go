package vault_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slvault/slvault/internal/vault"
)

func TestNewMessageDefaults(t *testing.T) {
	m := vault.NewMessage(vault.RoleUser, "hi", "", 0)

	require.NotEmpty(t, m.ID)
	assert.Equal(t, vault.GlobalConversation, m.Conversation)
	assert.Equal(t, vault.KindText, m.Kind)
	assert.NotZero(t, m.CreatedAt)
	assert.Zero(t, m.ExpiresAt, "absent ttl means never expires")
	assert.False(t, m.Expired(time.Now().Add(24*time.Hour)))
}

func TestNewMessageTTL(t *testing.T) {
	m := vault.NewMessage(vault.RoleUser, "hi", "alice", time.Minute)

	assert.Equal(t, "alice", m.Conversation)
	assert.Greater(t, m.ExpiresAt, m.CreatedAt)
	assert.Equal(t, m.CreatedAt+time.Minute.Milliseconds(), m.ExpiresAt)

	created := time.UnixMilli(m.CreatedAt)
	assert.False(t, m.Expired(created.Add(30*time.Second)))
	assert.True(t, m.Expired(created.Add(61*time.Second)))
}

func TestMessageIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		m := vault.NewMessage(vault.RoleModel, "x", "", 0)
		require.False(t, seen[m.ID])
		seen[m.ID] = true
	}
}

func TestWithMedia(t *testing.T) {
	payload := []byte{1, 2, 3}
	m := vault.NewMessage(vault.RoleUser, "voice note", "", 0).WithMedia(payload)

	assert.Equal(t, vault.KindAudio, m.Kind)
	assert.Equal(t, payload, m.Media)

	payload[0] = 9
	assert.Equal(t, byte(1), m.Media[0], "media payload is copied")
}
