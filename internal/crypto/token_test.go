package crypto_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slvault/slvault/internal/crypto"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := crypto.SealToken([]byte("passphrase"), []byte("secret text"))
	require.NoError(t, err)

	parts := strings.Split(token, ":")
	require.Len(t, parts, 4)
	assert.Equal(t, crypto.TokenVersion, parts[0])

	got, err := crypto.OpenToken([]byte("passphrase"), token)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret text"), got)
}

func TestTokenSelfContained(t *testing.T) {
	// Two tokens for the same plaintext carry independent salts, so the
	// ciphertext sections differ.
	t1, err := crypto.SealToken([]byte("pw"), []byte("same"))
	require.NoError(t, err)
	t2, err := crypto.SealToken([]byte("pw"), []byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)
}

func TestTokenWrongPassword(t *testing.T) {
	token, err := crypto.SealToken([]byte("right"), []byte("secret"))
	require.NoError(t, err)

	_, err = crypto.OpenToken([]byte("wrong"), token)
	assert.ErrorIs(t, err, crypto.ErrDecryptionAuth)
}

func TestTokenMalformed(t *testing.T) {
	for _, token := range []string{
		"",
		"sl1",
		"sl1:only:three",
		"sl2:AAAA:AAAA:AAAA",
		"sl1:!!!:AAAA:AAAA",
		"sl1:AAAA:!!!:AAAA",
		"sl1:AAAA:AAAA:!!!",
	} {
		_, err := crypto.OpenToken([]byte("pw"), token)
		assert.ErrorIs(t, err, crypto.ErrMalformedToken, "token %q", token)
	}
}
