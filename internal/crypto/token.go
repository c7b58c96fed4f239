package crypto

import (
	"errors"
	"fmt"
	"strings"
)

// TokenVersion tags the self-contained ciphertext token format:
// "sl1:<salt-b64>:<iv-b64>:<ciphertext-b64>". The token carries its own
// salt, so it is decryptable with nothing but the password.
const TokenVersion = "sl1"

// ErrMalformedToken is returned when a token does not match the
// "sl1:salt:iv:ciphertext" layout.
var ErrMalformedToken = errors.New("crypto: malformed token")

// SealToken encrypts plaintext under a key derived from password and a fresh
// salt, and packs everything into a single token string.
func SealToken(password, plaintext []byte) (string, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}

	key := DeriveKey(password, salt, DefaultIterations)
	defer Zeroize(key)

	ciphertext, iv, err := Encrypt(plaintext, key)
	if err != nil {
		return "", fmt.Errorf("failed to seal token: %w", err)
	}

	return strings.Join([]string{
		TokenVersion,
		EncodeBase64(salt),
		EncodeBase64(iv),
		EncodeBase64(ciphertext),
	}, ":"), nil
}

// OpenToken unpacks and decrypts a token produced by SealToken.
func OpenToken(password []byte, token string) ([]byte, error) {
	parts := strings.Split(token, ":")
	if len(parts) != 4 || parts[0] != TokenVersion {
		return nil, ErrMalformedToken
	}

	salt, err := DecodeBase64(parts[1])
	if err != nil {
		return nil, ErrMalformedToken
	}
	iv, err := DecodeBase64(parts[2])
	if err != nil {
		return nil, ErrMalformedToken
	}
	ciphertext, err := DecodeBase64(parts[3])
	if err != nil {
		return nil, ErrMalformedToken
	}

	key := DeriveKey(password, salt, DefaultIterations)
	defer Zeroize(key)

	return Decrypt(ciphertext, iv, key)
}
