package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the size of the per-vault (and per-token) KDF salt
	SaltSize = 16

	// KeySize is the size of the derived symmetric key (AES-256)
	KeySize = 32

	// IVSize is the AES-GCM nonce size; one fresh IV per encrypted field
	IVSize = 12

	// DefaultIterations is the PBKDF2-SHA256 iteration count
	DefaultIterations = 100000
)

// ErrDecryptionAuth is returned when the authentication tag of a ciphertext
// does not verify: wrong key, or tampered/corrupted ciphertext or IV.
// Callers must treat it as a distinct failure, never as plaintext.
var ErrDecryptionAuth = errors.New("crypto: message authentication failed")

// DeriveKey derives a symmetric key from a password and salt using
// PBKDF2-SHA256. It is a pure function of its inputs: the same password and
// salt always produce the same key, which is what makes unlock replayable.
func DeriveKey(password, salt []byte, iterations int) []byte {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return pbkdf2.Key(password, salt, iterations, KeySize, sha256.New)
}

// GenerateSalt generates a random salt
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// Encrypt encrypts data using AES-256-GCM with a fresh random 12-byte IV.
// The returned ciphertext carries the authentication tag.
func Encrypt(plaintext []byte, key []byte) ([]byte, []byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	ciphertext := aead.Seal(nil, iv, plaintext, nil)
	return ciphertext, iv, nil
}

// Decrypt decrypts data using AES-256-GCM. Tag verification is built in:
// any failure to authenticate yields ErrDecryptionAuth.
func Decrypt(ciphertext []byte, iv []byte, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(iv) != IVSize {
		return nil, ErrDecryptionAuth
	}

	plaintext, err := aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionAuth
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return aead, nil
}

// EncodeBase64 encodes bytes to base64 string
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 decodes base64 string to bytes
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// ConstantTimeCompare performs constant-time comparison
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Zeroize overwrites a byte slice with zeros to clear sensitive data from memory
func Zeroize(data []byte) {
	for i := range data {
		data[i] = 0
	}
}
