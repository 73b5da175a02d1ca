package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/chacha20poly1305"
)

// Cipher encrypts free-text fields (symptom/lifestyle notes) before they are
// persisted. Callers encrypt and decrypt explicitly at the service boundary so
// the at-rest contract is visible, instead of hiding it in model accessors.
type Cipher struct {
	key []byte
}

// NewCipher derives a fixed 32-byte key from the configured secret. An empty
// secret is allowed in development; ciphertexts then do not survive restarts.
func NewCipher(secret string) *Cipher {
	var key [32]byte
	if secret != "" {
		key = sha256.Sum256([]byte(secret))
	} else if _, err := rand.Read(key[:]); err != nil {
		panic(err)
	}
	return &Cipher{key: key[:]}
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt returns "" for ciphertext that cannot be opened (wrong key, garbage
// rows) rather than an error, matching the read-path contract: a lost note is
// shown as empty, never as a 500.
func (c *Cipher) Decrypt(ciphertext string) string {
	if ciphertext == "" {
		return ""
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return ""
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return ""
	}
	if len(raw) < aead.NonceSize() {
		return ""
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return ""
	}
	return string(plain)
}
