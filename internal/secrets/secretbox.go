// Package secrets encrypts settings values at rest with AES-256-GCM.
// The client secret is stored encrypted and decrypted just-in-time
// before the token exchange.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	keyLength = 32 // AES-256
	sep       = "|"
)

var ErrBadCiphertext = errors.New("secrets: malformed ciphertext")

type Box struct {
	key []byte
}

// NewBox builds a Box from a base64-encoded 32-byte master key.
func NewBox(masterKeyB64 string) (*Box, error) {
	k, err := base64.StdEncoding.DecodeString(strings.TrimSpace(masterKeyB64))
	if err != nil {
		return nil, fmt.Errorf("secrets: decode master key: %w", err)
	}
	if len(k) != keyLength {
		return nil, fmt.Errorf("secrets: master key must be %d bytes, got %d", keyLength, len(k))
	}
	return &Box{key: k}, nil
}

// Encrypt returns base64(nonce)|base64(ciphertext).
func (b *Box) Encrypt(plainText string) (string, error) {
	aesgcm, err := b.aead()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("secrets: nonce: %w", err)
	}
	sealed := aesgcm.Seal(nil, nonce, []byte(plainText), nil)
	return base64.StdEncoding.EncodeToString(nonce) + sep + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Plaintext input without the separator is
// returned as-is, so unencrypted dev settings keep working.
func (b *Box) Decrypt(value string) (string, error) {
	if !strings.Contains(value, sep) {
		return value, nil
	}
	parts := strings.SplitN(value, sep, 2)
	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrBadCiphertext
	}
	sealed, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrBadCiphertext
	}
	aesgcm, err := b.aead()
	if err != nil {
		return "", err
	}
	if len(nonce) != aesgcm.NonceSize() {
		return "", ErrBadCiphertext
	}
	plain, err := aesgcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("secrets: open: %w", err)
	}
	return string(plain), nil
}

func (b *Box) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(b.key)
	if err != nil {
		return nil, fmt.Errorf("secrets: cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
