package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/leadchat/pkg/ports"
)

// encryptedPrefix marks values written by the encryption middleware.
const encryptedPrefix = "enc:v1:"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.Backend
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts values at rest using AES-GCM.
//
// Values stored before encryption was enabled are returned unchanged. A value that
// no key can decrypt is returned in its stored form, which the ledger treats as a
// corrupt entry and evicts.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.Backend) ports.Backend {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

// ParseKey decodes a 32-byte key given as hex or standard base64.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if key, err := hex.DecodeString(s); err == nil && len(key) == 32 {
		return key, nil
	}
	if key, err := base64.StdEncoding.DecodeString(s); err == nil && len(key) == 32 {
		return key, nil
	}
	return nil, errors.New("encryption key must be 32 bytes, hex or base64 encoded")
}

func (m *encryptionMiddleware) Get(ctx context.Context, key string) (string, error) {
	stored, err := m.next.Get(ctx, key)
	if err != nil {
		return "", err
	}

	encoded, ok := strings.CutPrefix(stored, encryptedPrefix)
	if !ok {
		return stored, nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return stored, nil
	}
	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return stored, nil
	}
	return string(plainText), nil
}

func (m *encryptionMiddleware) Set(ctx context.Context, key, value string) error {
	ciphertext, err := encrypt([]byte(value), m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt value: %w", err)
	}
	return m.next.Set(ctx, key, encryptedPrefix+base64.StdEncoding.EncodeToString(ciphertext))
}

func (m *encryptionMiddleware) Remove(ctx context.Context, key string) error {
	return m.next.Remove(ctx, key)
}

func (m *encryptionMiddleware) Keys(ctx context.Context) ([]string, error) {
	return m.next.Keys(ctx)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
