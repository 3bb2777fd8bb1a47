package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/aretw0/boardgen/pkg/ports"
)

// sealedPrefix marks a RevealedText that holds ciphertext.
const sealedPrefix = "sealed:v1:"

// ErrInvalidKey is returned for keys that are not 32 bytes.
var ErrInvalidKey = errors.New("active key must be 32 bytes (AES-256)")

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
	next   ports.BoardStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals every answer
// (Cell.RevealedText) with AES-GCM before it reaches the store. Titles,
// prompts and scores stay readable so boards can still be listed and shown
// with answers hidden.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, ErrInvalidKey
	}
	return func(next ports.BoardStore) ports.BoardStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, rec *domain.BoardRecord) error {
	// Never touch the caller's record.
	sealed := rec.Clone()
	if sealed == nil || sealed.Document == nil {
		return m.next.Save(ctx, sealed)
	}
	for s := range sealed.Document.Sections {
		cells := sealed.Document.Sections[s].Cells
		for i := range cells {
			if cells[i].RevealedText == "" {
				continue
			}
			ciphertext, err := encrypt([]byte(cells[i].RevealedText), m.config.ActiveKey)
			if err != nil {
				return fmt.Errorf("failed to seal cell %s: %w", cells[i].ID, err)
			}
			cells[i].RevealedText = sealedPrefix + base64.StdEncoding.EncodeToString(ciphertext)
		}
	}
	return m.next.Save(ctx, sealed)
}

func (m *encryptionMiddleware) Load(ctx context.Context, id string) (*domain.BoardRecord, error) {
	rec, err := m.next.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	rec = rec.Clone()
	if rec.Document == nil {
		return rec, nil
	}
	for s := range rec.Document.Sections {
		cells := rec.Document.Sections[s].Cells
		for i := range cells {
			text := cells[i].RevealedText
			if text == "" {
				continue
			}
			// Fail secure: a configured key means every answer must be sealed.
			encoded, ok := strings.CutPrefix(text, sealedPrefix)
			if !ok {
				return nil, fmt.Errorf("cell %s is missing its sealed answer", cells[i].ID)
			}
			ciphertext, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
			}
			plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
			if err != nil {
				return nil, fmt.Errorf("failed to unseal cell %s: %w", cells[i].ID, err)
			}
			cells[i].RevealedText = string(plain)
		}
	}
	return rec, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
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
