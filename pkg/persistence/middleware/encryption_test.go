package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/boardgen/pkg/adapters/memory"
	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/aretw0/boardgen/pkg/persistence/middleware"
	"github.com/aretw0/boardgen/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func secure(t *testing.T, next ports.BoardStore, cfg middleware.EncryptionConfig) ports.BoardStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return middleware.Chain(next, mw)
}

func sampleRecord(t *testing.T) *domain.BoardRecord {
	doc, err := domain.NewDocument(1, 2, 100)
	require.NoError(t, err)
	doc.Sections[0].Cells[0].PromptText = "Longest river?"
	doc.Sections[0].Cells[0].RevealedText = "Nile"
	return domain.NewBoardRecord("b1", "Rivers", doc)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	store := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()
	rec := sampleRecord(t)

	require.NoError(t, store.Save(ctx, rec))
	assert.Equal(t, "Nile", rec.Document.Sections[0].Cells[0].RevealedText, "caller record must not be modified")

	raw, err := underlying.Load(ctx, "b1")
	require.NoError(t, err)
	stored := raw.Document.Sections[0].Cells[0]
	assert.NotContains(t, stored.RevealedText, "Nile")
	assert.True(t, strings.HasPrefix(stored.RevealedText, "sealed:v1:"))
	assert.Equal(t, "Longest river?", stored.PromptText)
	assert.Empty(t, raw.Document.Sections[0].Cells[1].RevealedText)

	loaded, err := store.Load(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, rec.Document, loaded.Document)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, oldStore.Save(ctx, sampleRecord(t)))

	newStore := secure(t, underlying, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	loaded, err := newStore.Load(ctx, "b1")
	require.NoError(t, err, "fallback key should decrypt")
	assert.Equal(t, "Nile", loaded.Document.Sections[0].Cells[0].RevealedText)

	require.NoError(t, newStore.Save(ctx, loaded))
	_, err = oldStore.Load(ctx, "b1")
	assert.Error(t, err, "old key alone cannot read new-key ciphertext")
}

func TestEncryptionMiddleware_RejectsPlaintext(t *testing.T) {
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(context.Background(), sampleRecord(t)))

	store := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := store.Load(context.Background(), "b1")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunBoardStoreContract(t, secure(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}
