package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunBoardStoreContract runs a suite of tests to verify that a BoardStore
// implementation adheres to the defined interface contract.
func RunBoardStoreContract(t *testing.T, store BoardStore) {
	ctx := context.Background()
	boardID := "contract-test-board-" + time.Now().Format("20060102150405")

	newRecord := func(id string) *domain.BoardRecord {
		doc, err := domain.NewDocument(2, 3, 100)
		require.NoError(t, err)
		return domain.NewBoardRecord(id, "rivers", doc)
	}

	t.Run("Save and Load", func(t *testing.T) {
		rec := newRecord(boardID)
		rec.Document.Sections[1].Cells[2].PromptText = "Longest river?"
		rec.Document.Sections[1].Cells[2].Answered = true

		err := store.Save(ctx, rec)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, boardID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, rec.ID, loaded.ID)
		assert.Equal(t, "rivers", loaded.Topic)
		assert.Equal(t, rec.Document, loaded.Document)
	})

	t.Run("Load Returns Independent Copy", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newRecord(boardID)))

		first, err := store.Load(ctx, boardID)
		require.NoError(t, err)
		first.Document.Sections[0].Title = "mutated"

		second, err := store.Load(ctx, boardID)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", second.Document.Sections[0].Title)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+boardID)
		assert.ErrorIs(t, err, domain.ErrBoardNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newRecord(boardID)))

		err := store.Delete(ctx, boardID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, boardID)
		assert.ErrorIs(t, err, domain.ErrBoardNotFound, "Load after Delete should return ErrBoardNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := boardID + "-1"
		id2 := boardID + "-2"
		_ = store.Save(ctx, newRecord(id1))
		_ = store.Save(ctx, newRecord(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
