package ports

import (
	"context"

	"github.com/aretw0/boardgen/pkg/domain"
)

// BoardStore defines the interface for persisting boards between processes.
type BoardStore interface {
	// Save persists the record under its ID.
	Save(ctx context.Context, rec *domain.BoardRecord) error

	// Load retrieves the record for a given board ID.
	// Returns domain.ErrBoardNotFound if the board does not exist.
	Load(ctx context.Context, id string) (*domain.BoardRecord, error)

	// Delete removes the board. Deleting a missing board is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored boards.
	List(ctx context.Context) ([]string, error)
}
