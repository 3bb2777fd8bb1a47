package memory_test

import (
	"testing"

	"github.com/aretw0/boardgen/pkg/adapters/memory"
	"github.com/aretw0/boardgen/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunBoardStoreContract(t, store)
}
