package provider_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/aretw0/boardgen/pkg/ports"
	"github.com/aretw0/boardgen/pkg/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_RoundTripsThroughDecode(t *testing.T) {
	p := provider.NewStatic()
	prompt := domain.PromptContext{Topic: "Rivers", SectionCount: 3, CellsPerSection: 4}

	for _, scope := range []domain.Scope{
		domain.BoardScope(),
		domain.RefreshScope(),
		domain.SectionScope(1),
		domain.CellScope(2, 3),
	} {
		t.Run(scope.String(), func(t *testing.T) {
			raw, err := p.Generate(context.Background(), domain.GenerationRequest{Scope: scope, Prompt: prompt})
			require.NoError(t, err)

			res, err := provider.Decode(scope, raw)
			require.NoError(t, err)
			switch scope.Kind {
			case domain.ScopeBoard, domain.ScopeRefresh:
				require.Len(t, res.Sections, 3)
				assert.Len(t, res.Sections[0].Cells, 4)
				assert.Equal(t, "Rivers 1", res.Sections[0].Title)
			case domain.ScopeSection:
				assert.Len(t, res.Cells, 4)
			case domain.ScopeCell:
				require.NotNil(t, res.Cell)
				assert.Contains(t, res.Cell.PromptText, "3.4")
			}
		})
	}
}

func TestStatic_HonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := provider.NewStatic().Generate(ctx, domain.GenerationRequest{Scope: domain.BoardScope()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateLimited(t *testing.T) {
	calls := 0
	inner := ports.ProviderFunc(func(ctx context.Context, req domain.GenerationRequest) (string, error) {
		calls++
		return "{}", nil
	})
	p := provider.NewRateLimited(inner, 1)

	_, err := p.Generate(context.Background(), domain.GenerationRequest{})
	require.NoError(t, err, "burst of one is available immediately")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = p.Generate(ctx, domain.GenerationRequest{})
	assert.Error(t, err, "second call within the minute must wait past the deadline")
	assert.Equal(t, 1, calls)
}

func TestRateLimited_Unlimited(t *testing.T) {
	p := provider.NewRateLimited(provider.NewStatic(), 0)
	for range 5 {
		_, err := p.Generate(context.Background(), domain.GenerationRequest{Scope: domain.CellScope(0, 0)})
		require.NoError(t, err)
	}
}
