package ports

import (
	"context"

	"github.com/aretw0/boardgen/pkg/domain"
)

// ContentProvider is the generative backend.
// It returns the raw payload; decoding into a ProviderResult happens in the core
// so every provider gets the same tolerance for fences and stray prose.
type ContentProvider interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
}

// ProviderFunc adapts a function to ContentProvider.
type ProviderFunc func(ctx context.Context, req domain.GenerationRequest) (string, error)

// Generate calls f.
func (f ProviderFunc) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	return f(ctx, req)
}

// ConnectivityChecker reports whether the provider is reachable at all.
// A non-nil error short-circuits the request with domain.OfflineError.
type ConnectivityChecker interface {
	Online(ctx context.Context) error
}

// AlwaysOnline is a ConnectivityChecker that never fails.
type AlwaysOnline struct{}

// Online implements ConnectivityChecker.
func (AlwaysOnline) Online(context.Context) error { return nil }
