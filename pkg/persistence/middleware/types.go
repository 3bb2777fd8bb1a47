// Package middleware wraps a BoardStore with cross-cutting persistence behavior.
package middleware

import "github.com/aretw0/boardgen/pkg/ports"

// Middleware allows wrapping a BoardStore to add behavior.
type Middleware func(ports.BoardStore) ports.BoardStore

// Chain applies middlewares so the first one is outermost.
func Chain(store ports.BoardStore, mws ...Middleware) ports.BoardStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
