package http

import (
	"log/slog"
	"sync"

	"github.com/aretw0/boardgen/internal/logging"
)

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // board id -> set of channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logging.NewNop(),
	}
}

// Subscribe registers a channel for boardID. The returned func unregisters
// and closes it.
func (sm *StreamManager) Subscribe(boardID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[boardID]; !ok {
		sm.subscribers[boardID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[boardID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[boardID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, boardID)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(boardID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[boardID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "board", boardID)
		}
	}
}

// Subscribers returns the number of open streams for boardID.
func (sm *StreamManager) Subscribers(boardID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[boardID])
}
