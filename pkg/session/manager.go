package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/boardgen"
	"github.com/aretw0/boardgen/internal/logging"
	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/aretw0/boardgen/pkg/ports"
)

// ErrBoardExists is returned by Create when the id is taken.
var ErrBoardExists = errors.New("board already exists")

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates board access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.BoardStore

	mu    sync.Mutex                 // guards locks and live
	locks map[string]*lockEntry      // active per-board locks
	live  map[string]*boardgen.Board // boards opened by this process

	locker    ports.DistributedLocker // optional
	lockTTL   time.Duration
	boardOpts []boardgen.Option
	logger    *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock expiry (default 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithBoardOptions sets the options every opened board is built with
// (provider, reporter, retry policy, ...).
func WithBoardOptions(opts ...boardgen.Option) Option {
	return func(m *Manager) {
		m.boardOpts = append(m.boardOpts, opts...)
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager with the given persistence store.
func NewManager(store ports.BoardStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		live:    make(map[string]*boardgen.Board),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Create initializes and persists a new board.
func (m *Manager) Create(ctx context.Context, id, topic string, sections, cells, scale int) (*boardgen.Board, error) {
	doc, err := domain.NewDocument(sections, cells, scale)
	if err != nil {
		return nil, err
	}

	var board *boardgen.Board
	err = m.WithLock(ctx, id, func(ctx context.Context) error {
		if _, err := m.store.Load(ctx, id); err == nil {
			return fmt.Errorf("%w: %s", ErrBoardExists, id)
		} else if !errors.Is(err, domain.ErrBoardNotFound) {
			return fmt.Errorf("failed to check board existence: %w", err)
		}

		opts := append(append([]boardgen.Option{}, m.boardOpts...), boardgen.WithID(id), boardgen.WithTopic(topic))
		board, err = boardgen.New(doc, opts...)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, board.Record()); err != nil {
			return fmt.Errorf("failed to persist board: %w", err)
		}
		m.remember(board)
		return nil
	})
	return board, err
}

// Open returns the live board for id, loading it from the store on first use.
func (m *Manager) Open(ctx context.Context, id string) (*boardgen.Board, error) {
	if b := m.cached(id); b != nil {
		return b, nil
	}

	var board *boardgen.Board
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		if b := m.cached(id); b != nil {
			board = b
			return nil
		}
		rec, err := m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		board, err = boardgen.Open(rec, m.boardOpts...)
		if err != nil {
			return fmt.Errorf("failed to open board %s: %w", id, err)
		}
		m.remember(board)
		return nil
	})
	return board, err
}

// Save persists the board's current document.
func (m *Manager) Save(ctx context.Context, b *boardgen.Board) error {
	return m.WithLock(ctx, b.ID(), func(ctx context.Context) error {
		return m.store.Save(ctx, b.Record())
	})
}

// SaveWhenDone persists the board once g has finished, whatever its outcome.
// The returned channel yields the save error and is then closed.
func (m *Manager) SaveWhenDone(ctx context.Context, b *boardgen.Board, g *boardgen.Generation) <-chan error {
	out := make(chan error, 1)
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer close(out)
		<-g.Done()
		err := m.Save(ctx, b)
		if err != nil {
			m.logger.Error("failed to persist board after generation",
				"board", b.ID(),
				"token", uint64(g.Token),
				"err", err,
			)
		}
		out <- err
	}()
	return out
}

// Update opens the board, runs fn and saves the result.
func (m *Manager) Update(ctx context.Context, id string, fn func(ctx context.Context, b *boardgen.Board) error) error {
	b, err := m.Open(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(ctx, b); err != nil {
		return err
	}
	return m.Save(ctx, b)
}

// Delete removes the board from the store and forgets the live copy.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		m.mu.Lock()
		delete(m.live, id)
		m.mu.Unlock()
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying board store.
func (m *Manager) Store() ports.BoardStore {
	return m.store
}

// Wait blocks until every in-flight generation on live boards has finished.
func (m *Manager) Wait() {
	m.mu.Lock()
	boards := make([]*boardgen.Board, 0, len(m.live))
	for _, b := range m.live {
		boards = append(boards, b)
	}
	m.mu.Unlock()
	for _, b := range boards {
		b.Wait()
	}
}

// WithLock executes a function while holding the lock for the board.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"board", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) cached(id string) *boardgen.Board {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live[id]
}

func (m *Manager) remember(b *boardgen.Board) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live[b.ID()] = b
}
