package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrStoreUnavailable is returned by write operations when no database is
// configured or reachable. Reads never return it; they degrade to empty
// results instead so the dashboard stays usable without a database.
var ErrStoreUnavailable = errors.New("store unavailable")

// Store is the data-access layer. The pool is established lazily on first
// use and shared for the life of the process; a failed initialization is
// recorded as "no store" rather than surfaced.
type Store struct {
	databaseURL string
	ownerOpenID string
	logger      *zap.Logger

	mu          sync.Mutex
	initialized bool
	pool        *pgxpool.Pool
}

func New(databaseURL, ownerOpenID string, logger *zap.Logger) *Store {
	return &Store{
		databaseURL: databaseURL,
		ownerOpenID: ownerOpenID,
		logger:      logger,
	}
}

// db returns the shared pool, initializing it at most once. A nil result
// means degraded mode; each operation decides how to handle that.
func (s *Store) db(ctx context.Context) *pgxpool.Pool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return s.pool
	}
	s.initialized = true
	if s.databaseURL == "" {
		s.logger.Warn("no DATABASE_URL configured, store running in degraded mode")
		return nil
	}
	pool, err := pgxpool.New(ctx, s.databaseURL)
	if err != nil {
		s.logger.Warn("database pool init failed, store running in degraded mode", zap.Error(err))
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		s.logger.Warn("database unreachable, store running in degraded mode", zap.Error(err))
		return nil
	}
	s.pool = pool
	return s.pool
}

// Available reports whether the backing store can be reached.
func (s *Store) Available(ctx context.Context) bool {
	return s.db(ctx) != nil
}

func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
}
