package history

import (
	"context"
	"database/sql"
	"sync"

	"github.com/hpungsan/pastedock/internal/clip"
	"github.com/hpungsan/pastedock/internal/db"
	"github.com/hpungsan/pastedock/internal/errors"
)

// SQLStore is the SQLite-backed Store.
type SQLStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLStore wraps an initialized database (see db.Init).
func NewSQLStore(conn *sql.DB) *SQLStore {
	return &SQLStore{db: conn}
}

// Save implements Store.
func (s *SQLStore) Save(ctx context.Context, it *clip.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return db.Insert(ctx, s.db, it)
}

// Item implements Store.
func (s *SQLStore) Item(ctx context.Context, id string) (*clip.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, err := db.GetByID(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return it, nil
}

// Search implements Store.
func (s *SQLStore) Search(ctx context.Context, query string, limit int) ([]*clip.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return db.Search(ctx, s.db, query, limit)
}

// Pin implements Store.
func (s *SQLStore) Pin(ctx context.Context, id string, pinned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := db.SetPinned(ctx, s.db, id, pinned)
	return err
}

// Delete implements Store.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		path  string
		found bool
	)
	err := s.inTx(ctx, "delete", func(tx *sql.Tx) error {
		var err error
		path, found, err = db.DeleteByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return err
	}
	if found {
		removeBlob(path)
	}
	return nil
}

// ClearAll implements Store.
func (s *SQLStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var paths []string
	err := s.inTx(ctx, "clear", func(tx *sql.Tx) error {
		var err error
		paths, err = db.DeleteAll(ctx, tx)
		return err
	})
	if err != nil {
		return err
	}
	for _, p := range paths {
		removeBlob(p)
	}
	return nil
}

// LastContentHash implements Store.
func (s *SQLStore) LastContentHash(ctx context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return db.LatestHash(ctx, s.db)
}

// EnforceLimits implements Store. The whole eviction loop is one transaction;
// blobs are removed only after it commits.
func (s *SQLStore) EnforceLimits(ctx context.Context, maxItems int, maxBytes int64) (RetentionOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		outcome RetentionOutcome
		paths   []string
	)
	err := s.inTx(ctx, "enforce_limits", func(tx *sql.Tx) error {
		for {
			totals, err := db.Stats(ctx, tx)
			if err != nil {
				return err
			}
			if withinLimits(totals.Count, totals.TotalBytes, maxItems, maxBytes) {
				return nil
			}

			victim, err := db.OldestUnpinned(ctx, tx)
			if err != nil {
				return err
			}
			if victim == nil {
				return nil
			}

			path, found, err := db.DeleteByID(ctx, tx, victim.ID)
			if err != nil {
				return err
			}
			if !found {
				return nil
			}
			outcome.DeletedCount++
			outcome.DeletedBytes += victim.ByteSize
			paths = append(paths, path)
		}
	})
	if err != nil {
		return RetentionOutcome{}, err
	}

	for _, p := range paths {
		removeBlob(p)
	}
	return outcome, nil
}

// Stats implements Store.
func (s *SQLStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals, err := db.Stats(ctx, s.db)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Count: totals.Count, TotalBytes: totals.TotalBytes, Pinned: totals.Pinned}, nil
}

// inTx runs fn in a transaction, rolling back on error.
func (s *SQLStore) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStoreFailed(op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.NewStoreFailed(op, err)
	}
	return nil
}
