package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists per-file content hashes across builds.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the hash store at dbPath.
// Use ":memory:" for an in-memory store, or a file path for persistence.
// Parent directories of a file path are created as needed.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		updated INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// HasChanged reports whether the stored hash for path differs from hash.
// An unknown path counts as changed.
func (s *Store) HasChanged(ctx context.Context, path, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stored string
	err := s.db.QueryRowContext(ctx, "SELECT hash FROM files WHERE path = ?", path).Scan(&stored)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("query hash: %w", err)
	}
	return stored != hash, nil
}

// Put records the current hash for path.
func (s *Store) Put(ctx context.Context, path, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO files (path, hash, updated) VALUES (?, ?, ?) ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, updated = excluded.updated",
		path, hash, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store hash: %w", err)
	}
	return nil
}

// Forget removes the stored hash for path, if any.
func (s *Store) Forget(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM files WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("delete hash: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
