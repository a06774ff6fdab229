// Package progress remembers where the reviewer left off in each split and
// when each image was last saved.
package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite database with serialised writes.
type Store struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// Open creates or opens the progress database at path.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS positions (
		dataset TEXT NOT NULL,
		split TEXT NOT NULL,
		idx INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (dataset, split)
	);

	CREATE TABLE IF NOT EXISTS saves (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		image_path TEXT NOT NULL,
		boxes INTEGER NOT NULL DEFAULT 0,
		saved_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_saves_image_path ON saves(image_path);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error { return s.conn.Close() }

// LastIndex returns the remembered index for a dataset split.
func (s *Store) LastIndex(ctx context.Context, dataset, split string) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var idx int
	err := s.conn.QueryRowContext(ctx,
		`SELECT idx FROM positions WHERE dataset = ? AND split = ?`, dataset, split).Scan(&idx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query position: %w", err)
	}
	return idx, true, nil
}

// SetLastIndex records the current index for a dataset split.
func (s *Store) SetLastIndex(ctx context.Context, dataset, split string, idx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO positions (dataset, split, idx, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(dataset, split) DO UPDATE SET idx = excluded.idx, updated_at = excluded.updated_at`,
		dataset, split, idx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store position: %w", err)
	}
	return nil
}

// RecordSave appends a save event for an image.
func (s *Store) RecordSave(ctx context.Context, imagePath string, boxes int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO saves (image_path, boxes, saved_at) VALUES (?, ?, ?)`,
		imagePath, boxes, at.UTC())
	if err != nil {
		return fmt.Errorf("record save: %w", err)
	}
	return nil
}

// LastSaved returns the most recent save time of an image.
func (s *Store) LastSaved(ctx context.Context, imagePath string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var at time.Time
	err := s.conn.QueryRowContext(ctx,
		`SELECT saved_at FROM saves WHERE image_path = ? ORDER BY id DESC LIMIT 1`, imagePath).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query save: %w", err)
	}
	return at, true, nil
}

// SavedImages counts distinct images saved under the given path prefix.
func (s *Store) SavedImages(ctx context.Context, prefix string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT image_path) FROM saves WHERE substr(image_path, 1, ?) = ?`,
		len(prefix), prefix).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count saves: %w", err)
	}
	return n, nil
}
