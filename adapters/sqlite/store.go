// Package sqlite provides a KeyValueStore in a local SQLite database file
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"rolstat/domain/core"
	"rolstat/ports"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store persists items in a single table. SQLite has no cross-process change
// feed, so events are published to the local publisher only.
type Store struct {
	db        *sqlx.DB
	mu        sync.Mutex
	publisher ports.ChangePublisher
}

// NewStore opens (creating if needed) the database at dsn. dsn may be a path,
// a file: URI or ":memory:".
func NewStore(dsn string, publisher ports.ChangePublisher) (*Store, error) {
	if filePath, onDisk := filePathFromDSN(dsn); onDisk {
		if dir := filepath.Dir(filePath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	store := &Store{db: db, publisher: publisher}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func filePathFromDSN(dsn string) (string, bool) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" || dsn == ":memory:" {
		return "", false
	}
	if strings.HasPrefix(dsn, "file:") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", false
		}
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		if path == "" || path == ":memory:" {
			return "", false
		}
		return path, true
	}
	return dsn, true
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS rol_kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM rol_kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, had, err := s.GetItem(ctx, key)
	if err != nil {
		return err
	}
	if had && old == value {
		return nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rol_kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	ev := ports.ChangeEvent{Key: key, NewValue: &value, Origin: core.OriginFrom(ctx)}
	if had {
		ev.OldValue = &old
	}
	s.publish(ev)
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, had, err := s.GetItem(ctx, key)
	if err != nil {
		return err
	}
	if !had {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rol_kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	s.publish(ports.ChangeEvent{Key: key, OldValue: &old, Origin: core.OriginFrom(ctx)})
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) publish(ev ports.ChangeEvent) {
	if s.publisher != nil {
		s.publisher.Publish(ev)
	}
}

var _ ports.KeyValueStore = (*Store)(nil)
