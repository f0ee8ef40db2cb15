package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"bid_pricing/internal/usecase/interfaces"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const defaultPath = "bidsync.db"

// SQLiteStore keeps the last known payload per key in a single table.
// Payloads are opaque bytes; callers own their encoding.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ interfaces.ISnapshotStore = (*SQLiteStore)(nil)

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = defaultPath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection serializes writers and keeps :memory: databases alive
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}
	log.Printf("[snapshot][sqlite] opened path=%s", path)
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, payload []byte) error {
	if payload == nil {
		payload = []byte{}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots(key, payload, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, payload, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		log.Printf("[snapshot][sqlite] put failed key=%s err=%v", key, err)
		return fmt.Errorf("put snapshot %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		log.Printf("[snapshot][sqlite] get failed key=%s err=%v", key, err)
		return nil, false, fmt.Errorf("get snapshot %s: %w", key, err)
	}
	return payload, true, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		log.Printf("[snapshot][sqlite] delete failed key=%s err=%v", key, err)
		return fmt.Errorf("delete snapshot %s: %w", key, err)
	}
	return nil
}

// Path returns the database file backing the store.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Close() error { return s.db.Close() }
