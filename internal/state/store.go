// Package state is the record storage behind the stateful provider backend.
//
// Values are opaque byte slices grouped into named buckets. Each bucket
// lists its keys in first-insert order, which is the order a collection
// shows its records in. Storage is SQLite through the pure Go driver,
// in memory unless a file path is given.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"grimm.is/rampart/internal/clock"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var (
	ErrNotFound    = errors.New("key not found")
	ErrStoreClosed = errors.New("store is closed")
)

// Entry is a stored key with its raw value.
type Entry struct {
	Key   string
	Value []byte
}

// ReadWriter is the key-value surface shared by a Store and its transactions.
type ReadWriter interface {
	Get(bucket, key string) ([]byte, error)
	// Put stores value. A new key goes to the end of the bucket's order;
	// an existing key keeps its position.
	Put(bucket, key string, value []byte) error
	Delete(bucket, key string) error
	List(bucket string) ([]Entry, error)
}

// Store is a ReadWriter that can group writes atomically.
type Store interface {
	ReadWriter
	// Update runs fn in a transaction. Nothing fn wrote is kept if it
	// returns an error.
	Update(fn func(tx ReadWriter) error) error
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS records (
	bucket     TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BLOB,
	seq        INTEGER NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (bucket, key)
);
CREATE INDEX IF NOT EXISTS idx_records_seq ON records(bucket, seq);
`

// NewMemoryStore opens a private in-memory store.
func NewMemoryStore() (*SQLiteStore, error) {
	return Open(":memory:")
}

// Open opens the database at path, creating it if needed.
func Open(path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: every connection to ":memory:" is a separate
	// database, and it serializes writers on files too.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(bucket, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	return get(s.db, bucket, key)
}

func (s *SQLiteStore) Put(bucket, key string, value []byte) error {
	return s.Update(func(tx ReadWriter) error { return tx.Put(bucket, key, value) })
}

func (s *SQLiteStore) Delete(bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	return del(s.db, bucket, key)
}

func (s *SQLiteStore) List(bucket string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	return list(s.db, bucket)
}

func (s *SQLiteStore) Update(fn func(tx ReadWriter) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	sqlTx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer sqlTx.Rollback()

	if err := fn(txn{sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// Close closes the database. Later calls fail with ErrStoreClosed.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// txn is the ReadWriter handed to Update callbacks.
type txn struct{ tx *sql.Tx }

func (t txn) Get(bucket, key string) ([]byte, error)     { return get(t.tx, bucket, key) }
func (t txn) Delete(bucket, key string) error            { return del(t.tx, bucket, key) }
func (t txn) List(bucket string) ([]Entry, error)        { return list(t.tx, bucket) }
func (t txn) Put(bucket, key string, value []byte) error { return put(t.tx, bucket, key, value) }

func get(q execer, bucket, key string) ([]byte, error) {
	var value []byte
	err := q.QueryRowContext(context.Background(),
		"SELECT value FROM records WHERE bucket = ? AND key = ?", bucket, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, key)
	}
	return value, err
}

func put(q execer, bucket, key string, value []byte) error {
	_, err := q.ExecContext(context.Background(), `
		INSERT INTO records (bucket, key, value, seq, updated_at)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM records WHERE bucket = ?), ?)
		ON CONFLICT (bucket, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, bucket, key, value, bucket, clock.Now())
	return err
}

func del(q execer, bucket, key string) error {
	result, err := q.ExecContext(context.Background(),
		"DELETE FROM records WHERE bucket = ? AND key = ?", bucket, key)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, key)
	}
	return nil
}

func list(q execer, bucket string) ([]Entry, error) {
	rows, err := q.QueryContext(context.Background(),
		"SELECT key, value FROM records WHERE bucket = ? ORDER BY seq", bucket)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
