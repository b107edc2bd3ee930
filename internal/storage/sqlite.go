package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// defaultHistory is how many previous documents the SQLite backend keeps.
const defaultHistory = 20

// SQLiteBackend keeps the snapshot as a row in a key-value table. Every
// write first copies the current row into state_history, which serves as
// the backup copy.
type SQLiteBackend struct {
	db      *sql.DB
	path    string
	key     string
	history int
}

// NewSQLiteBackend opens (or creates) the database at path.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	b := &SQLiteBackend{db: db, path: path, key: StateKey, history: defaultHistory}
	if err := b.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return b, nil
}

// NewMemoryBackend returns an in-memory backend for tests.
func NewMemoryBackend() (*SQLiteBackend, error) {
	return NewSQLiteBackend(":memory:")
}

// Migrate creates the database schema.
func (b *SQLiteBackend) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS state_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL,
		value BLOB NOT NULL,
		saved_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_state_history_key ON state_history(key, id);

	CREATE TABLE IF NOT EXISTS corrupt_states (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL,
		value BLOB NOT NULL,
		quarantined_at DATETIME NOT NULL
	);
	`

	if _, err := b.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Location() string {
	return fmt.Sprintf("%s (sqlite)", b.path)
}

func (b *SQLiteBackend) Read(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, b.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	return data, nil
}

func (b *SQLiteBackend) Write(ctx context.Context, data []byte) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO state_history (key, value, saved_at)
		SELECT key, value, ? FROM kv WHERE key = ?`, now, b.key); err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		b.key, data, now); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM state_history WHERE key = ? AND id NOT IN (
			SELECT id FROM state_history WHERE key = ? ORDER BY id DESC LIMIT ?
		)`, b.key, b.key, b.history); err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	return tx.Commit()
}

func (b *SQLiteBackend) ReadBackup(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT value FROM state_history WHERE key = ? ORDER BY id DESC LIMIT 1`, b.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return data, nil
}

// HistoryLen returns how many previous documents are retained.
func (b *SQLiteBackend) HistoryLen(ctx context.Context) (int, error) {
	var n int
	err := b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM state_history WHERE key = ?`, b.key).Scan(&n)
	return n, err
}

// Quarantine moves the current row into corrupt_states.
func (b *SQLiteBackend) Quarantine(ctx context.Context, now time.Time) (string, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO corrupt_states (key, value, quarantined_at)
		SELECT key, value, ? FROM kv WHERE key = ?`, now.UTC(), b.key)
	if err != nil {
		return "", fmt.Errorf("failed to quarantine state: %w", err)
	}
	id, _ := res.LastInsertId()
	if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, b.key); err != nil {
		return "", fmt.Errorf("failed to clear state: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return fmt.Sprintf("corrupt_states row %d", id), nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
