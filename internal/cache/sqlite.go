package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dyluth/swatches/pkg/swatch"
)

const schema = `
CREATE TABLE IF NOT EXISTS swatches (
	saturation INTEGER NOT NULL,
	lightness  INTEGER NOT NULL,
	data       TEXT    NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (saturation, lightness)
)`

// SQLite is a file-backed store. Each entry is one row holding the JSON
// encoded collection, replaced wholesale on Set.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// schema exists. Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLite{db: db, path: path}, nil
}

// Path returns the database location.
func (s *SQLite) Path() string {
	return s.path
}

// Close closes the database. Implements io.Closer.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get returns the entry for (saturation, lightness) or swatch.ErrNotFound.
func (s *SQLite) Get(ctx context.Context, saturation, lightness int) (swatch.Collection, error) {
	key := swatch.CacheKey(saturation, lightness)

	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM swatches WHERE saturation = ? AND lightness = ?`,
		saturation, lightness,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, swatch.ErrNotFound
	}
	if err != nil {
		return nil, &swatch.StorageError{Op: "get", Key: key, Err: err}
	}

	c, err := swatch.DecodeCollection([]byte(data))
	if err != nil {
		return nil, &swatch.StorageError{Op: "get", Key: key, Err: err}
	}
	return c, nil
}

// Set replaces the entry for (saturation, lightness).
func (s *SQLite) Set(ctx context.Context, saturation, lightness int, c swatch.Collection) error {
	key := swatch.CacheKey(saturation, lightness)

	data, err := swatch.EncodeCollection(c)
	if err != nil {
		return &swatch.StorageError{Op: "set", Key: key, Err: err}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO swatches (saturation, lightness, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (saturation, lightness) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		saturation, lightness, string(data), time.Now().UnixMilli(),
	)
	if err != nil {
		return &swatch.StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Remove deletes the entry for (saturation, lightness).
func (s *SQLite) Remove(ctx context.Context, saturation, lightness int) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM swatches WHERE saturation = ? AND lightness = ?`,
		saturation, lightness,
	)
	if err != nil {
		return &swatch.StorageError{Op: "remove", Key: swatch.CacheKey(saturation, lightness), Err: err}
	}
	return nil
}

// Clear deletes every entry and returns how many were removed.
func (s *SQLite) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM swatches`)
	if err != nil {
		return 0, &swatch.StorageError{Op: "clear", Key: "swatches", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &swatch.StorageError{Op: "clear", Key: "swatches", Err: err}
	}
	return int(n), nil
}
