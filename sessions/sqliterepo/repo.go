// Package sqliterepo stores session tokens in a single-table SQLite database.
package sqliterepo

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	cerrors "github.com/jrsteele09/go-festival-companion/internal/errors"
	"github.com/jrsteele09/go-festival-companion/sessions"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

var _ sessions.Repo = (*Repo)(nil)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

type Repo struct {
	db *sql.DB
}

// Open creates the database file and table if needed
func Open(ctx context.Context, path string) (*Repo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "sqliterepo.Open MkdirAll")
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "sqliterepo.Open")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "sqliterepo.Open Ping")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "sqliterepo.Open schema")
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}

func (r *Repo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", cerrors.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "sqliterepo.Get")
	}
	return value, nil
}

func (r *Repo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return errors.Wrap(err, "sqliterepo.Set")
}

func (r *Repo) Delete(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return errors.Wrap(err, "sqliterepo.Delete")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return cerrors.ErrNotFound
	}
	return nil
}
