// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

// SQLiteConfig configures a SQLiteStore.
type SQLiteConfig struct {
	// Path is the database file. The parent directory is created if needed.
	Path string
}

// SQLiteStore is a Store backed by a single SQLite table. The pure-Go
// modernc driver keeps the binary free of cgo.
type SQLiteStore struct {
	db     *sql.DB
	closed atomic.Bool
}

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
}

// OpenSQLite opens (or creates) the database at cfg.Path and migrates it.
func OpenSQLite(cfg SQLiteConfig) (*SQLiteStore, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	for _, p := range sqlitePragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite migration: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	const schema = `
		CREATE TABLE IF NOT EXISTS documents (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			body       TEXT NOT NULL,
			UNIQUE (collection, id)
		);
		CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents (collection, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

// FindOne implements Store.
func (s *SQLiteStore) FindOne(ctx context.Context, collection string, filter Filter) (Document, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	cf, err := compileFilter(filter)
	if err != nil {
		return nil, err
	}

	doc, err := s.firstMatch(ctx, s.db, collection, filter, cf)
	if err != nil {
		return nil, classifySQLite("find one", err)
	}
	if doc == nil {
		return nil, ErrNoDocuments
	}
	return doc, nil
}

// Find implements Store. Results are ordered by insertion.
func (s *SQLiteStore) Find(ctx context.Context, collection string, filter Filter, projection Projection) ([]Document, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	cf, err := compileFilter(filter)
	if err != nil {
		return nil, err
	}

	query := `SELECT body FROM documents WHERE collection = ?`
	args := []any{collection}
	if id, ok := filter.pinnedID(); ok {
		query += ` AND id = ?`
		args = append(args, id)
	}
	query += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classifySQLite("find", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanBody(rows)
		if err != nil {
			return nil, err
		}
		if cf.matches(doc) {
			out = append(out, project(doc, projection))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, classifySQLite("find", err)
	}
	return out, nil
}

// UpdateOne implements Store. The read and write share one transaction.
func (s *SQLiteStore) UpdateOne(ctx context.Context, collection string, filter Filter, update Update, upsert bool) (UpdateResult, error) {
	if err := s.check(); err != nil {
		return UpdateResult{}, err
	}
	if err := validateUpdate(update); err != nil {
		return UpdateResult{}, err
	}
	cf, err := compileFilter(filter)
	if err != nil {
		return UpdateResult{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UpdateResult{}, classifySQLite("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := s.firstMatch(ctx, tx, collection, filter, cf)
	if err != nil {
		return UpdateResult{}, classifySQLite("update one", err)
	}

	var (
		result UpdateResult
		next   Document
	)
	switch {
	case current != nil:
		result.Matched = true
		next, err = applySet(current, update)
	case upsert:
		next, err = upsertDocument(cf, update)
		if err == nil {
			result.UpsertedID = next.ID()
		}
	default:
		return result, nil
	}
	if err != nil {
		return UpdateResult{}, err
	}

	body, err := json.Marshal(next)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("marshal document: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body`,
		collection, next.ID(), string(body))
	if err != nil {
		return UpdateResult{}, classifySQLite("update one", err)
	}
	if err := tx.Commit(); err != nil {
		return UpdateResult{}, classifySQLite("commit", err)
	}
	return result, nil
}

// DeleteOne implements Store.
func (s *SQLiteStore) DeleteOne(ctx context.Context, collection string, filter Filter) (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	cf, err := compileFilter(filter)
	if err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, classifySQLite("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	doc, err := s.firstMatch(ctx, tx, collection, filter, cf)
	if err != nil {
		return false, classifySQLite("delete one", err)
	}
	if doc == nil {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, doc.ID()); err != nil {
		return false, classifySQLite("delete one", err)
	}
	if err := tx.Commit(); err != nil {
		return false, classifySQLite("commit", err)
	}
	return true, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) check() error {
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLiteStore) firstMatch(ctx context.Context, q querier, collection string, filter Filter, cf compiledFilter) (Document, error) {
	query := `SELECT body FROM documents WHERE collection = ?`
	args := []any{collection}
	if id, ok := filter.pinnedID(); ok {
		query += ` AND id = ?`
		args = append(args, id)
	}
	query += ` ORDER BY seq`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		doc, err := scanBody(rows)
		if err != nil {
			return nil, err
		}
		if cf.matches(doc) {
			return doc, nil
		}
	}
	return nil, rows.Err()
}

func scanBody(rows *sql.Rows) (Document, error) {
	var body string
	if err := rows.Scan(&body); err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// classifySQLite marks lock contention as retryable.
func classifySQLite(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked") ||
		errors.Is(err, sql.ErrConnDone) {
		return unavailable(op, err)
	}
	return fmt.Errorf("sqlite %s: %w", op, err)
}
