// ABOUTME: Trigram table storage: creation, registry, upserts and row lookups
// ABOUTME: Every identifier comes from a validated models.Table and is quoted
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/harper/trigrambot/internal/models"
)

// ChainStore handles persistence for all lexeme tables
type ChainStore struct {
	db *DB

	mu    sync.RWMutex
	known map[string]bool
}

// NewChainStore creates a new ChainStore
func NewChainStore(db *DB) *ChainStore {
	return &ChainStore{
		db:    db,
		known: map[string]bool{db.defaultTable.Name(): true},
	}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func createLexemeTable(ctx context.Context, tx execer, t models.Table) error {
	for _, stmt := range lexemeTableSchema(t) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	_, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO lexeme_tables (name) VALUES (?)`, t.Name())
	return err
}

// CreateTable validates name and creates its table if absent. Idempotent.
func (s *ChainStore) CreateTable(ctx context.Context, name string) (models.Table, error) {
	t, err := models.ParseTable(name)
	if err != nil {
		return models.Table{}, err
	}

	s.mu.RLock()
	ok := s.known[t.Name()]
	s.mu.RUnlock()
	if ok {
		return t, nil
	}

	ctx, cancel := s.db.budget(ctx)
	defer cancel()

	err = s.db.retry(ctx, func() error {
		tx, err := s.db.conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if err := createLexemeTable(ctx, tx, t); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return models.Table{}, unavailable("create table "+t.Name(), err)
	}

	s.mu.Lock()
	s.known[t.Name()] = true
	s.mu.Unlock()

	s.db.log.Debug("lexeme table ready", "table", t.Name())
	return t, nil
}

// ListTables returns every registered lexeme table, sorted by name.
func (s *ChainStore) ListTables(ctx context.Context) ([]models.Table, error) {
	ctx, cancel := s.db.budget(ctx)
	defer cancel()

	var names []string
	err := s.db.retry(ctx, func() error {
		names = names[:0]
		rows, err := s.db.conn.QueryContext(ctx, `SELECT name FROM lexeme_tables ORDER BY name`)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			names = append(names, name)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, unavailable("list tables", err)
	}

	tables := make([]models.Table, 0, len(names))
	for _, name := range names {
		t, err := models.ParseTable(name)
		if err != nil {
			s.db.log.Warn("skipping registry entry", "name", name, "err", err)
			continue
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// Upsert records one observation of every window in a single transaction.
// Lock contention retries the whole transaction; partial writes are never committed.
func (s *ChainStore) Upsert(ctx context.Context, t models.Table, windows []models.Trigram) error {
	if len(windows) == 0 {
		return nil
	}
	if !t.Valid() {
		return models.ErrInvalidTableName
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (lexeme1, lexeme2, lexeme3, count)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(lexeme1, lexeme2, lexeme3) DO UPDATE SET count = count + 1
	`, t.Quoted())

	ctx, cancel := s.db.budget(ctx)
	defer cancel()

	err := s.db.retry(ctx, func() error {
		tx, err := s.db.conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, w := range windows {
			if _, err := stmt.ExecContext(ctx, w.Lexeme1, w.Lexeme2, w.Lexeme3); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return unavailable("upsert "+t.Name(), err)
	}
	return nil
}

// SumCount returns the total count over rows holding word in any position.
func (s *ChainStore) SumCount(ctx context.Context, t models.Table, word string) (int64, error) {
	if !t.Valid() {
		return 0, models.ErrInvalidTableName
	}
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(count), 0) FROM %s
		WHERE lexeme1 = ? OR lexeme2 = ? OR lexeme3 = ?
	`, t.Quoted())

	ctx, cancel := s.db.budget(ctx)
	defer cancel()

	var total int64
	err := s.db.retry(ctx, func() error {
		return s.db.conn.QueryRowContext(ctx, query, word, word, word).Scan(&total)
	})
	if isNoSuchTable(err) {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable("sum count "+t.Name(), err)
	}
	return total, nil
}

// wherePattern renders p as a WHERE clause with positional arguments.
func wherePattern(p models.Pattern) (string, []any) {
	var conds []string
	var args []any

	if p.Any != "" {
		conds = append(conds, "(lexeme1 = ? OR lexeme2 = ? OR lexeme3 = ?)")
		args = append(args, p.Any, p.Any, p.Any)
	}
	for _, f := range []struct {
		col, val string
	}{
		{"lexeme1", p.Lexeme1},
		{"lexeme2", p.Lexeme2},
		{"lexeme3", p.Lexeme3},
	} {
		if f.val != "" {
			conds = append(conds, f.col+" = ?")
			args = append(args, f.val)
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// CountMatching returns how many rows match p. A missing table has none.
func (s *ChainStore) CountMatching(ctx context.Context, t models.Table, p models.Pattern) (int64, error) {
	if !t.Valid() {
		return 0, models.ErrInvalidTableName
	}
	where, args := wherePattern(p)
	query := "SELECT COUNT(*) FROM " + t.Quoted() + where

	ctx, cancel := s.db.budget(ctx)
	defer cancel()

	var n int64
	err := s.db.retry(ctx, func() error {
		return s.db.conn.QueryRowContext(ctx, query, args...).Scan(&n)
	})
	if isNoSuchTable(err) {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable("count rows "+t.Name(), err)
	}
	return n, nil
}

// RowAt returns the offset-th row matching p in insertion order.
// The boolean is false when no such row exists.
func (s *ChainStore) RowAt(ctx context.Context, t models.Table, p models.Pattern, offset int64) (models.Trigram, bool, error) {
	if !t.Valid() {
		return models.Trigram{}, false, models.ErrInvalidTableName
	}
	where, args := wherePattern(p)
	query := "SELECT lexeme1, lexeme2, lexeme3, count FROM " + t.Quoted() + where + " ORDER BY id LIMIT 1 OFFSET ?"
	args = append(args, offset)

	ctx, cancel := s.db.budget(ctx)
	defer cancel()

	var row models.Trigram
	err := s.db.retry(ctx, func() error {
		return s.db.conn.QueryRowContext(ctx, query, args...).
			Scan(&row.Lexeme1, &row.Lexeme2, &row.Lexeme3, &row.Count)
	})
	if err == sql.ErrNoRows || isNoSuchTable(err) {
		return models.Trigram{}, false, nil
	}
	if err != nil {
		return models.Trigram{}, false, unavailable("select row "+t.Name(), err)
	}
	return row, true, nil
}

// Rows returns every row of t in insertion order.
func (s *ChainStore) Rows(ctx context.Context, t models.Table) ([]models.Trigram, error) {
	if !t.Valid() {
		return nil, models.ErrInvalidTableName
	}
	query := "SELECT lexeme1, lexeme2, lexeme3, count FROM " + t.Quoted() + " ORDER BY id"

	ctx, cancel := s.db.budget(ctx)
	defer cancel()

	var out []models.Trigram
	err := s.db.retry(ctx, func() error {
		out = out[:0]
		rows, err := s.db.conn.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var r models.Trigram
			if err := rows.Scan(&r.Lexeme1, &r.Lexeme2, &r.Lexeme3, &r.Count); err != nil {
				return err
			}
			out = append(out, r)
		}
		return rows.Err()
	})
	if isNoSuchTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("list rows "+t.Name(), err)
	}
	return out, nil
}
