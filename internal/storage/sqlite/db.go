// ABOUTME: SQLite database connection pool and lifecycle management
// ABOUTME: Uses modernc.org/sqlite for pure-Go SQLite support with busy-retry
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harper/trigrambot/internal/logging"
	"github.com/harper/trigrambot/internal/models"
	"github.com/harper/trigrambot/internal/util"

	_ "modernc.org/sqlite"
)

// Options tunes the connection pool and contention handling.
type Options struct {
	DefaultTable   string
	PoolSize       int
	BusyRetryDelay time.Duration
	BusyBudget     time.Duration
	Logger         *log.Logger
}

// DefaultOptions returns the options used when fields are left zero.
func DefaultOptions() Options {
	return Options{
		DefaultTable:   "lexems",
		PoolSize:       8,
		BusyRetryDelay: time.Millisecond,
		BusyBudget:     30 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DefaultTable == "" {
		o.DefaultTable = d.DefaultTable
	}
	if o.PoolSize <= 0 {
		o.PoolSize = d.PoolSize
	}
	if o.BusyRetryDelay <= 0 {
		o.BusyRetryDelay = d.BusyRetryDelay
	}
	if o.BusyBudget <= 0 {
		o.BusyBudget = d.BusyBudget
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// DB wraps a pooled SQLite database
type DB struct {
	conn         *sql.DB
	path         string
	opts         Options
	defaultTable models.Table
	log          *log.Logger
}

// Open opens or creates a SQLite database at the given path
func Open(path string, opts Options) (*DB, error) {
	opts = opts.withDefaults()
	defaultTable, err := models.ParseTable(opts.DefaultTable)
	if err != nil {
		return nil, fmt.Errorf("default table: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// WAL lets readers proceed while one writer holds the lock
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(100)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(opts.PoolSize)
	conn.SetMaxIdleConns(opts.PoolSize)

	return initialize(conn, path, opts, defaultTable)
}

// OpenInMemory creates an in-memory SQLite database (for testing).
// The pool is pinned to one connection so every caller sees the same database.
func OpenInMemory(opts Options) (*DB, error) {
	opts = opts.withDefaults()
	defaultTable, err := models.ParseTable(opts.DefaultTable)
	if err != nil {
		return nil, fmt.Errorf("default table: %w", err)
	}

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)
	opts.PoolSize = 1

	return initialize(conn, ":memory:", opts, defaultTable)
}

func initialize(conn *sql.DB, path string, opts Options, defaultTable models.Table) (*DB, error) {
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{
		conn:         conn,
		path:         path,
		opts:         opts,
		defaultTable: defaultTable,
		log:          logging.Component(opts.Logger, "sqlite"),
	}

	if err := db.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.log.Debug("database ready", "path", path, "pool", opts.PoolSize, "default_table", defaultTable.Name())
	return db, nil
}

// initSchema creates the fixed tables and the default lexeme table
func (db *DB) initSchema() error {
	ctx := context.Background()
	return db.retry(ctx, func() error {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.Exec(Schema); err != nil {
			return err
		}
		if _, err := tx.Exec(profileSchema(db.defaultTable)); err != nil {
			return err
		}
		if err := createLexemeTable(ctx, tx, db.defaultTable); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// retry runs fn under the fixed-delay busy-retry policy and the busy budget.
func (db *DB) retry(ctx context.Context, fn func() error) error {
	return util.RetryFixed(ctx, db.opts.BusyRetryDelay, db.opts.BusyBudget, isBusy, fn)
}

// budget bounds a single storage call, including the wait for a pooled connection.
func (db *DB) budget(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.opts.BusyBudget)
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// DefaultTable returns the table every new profile starts on.
func (db *DB) DefaultTable() models.Table {
	return db.defaultTable
}
