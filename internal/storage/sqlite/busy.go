// ABOUTME: Classification of SQLite errors for retry and fallback decisions
// ABOUTME: Busy/locked errors are retried, missing tables read as empty
package sqlite

import (
	"errors"
	"fmt"
	"strings"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrUnavailable marks storage failures: I/O errors, pool exhaustion, or
// lock contention that outlived the busy budget.
var ErrUnavailable = errors.New("storage unavailable")

// isBusy reports whether err is SQLite busy/locked contention (retryable).
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	var se *moderncsqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database table is locked")
}

// isNoSuchTable reports whether err comes from addressing a table that was never created.
func isNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
