// ABOUTME: Validated handle for a named lexeme table
// ABOUTME: Table names are allow-listed before they ever reach SQL text
package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidTableName is returned for names outside the allowed character set.
var ErrInvalidTableName = errors.New("invalid table name")

var tableNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,62}$`)

// reservedTables are internal tables a lexeme table may never shadow.
var reservedTables = map[string]bool{
	"user_profiles": true,
	"lexeme_tables": true,
}

// reservedPrefixes cover SQLite's own objects and the per-table index names.
var reservedPrefixes = []string{"sqlite_", "idx_"}

// Table is a validated lexeme table name. The zero value is not usable.
type Table struct {
	name string
}

// ParseTable validates name and returns a handle for it. SQLite identifiers
// ignore case, so the handle carries the lower-cased name.
func ParseTable(name string) (Table, error) {
	if !tableNameRe.MatchString(name) {
		return Table{}, fmt.Errorf("%w: %q", ErrInvalidTableName, name)
	}
	lower := strings.ToLower(name)
	if reservedTables[lower] {
		return Table{}, fmt.Errorf("%w: %q is reserved", ErrInvalidTableName, name)
	}
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return Table{}, fmt.Errorf("%w: %q is reserved", ErrInvalidTableName, name)
		}
	}
	return Table{name: lower}, nil
}

// MustTable is ParseTable for compile-time constants. It panics on bad input.
func MustTable(name string) Table {
	t, err := ParseTable(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the table name.
func (t Table) Name() string { return t.name }

// Valid reports whether t came from ParseTable.
func (t Table) Valid() bool { return t.name != "" }

// Quoted returns the name as a double-quoted SQL identifier.
func (t Table) Quoted() string { return `"` + t.name + `"` }

func (t Table) String() string { return t.name }
