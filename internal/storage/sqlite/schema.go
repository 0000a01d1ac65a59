// ABOUTME: SQLite database schema for the trigram bot
// ABOUTME: Fixed tables plus the per-name DDL used for every lexeme table
package sqlite

import (
	"fmt"

	"github.com/harper/trigrambot/internal/models"
)

// Schema contains the fixed tables created on every open.
// user_profiles.active_table gets its DEFAULT from profileSchema.
const Schema = `
-- Registry of lexeme tables; list_tables reads from here
CREATE TABLE IF NOT EXISTS lexeme_tables (
    name TEXT PRIMARY KEY,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// profileSchema returns the user profile DDL with the default table baked in.
// The table handle is already allow-listed so it is safe to embed as a literal.
func profileSchema(defaultTable models.Table) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS user_profiles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL UNIQUE,
    is_admin INTEGER NOT NULL DEFAULT 0,
    answer_mode INTEGER NOT NULL DEFAULT 1,
    active_table TEXT NOT NULL DEFAULT '%s'
);
`, defaultTable.Name())
}

// lexemeTableSchema returns the statements creating one trigram table and its indexes.
func lexemeTableSchema(t models.Table) []string {
	name := t.Name()
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    lexeme1 TEXT NOT NULL,
    lexeme2 TEXT NOT NULL,
    lexeme3 TEXT NOT NULL,
    count INTEGER NOT NULL DEFAULT 0,
    UNIQUE (lexeme1, lexeme2, lexeme3)
)`, t.Quoted()),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS "idx_%s_l23" ON %s(lexeme2, lexeme3)`, name, t.Quoted()),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS "idx_%s_l3" ON %s(lexeme3)`, name, t.Quoted()),
	}
}

// SchemaVersion is the current schema version
const SchemaVersion = 1
