// ABOUTME: Unified Storage layer that wraps the SQLite stores
// ABOUTME: One database handle shared by the chain and profile stores
package sqlite

import (
	"fmt"
)

// Storage owns the database and the stores built on it
type Storage struct {
	db       *DB
	chains   *ChainStore
	profiles *ProfileStore
}

// NewStorage opens the database at path and builds every store
func NewStorage(path string, opts Options) (*Storage, error) {
	db, err := Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStorage(db), nil
}

// NewStorageInMemory creates an in-memory storage (for testing)
func NewStorageInMemory(opts Options) (*Storage, error) {
	db, err := OpenInMemory(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return newStorage(db), nil
}

func newStorage(db *DB) *Storage {
	return &Storage{
		db:       db,
		chains:   NewChainStore(db),
		profiles: NewProfileStore(db),
	}
}

// Chains returns the trigram table store
func (s *Storage) Chains() *ChainStore {
	return s.chains
}

// Profiles returns the user profile store
func (s *Storage) Profiles() *ProfileStore {
	return s.profiles
}

// DB returns the underlying database
func (s *Storage) DB() *DB {
	return s.db
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}
