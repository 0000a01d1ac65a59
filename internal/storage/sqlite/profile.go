// ABOUTME: User profile storage operations for SQLite
// ABOUTME: One row per user id; booleans are stored as 0/1 integers
package sqlite

import (
	"context"
	"database/sql"

	"github.com/harper/trigrambot/internal/models"
)

// ProfileStore handles user profile persistence
type ProfileStore struct {
	db *DB
}

// NewProfileStore creates a new ProfileStore
func NewProfileStore(db *DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(r rowScanner) (models.Profile, error) {
	var (
		p          models.Profile
		isAdmin    int
		answerMode int
	)
	if err := r.Scan(&p.UserID, &isAdmin, &answerMode, &p.ActiveTable); err != nil {
		return models.Profile{}, err
	}
	p.IsAdmin = isAdmin != 0
	p.AnswerMode = answerMode != 0
	return p, nil
}

// LoadAll returns every stored profile keyed by user id
func (s *ProfileStore) LoadAll(ctx context.Context) (map[string]models.Profile, error) {
	ctx, cancel := s.db.budget(ctx)
	defer cancel()

	out := make(map[string]models.Profile)
	err := s.db.retry(ctx, func() error {
		clear(out)
		rows, err := s.db.conn.QueryContext(ctx, `
			SELECT user_id, is_admin, answer_mode, active_table
			FROM user_profiles
			ORDER BY id
		`)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			p, err := scanProfile(rows)
			if err != nil {
				return err
			}
			out[p.UserID] = p
		}
		return rows.Err()
	})
	if err != nil {
		return nil, unavailable("load profiles", err)
	}
	return out, nil
}

// InsertIfAbsent stores p unless a row for p.UserID exists, then returns
// whichever row survived.
func (s *ProfileStore) InsertIfAbsent(ctx context.Context, p models.Profile) (models.Profile, error) {
	ctx, cancel := s.db.budget(ctx)
	defer cancel()

	var stored models.Profile
	err := s.db.retry(ctx, func() error {
		tx, err := s.db.conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO user_profiles (user_id, is_admin, answer_mode, active_table)
			VALUES (?, ?, ?, ?)
		`, p.UserID, boolToInt(p.IsAdmin), boolToInt(p.AnswerMode), p.ActiveTable); err != nil {
			return err
		}

		stored, err = scanProfile(tx.QueryRowContext(ctx, `
			SELECT user_id, is_admin, answer_mode, active_table
			FROM user_profiles
			WHERE user_id = ?
		`, p.UserID))
		if err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return models.Profile{}, unavailable("insert profile", err)
	}
	return stored, nil
}

// Get retrieves a profile, returning nil if not found
func (s *ProfileStore) Get(ctx context.Context, userID string) (*models.Profile, error) {
	ctx, cancel := s.db.budget(ctx)
	defer cancel()

	var p models.Profile
	err := s.db.retry(ctx, func() error {
		var err error
		p, err = scanProfile(s.db.conn.QueryRowContext(ctx, `
			SELECT user_id, is_admin, answer_mode, active_table
			FROM user_profiles
			WHERE user_id = ?
		`, userID))
		return err
	})
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("get profile", err)
	}
	return &p, nil
}

// Update overwrites the stored fields of p.UserID. A missing row is left missing.
func (s *ProfileStore) Update(ctx context.Context, p models.Profile) error {
	ctx, cancel := s.db.budget(ctx)
	defer cancel()

	err := s.db.retry(ctx, func() error {
		_, err := s.db.conn.ExecContext(ctx, `
			UPDATE user_profiles
			SET is_admin = ?, answer_mode = ?, active_table = ?
			WHERE user_id = ?
		`, boolToInt(p.IsAdmin), boolToInt(p.AnswerMode), p.ActiveTable, p.UserID)
		return err
	})
	if err != nil {
		return unavailable("update profile", err)
	}
	return nil
}
