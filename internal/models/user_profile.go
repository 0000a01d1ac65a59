// ABOUTME: Profile represents per-user bot settings
// ABOUTME: Admin flag, auto-reply mode and the lexeme table the user reads and writes
package models

// Profile is the settings record kept for every user or chat id the bot has seen.
type Profile struct {
	UserID      string `json:"user_id" yaml:"user_id"`
	IsAdmin     bool   `json:"is_admin" yaml:"is_admin"`
	AnswerMode  bool   `json:"answer_mode" yaml:"answer_mode"`
	ActiveTable string `json:"active_table" yaml:"active_table"`
}

// NewProfile returns the profile assigned on first contact.
func NewProfile(userID, defaultTable string) Profile {
	return Profile{
		UserID:      userID,
		IsAdmin:     false,
		AnswerMode:  true,
		ActiveTable: defaultTable,
	}
}

// ProfilePatch holds optional field changes. Nil fields are left untouched.
type ProfilePatch struct {
	IsAdmin     *bool
	AnswerMode  *bool
	ActiveTable *string
}

// Empty reports whether the patch changes nothing.
func (pp ProfilePatch) Empty() bool {
	return pp.IsAdmin == nil && pp.AnswerMode == nil && pp.ActiveTable == nil
}

// Apply merges the patch into the profile and returns the result.
// An empty ActiveTable in the patch is ignored.
func (p Profile) Apply(pp ProfilePatch) Profile {
	if pp.IsAdmin != nil {
		p.IsAdmin = *pp.IsAdmin
	}
	if pp.AnswerMode != nil {
		p.AnswerMode = *pp.AnswerMode
	}
	if pp.ActiveTable != nil && *pp.ActiveTable != "" {
		p.ActiveTable = *pp.ActiveTable
	}
	return p
}
