// ABOUTME: Tests for Profile defaults and patch application
// ABOUTME: Verifies first-contact defaults and partial updates

package models

import "testing"

func TestNewProfile_Defaults(t *testing.T) {
	p := NewProfile("42", "lexems")

	if p.UserID != "42" {
		t.Errorf("UserID = %q, want %q", p.UserID, "42")
	}
	if p.IsAdmin {
		t.Error("IsAdmin = true, want false")
	}
	if !p.AnswerMode {
		t.Error("AnswerMode = false, want true")
	}
	if p.ActiveTable != "lexems" {
		t.Errorf("ActiveTable = %q, want lexems", p.ActiveTable)
	}
}

func TestProfile_Apply(t *testing.T) {
	yes, no := true, false
	room := "room_1"
	blank := ""

	tests := []struct {
		name  string
		patch ProfilePatch
		want  Profile
	}{
		{
			name:  "empty patch keeps profile",
			patch: ProfilePatch{},
			want:  Profile{UserID: "1", AnswerMode: true, ActiveTable: "lexems"},
		},
		{
			name:  "grant admin",
			patch: ProfilePatch{IsAdmin: &yes},
			want:  Profile{UserID: "1", IsAdmin: true, AnswerMode: true, ActiveTable: "lexems"},
		},
		{
			name:  "disable answer mode",
			patch: ProfilePatch{AnswerMode: &no},
			want:  Profile{UserID: "1", AnswerMode: false, ActiveTable: "lexems"},
		},
		{
			name:  "switch table",
			patch: ProfilePatch{ActiveTable: &room},
			want:  Profile{UserID: "1", AnswerMode: true, ActiveTable: "room_1"},
		},
		{
			name:  "blank table ignored",
			patch: ProfilePatch{ActiveTable: &blank},
			want:  Profile{UserID: "1", AnswerMode: true, ActiveTable: "lexems"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewProfile("1", "lexems").Apply(tt.patch)
			if got != tt.want {
				t.Errorf("Apply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProfilePatch_Empty(t *testing.T) {
	if !(ProfilePatch{}).Empty() {
		t.Error("zero patch should be empty")
	}
	yes := true
	if (ProfilePatch{IsAdmin: &yes}).Empty() {
		t.Error("patch with IsAdmin should not be empty")
	}
}
