// ABOUTME: Tests for sentinel padding, windows and table name validation
// ABOUTME: Covers the row-count rule and the identifier allow-list

package models

import (
	"errors"
	"reflect"
	"testing"
)

func TestWindows(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   []Trigram
	}{
		{
			name:   "no tokens",
			tokens: nil,
			want:   nil,
		},
		{
			name:   "single token",
			tokens: []string{"a"},
			want:   []Trigram{{Lexeme1: Begin, Lexeme2: "a", Lexeme3: End}},
		},
		{
			name:   "two tokens",
			tokens: []string{"a", "b"},
			want: []Trigram{
				{Lexeme1: Begin, Lexeme2: "a", Lexeme3: "b"},
				{Lexeme1: "a", Lexeme2: "b", Lexeme3: End},
			},
		},
		{
			name:   "the cat sat",
			tokens: []string{"the", "cat", "sat"},
			want: []Trigram{
				{Lexeme1: Begin, Lexeme2: "the", Lexeme3: "cat"},
				{Lexeme1: "the", Lexeme2: "cat", Lexeme3: "sat"},
				{Lexeme1: "cat", Lexeme2: "sat", Lexeme3: End},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Windows(tt.tokens)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Windows(%v) = %v, want %v", tt.tokens, got, tt.want)
			}
			if len(tt.tokens) > 0 && len(got) != len(tt.tokens) {
				t.Errorf("len(Windows) = %d, want %d", len(got), len(tt.tokens))
			}
		})
	}
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder()
	if p.Lexeme1 != Begin || p.Lexeme2 != NotFound || p.Lexeme3 != End {
		t.Errorf("Placeholder() = %+v", p)
	}
}

func TestParseTable(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"default", "lexems", "lexems", false},
		{"mixed case and digits", "Room_42", "room_42", false},
		{"upper case", "LEXEMS", "lexems", false},
		{"index lookalike inside", "my_idx_room", "my_idx_room", false},
		{"empty", "", "", true},
		{"leading digit", "1room", "", true},
		{"quote injection", `x"; DROP TABLE lexems; --`, "", true},
		{"space", "my room", "", true},
		{"dash", "my-room", "", true},
		{"sqlite internal", "sqlite_master", "", true},
		{"profile table", "user_profiles", "", true},
		{"registry table", "LEXEME_TABLES", "", true},
		{"index name", "idx_foo_l3", "", true},
		{"upper index name", "IDX_bar_l23", "", true},
		{"too long", "a123456789012345678901234567890123456789012345678901234567890123", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseTable(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTable(%q) expected error", tt.input)
				}
				if !errors.Is(err, ErrInvalidTableName) {
					t.Errorf("error %v should wrap ErrInvalidTableName", err)
				}
				if table.Valid() {
					t.Error("invalid name produced a valid handle")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTable(%q) error = %v", tt.input, err)
			}
			if table.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", table.Name(), tt.want)
			}
			if table.Quoted() != `"`+tt.want+`"` {
				t.Errorf("Quoted() = %q", table.Quoted())
			}
		})
	}
}

func TestMustTablePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustTable should panic on invalid name")
		}
	}()
	MustTable("bad name")
}
