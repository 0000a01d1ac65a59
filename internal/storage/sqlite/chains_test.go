// ABOUTME: Tests for lexeme table storage
// ABOUTME: Verifies table creation, upsert counting, pattern lookups and contention handling
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/harper/trigrambot/internal/models"
)

func newTestChains(t *testing.T) *ChainStore {
	t.Helper()
	db, err := OpenInMemory(Options{})
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewChainStore(db)
}

func TestCreateTable(t *testing.T) {
	ctx := context.Background()
	s := newTestChains(t)

	tbl, err := s.CreateTable(ctx, "room_1")
	if err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	if tbl.Name() != "room_1" {
		t.Errorf("Name() = %v, want room_1", tbl.Name())
	}

	// Idempotent
	if _, err := s.CreateTable(ctx, "room_1"); err != nil {
		t.Fatalf("second CreateTable() error = %v", err)
	}

	tables, err := s.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	var names []string
	for _, tb := range tables {
		names = append(names, tb.Name())
	}
	if fmt.Sprint(names) != "[lexems room_1]" {
		t.Errorf("ListTables() = %v, want [lexems room_1]", names)
	}
}

func TestCreateTableInvalidName(t *testing.T) {
	s := newTestChains(t)

	for _, name := range []string{"", "1abc", `x"; DROP TABLE user_profiles; --`, "sqlite_master", "user_profiles", "idx_lexems_l3"} {
		_, err := s.CreateTable(context.Background(), name)
		if !errors.Is(err, models.ErrInvalidTableName) {
			t.Errorf("CreateTable(%q) error = %v, want ErrInvalidTableName", name, err)
		}
	}
}

func TestCreateTableCaseVariantsShareOneName(t *testing.T) {
	ctx := context.Background()
	s := newTestChains(t)

	lower, err := s.CreateTable(ctx, "room")
	if err != nil {
		t.Fatalf("CreateTable(room) error = %v", err)
	}
	upper, err := s.CreateTable(ctx, "Room")
	if err != nil {
		t.Fatalf("CreateTable(Room) error = %v", err)
	}
	if upper != lower {
		t.Errorf("CreateTable(Room) = %q, want %q", upper.Name(), lower.Name())
	}

	if err := s.Upsert(ctx, lower, models.Windows([]string{"secret", "words", "here"})); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// a case variant of the default table must not become a second name for it
	shouty, err := s.CreateTable(ctx, "LEXEMS")
	if err != nil {
		t.Fatalf("CreateTable(LEXEMS) error = %v", err)
	}
	if shouty != s.db.DefaultTable() {
		t.Errorf("CreateTable(LEXEMS) = %q, want the default table", shouty.Name())
	}
	if n, err := s.SumCount(ctx, shouty, "secret"); err != nil || n != 0 {
		t.Errorf("SumCount(lexems, secret) = %d, %v, want 0", n, err)
	}

	tables, err := s.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	var names []string
	for _, tb := range tables {
		names = append(names, tb.Name())
	}
	if fmt.Sprint(names) != "[lexems room]" {
		t.Errorf("ListTables() = %v, want [lexems room]", names)
	}
}

func TestCreateTableIndexNamesDoNotCollide(t *testing.T) {
	ctx := context.Background()
	s := newTestChains(t)

	if _, err := s.CreateTable(ctx, "foo"); err != nil {
		t.Fatalf("CreateTable(foo) error = %v", err)
	}
	if _, err := s.CreateTable(ctx, "idx_foo_l3"); !errors.Is(err, models.ErrInvalidTableName) {
		t.Errorf("CreateTable(idx_foo_l3) error = %v, want ErrInvalidTableName", err)
	}
	if _, err := s.CreateTable(ctx, "idx_bar_l23"); !errors.Is(err, models.ErrInvalidTableName) {
		t.Errorf("CreateTable(idx_bar_l23) error = %v, want ErrInvalidTableName", err)
	}
	if _, err := s.CreateTable(ctx, "bar"); err != nil {
		t.Errorf("CreateTable(bar) error = %v", err)
	}
}

func TestUpsertFailureLeavesTableUnchanged(t *testing.T) {
	ctx := context.Background()
	s := newTestChains(t)
	tbl := s.db.DefaultTable()

	if err := s.Upsert(ctx, tbl, models.Windows([]string{"a", "b", "c"})); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	before, err := s.Rows(ctx, tbl)
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}

	// fail on the last window, after earlier windows already ran in the transaction
	trigger := `CREATE TRIGGER reject_boom BEFORE INSERT ON "lexems"
		WHEN NEW.lexeme2 = 'boom' BEGIN SELECT RAISE(ABORT, 'rejected'); END`
	if _, err := s.db.conn.ExecContext(ctx, trigger); err != nil {
		t.Fatalf("creating trigger: %v", err)
	}

	// (#beg#,a,b) exists, (a,b,boom) is new, (b,boom,#end#) aborts
	err = s.Upsert(ctx, tbl, models.Windows([]string{"a", "b", "boom"}))
	if err == nil {
		t.Fatal("Upsert() expected error from trigger")
	}

	after, err := s.Rows(ctx, tbl)
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Errorf("rows changed after failed upsert:\nbefore %v\nafter  %v", before, after)
	}
}

func TestUpsertCounts(t *testing.T) {
	ctx := context.Background()
	s := newTestChains(t)
	tbl := s.db.DefaultTable()

	windows := models.Windows([]string{"a", "b"})
	if err := s.Upsert(ctx, tbl, windows); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := s.Upsert(ctx, tbl, windows); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	rows, err := s.Rows(ctx, tbl)
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	want := []models.Trigram{
		{Lexeme1: models.Begin, Lexeme2: "a", Lexeme3: "b", Count: 2},
		{Lexeme1: "a", Lexeme2: "b", Lexeme3: models.End, Count: 2},
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("rows[%d] = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestUpsertEmptyIsNoop(t *testing.T) {
	s := newTestChains(t)
	if err := s.Upsert(context.Background(), s.db.DefaultTable(), nil); err != nil {
		t.Fatalf("Upsert(nil) error = %v", err)
	}
	n, err := s.CountMatching(context.Background(), s.db.DefaultTable(), models.Pattern{})
	if err != nil {
		t.Fatalf("CountMatching() error = %v", err)
	}
	if n != 0 {
		t.Errorf("row count = %d, want 0", n)
	}
}

func TestSumCount(t *testing.T) {
	ctx := context.Background()
	s := newTestChains(t)
	tbl := s.db.DefaultTable()

	_ = s.Upsert(ctx, tbl, models.Windows([]string{"x", "y"}))
	_ = s.Upsert(ctx, tbl, models.Windows([]string{"x", "y"}))
	_ = s.Upsert(ctx, tbl, models.Windows([]string{"y", "z"}))

	tests := []struct {
		word string
		want int64
	}{
		{"x", 4},
		{"y", 6},
		{"z", 2},
		{"missing", 0},
	}
	for _, tt := range tests {
		got, err := s.SumCount(ctx, tbl, tt.word)
		if err != nil {
			t.Fatalf("SumCount(%q) error = %v", tt.word, err)
		}
		if got != tt.want {
			t.Errorf("SumCount(%q) = %d, want %d", tt.word, got, tt.want)
		}
	}
}

func TestPatternLookups(t *testing.T) {
	ctx := context.Background()
	s := newTestChains(t)
	tbl := s.db.DefaultTable()

	_ = s.Upsert(ctx, tbl, models.Windows([]string{"the", "cat", "sat"}))

	tests := []struct {
		name string
		p    models.Pattern
		want int64
	}{
		{"all", models.Pattern{}, 3},
		{"start", models.StartPattern(), 1},
		{"word anywhere", models.WordPattern("cat"), 3},
		{"forward", models.ForwardPattern("the", "cat"), 1},
		{"backward", models.BackwardPattern("cat", "sat"), 1},
		{"no match", models.ForwardPattern("sat", "the"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := s.CountMatching(ctx, tbl, tt.p)
			if err != nil {
				t.Fatalf("CountMatching() error = %v", err)
			}
			if n != tt.want {
				t.Errorf("CountMatching() = %d, want %d", n, tt.want)
			}
		})
	}

	row, ok, err := s.RowAt(ctx, tbl, models.WordPattern("cat"), 1)
	if err != nil || !ok {
		t.Fatalf("RowAt() = %v, %v", ok, err)
	}
	want := models.Trigram{Lexeme1: "the", Lexeme2: "cat", Lexeme3: "sat", Count: 1}
	if row != want {
		t.Errorf("RowAt(1) = %+v, want %+v", row, want)
	}

	if _, ok, err := s.RowAt(ctx, tbl, models.WordPattern("cat"), 3); err != nil || ok {
		t.Errorf("RowAt past the end = %v, %v, want false, nil", ok, err)
	}
}

func TestMissingTableReadsEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestChains(t)
	ghost := models.MustTable("never_created")

	if n, err := s.CountMatching(ctx, ghost, models.Pattern{}); err != nil || n != 0 {
		t.Errorf("CountMatching() = %d, %v, want 0, nil", n, err)
	}
	if n, err := s.SumCount(ctx, ghost, "a"); err != nil || n != 0 {
		t.Errorf("SumCount() = %d, %v, want 0, nil", n, err)
	}
	if _, ok, err := s.RowAt(ctx, ghost, models.StartPattern(), 0); err != nil || ok {
		t.Errorf("RowAt() = %v, %v, want false, nil", ok, err)
	}
	if rows, err := s.Rows(ctx, ghost); err != nil || len(rows) != 0 {
		t.Errorf("Rows() = %v, %v, want empty", rows, err)
	}
}

func TestTableIsolation(t *testing.T) {
	ctx := context.Background()
	s := newTestChains(t)

	other, err := s.CreateTable(ctx, "other")
	if err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	_ = s.Upsert(ctx, other, models.Windows([]string{"only", "here"}))

	n, err := s.SumCount(ctx, s.db.DefaultTable(), "only")
	if err != nil {
		t.Fatalf("SumCount() error = %v", err)
	}
	if n != 0 {
		t.Errorf("default table sees %d rows from another table", n)
	}
}

func TestConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "busy.db"), Options{PoolSize: 4, BusyBudget: 20 * time.Second})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = db.Close() }()
	s := NewChainStore(db)
	tbl := db.DefaultTable()

	const workers, rounds = 8, 25
	windows := models.Windows([]string{"busy"})

	var wg sync.WaitGroup
	errs := make(chan error, workers*rounds)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				if err := s.Upsert(ctx, tbl, windows); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Upsert() error = %v", err)
	}

	n, err := s.SumCount(ctx, tbl, "busy")
	if err != nil {
		t.Fatalf("SumCount() error = %v", err)
	}
	if n != workers*rounds {
		t.Errorf("count = %d, want %d", n, workers*rounds)
	}
}

func TestUpsertBudgetExhausted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "locked.db")
	db, err := Open(path, Options{PoolSize: 2, BusyBudget: 300 * time.Millisecond, BusyRetryDelay: 5 * time.Millisecond})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = db.Close() }()
	s := NewChainStore(db)

	// Hold the write lock from a second handle
	holder, err := Open(path, Options{PoolSize: 1})
	if err != nil {
		t.Fatalf("Open() holder error = %v", err)
	}
	defer func() { _ = holder.Close() }()
	tx, err := holder.conn.Begin()
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`INSERT INTO "lexems" (lexeme1, lexeme2, lexeme3) VALUES ('h', 'o', 'ld')`); err != nil {
		t.Fatalf("holder insert error = %v", err)
	}

	err = s.Upsert(ctx, db.DefaultTable(), models.Windows([]string{"blocked"}))
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Upsert() error = %v, want ErrUnavailable", err)
	}
}
