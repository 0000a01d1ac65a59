// ABOUTME: Model is the trigram language model: ingest, count and generate
// ABOUTME: Generation walks stored windows backward and forward from a seed
package chain

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harper/trigrambot/internal/logging"
	"github.com/harper/trigrambot/internal/models"
)

// MaxSteps bounds each walk direction so cyclic chains terminate.
const MaxSteps = 500

// Store is the persistence the model needs
type Store interface {
	CreateTable(ctx context.Context, name string) (models.Table, error)
	ListTables(ctx context.Context) ([]models.Table, error)
	Upsert(ctx context.Context, t models.Table, windows []models.Trigram) error
	SumCount(ctx context.Context, t models.Table, word string) (int64, error)
	CountMatching(ctx context.Context, t models.Table, p models.Pattern) (int64, error)
	RowAt(ctx context.Context, t models.Table, p models.Pattern, offset int64) (models.Trigram, bool, error)
}

// Option configures a Model
type Option func(*Model)

// WithRand replaces the source used to pick among matching rows.
// intn must return a value in [0, n).
func WithRand(intn func(n int64) int64) Option {
	return func(m *Model) { m.intn = intn }
}

// WithLogger sets the model logger
func WithLogger(l *log.Logger) Option {
	return func(m *Model) { m.log = logging.Component(l, "chain") }
}

// WithMaxSteps overrides MaxSteps
func WithMaxSteps(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.maxSteps = n
		}
	}
}

// Model ingests messages into lexeme tables and generates text from them.
// It is safe for concurrent use when the Store is.
type Model struct {
	store    Store
	intn     func(n int64) int64
	maxSteps int
	log      *log.Logger
}

// NewModel creates a new Model over store
func NewModel(store Store, opts ...Option) *Model {
	m := &Model{
		store:    store,
		intn:     rand.Int64N,
		maxSteps: MaxSteps,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateTable validates name and makes sure its table exists.
func (m *Model) CreateTable(ctx context.Context, name string) (models.Table, error) {
	return m.store.CreateTable(ctx, name)
}

// ListTables returns every lexeme table, sorted by name.
func (m *Model) ListTables(ctx context.Context) ([]models.Table, error) {
	return m.store.ListTables(ctx)
}

// Tokenize splits text on whitespace
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// Ingest records every window of text in t and returns how many were applied.
// Blank text touches nothing.
func (m *Model) Ingest(ctx context.Context, t models.Table, text string) (int, error) {
	windows := models.Windows(Tokenize(text))
	if len(windows) == 0 {
		return 0, nil
	}
	if err := m.store.Upsert(ctx, t, windows); err != nil {
		return 0, fmt.Errorf("ingest into %s: %w", t, err)
	}
	m.log.Debug("ingested", "table", t.Name(), "windows", len(windows))
	return len(windows), nil
}

// CountFor sums the counts of every row containing word. ok is false for a
// blank word.
func (m *Model) CountFor(ctx context.Context, t models.Table, word string) (total int64, ok bool, err error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return 0, false, nil
	}
	total, err = m.store.SumCount(ctx, t, word)
	if err != nil {
		return 0, false, fmt.Errorf("count %q in %s: %w", word, t, err)
	}
	return total, true, nil
}

// Generate builds a sentence from t. A blank seed starts at a random message
// opening; otherwise generation grows outward from a random row holding seed.
func (m *Model) Generate(ctx context.Context, t models.Table, seed string) (string, error) {
	seed = strings.TrimSpace(seed)

	var (
		tokens []string
		err    error
	)
	if seed == "" {
		tokens, err = m.fromStart(ctx, t)
	} else {
		tokens, err = m.fromWord(ctx, t, seed)
	}
	if err != nil {
		return "", fmt.Errorf("generate from %s: %w", t, err)
	}
	return strings.Join(tokens, " "), nil
}

func (m *Model) fromStart(ctx context.Context, t models.Table) ([]string, error) {
	row, err := m.pick(ctx, t, models.StartPattern())
	if err != nil {
		return nil, err
	}
	if row.Lexeme3 == models.End {
		return []string{row.Lexeme2}, nil
	}
	return m.walkForward(ctx, t, row.Lexeme2, row.Lexeme3)
}

func (m *Model) fromWord(ctx context.Context, t models.Table, seed string) ([]string, error) {
	row, err := m.pick(ctx, t, models.WordPattern(seed))
	if err != nil {
		return nil, err
	}

	switch {
	case row.Lexeme1 == models.Begin && row.Lexeme3 == models.End:
		return []string{row.Lexeme2}, nil
	case row.Lexeme1 == models.Begin:
		return m.walkForward(ctx, t, row.Lexeme2, row.Lexeme3)
	case row.Lexeme3 == models.End:
		return m.walkBackward(ctx, t, row.Lexeme1, row.Lexeme2)
	}

	left, err := m.walkBackward(ctx, t, row.Lexeme1, row.Lexeme2)
	if err != nil {
		return nil, err
	}
	right, err := m.walkForward(ctx, t, row.Lexeme2, row.Lexeme3)
	if err != nil {
		return nil, err
	}
	// both walks hold lexeme2
	return append(left[:len(left)-1], right...), nil
}

// walkForward returns a, b and everything appended until END.
func (m *Model) walkForward(ctx context.Context, t models.Table, a, b string) ([]string, error) {
	out := []string{a, b}
	for step := 0; step < m.maxSteps; step++ {
		row, err := m.pick(ctx, t, models.ForwardPattern(out[len(out)-2], out[len(out)-1]))
		if err != nil {
			return nil, err
		}
		if row.Lexeme3 == models.End {
			break
		}
		out = append(out, row.Lexeme3)
	}
	return out, nil
}

// walkBackward returns everything prepended until BEGIN, then a and b.
func (m *Model) walkBackward(ctx context.Context, t models.Table, a, b string) ([]string, error) {
	// built in reverse
	rev := []string{b, a}
	for step := 0; step < m.maxSteps; step++ {
		row, err := m.pick(ctx, t, models.BackwardPattern(rev[len(rev)-1], rev[len(rev)-2]))
		if err != nil {
			return nil, err
		}
		if row.Lexeme1 == models.Begin {
			break
		}
		rev = append(rev, row.Lexeme1)
	}

	out := make([]string, len(rev))
	for i, tok := range rev {
		out[len(rev)-1-i] = tok
	}
	return out, nil
}

// pick returns a uniformly random row matching p, or the placeholder row
// when nothing matches.
func (m *Model) pick(ctx context.Context, t models.Table, p models.Pattern) (models.Trigram, error) {
	if err := ctx.Err(); err != nil {
		return models.Trigram{}, err
	}
	n, err := m.store.CountMatching(ctx, t, p)
	if err != nil {
		return models.Trigram{}, err
	}
	if n == 0 {
		return models.Placeholder(), nil
	}
	row, ok, err := m.store.RowAt(ctx, t, p, m.intn(n))
	if err != nil {
		return models.Trigram{}, err
	}
	if !ok {
		return models.Placeholder(), nil
	}
	return row, nil
}
