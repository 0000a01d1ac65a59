// ABOUTME: Tests for the profile cache
// ABOUTME: Verifies lazy creation, write-through updates and concurrent first contact
package profile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/harper/trigrambot/internal/models"
	"github.com/harper/trigrambot/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *sqlite.ProfileStore) {
	t.Helper()
	store, err := sqlite.NewStorageInMemory(sqlite.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	c, err := New(context.Background(), store.Profiles(), "lexems", nil)
	require.NoError(t, err)
	return c, store.Profiles()
}

func TestGetOrCreateDefaults(t *testing.T) {
	ctx := context.Background()
	c, durable := newTestCache(t)

	p, err := c.GetOrCreate(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, models.Profile{UserID: "42", IsAdmin: false, AnswerMode: true, ActiveTable: "lexems"}, p)

	stored, err := durable.Get(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, p, *stored)
	assert.Equal(t, 1, c.Len())
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	c, durable := newTestCache(t)

	p, err := c.GetOrCreate(ctx, "7")
	require.NoError(t, err)

	p.AnswerMode = false
	p.ActiveTable = "room"
	ok, err := c.Update(ctx, p)
	require.NoError(t, err)
	assert.True(t, ok)

	cached, found := c.Get("7")
	require.True(t, found)
	assert.Equal(t, p, cached)

	stored, err := durable.Get(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, p, *stored)

	again, err := c.GetOrCreate(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestUpdateUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	c, durable := newTestCache(t)

	ok, err := c.Update(ctx, models.NewProfile("nobody", "lexems"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, found := c.Get("nobody")
	assert.False(t, found)
	stored, err := durable.Get(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestNewLoadsExistingProfiles(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.NewStorageInMemory(sqlite.Options{})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	admin := models.Profile{UserID: "1", IsAdmin: true, AnswerMode: false, ActiveTable: "ops"}
	_, err = store.Profiles().InsertIfAbsent(ctx, admin)
	require.NoError(t, err)

	c, err := New(ctx, store.Profiles(), "lexems", nil)
	require.NoError(t, err)

	got, err := c.GetOrCreate(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, admin, got)
}

func TestConcurrentGetOrCreate(t *testing.T) {
	ctx := context.Background()
	c, durable := newTestCache(t)

	const n = 50
	results := make([]models.Profile, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := c.GetOrCreate(ctx, "same")
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}
	wg.Wait()

	for _, p := range results {
		assert.Equal(t, results[0], p)
	}

	all, err := durable.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

type brokenStore struct {
	loadErr   error
	insertErr error
}

func (b brokenStore) LoadAll(context.Context) (map[string]models.Profile, error) {
	return map[string]models.Profile{}, b.loadErr
}

func (b brokenStore) InsertIfAbsent(_ context.Context, p models.Profile) (models.Profile, error) {
	return p, b.insertErr
}

func (b brokenStore) Update(context.Context, models.Profile) error { return nil }

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk gone")

	_, err := New(ctx, brokenStore{loadErr: boom}, "lexems", nil)
	assert.ErrorIs(t, err, boom)

	c, err := New(ctx, brokenStore{insertErr: boom}, "lexems", nil)
	require.NoError(t, err)
	_, err = c.GetOrCreate(ctx, "x")
	assert.ErrorIs(t, err, boom)

	_, found := c.Get("x")
	assert.False(t, found, "failed creation must not be cached")
}
