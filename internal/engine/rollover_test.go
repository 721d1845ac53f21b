package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envelo-dev/envelo/internal/model"
	"github.com/envelo-dev/envelo/internal/store"
)

func fixedNow(y int, m time.Month) func() time.Time {
	return func() time.Time { return time.Date(y, m, 15, 12, 0, 0, 0, time.UTC) }
}

func TestRollover_RefreshRange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	jan := month(2025, time.January)
	f.category(t, "rent", "Rent", jan, 0)

	r := NewRollover()
	r.now = fixedNow(2025, time.March)

	require.NoError(t, r.Refresh(ctx, f.st, f.budget, jan))

	for _, m := range []model.Month{jan, month(2025, time.February), month(2025, time.March)} {
		_, ok := r.Cached(f.budget, m)
		assert.True(t, ok, m.String())
	}
	_, ok := r.Cached(f.budget, month(2025, time.April))
	assert.False(t, ok)
}

func TestRollover_RefreshExtendsToLatestCached(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	jan, jun := month(2025, time.January), month(2025, time.June)
	f.category(t, "rent", "Rent", jan, 0)

	r := NewRollover()
	r.now = fixedNow(2025, time.February)

	// Viewing a future month caches it; later mutations must reach it.
	_, err := r.Summary(ctx, f.st, f.budget, jun)
	require.NoError(t, err)

	f.assign(t, "as1", "rent", jan, 40000)
	require.NoError(t, r.Refresh(ctx, f.st, f.budget, jan))

	junSum, ok := r.Cached(f.budget, jun)
	require.True(t, ok)
	assert.Equal(t, int64(40000), balanceFor(t, junSum, "rent").Available)
}

func TestRollover_RefreshDoesNotTouchEarlierMonths(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	jan, feb := month(2025, time.January), month(2025, time.February)
	f.category(t, "rent", "Rent", jan, 0)

	r := NewRollover()
	r.now = fixedNow(2025, time.February)
	require.NoError(t, r.Refresh(ctx, f.st, f.budget, jan))

	before, ok := r.Cached(f.budget, jan)
	require.True(t, ok)

	require.NoError(t, r.Refresh(ctx, f.st, f.budget, feb))

	after, ok := r.Cached(f.budget, jan)
	require.True(t, ok)
	assert.Same(t, before, after, "refresh from February must not recompute January")
}

// brokenStore fails every Budget read after the first n, simulating a
// store failure partway through a multi-month recompute.
type brokenStore struct {
	store.Store
	budgetReads int
	failAfter   int
}

var errBroken = errors.New("store broke")

func (b *brokenStore) Budget(ctx context.Context, id string) (model.Budget, error) {
	b.budgetReads++
	if b.budgetReads > b.failAfter {
		return model.Budget{}, errBroken
	}
	return b.Store.Budget(ctx, id)
}

func TestRollover_RefreshAllOrNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	jan := month(2025, time.January)
	f.category(t, "rent", "Rent", jan, 0)

	r := NewRollover()
	r.now = fixedNow(2025, time.March)
	require.NoError(t, r.Refresh(ctx, f.st, f.budget, jan))

	stale, ok := r.Cached(f.budget, jan)
	require.True(t, ok)

	// January recomputes, February fails. Nothing may change.
	broken := &brokenStore{Store: f.st, failAfter: 1}
	err := r.Refresh(ctx, broken, f.budget, jan)
	require.ErrorIs(t, err, errBroken)

	after, ok := r.Cached(f.budget, jan)
	require.True(t, ok)
	assert.Same(t, stale, after, "failed refresh must leave the cache untouched")
}

func TestRollover_SummaryCaches(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	jan := month(2025, time.January)
	f.category(t, "rent", "Rent", jan, 0)

	r := NewRollover()
	first, err := r.Summary(ctx, f.st, f.budget, jan)
	require.NoError(t, err)

	// A cache hit does not hit the store.
	broken := &brokenStore{Store: f.st, failAfter: 0}
	second, err := r.Summary(ctx, broken, f.budget, jan)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRollover_Forget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	jan := month(2025, time.January)

	r := NewRollover()
	_, err := r.Summary(ctx, f.st, f.budget, jan)
	require.NoError(t, err)

	r.Forget(f.budget)
	_, ok := r.Cached(f.budget, jan)
	assert.False(t, ok)
}
