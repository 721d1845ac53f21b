package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envelo-dev/envelo/internal/store"
)

func TestSeedDefaultCategories(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory())
	budget, err := svc.CreateBudget(ctx, "Fresh", "USD")
	require.NoError(t, err)
	jan := month(2025, time.January)

	require.NoError(t, svc.SeedDefaultCategories(ctx, budget.ID, jan))

	groups, err := svc.Store().Groups(ctx, budget.ID)
	require.NoError(t, err)
	assert.Len(t, groups, len(defaultGroups))

	categories, err := svc.Store().Categories(ctx, budget.ID)
	require.NoError(t, err)
	want := 0
	for _, dg := range defaultGroups {
		want += len(dg.categories)
	}
	assert.Len(t, categories, want)
	for _, c := range categories {
		assert.Equal(t, jan, c.Created)
	}
}
