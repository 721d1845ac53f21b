package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envelo-dev/envelo/internal/model"
	"github.com/envelo-dev/envelo/internal/store"
)

func TestCreateGroup_AppendsSortOrder(t *testing.T) {
	ctx := context.Background()
	tb := newTestBudget(t)

	second, err := tb.svc.CreateGroup(ctx, tb.budget.ID, "Savings")
	require.NoError(t, err)
	assert.Equal(t, tb.group.SortOrder+1, second.SortOrder)
}

func TestCreateCategory_DefaultsAndOrdering(t *testing.T) {
	ctx := context.Background()
	tb := newTestBudget(t)

	// Zero created month defaults to the current month.
	c, err := tb.svc.CreateCategory(ctx, tb.group.ID, "Utilities", model.Month{})
	require.NoError(t, err)
	assert.Equal(t, model.CurrentMonth(), c.Created)
	assert.Equal(t, tb.rent.SortOrder+1, c.SortOrder)
}

func TestRenameCategory(t *testing.T) {
	ctx := context.Background()
	tb := newTestBudget(t)

	renamed, err := tb.svc.RenameCategory(ctx, tb.rent.ID, "Housing")
	require.NoError(t, err)
	assert.Equal(t, "Housing", renamed.Name)
	assert.Equal(t, tb.rent.Created, renamed.Created, "rename must not restart the carryover chain")

	_, err = tb.svc.RenameCategory(ctx, tb.rent.ID, "")
	var verr ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestDeleteCategory_UncategorizesAndCleansUp(t *testing.T) {
	ctx := context.Background()
	tb := newTestBudget(t)
	st := tb.svc.Store()

	txn, err := tb.svc.AddTransaction(ctx, AddTransactionParams{
		AccountID:  tb.checking.ID,
		CategoryID: tb.rent.ID,
		Date:       date(2025, time.January, 5),
		Amount:     -120000,
	})
	require.NoError(t, err)
	_, err = tb.svc.AssignToCategory(ctx, tb.rent.ID, month(2025, time.January), 120000)
	require.NoError(t, err)
	_, err = tb.svc.SetTarget(ctx, tb.rent.ID, model.TargetSpendingLimit, 120000, model.Date{})
	require.NoError(t, err)

	require.NoError(t, tb.svc.DeleteCategory(ctx, tb.rent.ID))

	// The transaction survives uncategorized.
	stored, err := st.Transaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.CategoryID)
	assert.Equal(t, txn.Amount, stored.Amount)

	assignments, err := st.Assignments(ctx, tb.budget.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)
	targets, err := st.Targets(ctx, tb.budget.ID)
	require.NoError(t, err)
	assert.Empty(t, targets)

	_, err = st.Category(ctx, tb.rent.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteGroup_CascadesThroughCategories(t *testing.T) {
	ctx := context.Background()
	tb := newTestBudget(t)
	st := tb.svc.Store()

	other, err := tb.svc.CreateGroup(ctx, tb.budget.ID, "Everyday")
	require.NoError(t, err)
	kept, err := tb.svc.CreateCategory(ctx, other.ID, "Groceries", month(2025, time.January))
	require.NoError(t, err)

	txn, err := tb.svc.AddTransaction(ctx, AddTransactionParams{
		AccountID:  tb.checking.ID,
		CategoryID: tb.rent.ID,
		Date:       date(2025, time.January, 5),
		Amount:     -120000,
	})
	require.NoError(t, err)

	require.NoError(t, tb.svc.DeleteGroup(ctx, tb.group.ID))

	_, err = st.Group(ctx, tb.group.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Category(ctx, tb.rent.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Categories in other groups are untouched.
	_, err = st.Category(ctx, kept.ID)
	assert.NoError(t, err)

	stored, err := st.Transaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.CategoryID)
}
