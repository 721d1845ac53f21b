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

func TestAddTransaction(t *testing.T) {
	ctx := context.Background()
	tb := newTestBudget(t)

	txn, err := tb.svc.AddTransaction(ctx, AddTransactionParams{
		AccountID:  tb.checking.ID,
		CategoryID: tb.rent.ID,
		Date:       date(2025, time.January, 5),
		Amount:     -120000,
		Memo:       "January rent",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, txn.ID)
	assert.False(t, txn.IsTransfer())

	stored, err := tb.svc.Store().Transaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, txn, stored)
}

func TestAddTransaction_Validation(t *testing.T) {
	ctx := context.Background()
	tb := newTestBudget(t)

	tests := []struct {
		name   string
		params AddTransactionParams
		field  string
	}{
		{
			name:   "zero amount",
			params: AddTransactionParams{AccountID: tb.checking.ID, Date: date(2025, time.January, 5)},
			field:  "amount",
		},
		{
			name:   "zero date",
			params: AddTransactionParams{AccountID: tb.checking.ID, Amount: 100},
			field:  "date",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tb.svc.AddTransaction(ctx, tt.params)
			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	_, err := tb.svc.AddTransaction(ctx, AddTransactionParams{
		AccountID: "nope", Date: date(2025, time.January, 5), Amount: 100,
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAddTransaction_CategoryFromOtherBudget(t *testing.T) {
	ctx := context.Background()
	tb := newTestBudget(t)

	other, err := tb.svc.CreateBudget(ctx, "Other", "USD")
	require.NoError(t, err)
	otherGroup, err := tb.svc.CreateGroup(ctx, other.ID, "Stuff")
	require.NoError(t, err)
	otherCat, err := tb.svc.CreateCategory(ctx, otherGroup.ID, "Misc", month(2025, time.January))
	require.NoError(t, err)

	_, err = tb.svc.AddTransaction(ctx, AddTransactionParams{
		AccountID:  tb.checking.ID,
		CategoryID: otherCat.ID,
		Date:       date(2025, time.January, 5),
		Amount:     -100,
	})
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "categoryId", verr.Field)
}

func TestUpdateTransaction_CrossMonthReturnsEarliest(t *testing.T) {
	ctx := context.Background()
	tb := newTestBudget(t)

	txn, err := tb.svc.AddTransaction(ctx, AddTransactionParams{
		AccountID: tb.checking.ID,
		Date:      date(2025, time.March, 10),
		Amount:    -5000,
	})
	require.NoError(t, err)

	// Moving backward: the earlier (new) month is the one to refresh from.
	_, earliest, err := tb.svc.UpdateTransaction(ctx, txn.ID, AddTransactionParams{
		AccountID: tb.checking.ID,
		Date:      date(2025, time.January, 10),
		Amount:    -5000,
	})
	require.NoError(t, err)
	assert.Equal(t, month(2025, time.January), earliest)

	// Moving forward: the earlier (old) month.
	_, earliest, err = tb.svc.UpdateTransaction(ctx, txn.ID, AddTransactionParams{
		AccountID: tb.checking.ID,
		Date:      date(2025, time.June, 10),
		Amount:    -5000,
	})
	require.NoError(t, err)
	assert.Equal(t, month(2025, time.January), earliest)
}

func TestAddTransfer(t *testing.T) {
	ctx := context.Background()
	tb := newTestBudget(t)
	savings, err := tb.svc.CreateAccount(ctx, tb.budget.ID, "Savings", model.AccountTypeSavings)
	require.NoError(t, err)

	out, in, err := tb.svc.AddTransfer(ctx, tb.checking.ID, savings.ID, date(2025, time.January, 5), 30000, "emergency fund")
	require.NoError(t, err)

	assert.Equal(t, int64(-30000), out.Amount)
	assert.Equal(t, int64(30000), in.Amount)
	assert.Equal(t, savings.ID, out.TransferAccountID)
	assert.Equal(t, tb.checking.ID, in.TransferAccountID)
	assert.Empty(t, out.CategoryID)
	assert.Empty(t, in.CategoryID)

	transactions, err := tb.svc.Store().Transactions(ctx, tb.budget.ID)
	require.NoError(t, err)
	assert.Len(t, transactions, 2)
}

func TestAddTransfer_Validation(t *testing.T) {
	ctx := context.Background()
	tb := newTestBudget(t)

	_, _, err := tb.svc.AddTransfer(ctx, tb.checking.ID, tb.checking.ID, date(2025, time.January, 5), 100, "")
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "accountId", verr.Field)

	_, _, err = tb.svc.AddTransfer(ctx, tb.checking.ID, "somewhere", date(2025, time.January, 5), -100, "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)

	other, err := tb.svc.CreateBudget(ctx, "Other", "USD")
	require.NoError(t, err)
	foreign, err := tb.svc.CreateAccount(ctx, other.ID, "Foreign", model.AccountTypeChecking)
	require.NoError(t, err)
	_, _, err = tb.svc.AddTransfer(ctx, tb.checking.ID, foreign.ID, date(2025, time.January, 5), 100, "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "accountId", verr.Field)
}

func TestUpdateTransaction_RefusesTransferLeg(t *testing.T) {
	ctx := context.Background()
	tb := newTestBudget(t)
	savings, err := tb.svc.CreateAccount(ctx, tb.budget.ID, "Savings", model.AccountTypeSavings)
	require.NoError(t, err)
	out, _, err := tb.svc.AddTransfer(ctx, tb.checking.ID, savings.ID, date(2025, time.January, 5), 30000, "")
	require.NoError(t, err)

	_, _, err = tb.svc.UpdateTransaction(ctx, out.ID, AddTransactionParams{
		AccountID: tb.checking.ID,
		Date:      date(2025, time.January, 6),
		Amount:    -100,
	})
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "transactionId", verr.Field)
}

func TestUpdateTransfer_KeepsLegsOpposite(t *testing.T) {
	ctx := context.Background()
	tb := newTestBudget(t)
	savings, err := tb.svc.CreateAccount(ctx, tb.budget.ID, "Savings", model.AccountTypeSavings)
	require.NoError(t, err)
	out, in, err := tb.svc.AddTransfer(ctx, tb.checking.ID, savings.ID, date(2025, time.March, 5), 30000, "")
	require.NoError(t, err)

	// Passing the inflow leg must work the same as the outflow leg.
	newIn, newOut, earliest, err := tb.svc.UpdateTransfer(ctx, in.ID, date(2025, time.January, 9), 45000, "moved")
	require.NoError(t, err)

	assert.Equal(t, month(2025, time.January), earliest)
	assert.Equal(t, int64(45000), newIn.Amount)
	assert.Equal(t, int64(-45000), newOut.Amount)
	assert.Equal(t, out.ID, newOut.ID)
	assert.Equal(t, date(2025, time.January, 9), newOut.Date)
	assert.Equal(t, "moved", newOut.Memo)
}

func TestDeleteTransactionWithTransfer_RemovesBothLegs(t *testing.T) {
	ctx := context.Background()
	tb := newTestBudget(t)
	savings, err := tb.svc.CreateAccount(ctx, tb.budget.ID, "Savings", model.AccountTypeSavings)
	require.NoError(t, err)
	out, in, err := tb.svc.AddTransfer(ctx, tb.checking.ID, savings.ID, date(2025, time.February, 5), 30000, "")
	require.NoError(t, err)

	earliest, err := tb.svc.DeleteTransactionWithTransfer(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, month(2025, time.February), earliest)

	_, err = tb.svc.Store().Transaction(ctx, out.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = tb.svc.Store().Transaction(ctx, in.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteTransactionWithTransfer_DanglingLegRefused(t *testing.T) {
	ctx := context.Background()
	tb := newTestBudget(t)
	savings, err := tb.svc.CreateAccount(ctx, tb.budget.ID, "Savings", model.AccountTypeSavings)
	require.NoError(t, err)
	out, in, err := tb.svc.AddTransfer(ctx, tb.checking.ID, savings.ID, date(2025, time.February, 5), 30000, "")
	require.NoError(t, err)

	// Remove the pair behind the service's back.
	require.NoError(t, tb.svc.Store().DeleteTransaction(ctx, in.ID))

	_, err = tb.svc.DeleteTransactionWithTransfer(ctx, out.ID)
	var ierr IntegrityError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, out.ID, ierr.ID)

	// The surviving leg is untouched.
	_, err = tb.svc.Store().Transaction(ctx, out.ID)
	assert.NoError(t, err)
}
