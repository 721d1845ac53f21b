package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envelo-dev/envelo/internal/model"
	"github.com/envelo-dev/envelo/internal/store"
)

func month(y int, m time.Month) model.Month { return model.Month{Year: y, Mon: m} }

func date(y int, m time.Month, d int) model.Date { return model.Date{Year: y, Mon: m, Day: d} }

// fixture is a budget with one checking account, one tracking account and
// one category group, built directly in a memory store.
type fixture struct {
	st       *store.Memory
	budget   string
	checking string
	tracking string
	group    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.SaveBudget(ctx, model.Budget{ID: "b1", Name: "Household", Currency: "USD"}))
	require.NoError(t, st.SaveAccount(ctx, model.Account{ID: "checking", BudgetID: "b1", Name: "Checking", Type: model.AccountTypeChecking}))
	require.NoError(t, st.SaveAccount(ctx, model.Account{ID: "brokerage", BudgetID: "b1", Name: "Brokerage", Type: model.AccountTypeTracking}))
	require.NoError(t, st.SaveGroup(ctx, model.CategoryGroup{ID: "g1", BudgetID: "b1", Name: "Everyday", SortOrder: 0}))
	return &fixture{st: st, budget: "b1", checking: "checking", tracking: "brokerage", group: "g1"}
}

func (f *fixture) category(t *testing.T, id, name string, created model.Month, sortOrder int) {
	t.Helper()
	require.NoError(t, f.st.SaveCategory(context.Background(), model.Category{
		ID: id, GroupID: f.group, Name: name, SortOrder: sortOrder, Created: created,
	}))
}

func (f *fixture) assign(t *testing.T, id, categoryID string, m model.Month, amount int64) {
	t.Helper()
	require.NoError(t, f.st.SaveAssignment(context.Background(), model.Assignment{
		ID: id, CategoryID: categoryID, Month: m, Amount: amount,
	}))
}

func (f *fixture) txn(t *testing.T, id, accountID, categoryID string, d model.Date, amount int64) {
	t.Helper()
	require.NoError(t, f.st.SaveTransaction(context.Background(), model.Transaction{
		ID: id, AccountID: accountID, CategoryID: categoryID, Date: d, Amount: amount,
	}))
}

func balanceFor(t *testing.T, s *MonthSummary, categoryID string) CategoryBalance {
	t.Helper()
	for _, b := range s.Categories {
		if b.CategoryID == categoryID {
			return b
		}
	}
	t.Fatalf("category %s not in summary for %s", categoryID, s.Month)
	return CategoryBalance{}
}

func TestComputeMonth_Carryover(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	jan, feb := month(2025, time.January), month(2025, time.February)

	f.category(t, "groceries", "Groceries", jan, 0)
	f.txn(t, "income", f.checking, "", date(2025, time.January, 1), 200000)
	f.assign(t, "as1", "groceries", jan, 50000)
	f.txn(t, "t1", f.checking, "groceries", date(2025, time.January, 12), -12000)

	janSum, err := ComputeMonth(ctx, f.st, f.budget, jan)
	require.NoError(t, err)
	b := balanceFor(t, janSum, "groceries")
	assert.Equal(t, int64(50000), b.Assigned)
	assert.Equal(t, int64(-12000), b.Activity)
	assert.Equal(t, int64(38000), b.Available)

	// February inherits January's leftover with nothing newly assigned.
	febSum, err := ComputeMonth(ctx, f.st, f.budget, feb)
	require.NoError(t, err)
	b = balanceFor(t, febSum, "groceries")
	assert.Equal(t, int64(0), b.Assigned)
	assert.Equal(t, int64(0), b.Activity)
	assert.Equal(t, int64(38000), b.Available)
}

func TestComputeMonth_NegativeCarryover(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	jan, feb := month(2025, time.January), month(2025, time.February)

	f.category(t, "dining", "Dining", jan, 0)
	f.assign(t, "as1", "dining", jan, 10000)
	f.txn(t, "t1", f.checking, "dining", date(2025, time.January, 20), -15000)

	janSum, err := ComputeMonth(ctx, f.st, f.budget, jan)
	require.NoError(t, err)
	assert.Equal(t, int64(-5000), balanceFor(t, janSum, "dining").Available)

	// Overspending carries forward as a negative starting balance.
	febSum, err := ComputeMonth(ctx, f.st, f.budget, feb)
	require.NoError(t, err)
	assert.Equal(t, int64(-5000), balanceFor(t, febSum, "dining").Available)
}

func TestComputeMonth_BeforeCreation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mar := month(2025, time.March)

	f.category(t, "vacation", "Vacation", mar, 0)

	febSum, err := ComputeMonth(ctx, f.st, f.budget, month(2025, time.February))
	require.NoError(t, err)
	for _, b := range febSum.Categories {
		assert.NotEqual(t, "vacation", b.CategoryID, "category must not appear before its creation month")
	}

	marSum, err := ComputeMonth(ctx, f.st, f.budget, mar)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balanceFor(t, marSum, "vacation").Available)
}

func TestComputeMonth_TransfersExcluded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	jan := month(2025, time.January)

	require.NoError(t, f.st.SaveAccount(ctx, model.Account{ID: "savings", BudgetID: f.budget, Name: "Savings", Type: model.AccountTypeSavings}))
	f.category(t, "rent", "Rent", jan, 0)
	f.txn(t, "income", f.checking, "", date(2025, time.January, 1), 100000)

	// Transfer between two on-budget accounts moves money without
	// touching categories or ready-to-assign.
	require.NoError(t, f.st.SaveTransaction(ctx, model.Transaction{
		ID: "out", AccountID: f.checking, Date: date(2025, time.January, 5), Amount: -30000, TransferAccountID: "savings",
	}))
	require.NoError(t, f.st.SaveTransaction(ctx, model.Transaction{
		ID: "in", AccountID: "savings", Date: date(2025, time.January, 5), Amount: 30000, TransferAccountID: f.checking,
	}))

	sum, err := ComputeMonth(ctx, f.st, f.budget, jan)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balanceFor(t, sum, "rent").Activity)
	assert.Equal(t, int64(100000), sum.Uncategorized)
	assert.Equal(t, int64(100000), sum.ToAssign)
}

func TestComputeMonth_TransferToTrackingReducesToAssign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	jan := month(2025, time.January)

	f.txn(t, "income", f.checking, "", date(2025, time.January, 1), 100000)
	require.NoError(t, f.st.SaveTransaction(ctx, model.Transaction{
		ID: "out", AccountID: f.checking, Date: date(2025, time.January, 5), Amount: -40000, TransferAccountID: f.tracking,
	}))
	require.NoError(t, f.st.SaveTransaction(ctx, model.Transaction{
		ID: "in", AccountID: f.tracking, Date: date(2025, time.January, 5), Amount: 40000, TransferAccountID: f.checking,
	}))

	// Money moved off-budget stops being assignable.
	sum, err := ComputeMonth(ctx, f.st, f.budget, jan)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), sum.ToAssign)
}

func TestComputeMonth_TrackingActivityIgnored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	jan := month(2025, time.January)

	f.category(t, "fees", "Fees", jan, 0)
	f.txn(t, "t1", f.tracking, "fees", date(2025, time.January, 10), -5000)
	f.txn(t, "t2", f.tracking, "", date(2025, time.January, 11), 250000)

	sum, err := ComputeMonth(ctx, f.st, f.budget, jan)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balanceFor(t, sum, "fees").Activity)
	assert.Equal(t, int64(0), sum.Uncategorized)
	assert.Equal(t, int64(0), sum.ToAssign)
}

func TestComputeMonth_UncategorizedDoesNotCarryOver(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.txn(t, "t1", f.checking, "", date(2025, time.January, 15), -7000)

	janSum, err := ComputeMonth(ctx, f.st, f.budget, month(2025, time.January))
	require.NoError(t, err)
	assert.Equal(t, int64(-7000), janSum.Uncategorized)

	febSum, err := ComputeMonth(ctx, f.st, f.budget, month(2025, time.February))
	require.NoError(t, err)
	assert.Equal(t, int64(0), febSum.Uncategorized)
}

func TestComputeMonth_Conservation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	jan := month(2025, time.January)

	f.category(t, "rent", "Rent", jan, 0)
	f.txn(t, "income", f.checking, "", date(2025, time.January, 1), 120000)
	f.assign(t, "as1", "rent", jan, 80000)
	f.txn(t, "t1", f.checking, "rent", date(2025, time.January, 3), -20000)

	sum, err := ComputeMonth(ctx, f.st, f.budget, jan)
	require.NoError(t, err)

	rent := balanceFor(t, sum, "rent")
	assert.Equal(t, int64(60000), rent.Available)
	// Spending from a category leaves ready-to-assign unchanged.
	assert.Equal(t, int64(40000), sum.ToAssign)

	// sum(available) + toAssign == on-budget balance; the uncategorized
	// income inflow is what toAssign already accounts for.
	var available int64
	for _, b := range sum.Categories {
		available += b.Available
	}
	assert.Equal(t, int64(100000), available+sum.ToAssign)
}

func TestComputeMonth_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	jan := month(2025, time.January)

	f.category(t, "a", "Alpha", jan, 0)
	f.category(t, "b", "Beta", jan, 1)
	f.txn(t, "income", f.checking, "", date(2025, time.January, 1), 50000)
	f.assign(t, "as1", "a", jan, 20000)
	f.txn(t, "t1", f.checking, "a", date(2025, time.January, 9), -1234)

	first, err := ComputeMonth(ctx, f.st, f.budget, jan)
	require.NoError(t, err)
	second, err := ComputeMonth(ctx, f.st, f.budget, jan)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeMonth_Ordering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	jan := month(2025, time.January)

	require.NoError(t, f.st.SaveGroup(ctx, model.CategoryGroup{ID: "g0", BudgetID: f.budget, Name: "Bills", SortOrder: -1}))
	f.category(t, "second", "Second", jan, 1)
	f.category(t, "first", "First", jan, 0)
	require.NoError(t, f.st.SaveCategory(ctx, model.Category{
		ID: "bills-cat", GroupID: "g0", Name: "Utilities", SortOrder: 0, Created: jan,
	}))

	sum, err := ComputeMonth(ctx, f.st, f.budget, jan)
	require.NoError(t, err)
	require.Len(t, sum.Categories, 3)
	assert.Equal(t, "bills-cat", sum.Categories[0].CategoryID)
	assert.Equal(t, "first", sum.Categories[1].CategoryID)
	assert.Equal(t, "second", sum.Categories[2].CategoryID)
}

func TestReadyToAssign_CanGoNegative(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	jan := month(2025, time.January)

	f.category(t, "rent", "Rent", jan, 0)
	f.txn(t, "income", f.checking, "", date(2025, time.January, 1), 50000)
	f.assign(t, "as1", "rent", jan, 80000)

	rta, err := ReadyToAssign(ctx, f.st, f.budget, jan)
	require.NoError(t, err)
	assert.Equal(t, int64(-30000), rta)
}

func TestReadyToAssign_FutureAssignmentsExcluded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	jan, mar := month(2025, time.January), month(2025, time.March)

	f.category(t, "rent", "Rent", jan, 0)
	f.txn(t, "income", f.checking, "", date(2025, time.January, 1), 50000)
	f.assign(t, "as1", "rent", mar, 30000)

	rta, err := ReadyToAssign(ctx, f.st, f.budget, jan)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), rta)

	rta, err = ReadyToAssign(ctx, f.st, f.budget, mar)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), rta)
}
