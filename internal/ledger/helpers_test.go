package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/envelo-dev/envelo/internal/model"
	"github.com/envelo-dev/envelo/internal/store"
)

func month(y int, m time.Month) model.Month { return model.Month{Year: y, Mon: m} }

func date(y int, m time.Month, d int) model.Date { return model.Date{Year: y, Mon: m, Day: d} }

// testBudget is a service over a memory store with one budget, one
// checking account, and one category group with one category.
type testBudget struct {
	svc      *Service
	budget   model.Budget
	checking model.Account
	group    model.CategoryGroup
	rent     model.Category
}

func newTestBudget(t *testing.T) *testBudget {
	t.Helper()
	ctx := context.Background()
	svc := NewService(store.NewMemory())

	budget, err := svc.CreateBudget(ctx, "Household", "USD")
	require.NoError(t, err)
	checking, err := svc.CreateAccount(ctx, budget.ID, "Checking", model.AccountTypeChecking)
	require.NoError(t, err)
	group, err := svc.CreateGroup(ctx, budget.ID, "Bills")
	require.NoError(t, err)
	rent, err := svc.CreateCategory(ctx, group.ID, "Rent", month(2025, time.January))
	require.NoError(t, err)

	return &testBudget{svc: svc, budget: budget, checking: checking, group: group, rent: rent}
}
