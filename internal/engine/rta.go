package engine

import (
	"context"

	"github.com/envelo-dev/envelo/internal/model"
	"github.com/envelo-dev/envelo/internal/store"
)

// ReadyToAssign returns the budget-wide unassigned total as of month:
// the sum of all on-budget account balances (cleared and uncleared,
// across all time) minus everything assigned through the target month,
// net of categorized spending already reflected in both sides. Spending
// from a category therefore leaves the figure unchanged, which keeps the
// conservation identity exact:
//
//	sum(available) + readyToAssign + sum(tracking balances)
//	  == sum(on-budget balances)
//
// The result can go negative when more is assigned than funded; that is
// a valid, displayed state.
func ReadyToAssign(ctx context.Context, st store.Store, budgetID string, month model.Month) (int64, error) {
	snap, err := loadSnapshot(ctx, st, budgetID)
	if err != nil {
		return 0, err
	}
	return readyToAssign(snap, month), nil
}

func readyToAssign(snap *snapshot, month model.Month) int64 {
	var balance int64
	for _, t := range snap.transactions {
		if a, ok := snap.accounts[t.AccountID]; ok && a.OnBudget() {
			balance += t.Amount
		}
	}

	var assigned int64
	for _, a := range snap.assignments {
		if !a.Month.After(month) {
			assigned += a.Amount
		}
	}

	var categorized int64
	for _, t := range snap.transactions {
		if snap.countsForCategory(t) && !t.Date.Month().After(month) {
			categorized += t.Amount
		}
	}

	return balance - assigned - categorized
}
