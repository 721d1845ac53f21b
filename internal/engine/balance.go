// Package engine computes envelope balances. Everything here is a pure
// function of store contents: computing the same month twice against an
// unchanged store yields identical results.
package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/envelo-dev/envelo/internal/model"
	"github.com/envelo-dev/envelo/internal/store"
)

// CategoryBalance is one category's computed figures for one month.
// Available carries over from the previous month, including negative
// carryover from overspending.
type CategoryBalance struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	GroupID    string `json:"groupId"`
	Assigned   int64  `json:"assigned"`
	Activity   int64  `json:"activity"`
	Available  int64  `json:"available"`
}

// MonthSummary is the full computed state of a budget for one month.
type MonthSummary struct {
	BudgetID string `json:"budgetId"`
	Month    model.Month `json:"month"`
	// Categories holds every category whose carryover chain has started
	// by this month, ordered by group sort order, then category sort
	// order, then name.
	Categories []CategoryBalance `json:"categories"`
	// Uncategorized is this month's net activity with no category on
	// on-budget accounts. It never carries over.
	Uncategorized int64 `json:"uncategorized"`
	// ToAssign is the budget-wide ready-to-assign figure as of this
	// month. Negative is a valid, displayed state.
	ToAssign int64 `json:"toAssign"`
}

// snapshot holds one budget's store contents, read once per computation.
type snapshot struct {
	budget       model.Budget
	accounts     map[string]model.Account
	groups       []model.CategoryGroup
	categories   []model.Category
	assignments  []model.Assignment
	transactions []model.Transaction
}

func loadSnapshot(ctx context.Context, st store.Store, budgetID string) (*snapshot, error) {
	budget, err := st.Budget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	accounts, err := st.Accounts(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	groups, err := st.Groups(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("loading category groups: %w", err)
	}
	categories, err := st.Categories(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	assignments, err := st.Assignments(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("loading assignments: %w", err)
	}
	transactions, err := st.Transactions(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	byID := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return &snapshot{
		budget:       budget,
		accounts:     byID,
		groups:       groups,
		categories:   categories,
		assignments:  assignments,
		transactions: transactions,
	}, nil
}

// countsForCategory reports whether a transaction contributes to category
// activity: categorized, not a transfer leg, and on an on-budget account.
func (s *snapshot) countsForCategory(t model.Transaction) bool {
	if t.CategoryID == "" || t.IsTransfer() {
		return false
	}
	a, ok := s.accounts[t.AccountID]
	return ok && a.OnBudget()
}

// ComputeMonth computes the summary for one budget month from scratch.
//
// available(category, month) =
//
//	available(category, month-1) + assigned(month) + activity(month)
//
// with the chain starting at the category's creation month. Carryover is
// unconditional: overspending in one month reduces the next month's
// available even with nothing newly assigned.
func ComputeMonth(ctx context.Context, st store.Store, budgetID string, month model.Month) (*MonthSummary, error) {
	snap, err := loadSnapshot(ctx, st, budgetID)
	if err != nil {
		return nil, err
	}
	return computeMonth(snap, month), nil
}

func computeMonth(snap *snapshot, month model.Month) *MonthSummary {
	type monthKey struct {
		categoryID string
		month      model.Month
	}

	assigned := make(map[monthKey]int64)
	for _, a := range snap.assignments {
		assigned[monthKey{a.CategoryID, a.Month}] = a.Amount
	}

	activity := make(map[monthKey]int64)
	var uncategorized int64
	for _, t := range snap.transactions {
		if snap.countsForCategory(t) {
			activity[monthKey{t.CategoryID, t.Date.Month()}] += t.Amount
			continue
		}
		if t.CategoryID == "" && !t.IsTransfer() && t.Date.Month() == month {
			if a, ok := snap.accounts[t.AccountID]; ok && a.OnBudget() {
				uncategorized += t.Amount
			}
		}
	}

	groupOrder := make(map[string]int, len(snap.groups))
	for _, g := range snap.groups {
		groupOrder[g.ID] = g.SortOrder
	}

	var balances []CategoryBalance
	for _, c := range snap.categories {
		if month.Before(c.Created) {
			// Months before creation are undefined, not zero.
			continue
		}
		var available int64
		for m := c.Created; !m.After(month); m = m.Next() {
			available += assigned[monthKey{c.ID, m}] + activity[monthKey{c.ID, m}]
		}
		balances = append(balances, CategoryBalance{
			CategoryID: c.ID,
			Name:       c.Name,
			GroupID:    c.GroupID,
			Assigned:   assigned[monthKey{c.ID, month}],
			Activity:   activity[monthKey{c.ID, month}],
			Available:  available,
		})
	}

	catSort := make(map[string]model.Category, len(snap.categories))
	for _, c := range snap.categories {
		catSort[c.ID] = c
	}
	sort.Slice(balances, func(i, j int) bool {
		ci, cj := catSort[balances[i].CategoryID], catSort[balances[j].CategoryID]
		if groupOrder[ci.GroupID] != groupOrder[cj.GroupID] {
			return groupOrder[ci.GroupID] < groupOrder[cj.GroupID]
		}
		if ci.GroupID != cj.GroupID {
			return ci.GroupID < cj.GroupID
		}
		if ci.SortOrder != cj.SortOrder {
			return ci.SortOrder < cj.SortOrder
		}
		if ci.Name != cj.Name {
			return ci.Name < cj.Name
		}
		return ci.ID < cj.ID
	})

	return &MonthSummary{
		BudgetID:      snap.budget.ID,
		Month:         month,
		Categories:    balances,
		Uncategorized: uncategorized,
		ToAssign:      readyToAssign(snap, month),
	}
}
