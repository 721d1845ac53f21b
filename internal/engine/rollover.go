package engine

import (
	"context"
	"time"

	"github.com/envelo-dev/envelo/internal/model"
	"github.com/envelo-dev/envelo/internal/store"
)

// Rollover owns the month-summary cache and the forward recomputation
// protocol. Carryover is a forward-only dependency: a month's balances
// never depend on a later month, so a mutation in month M invalidates M
// and every cached month after it, nothing before.
//
// Rollover is single-threaded by contract; no other component mutates
// the cache. Returned summaries must be treated as read-only.
type Rollover struct {
	cache map[string]map[model.Month]*MonthSummary
	now   func() time.Time
}

// NewRollover returns a propagator with an empty cache.
func NewRollover() *Rollover {
	return &Rollover{
		cache: make(map[string]map[model.Month]*MonthSummary),
		now:   time.Now,
	}
}

// Refresh recomputes summaries for every month from `from` through the
// latest cached month (or the current real-world month when nothing
// later is cached), in ascending order. The cache is committed
// all-or-nothing: a store failure mid-recompute leaves it untouched.
//
// Callers invoke Refresh after every mutation, passing the earliest
// affected month; for an edit that moved a transaction across months
// that is the earlier of the old and new month.
func (r *Rollover) Refresh(ctx context.Context, st store.Store, budgetID string, from model.Month) error {
	end := model.MonthOf(r.now())
	for m := range r.cache[budgetID] {
		if m.After(end) {
			end = m
		}
	}
	if end.Before(from) {
		end = from
	}

	var months []model.Month
	for m := from; !m.After(end); m = m.Next() {
		months = append(months, m)
	}

	// Compute the whole range before touching the cache.
	computed := make([]*MonthSummary, 0, len(months))
	for _, m := range months {
		summary, err := ComputeMonth(ctx, st, budgetID, m)
		if err != nil {
			return err
		}
		computed = append(computed, summary)
	}

	if r.cache[budgetID] == nil {
		r.cache[budgetID] = make(map[model.Month]*MonthSummary)
	}
	for i, m := range months {
		r.cache[budgetID][m] = computed[i]
	}
	return nil
}

// Summary returns the cached summary for (budget, month), computing and
// caching it on a miss.
func (r *Rollover) Summary(ctx context.Context, st store.Store, budgetID string, month model.Month) (*MonthSummary, error) {
	if cached, ok := r.cache[budgetID][month]; ok {
		return cached, nil
	}
	summary, err := ComputeMonth(ctx, st, budgetID, month)
	if err != nil {
		return nil, err
	}
	if r.cache[budgetID] == nil {
		r.cache[budgetID] = make(map[model.Month]*MonthSummary)
	}
	r.cache[budgetID][month] = summary
	return summary, nil
}

// Cached returns the cached summary without computing, for callers that
// only want to observe cache state.
func (r *Rollover) Cached(budgetID string, month model.Month) (*MonthSummary, bool) {
	s, ok := r.cache[budgetID][month]
	return s, ok
}

// Forget drops every cached month for a budget. Called on budget delete.
func (r *Rollover) Forget(budgetID string) {
	delete(r.cache, budgetID)
}
