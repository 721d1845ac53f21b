package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/envelo-dev/envelo/internal/model"
)

// Memory is a map-backed Store. It backs the import staging area (a
// document is materialized and validated here before anything touches the
// durable store) and the engine's unit tests. The engine is synchronous
// and single-threaded, so no locking is needed.
type Memory struct {
	closed       bool
	budgets      map[string]model.Budget
	accounts     map[string]model.Account
	groups       map[string]model.CategoryGroup
	categories   map[string]model.Category
	payees       map[string]model.Payee
	transactions map[string]model.Transaction
	assignments  map[string]model.Assignment
	targets      map[string]model.Target
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		budgets:      make(map[string]model.Budget),
		accounts:     make(map[string]model.Account),
		groups:       make(map[string]model.CategoryGroup),
		categories:   make(map[string]model.Category),
		payees:       make(map[string]model.Payee),
		transactions: make(map[string]model.Transaction),
		assignments:  make(map[string]model.Assignment),
		targets:      make(map[string]model.Target),
	}
}

// Close marks the store closed; all later operations fail with ErrClosed.
func (m *Memory) Close() error {
	m.closed = true
	return nil
}

func (m *Memory) check() error {
	if m.closed {
		return ErrClosed
	}
	return nil
}

func (m *Memory) Budget(_ context.Context, id string) (model.Budget, error) {
	if err := m.check(); err != nil {
		return model.Budget{}, err
	}
	b, ok := m.budgets[id]
	if !ok {
		return model.Budget{}, fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	return b, nil
}

func (m *Memory) Budgets(_ context.Context) ([]model.Budget, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	out := make([]model.Budget, 0, len(m.budgets))
	for _, b := range m.budgets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveBudget(_ context.Context, b model.Budget) error {
	if err := m.check(); err != nil {
		return err
	}
	m.budgets[b.ID] = b
	return nil
}

func (m *Memory) DeleteBudget(_ context.Context, id string) error {
	if err := m.check(); err != nil {
		return err
	}
	delete(m.budgets, id)
	return nil
}

func (m *Memory) Account(_ context.Context, id string) (model.Account, error) {
	if err := m.check(); err != nil {
		return model.Account{}, err
	}
	a, ok := m.accounts[id]
	if !ok {
		return model.Account{}, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	return a, nil
}

func (m *Memory) Accounts(_ context.Context, budgetID string) ([]model.Account, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	var out []model.Account
	for _, a := range m.accounts {
		if a.BudgetID == budgetID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveAccount(_ context.Context, a model.Account) error {
	if err := m.check(); err != nil {
		return err
	}
	m.accounts[a.ID] = a
	return nil
}

func (m *Memory) DeleteAccount(_ context.Context, id string) error {
	if err := m.check(); err != nil {
		return err
	}
	delete(m.accounts, id)
	return nil
}

func (m *Memory) Group(_ context.Context, id string) (model.CategoryGroup, error) {
	if err := m.check(); err != nil {
		return model.CategoryGroup{}, err
	}
	g, ok := m.groups[id]
	if !ok {
		return model.CategoryGroup{}, fmt.Errorf("category group %s: %w", id, ErrNotFound)
	}
	return g, nil
}

func (m *Memory) Groups(_ context.Context, budgetID string) ([]model.CategoryGroup, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	var out []model.CategoryGroup
	for _, g := range m.groups {
		if g.BudgetID == budgetID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveGroup(_ context.Context, g model.CategoryGroup) error {
	if err := m.check(); err != nil {
		return err
	}
	m.groups[g.ID] = g
	return nil
}

func (m *Memory) DeleteGroup(_ context.Context, id string) error {
	if err := m.check(); err != nil {
		return err
	}
	delete(m.groups, id)
	return nil
}

func (m *Memory) Category(_ context.Context, id string) (model.Category, error) {
	if err := m.check(); err != nil {
		return model.Category{}, err
	}
	c, ok := m.categories[id]
	if !ok {
		return model.Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return c, nil
}

func (m *Memory) Categories(_ context.Context, budgetID string) ([]model.Category, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	var out []model.Category
	for _, c := range m.categories {
		if g, ok := m.groups[c.GroupID]; ok && g.BudgetID == budgetID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveCategory(_ context.Context, c model.Category) error {
	if err := m.check(); err != nil {
		return err
	}
	m.categories[c.ID] = c
	return nil
}

func (m *Memory) DeleteCategory(_ context.Context, id string) error {
	if err := m.check(); err != nil {
		return err
	}
	delete(m.categories, id)
	return nil
}

func (m *Memory) Payee(_ context.Context, id string) (model.Payee, error) {
	if err := m.check(); err != nil {
		return model.Payee{}, err
	}
	p, ok := m.payees[id]
	if !ok {
		return model.Payee{}, fmt.Errorf("payee %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (m *Memory) Payees(_ context.Context, budgetID string) ([]model.Payee, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	var out []model.Payee
	for _, p := range m.payees {
		if p.BudgetID == budgetID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SavePayee(_ context.Context, p model.Payee) error {
	if err := m.check(); err != nil {
		return err
	}
	m.payees[p.ID] = p
	return nil
}

func (m *Memory) DeletePayee(_ context.Context, id string) error {
	if err := m.check(); err != nil {
		return err
	}
	delete(m.payees, id)
	return nil
}

func (m *Memory) Transaction(_ context.Context, id string) (model.Transaction, error) {
	if err := m.check(); err != nil {
		return model.Transaction{}, err
	}
	t, ok := m.transactions[id]
	if !ok {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return t, nil
}

func (m *Memory) Transactions(_ context.Context, budgetID string) ([]model.Transaction, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	var out []model.Transaction
	for _, t := range m.transactions {
		if a, ok := m.accounts[t.AccountID]; ok && a.BudgetID == budgetID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Date.Compare(out[j].Date); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) SaveTransaction(_ context.Context, t model.Transaction) error {
	if err := m.check(); err != nil {
		return err
	}
	m.transactions[t.ID] = t
	return nil
}

func (m *Memory) DeleteTransaction(_ context.Context, id string) error {
	if err := m.check(); err != nil {
		return err
	}
	delete(m.transactions, id)
	return nil
}

func (m *Memory) DeleteTransactions(_ context.Context, ids ...string) error {
	if err := m.check(); err != nil {
		return err
	}
	for _, id := range ids {
		delete(m.transactions, id)
	}
	return nil
}

func (m *Memory) Assignment(_ context.Context, id string) (model.Assignment, error) {
	if err := m.check(); err != nil {
		return model.Assignment{}, err
	}
	a, ok := m.assignments[id]
	if !ok {
		return model.Assignment{}, fmt.Errorf("assignment %s: %w", id, ErrNotFound)
	}
	return a, nil
}

func (m *Memory) AssignmentFor(_ context.Context, categoryID string, month model.Month) (model.Assignment, error) {
	if err := m.check(); err != nil {
		return model.Assignment{}, err
	}
	for _, a := range m.assignments {
		if a.CategoryID == categoryID && a.Month == month {
			return a, nil
		}
	}
	return model.Assignment{}, fmt.Errorf("assignment for category %s in %s: %w", categoryID, month, ErrNotFound)
}

func (m *Memory) Assignments(_ context.Context, budgetID string) ([]model.Assignment, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	var out []model.Assignment
	for _, a := range m.assignments {
		c, ok := m.categories[a.CategoryID]
		if !ok {
			continue
		}
		if g, ok := m.groups[c.GroupID]; ok && g.BudgetID == budgetID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveAssignment(_ context.Context, a model.Assignment) error {
	if err := m.check(); err != nil {
		return err
	}
	// One row per (category, month), matching the durable schema: a save
	// under a new ID updates the existing row instead of adding a second.
	for id, existing := range m.assignments {
		if id != a.ID && existing.CategoryID == a.CategoryID && existing.Month == a.Month {
			existing.Amount = a.Amount
			m.assignments[id] = existing
			return nil
		}
	}
	m.assignments[a.ID] = a
	return nil
}

func (m *Memory) DeleteAssignment(_ context.Context, id string) error {
	if err := m.check(); err != nil {
		return err
	}
	delete(m.assignments, id)
	return nil
}

func (m *Memory) Target(_ context.Context, id string) (model.Target, error) {
	if err := m.check(); err != nil {
		return model.Target{}, err
	}
	t, ok := m.targets[id]
	if !ok {
		return model.Target{}, fmt.Errorf("target %s: %w", id, ErrNotFound)
	}
	return t, nil
}

func (m *Memory) Targets(_ context.Context, budgetID string) ([]model.Target, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	var out []model.Target
	for _, t := range m.targets {
		c, ok := m.categories[t.CategoryID]
		if !ok {
			continue
		}
		if g, ok := m.groups[c.GroupID]; ok && g.BudgetID == budgetID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveTarget(_ context.Context, t model.Target) error {
	if err := m.check(); err != nil {
		return err
	}
	m.targets[t.ID] = t
	return nil
}

func (m *Memory) DeleteTarget(_ context.Context, id string) error {
	if err := m.check(); err != nil {
		return err
	}
	delete(m.targets, id)
	return nil
}

var _ Store = (*Memory)(nil)
