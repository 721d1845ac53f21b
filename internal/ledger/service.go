// Package ledger is the only sanctioned mutation path: every entity is
// created, edited and deleted through Service so validation runs before
// any store write and cascades stay synchronous. Services do not trigger
// recomputation; the caller invokes the rollover propagator with the
// earliest affected month, which lets batched imports defer it.
package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/envelo-dev/envelo/internal/engine"
	"github.com/envelo-dev/envelo/internal/id"
	"github.com/envelo-dev/envelo/internal/model"
	"github.com/envelo-dev/envelo/internal/store"
)

// Service wraps raw store writes with domain rules.
type Service struct {
	store store.Store
}

// NewService creates a ledger Service over a store.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Store exposes the underlying store for read-only collaborators (the
// engine, export).
func (s *Service) Store() store.Store {
	return s.store
}

// CreateBudget creates a new empty budget.
func (s *Service) CreateBudget(ctx context.Context, name, currency string) (model.Budget, error) {
	if strings.TrimSpace(name) == "" {
		return model.Budget{}, ValidationError{Field: "name", Message: "must not be empty"}
	}
	if strings.TrimSpace(currency) == "" {
		return model.Budget{}, ValidationError{Field: "currency", Message: "must not be empty"}
	}
	b := model.Budget{ID: id.New(), Name: name, Currency: currency}
	if err := s.store.SaveBudget(ctx, b); err != nil {
		return model.Budget{}, fmt.Errorf("saving budget: %w", err)
	}
	return b, nil
}

// DeleteBudget removes a budget and everything it owns, bottom-up within
// the same logical operation.
func (s *Service) DeleteBudget(ctx context.Context, budgetID string) error {
	if _, err := s.store.Budget(ctx, budgetID); err != nil {
		return err
	}

	targets, err := s.store.Targets(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("loading targets: %w", err)
	}
	for _, t := range targets {
		if err := s.store.DeleteTarget(ctx, t.ID); err != nil {
			return fmt.Errorf("deleting target: %w", err)
		}
	}

	assignments, err := s.store.Assignments(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("loading assignments: %w", err)
	}
	for _, a := range assignments {
		if err := s.store.DeleteAssignment(ctx, a.ID); err != nil {
			return fmt.Errorf("deleting assignment: %w", err)
		}
	}

	transactions, err := s.store.Transactions(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("loading transactions: %w", err)
	}
	ids := make([]string, len(transactions))
	for i, t := range transactions {
		ids[i] = t.ID
	}
	if len(ids) > 0 {
		if err := s.store.DeleteTransactions(ctx, ids...); err != nil {
			return fmt.Errorf("deleting transactions: %w", err)
		}
	}

	categories, err := s.store.Categories(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("loading categories: %w", err)
	}
	for _, c := range categories {
		if err := s.store.DeleteCategory(ctx, c.ID); err != nil {
			return fmt.Errorf("deleting category: %w", err)
		}
	}

	groups, err := s.store.Groups(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("loading category groups: %w", err)
	}
	for _, g := range groups {
		if err := s.store.DeleteGroup(ctx, g.ID); err != nil {
			return fmt.Errorf("deleting category group: %w", err)
		}
	}

	payees, err := s.store.Payees(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("loading payees: %w", err)
	}
	for _, p := range payees {
		if err := s.store.DeletePayee(ctx, p.ID); err != nil {
			return fmt.Errorf("deleting payee: %w", err)
		}
	}

	accounts, err := s.store.Accounts(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("loading accounts: %w", err)
	}
	for _, a := range accounts {
		if err := s.store.DeleteAccount(ctx, a.ID); err != nil {
			return fmt.Errorf("deleting account: %w", err)
		}
	}

	if err := s.store.DeleteBudget(ctx, budgetID); err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}
	return nil
}

// CreateAccount adds an account to a budget. On-budget status is derived
// from the type; tracking accounts hold transactions but stay out of
// ready-to-assign and category balances.
func (s *Service) CreateAccount(ctx context.Context, budgetID, name string, accountType model.AccountType) (model.Account, error) {
	if strings.TrimSpace(name) == "" {
		return model.Account{}, ValidationError{Field: "name", Message: "must not be empty"}
	}
	if !accountType.Valid() {
		return model.Account{}, ValidationError{Field: "type", Message: fmt.Sprintf("unknown account type %q", accountType)}
	}
	if _, err := s.store.Budget(ctx, budgetID); err != nil {
		return model.Account{}, err
	}
	a := model.Account{ID: id.New(), BudgetID: budgetID, Name: name, Type: accountType}
	if err := s.store.SaveAccount(ctx, a); err != nil {
		return model.Account{}, fmt.Errorf("saving account: %w", err)
	}
	return a, nil
}

// FindOrCreatePayee returns the budget's payee with the given name,
// matching case-insensitively, creating it when absent.
func (s *Service) FindOrCreatePayee(ctx context.Context, budgetID, name string) (model.Payee, error) {
	if strings.TrimSpace(name) == "" {
		return model.Payee{}, ValidationError{Field: "payee", Message: "must not be empty"}
	}
	payees, err := s.store.Payees(ctx, budgetID)
	if err != nil {
		return model.Payee{}, fmt.Errorf("loading payees: %w", err)
	}
	for _, p := range payees {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	p := model.Payee{ID: id.New(), BudgetID: budgetID, Name: name}
	if err := s.store.SavePayee(ctx, p); err != nil {
		return model.Payee{}, fmt.Errorf("saving payee: %w", err)
	}
	return p, nil
}

// ReadyToAssign returns the budget-wide unassigned total as of month.
func (s *Service) ReadyToAssign(ctx context.Context, budgetID string, month model.Month) (int64, error) {
	return engine.ReadyToAssign(ctx, s.store, budgetID, month)
}

// budgetOfCategory resolves a category's owning budget through its group.
func (s *Service) budgetOfCategory(ctx context.Context, c model.Category) (string, error) {
	g, err := s.store.Group(ctx, c.GroupID)
	if err != nil {
		return "", IntegrityError{Entity: "category", ID: c.ID, Message: "references missing group " + c.GroupID}
	}
	return g.BudgetID, nil
}
