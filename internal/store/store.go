// Package store defines the durable keyed storage for budget entities.
// The store holds no business logic: it exposes get/list/save/delete per
// entity type and leaves validation, cascades and recomputation to the
// services layer.
package store

import (
	"context"
	"errors"

	"github.com/envelo-dev/envelo/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrClosed is returned by every operation on a closed store. Reads on an
// uninitialized store fail descriptively instead of returning empty data.
var ErrClosed = errors.New("store is closed")

// Store is the ledger store contract. Save is an upsert keyed by entity
// ID. List methods scope to one budget and return entities in a stable
// order. Delete of a missing entity is a no-op.
type Store interface {
	Budget(ctx context.Context, id string) (model.Budget, error)
	Budgets(ctx context.Context) ([]model.Budget, error)
	SaveBudget(ctx context.Context, b model.Budget) error
	DeleteBudget(ctx context.Context, id string) error

	Account(ctx context.Context, id string) (model.Account, error)
	Accounts(ctx context.Context, budgetID string) ([]model.Account, error)
	SaveAccount(ctx context.Context, a model.Account) error
	DeleteAccount(ctx context.Context, id string) error

	Group(ctx context.Context, id string) (model.CategoryGroup, error)
	Groups(ctx context.Context, budgetID string) ([]model.CategoryGroup, error)
	SaveGroup(ctx context.Context, g model.CategoryGroup) error
	DeleteGroup(ctx context.Context, id string) error

	Category(ctx context.Context, id string) (model.Category, error)
	Categories(ctx context.Context, budgetID string) ([]model.Category, error)
	SaveCategory(ctx context.Context, c model.Category) error
	DeleteCategory(ctx context.Context, id string) error

	Payee(ctx context.Context, id string) (model.Payee, error)
	Payees(ctx context.Context, budgetID string) ([]model.Payee, error)
	SavePayee(ctx context.Context, p model.Payee) error
	DeletePayee(ctx context.Context, id string) error

	Transaction(ctx context.Context, id string) (model.Transaction, error)
	Transactions(ctx context.Context, budgetID string) ([]model.Transaction, error)
	SaveTransaction(ctx context.Context, t model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	// DeleteTransactions removes several transactions atomically: either
	// all rows are gone afterwards or none are. Transfer-pair deletion
	// depends on this.
	DeleteTransactions(ctx context.Context, ids ...string) error

	Assignment(ctx context.Context, id string) (model.Assignment, error)
	// AssignmentFor returns the single assignment for (category, month),
	// or ErrNotFound.
	AssignmentFor(ctx context.Context, categoryID string, month model.Month) (model.Assignment, error)
	Assignments(ctx context.Context, budgetID string) ([]model.Assignment, error)
	SaveAssignment(ctx context.Context, a model.Assignment) error
	DeleteAssignment(ctx context.Context, id string) error

	Target(ctx context.Context, id string) (model.Target, error)
	Targets(ctx context.Context, budgetID string) ([]model.Target, error)
	SaveTarget(ctx context.Context, t model.Target) error
	DeleteTarget(ctx context.Context, id string) error

	Close() error
}
