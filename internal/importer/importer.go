// Package importer loads bank CSV exports as uncategorized transactions.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/envelo-dev/envelo/internal/ledger"
	"github.com/envelo-dev/envelo/internal/model"
)

// Row is one parsed bank CSV line. Amount is signed cents; positive =
// inflow.
type Row struct {
	Date        model.Date
	Description string
	Amount      int64
	Reference   string
}

// Parser converts a bank CSV file into Rows.
type Parser interface {
	Parse(r io.Reader) ([]Row, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats returns the registered format names.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		out = append(out, k)
	}
	return out
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	r.Register(&GenericParser{})
	return r
}

// Load creates uncategorized transactions for the rows against one
// account, deduplicating payees by description. Zero-amount rows are
// skipped. Recomputation is deliberately left to the caller: it refreshes
// once with the returned earliest month after the whole batch is loaded.
func Load(ctx context.Context, svc *ledger.Service, accountID string, rows []Row) ([]model.Transaction, model.Month, error) {
	account, err := svc.Store().Account(ctx, accountID)
	if err != nil {
		return nil, model.Month{}, err
	}

	var created []model.Transaction
	var earliest model.Month
	for i, row := range rows {
		if row.Amount == 0 {
			continue
		}
		var payeeID string
		if row.Description != "" {
			payee, err := svc.FindOrCreatePayee(ctx, account.BudgetID, row.Description)
			if err != nil {
				return nil, model.Month{}, fmt.Errorf("row %d: %w", i+1, err)
			}
			payeeID = payee.ID
		}
		t, err := svc.AddTransaction(ctx, ledger.AddTransactionParams{
			AccountID: accountID,
			PayeeID:   payeeID,
			Date:      row.Date,
			Amount:    row.Amount,
			Memo:      row.Reference,
		})
		if err != nil {
			return nil, model.Month{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		created = append(created, t)
		if earliest.IsZero() || t.Date.Month().Before(earliest) {
			earliest = t.Date.Month()
		}
	}
	return created, earliest, nil
}
