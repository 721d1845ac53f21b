// Package exchange implements the budget import/export document. A
// document round-trips: exporting a budget and importing it into an
// empty store reproduces identical balances and ready-to-assign for
// every month.
package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/envelo-dev/envelo/internal/model"
	"github.com/envelo-dev/envelo/internal/store"
)

// Version is the current document format version.
const Version = "1"

// Document is the persisted/exchanged budget format.
type Document struct {
	Version        string                `json:"version"`
	ExportedAt     string                `json:"exportedAt"`
	Budget         model.Budget          `json:"budget"`
	Accounts       []model.Account       `json:"accounts"`
	CategoryGroups []model.CategoryGroup `json:"categoryGroups"`
	Categories     []model.Category      `json:"categories"`
	Transactions   []model.Transaction   `json:"transactions"`
	Payees         []model.Payee         `json:"payees"`
	Assignments    []model.Assignment    `json:"assignments"`
	Targets        []model.Target        `json:"targets,omitempty"`
}

// Export collects a budget and everything it owns into a Document.
func Export(ctx context.Context, st store.Store, budgetID string, now time.Time) (*Document, error) {
	budget, err := st.Budget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	accounts, err := st.Accounts(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("exporting accounts: %w", err)
	}
	groups, err := st.Groups(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("exporting category groups: %w", err)
	}
	categories, err := st.Categories(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("exporting categories: %w", err)
	}
	transactions, err := st.Transactions(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("exporting transactions: %w", err)
	}
	payees, err := st.Payees(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("exporting payees: %w", err)
	}
	assignments, err := st.Assignments(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("exporting assignments: %w", err)
	}
	targets, err := st.Targets(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("exporting targets: %w", err)
	}

	return &Document{
		Version:        Version,
		ExportedAt:     now.UTC().Format(time.RFC3339),
		Budget:         budget,
		Accounts:       accounts,
		CategoryGroups: groups,
		Categories:     categories,
		Transactions:   transactions,
		Payees:         payees,
		Assignments:    assignments,
		Targets:        targets,
	}, nil
}

// Import writes a document's budget into the target store. The document
// is first materialized into an in-memory staging store and checked for
// referential integrity; only a fully valid document reaches the target.
// Any failure rejects the import with no partial write.
func Import(ctx context.Context, st store.Store, doc *Document) error {
	if doc.Version != Version {
		return fmt.Errorf("unsupported document version %q", doc.Version)
	}
	if doc.Budget.ID == "" {
		return fmt.Errorf("document budget has no id")
	}
	if _, err := st.Budget(ctx, doc.Budget.ID); err == nil {
		return fmt.Errorf("budget %s already exists", doc.Budget.ID)
	}

	staging := store.NewMemory()
	if err := writeAll(ctx, staging, doc); err != nil {
		return fmt.Errorf("staging document: %w", err)
	}
	if err := verify(ctx, staging, doc); err != nil {
		return err
	}
	if err := writeAll(ctx, st, doc); err != nil {
		discard(ctx, st, doc)
		return fmt.Errorf("importing document: %w", err)
	}
	return nil
}

// discard removes whatever writeAll persisted before failing, so a store
// error mid-write does not leave a half-imported budget behind. Best
// effort: deletes of never-written entities are no-ops, and the write
// error is the one reported.
func discard(ctx context.Context, st store.Store, doc *Document) {
	for _, t := range doc.Targets {
		st.DeleteTarget(ctx, t.ID)
	}
	for _, a := range doc.Assignments {
		st.DeleteAssignment(ctx, a.ID)
	}
	for _, t := range doc.Transactions {
		st.DeleteTransaction(ctx, t.ID)
	}
	for _, p := range doc.Payees {
		st.DeletePayee(ctx, p.ID)
	}
	for _, c := range doc.Categories {
		st.DeleteCategory(ctx, c.ID)
	}
	for _, g := range doc.CategoryGroups {
		st.DeleteGroup(ctx, g.ID)
	}
	for _, a := range doc.Accounts {
		st.DeleteAccount(ctx, a.ID)
	}
	st.DeleteBudget(ctx, doc.Budget.ID)
}

// writeAll persists the document's entities in dependency order.
func writeAll(ctx context.Context, st store.Store, doc *Document) error {
	if err := st.SaveBudget(ctx, doc.Budget); err != nil {
		return err
	}
	for _, a := range doc.Accounts {
		if err := st.SaveAccount(ctx, a); err != nil {
			return err
		}
	}
	for _, g := range doc.CategoryGroups {
		if err := st.SaveGroup(ctx, g); err != nil {
			return err
		}
	}
	for _, c := range doc.Categories {
		if err := st.SaveCategory(ctx, c); err != nil {
			return err
		}
	}
	for _, p := range doc.Payees {
		if err := st.SavePayee(ctx, p); err != nil {
			return err
		}
	}
	for _, t := range doc.Transactions {
		if err := st.SaveTransaction(ctx, t); err != nil {
			return err
		}
	}
	for _, a := range doc.Assignments {
		if err := st.SaveAssignment(ctx, a); err != nil {
			return err
		}
	}
	for _, t := range doc.Targets {
		if err := st.SaveTarget(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// verify checks referential integrity against the staged store.
func verify(ctx context.Context, staged *store.Memory, doc *Document) error {
	budgetID := doc.Budget.ID
	for _, a := range doc.Accounts {
		if a.BudgetID != budgetID {
			return fmt.Errorf("account %s belongs to budget %s, not %s", a.ID, a.BudgetID, budgetID)
		}
		if !a.Type.Valid() {
			return fmt.Errorf("account %s has unknown type %q", a.ID, a.Type)
		}
	}
	for _, g := range doc.CategoryGroups {
		if g.BudgetID != budgetID {
			return fmt.Errorf("category group %s belongs to budget %s, not %s", g.ID, g.BudgetID, budgetID)
		}
	}
	for _, c := range doc.Categories {
		if _, err := staged.Group(ctx, c.GroupID); err != nil {
			return fmt.Errorf("category %s references unknown group %s", c.ID, c.GroupID)
		}
		if c.Created.IsZero() {
			return fmt.Errorf("category %s has no created month", c.ID)
		}
	}
	for _, t := range doc.Transactions {
		if _, err := staged.Account(ctx, t.AccountID); err != nil {
			return fmt.Errorf("transaction %s references unknown account %s", t.ID, t.AccountID)
		}
		if t.CategoryID != "" {
			if _, err := staged.Category(ctx, t.CategoryID); err != nil {
				return fmt.Errorf("transaction %s references unknown category %s", t.ID, t.CategoryID)
			}
		}
		if t.PayeeID != "" {
			if _, err := staged.Payee(ctx, t.PayeeID); err != nil {
				return fmt.Errorf("transaction %s references unknown payee %s", t.ID, t.PayeeID)
			}
		}
		if t.IsTransfer() {
			if err := verifyPair(doc, t); err != nil {
				return err
			}
		}
	}
	for _, a := range doc.Assignments {
		if _, err := staged.Category(ctx, a.CategoryID); err != nil {
			return fmt.Errorf("assignment %s references unknown category %s", a.ID, a.CategoryID)
		}
		if a.Month.IsZero() {
			return fmt.Errorf("assignment %s has no month", a.ID)
		}
	}
	for _, t := range doc.Targets {
		if _, err := staged.Category(ctx, t.CategoryID); err != nil {
			return fmt.Errorf("target %s references unknown category %s", t.ID, t.CategoryID)
		}
		if !t.Type.Valid() {
			return fmt.Errorf("target %s has unknown type %q", t.ID, t.Type)
		}
	}
	return nil
}

func verifyPair(doc *Document, leg model.Transaction) error {
	for _, t := range doc.Transactions {
		if t.ID == leg.ID {
			continue
		}
		if t.AccountID == leg.TransferAccountID &&
			t.TransferAccountID == leg.AccountID &&
			t.Amount == -leg.Amount {
			return nil
		}
	}
	return fmt.Errorf("transaction %s is a transfer leg with no pair", leg.ID)
}
