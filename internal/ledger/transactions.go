package ledger

import (
	"context"
	"fmt"

	"github.com/envelo-dev/envelo/internal/id"
	"github.com/envelo-dev/envelo/internal/model"
)

// AddTransactionParams holds input for a new transaction. Amount is
// signed cents; positive = inflow. Empty CategoryID means uncategorized.
type AddTransactionParams struct {
	AccountID  string
	CategoryID string
	PayeeID    string
	Date       model.Date
	Amount     int64
	Cleared    bool
	Memo       string
}

func (s *Service) validateTransaction(ctx context.Context, p AddTransactionParams) error {
	if p.Amount == 0 {
		return ValidationError{Field: "amount", Message: "must be non-zero"}
	}
	if p.Date.IsZero() {
		return ValidationError{Field: "date", Message: "must be a valid date"}
	}
	account, err := s.store.Account(ctx, p.AccountID)
	if err != nil {
		return err
	}
	if p.CategoryID != "" {
		category, err := s.store.Category(ctx, p.CategoryID)
		if err != nil {
			return err
		}
		budgetID, err := s.budgetOfCategory(ctx, category)
		if err != nil {
			return err
		}
		if budgetID != account.BudgetID {
			return ValidationError{Field: "categoryId", Message: "category belongs to a different budget"}
		}
	}
	if p.PayeeID != "" {
		payee, err := s.store.Payee(ctx, p.PayeeID)
		if err != nil {
			return err
		}
		if payee.BudgetID != account.BudgetID {
			return ValidationError{Field: "payeeId", Message: "payee belongs to a different budget"}
		}
	}
	return nil
}

// AddTransaction validates and persists a new transaction. It does not
// recompute balances; the caller refreshes the rollover cache with the
// transaction's month.
func (s *Service) AddTransaction(ctx context.Context, p AddTransactionParams) (model.Transaction, error) {
	if err := s.validateTransaction(ctx, p); err != nil {
		return model.Transaction{}, err
	}
	t := model.Transaction{
		ID:         id.New(),
		AccountID:  p.AccountID,
		CategoryID: p.CategoryID,
		PayeeID:    p.PayeeID,
		Date:       p.Date,
		Amount:     p.Amount,
		Cleared:    p.Cleared,
		Memo:       p.Memo,
	}
	if err := s.store.SaveTransaction(ctx, t); err != nil {
		return model.Transaction{}, fmt.Errorf("saving transaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction replaces a non-transfer transaction's fields.
// It returns the updated transaction and the earliest affected month:
// moving a transaction across months invalidates both the origin and
// the destination chain, so the earlier of the two.
func (s *Service) UpdateTransaction(ctx context.Context, transactionID string, p AddTransactionParams) (model.Transaction, model.Month, error) {
	old, err := s.store.Transaction(ctx, transactionID)
	if err != nil {
		return model.Transaction{}, model.Month{}, err
	}
	if old.IsTransfer() {
		return model.Transaction{}, model.Month{}, ValidationError{
			Field: "transactionId", Message: "transfer legs are edited through UpdateTransfer",
		}
	}
	if err := s.validateTransaction(ctx, p); err != nil {
		return model.Transaction{}, model.Month{}, err
	}
	updated := model.Transaction{
		ID:         old.ID,
		AccountID:  p.AccountID,
		CategoryID: p.CategoryID,
		PayeeID:    p.PayeeID,
		Date:       p.Date,
		Amount:     p.Amount,
		Cleared:    p.Cleared,
		Memo:       p.Memo,
	}
	if err := s.store.SaveTransaction(ctx, updated); err != nil {
		return model.Transaction{}, model.Month{}, fmt.Errorf("saving transaction: %w", err)
	}
	return updated, model.MinMonth(old.Date.Month(), updated.Date.Month()), nil
}

// AddTransfer creates both legs of an inter-account transfer: an
// outflow on the source account and a matching inflow on the
// destination, each carrying the reciprocal back-reference. Transfer
// legs never carry a category.
func (s *Service) AddTransfer(ctx context.Context, fromAccountID, toAccountID string, date model.Date, amount int64, memo string) (model.Transaction, model.Transaction, error) {
	var none model.Transaction
	if amount <= 0 {
		return none, none, ValidationError{Field: "amount", Message: "must be positive"}
	}
	if date.IsZero() {
		return none, none, ValidationError{Field: "date", Message: "must be a valid date"}
	}
	if fromAccountID == toAccountID {
		return none, none, ValidationError{Field: "accountId", Message: "cannot transfer within one account"}
	}
	from, err := s.store.Account(ctx, fromAccountID)
	if err != nil {
		return none, none, err
	}
	to, err := s.store.Account(ctx, toAccountID)
	if err != nil {
		return none, none, err
	}
	if from.BudgetID != to.BudgetID {
		return none, none, ValidationError{Field: "accountId", Message: "accounts belong to different budgets"}
	}

	out := model.Transaction{
		ID:                id.New(),
		AccountID:         from.ID,
		Date:              date,
		Amount:            -amount,
		Memo:              memo,
		TransferAccountID: to.ID,
	}
	in := model.Transaction{
		ID:                id.New(),
		AccountID:         to.ID,
		Date:              date,
		Amount:            amount,
		Memo:              memo,
		TransferAccountID: from.ID,
	}
	if err := s.store.SaveTransaction(ctx, out); err != nil {
		return none, none, fmt.Errorf("saving transfer leg: %w", err)
	}
	if err := s.store.SaveTransaction(ctx, in); err != nil {
		// Undo the first leg so no single-leg state survives.
		if derr := s.store.DeleteTransaction(ctx, out.ID); derr != nil {
			return none, none, fmt.Errorf("saving transfer leg: %v (removing first leg: %w)", err, derr)
		}
		return none, none, fmt.Errorf("saving transfer leg: %w", err)
	}
	return out, in, nil
}

// pairedLeg locates the other leg of a transfer: the transaction on the
// referenced account that points back with the opposite amount.
func (s *Service) pairedLeg(ctx context.Context, leg model.Transaction, budgetID string) (model.Transaction, error) {
	transactions, err := s.store.Transactions(ctx, budgetID)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("loading transactions: %w", err)
	}
	for _, t := range transactions {
		if t.ID == leg.ID {
			continue
		}
		if t.AccountID == leg.TransferAccountID &&
			t.TransferAccountID == leg.AccountID &&
			t.Amount == -leg.Amount {
			return t, nil
		}
	}
	return model.Transaction{}, IntegrityError{Entity: "transaction", ID: leg.ID, Message: "transfer leg has no pair"}
}

// UpdateTransfer changes a transfer's date, amount and memo, keeping
// both legs equal and opposite. Either leg may be passed. Returns both
// updated legs and the earliest affected month.
func (s *Service) UpdateTransfer(ctx context.Context, legID string, date model.Date, amount int64, memo string) (model.Transaction, model.Transaction, model.Month, error) {
	var none model.Transaction
	if amount <= 0 {
		return none, none, model.Month{}, ValidationError{Field: "amount", Message: "must be positive"}
	}
	if date.IsZero() {
		return none, none, model.Month{}, ValidationError{Field: "date", Message: "must be a valid date"}
	}
	leg, err := s.store.Transaction(ctx, legID)
	if err != nil {
		return none, none, model.Month{}, err
	}
	if !leg.IsTransfer() {
		return none, none, model.Month{}, ValidationError{Field: "transactionId", Message: "not a transfer leg"}
	}
	account, err := s.store.Account(ctx, leg.AccountID)
	if err != nil {
		return none, none, model.Month{}, err
	}
	pair, err := s.pairedLeg(ctx, leg, account.BudgetID)
	if err != nil {
		return none, none, model.Month{}, err
	}

	earliest := model.MinMonth(leg.Date.Month(), date.Month())

	sign := int64(1)
	if leg.Amount < 0 {
		sign = -1
	}
	leg.Date, leg.Amount, leg.Memo = date, sign*amount, memo
	pair.Date, pair.Amount, pair.Memo = date, -sign*amount, memo

	if err := s.store.SaveTransaction(ctx, leg); err != nil {
		return none, none, model.Month{}, fmt.Errorf("saving transfer leg: %w", err)
	}
	if err := s.store.SaveTransaction(ctx, pair); err != nil {
		return none, none, model.Month{}, fmt.Errorf("saving transfer leg: %w", err)
	}
	return leg, pair, earliest, nil
}

// DeleteTransactionWithTransfer deletes a transaction; when it is a
// transfer leg, the paired leg goes with it atomically. No store state
// with exactly one leg of a transfer is ever observable. Returns the
// earliest affected month.
func (s *Service) DeleteTransactionWithTransfer(ctx context.Context, transactionID string) (model.Month, error) {
	t, err := s.store.Transaction(ctx, transactionID)
	if err != nil {
		return model.Month{}, err
	}
	earliest := t.Date.Month()

	if !t.IsTransfer() {
		if err := s.store.DeleteTransaction(ctx, transactionID); err != nil {
			return model.Month{}, fmt.Errorf("deleting transaction: %w", err)
		}
		return earliest, nil
	}

	account, err := s.store.Account(ctx, t.AccountID)
	if err != nil {
		return model.Month{}, err
	}
	pair, err := s.pairedLeg(ctx, t, account.BudgetID)
	if err != nil {
		return model.Month{}, err
	}
	earliest = model.MinMonth(earliest, pair.Date.Month())
	if err := s.store.DeleteTransactions(ctx, t.ID, pair.ID); err != nil {
		return model.Month{}, fmt.Errorf("deleting transfer: %w", err)
	}
	return earliest, nil
}
