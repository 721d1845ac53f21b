package model

// Transaction is a single signed money movement on an account.
// Amounts are integer minor currency units (cents); positive = inflow.
type Transaction struct {
	ID         string `json:"id"`
	AccountID  string `json:"accountId"`
	CategoryID string `json:"categoryId,omitempty"` // empty = uncategorized
	PayeeID    string `json:"payeeId,omitempty"`
	Date       Date   `json:"date"`
	Amount     int64  `json:"amount"`
	Cleared    bool   `json:"cleared"`
	Memo       string `json:"memo,omitempty"`

	// TransferAccountID marks this transaction as one leg of an
	// inter-account transfer; the paired leg lives on that account with
	// the opposite amount and the reciprocal back-reference.
	TransferAccountID string `json:"transferAccountId,omitempty"`
}

// IsTransfer reports whether the transaction is a transfer leg.
func (t Transaction) IsTransfer() bool {
	return t.TransferAccountID != ""
}
