package model

// AccountType classifies accounts.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeCredit   AccountType = "credit"
	AccountTypeCash     AccountType = "cash"
	AccountTypeTracking AccountType = "tracking"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCredit, AccountTypeCash, AccountTypeTracking:
		return true
	}
	return false
}

// Account holds transactions. Tracking accounts are excluded from
// ready-to-assign and category balances but still record transactions.
type Account struct {
	ID       string      `json:"id"`
	BudgetID string      `json:"budgetId"`
	Name     string      `json:"name"`
	Type     AccountType `json:"type"`
}

// OnBudget reports whether the account's balance counts toward
// ready-to-assign. Derived: every type except tracking.
func (a Account) OnBudget() bool {
	return a.Type != AccountTypeTracking
}
