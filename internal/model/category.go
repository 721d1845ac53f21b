package model

// CategoryGroup orders related categories within a budget.
type CategoryGroup struct {
	ID        string `json:"id"`
	BudgetID  string `json:"budgetId"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
}

// Category is a single envelope. Created is the first month of its
// carryover chain; months before it have no defined balance.
type Category struct {
	ID        string `json:"id"`
	GroupID   string `json:"groupId"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
	Created   Month  `json:"created"`
}

// Payee is a free-form transaction counterparty, deduplicated by
// case-insensitive name at entry time.
type Payee struct {
	ID       string `json:"id"`
	BudgetID string `json:"budgetId"`
	Name     string `json:"name"`
}
