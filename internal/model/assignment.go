package model

// Assignment records the amount assigned to a category for one specific
// month (not cumulative). At most one assignment exists per
// (category, month); re-assigning replaces the prior amount.
type Assignment struct {
	ID         string `json:"id"`
	CategoryID string `json:"categoryId"`
	Month      Month  `json:"month"`
	Amount     int64  `json:"amount"`
}

// TargetType classifies category targets.
type TargetType string

const (
	TargetSpendingLimit       TargetType = "spending_limit"
	TargetSavingsBalance      TargetType = "savings_balance"
	TargetMonthlyContribution TargetType = "monthly_contribution"
)

// Valid reports whether t is a known target type.
func (t TargetType) Valid() bool {
	switch t {
	case TargetSpendingLimit, TargetSavingsBalance, TargetMonthlyContribution:
		return true
	}
	return false
}

// Target is an informational goal for a category. It never affects
// balance computation; only presentation consumes it.
type Target struct {
	ID         string     `json:"id"`
	CategoryID string     `json:"categoryId"`
	Type       TargetType `json:"type"`
	Amount     int64      `json:"amount"`
	TargetDate Date       `json:"targetDate,omitzero"`
}
