package ledger

import (
	"context"

	"github.com/envelo-dev/envelo/internal/model"
)

// defaultGroups is the starter category layout for a fresh budget.
var defaultGroups = []struct {
	name       string
	categories []string
}{
	{"Bills", []string{"Rent", "Utilities", "Internet", "Phone"}},
	{"Everyday", []string{"Groceries", "Transportation", "Household"}},
	{"Lifestyle", []string{"Dining Out", "Entertainment", "Subscriptions"}},
	{"Savings", []string{"Emergency Fund", "Vacation"}},
}

// SeedDefaultCategories creates the starter groups and categories for a
// new budget, with carryover chains starting at the given month.
func (s *Service) SeedDefaultCategories(ctx context.Context, budgetID string, month model.Month) error {
	for _, dg := range defaultGroups {
		g, err := s.CreateGroup(ctx, budgetID, dg.name)
		if err != nil {
			return err
		}
		for _, name := range dg.categories {
			if _, err := s.CreateCategory(ctx, g.ID, name, month); err != nil {
				return err
			}
		}
	}
	return nil
}
