package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/envelo-dev/envelo/internal/id"
	"github.com/envelo-dev/envelo/internal/model"
)

// CreateGroup adds a category group at the end of the budget's ordering.
func (s *Service) CreateGroup(ctx context.Context, budgetID, name string) (model.CategoryGroup, error) {
	if strings.TrimSpace(name) == "" {
		return model.CategoryGroup{}, ValidationError{Field: "name", Message: "must not be empty"}
	}
	if _, err := s.store.Budget(ctx, budgetID); err != nil {
		return model.CategoryGroup{}, err
	}
	groups, err := s.store.Groups(ctx, budgetID)
	if err != nil {
		return model.CategoryGroup{}, fmt.Errorf("loading category groups: %w", err)
	}
	order := 0
	for _, g := range groups {
		if g.SortOrder >= order {
			order = g.SortOrder + 1
		}
	}
	g := model.CategoryGroup{ID: id.New(), BudgetID: budgetID, Name: name, SortOrder: order}
	if err := s.store.SaveGroup(ctx, g); err != nil {
		return model.CategoryGroup{}, fmt.Errorf("saving category group: %w", err)
	}
	return g, nil
}

// RenameGroup changes a group's display name.
func (s *Service) RenameGroup(ctx context.Context, groupID, name string) (model.CategoryGroup, error) {
	if strings.TrimSpace(name) == "" {
		return model.CategoryGroup{}, ValidationError{Field: "name", Message: "must not be empty"}
	}
	g, err := s.store.Group(ctx, groupID)
	if err != nil {
		return model.CategoryGroup{}, err
	}
	g.Name = name
	if err := s.store.SaveGroup(ctx, g); err != nil {
		return model.CategoryGroup{}, fmt.Errorf("saving category group: %w", err)
	}
	return g, nil
}

// DeleteGroup removes a group and all of its categories in the same
// logical operation.
func (s *Service) DeleteGroup(ctx context.Context, groupID string) error {
	g, err := s.store.Group(ctx, groupID)
	if err != nil {
		return err
	}
	categories, err := s.store.Categories(ctx, g.BudgetID)
	if err != nil {
		return fmt.Errorf("loading categories: %w", err)
	}
	for _, c := range categories {
		if c.GroupID != groupID {
			continue
		}
		if err := s.DeleteCategory(ctx, c.ID); err != nil {
			return err
		}
	}
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return fmt.Errorf("deleting category group: %w", err)
	}
	return nil
}

// CreateCategory adds a category to a group. Its carryover chain starts
// at created; a zero created month defaults to the current month.
func (s *Service) CreateCategory(ctx context.Context, groupID, name string, created model.Month) (model.Category, error) {
	if strings.TrimSpace(name) == "" {
		return model.Category{}, ValidationError{Field: "name", Message: "must not be empty"}
	}
	g, err := s.store.Group(ctx, groupID)
	if err != nil {
		return model.Category{}, err
	}
	if created.IsZero() {
		created = model.CurrentMonth()
	}
	categories, err := s.store.Categories(ctx, g.BudgetID)
	if err != nil {
		return model.Category{}, fmt.Errorf("loading categories: %w", err)
	}
	order := 0
	for _, c := range categories {
		if c.GroupID == groupID && c.SortOrder >= order {
			order = c.SortOrder + 1
		}
	}
	c := model.Category{ID: id.New(), GroupID: groupID, Name: name, SortOrder: order, Created: created}
	if err := s.store.SaveCategory(ctx, c); err != nil {
		return model.Category{}, fmt.Errorf("saving category: %w", err)
	}
	return c, nil
}

// RenameCategory changes a category's display name.
func (s *Service) RenameCategory(ctx context.Context, categoryID, name string) (model.Category, error) {
	if strings.TrimSpace(name) == "" {
		return model.Category{}, ValidationError{Field: "name", Message: "must not be empty"}
	}
	c, err := s.store.Category(ctx, categoryID)
	if err != nil {
		return model.Category{}, err
	}
	c.Name = name
	if err := s.store.SaveCategory(ctx, c); err != nil {
		return model.Category{}, fmt.Errorf("saving category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes a category. Its transactions become
// uncategorized; its assignments and targets are removed in the same
// logical operation.
func (s *Service) DeleteCategory(ctx context.Context, categoryID string) error {
	c, err := s.store.Category(ctx, categoryID)
	if err != nil {
		return err
	}
	budgetID, err := s.budgetOfCategory(ctx, c)
	if err != nil {
		return err
	}

	transactions, err := s.store.Transactions(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("loading transactions: %w", err)
	}
	for _, t := range transactions {
		if t.CategoryID != categoryID {
			continue
		}
		t.CategoryID = ""
		if err := s.store.SaveTransaction(ctx, t); err != nil {
			return fmt.Errorf("uncategorizing transaction: %w", err)
		}
	}

	assignments, err := s.store.Assignments(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("loading assignments: %w", err)
	}
	for _, a := range assignments {
		if a.CategoryID != categoryID {
			continue
		}
		if err := s.store.DeleteAssignment(ctx, a.ID); err != nil {
			return fmt.Errorf("deleting assignment: %w", err)
		}
	}

	targets, err := s.store.Targets(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("loading targets: %w", err)
	}
	for _, t := range targets {
		if t.CategoryID != categoryID {
			continue
		}
		if err := s.store.DeleteTarget(ctx, t.ID); err != nil {
			return fmt.Errorf("deleting target: %w", err)
		}
	}

	if err := s.store.DeleteCategory(ctx, categoryID); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	return nil
}
