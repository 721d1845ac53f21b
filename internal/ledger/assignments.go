package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/envelo-dev/envelo/internal/id"
	"github.com/envelo-dev/envelo/internal/model"
	"github.com/envelo-dev/envelo/internal/store"
)

// AssignToCategory sets the amount assigned to a category for one month.
// Re-assigning replaces the prior value for that exact month; it never
// accumulates.
func (s *Service) AssignToCategory(ctx context.Context, categoryID string, month model.Month, amount int64) (model.Assignment, error) {
	if month.IsZero() {
		return model.Assignment{}, ValidationError{Field: "month", Message: "must be a valid month"}
	}
	if _, err := s.store.Category(ctx, categoryID); err != nil {
		return model.Assignment{}, err
	}

	existing, err := s.store.AssignmentFor(ctx, categoryID, month)
	switch {
	case err == nil:
		existing.Amount = amount
		if err := s.store.SaveAssignment(ctx, existing); err != nil {
			return model.Assignment{}, fmt.Errorf("saving assignment: %w", err)
		}
		return existing, nil
	case errors.Is(err, store.ErrNotFound):
		a := model.Assignment{ID: id.New(), CategoryID: categoryID, Month: month, Amount: amount}
		if err := s.store.SaveAssignment(ctx, a); err != nil {
			return model.Assignment{}, fmt.Errorf("saving assignment: %w", err)
		}
		return a, nil
	default:
		return model.Assignment{}, fmt.Errorf("loading assignment: %w", err)
	}
}

// SetTarget sets a category's informational target, replacing any
// existing one. Targets never affect balance computation.
func (s *Service) SetTarget(ctx context.Context, categoryID string, targetType model.TargetType, amount int64, targetDate model.Date) (model.Target, error) {
	if !targetType.Valid() {
		return model.Target{}, ValidationError{Field: "type", Message: fmt.Sprintf("unknown target type %q", targetType)}
	}
	if amount <= 0 {
		return model.Target{}, ValidationError{Field: "amount", Message: "must be positive"}
	}
	c, err := s.store.Category(ctx, categoryID)
	if err != nil {
		return model.Target{}, err
	}
	budgetID, err := s.budgetOfCategory(ctx, c)
	if err != nil {
		return model.Target{}, err
	}

	t := model.Target{ID: id.New(), CategoryID: categoryID, Type: targetType, Amount: amount, TargetDate: targetDate}
	targets, err := s.store.Targets(ctx, budgetID)
	if err != nil {
		return model.Target{}, fmt.Errorf("loading targets: %w", err)
	}
	for _, existing := range targets {
		if existing.CategoryID == categoryID {
			t.ID = existing.ID
			break
		}
	}
	if err := s.store.SaveTarget(ctx, t); err != nil {
		return model.Target{}, fmt.Errorf("saving target: %w", err)
	}
	return t, nil
}

// ClearTarget removes a category's target, if any.
func (s *Service) ClearTarget(ctx context.Context, categoryID string) error {
	c, err := s.store.Category(ctx, categoryID)
	if err != nil {
		return err
	}
	budgetID, err := s.budgetOfCategory(ctx, c)
	if err != nil {
		return err
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
	return nil
}
