package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/envelo-dev/envelo/internal/model"
	"github.com/envelo-dev/envelo/internal/money"
)

func newAssignCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <category-id> <month> <amount>",
		Short: "Set the amount assigned to a category for a month",
		Long: `Set the amount assigned to a category for a month.

Assigning replaces the month's prior value; it never accumulates:
assigning 50.00 then 80.00 leaves 80.00 assigned.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()
			ctx := cmd.Context()

			month, err := model.ParseMonth(args[1])
			if err != nil {
				return err
			}
			amount, err := money.ParseCents(args[2])
			if err != nil {
				return err
			}
			a, err := app.Ledger.AssignToCategory(ctx, args[0], month, amount)
			if err != nil {
				return err
			}

			category, err := app.Store.Category(ctx, a.CategoryID)
			if err != nil {
				return err
			}
			group, err := app.Store.Group(ctx, category.GroupID)
			if err != nil {
				return err
			}
			if _, err := app.refresh(ctx, group.BudgetID, month); err != nil {
				return err
			}
			app.record("assign.set", "assignment", a.ID,
				fmt.Sprintf("%s %s", month, money.FormatCents(amount)))
			return app.printResult(a, a.ID,
				fmt.Sprintf("Assigned %s to %q for %s", money.FormatCents(amount), category.Name, month))
		},
	}
	return cmd
}

func newTargetCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Manage category targets (informational only)",
	}

	var (
		targetType string
		dateStr    string
	)
	set := &cobra.Command{
		Use:   "set <category-id> <amount>",
		Short: "Set a category's target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			amount, err := money.ParseCents(args[1])
			if err != nil {
				return err
			}
			var targetDate model.Date
			if dateStr != "" {
				targetDate, err = model.ParseDate(dateStr)
				if err != nil {
					return err
				}
			}
			t, err := app.Ledger.SetTarget(cmd.Context(), args[0], model.TargetType(targetType), amount, targetDate)
			if err != nil {
				return err
			}
			app.record("target.set", "target", t.ID, string(t.Type))
			return app.printResult(t, t.ID,
				fmt.Sprintf("Set %s target of %s", t.Type, money.FormatCents(t.Amount)))
		},
	}
	set.Flags().StringVar(&targetType, "type", "monthly_contribution",
		"target type: spending_limit, savings_balance, monthly_contribution")
	set.Flags().StringVar(&dateStr, "by", "", "target date YYYY-MM-DD")

	clear := &cobra.Command{
		Use:   "clear <category-id>",
		Short: "Remove a category's target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Ledger.ClearTarget(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.record("target.clear", "category", args[0], "")
			if !opts.quiet {
				fmt.Printf("Cleared target for category %s\n", args[0])
			}
			return nil
		},
	}

	cmd.AddCommand(set, clear)
	return cmd
}
