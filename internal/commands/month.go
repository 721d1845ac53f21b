package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/envelo-dev/envelo/internal/model"
	"github.com/envelo-dev/envelo/internal/money"
)

func newMonthCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Show the month summary (assigned/activity/available per category)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()
			ctx := cmd.Context()

			budgetID, err := app.budgetID(opts.budget)
			if err != nil {
				return err
			}
			month := model.CurrentMonth()
			if len(args) > 0 {
				month, err = model.ParseMonth(args[0])
				if err != nil {
					return err
				}
			}

			summary, err := app.Rollover.Summary(ctx, app.Store, budgetID, month)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return app.printResult(summary, "", "")
			}

			groups, err := app.Store.Groups(ctx, budgetID)
			if err != nil {
				return err
			}
			groupNames := make(map[string]string, len(groups))
			for _, g := range groups {
				groupNames[g.ID] = g.Name
			}

			fmt.Printf("%s  ready to assign: %s\n\n", summary.Month, money.FormatCents(summary.ToAssign))
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tASSIGNED\tACTIVITY\tAVAILABLE")
			lastGroup := ""
			for _, cb := range summary.Categories {
				if cb.GroupID != lastGroup {
					fmt.Fprintf(w, "%s\t\t\t\n", groupNames[cb.GroupID])
					lastGroup = cb.GroupID
				}
				fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", cb.Name,
					money.FormatCents(cb.Assigned),
					money.FormatCents(cb.Activity),
					money.FormatCents(cb.Available))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if summary.Uncategorized != 0 {
				fmt.Printf("\nUncategorized activity: %s\n", money.FormatCents(summary.Uncategorized))
			}
			return nil
		},
	}
	return cmd
}

func newRTACommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rta [YYYY-MM]",
		Short: "Show ready-to-assign for a month",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			budgetID, err := app.budgetID(opts.budget)
			if err != nil {
				return err
			}
			month := model.CurrentMonth()
			if len(args) > 0 {
				month, err = model.ParseMonth(args[0])
				if err != nil {
					return err
				}
			}
			rta, err := app.Ledger.ReadyToAssign(cmd.Context(), budgetID, month)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return app.printResult(map[string]any{"month": month, "readyToAssign": rta}, "", "")
			}
			fmt.Println(money.FormatCents(rta))
			return nil
		},
	}
	return cmd
}
