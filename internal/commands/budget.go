package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBudgetCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage budgets",
	}

	var currency string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			cur := currency
			if cur == "" {
				cur = app.Config.Budget.Currency
			}
			b, err := app.Ledger.CreateBudget(cmd.Context(), args[0], cur)
			if err != nil {
				return err
			}
			app.record("budget.create", "budget", b.ID, b.Name)
			return app.printResult(b, b.ID, fmt.Sprintf("Created budget %q (%s)", b.Name, b.ID))
		},
	}
	create.Flags().StringVar(&currency, "currency", "", "currency code (default from config)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List budgets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			budgets, err := app.Store.Budgets(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return app.printResult(budgets, "", "")
			}
			for _, b := range budgets {
				if opts.quiet {
					fmt.Println(b.ID)
					continue
				}
				fmt.Printf("%s  %s (%s)\n", b.ID, b.Name, b.Currency)
			}
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <budget-id>",
		Short: "Delete a budget and everything it owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Ledger.DeleteBudget(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.Rollover.Forget(args[0])
			app.record("budget.delete", "budget", args[0], "")
			if !opts.quiet {
				fmt.Printf("Deleted budget %s\n", args[0])
			}
			return nil
		},
	}

	cmd.AddCommand(create, list, del)
	return cmd
}
