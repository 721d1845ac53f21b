package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/envelo-dev/envelo/internal/model"
	"github.com/envelo-dev/envelo/internal/money"
)

func newAccountCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}

	var accountType string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account to the budget",
		Args:  cobra.ExactArgs(1),
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
			a, err := app.Ledger.CreateAccount(cmd.Context(), budgetID, args[0], model.AccountType(accountType))
			if err != nil {
				return err
			}
			app.record("account.add", "account", a.ID, a.Name)
			return app.printResult(a, a.ID, fmt.Sprintf("Added %s account %q (%s)", a.Type, a.Name, a.ID))
		},
	}
	add.Flags().StringVar(&accountType, "type", "checking", "account type: checking, savings, credit, cash, tracking")

	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts with balances",
		Args:  cobra.NoArgs,
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
			ctx := cmd.Context()
			accounts, err := app.Store.Accounts(ctx, budgetID)
			if err != nil {
				return err
			}
			transactions, err := app.Store.Transactions(ctx, budgetID)
			if err != nil {
				return err
			}
			balances := make(map[string]int64)
			for _, t := range transactions {
				balances[t.AccountID] += t.Amount
			}

			if opts.jsonOut {
				type accountBalance struct {
					model.Account
					Balance int64 `json:"balance"`
				}
				out := make([]accountBalance, len(accounts))
				for i, a := range accounts {
					out[i] = accountBalance{Account: a, Balance: balances[a.ID]}
				}
				return app.printResult(out, "", "")
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, a := range accounts {
				if opts.quiet {
					fmt.Println(a.ID)
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Type, money.FormatCents(balances[a.ID]))
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}
