package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/envelo-dev/envelo/internal/ledger"
	"github.com/envelo-dev/envelo/internal/model"
	"github.com/envelo-dev/envelo/internal/money"
)

func newTxnCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "txn",
		Short: "Manage transactions",
	}

	var (
		accountID  string
		categoryID string
		payeeName  string
		dateStr    string
		amountStr  string
		memo       string
		cleared    bool
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()
			ctx := cmd.Context()

			date, err := model.ParseDate(dateStr)
			if err != nil {
				return err
			}
			amount, err := money.ParseCents(amountStr)
			if err != nil {
				return err
			}
			account, err := app.Store.Account(ctx, accountID)
			if err != nil {
				return err
			}

			var payeeID string
			if payeeName != "" {
				payee, err := app.Ledger.FindOrCreatePayee(ctx, account.BudgetID, payeeName)
				if err != nil {
					return err
				}
				payeeID = payee.ID
			}

			t, err := app.Ledger.AddTransaction(ctx, ledger.AddTransactionParams{
				AccountID:  accountID,
				CategoryID: categoryID,
				PayeeID:    payeeID,
				Date:       date,
				Amount:     amount,
				Cleared:    cleared,
				Memo:       memo,
			})
			if err != nil {
				return err
			}
			if _, err := app.refresh(ctx, account.BudgetID, t.Date.Month()); err != nil {
				return err
			}
			app.record("txn.add", "transaction", t.ID, money.FormatCents(t.Amount))
			return app.printResult(t, t.ID,
				fmt.Sprintf("Added transaction %s: %s on %s", t.ID, money.FormatCents(t.Amount), t.Date))
		},
	}
	add.Flags().StringVar(&accountID, "account", "", "account id (required)")
	_ = add.MarkFlagRequired("account")
	add.Flags().StringVar(&categoryID, "category", "", "category id (empty = uncategorized)")
	add.Flags().StringVar(&payeeName, "payee", "", "payee name (deduplicated case-insensitively)")
	add.Flags().StringVar(&dateStr, "date", "", "date YYYY-MM-DD (required)")
	_ = add.MarkFlagRequired("date")
	add.Flags().StringVar(&amountStr, "amount", "", "signed amount, e.g. -20.00 (required)")
	_ = add.MarkFlagRequired("amount")
	add.Flags().StringVar(&memo, "memo", "", "memo")
	add.Flags().BoolVar(&cleared, "cleared", false, "mark cleared")

	del := &cobra.Command{
		Use:   "delete <transaction-id>",
		Short: "Delete a transaction (both legs, for a transfer)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()
			ctx := cmd.Context()

			t, err := app.Store.Transaction(ctx, args[0])
			if err != nil {
				return err
			}
			account, err := app.Store.Account(ctx, t.AccountID)
			if err != nil {
				return err
			}
			from, err := app.Ledger.DeleteTransactionWithTransfer(ctx, args[0])
			if err != nil {
				return err
			}
			if _, err := app.refresh(ctx, account.BudgetID, from); err != nil {
				return err
			}
			app.record("txn.delete", "transaction", args[0], "")
			if !opts.quiet {
				fmt.Printf("Deleted transaction %s\n", args[0])
			}
			return nil
		},
	}

	var monthStr string
	list := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Args:  cobra.NoArgs,
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
			transactions, err := app.Store.Transactions(ctx, budgetID)
			if err != nil {
				return err
			}
			if monthStr != "" {
				month, err := model.ParseMonth(monthStr)
				if err != nil {
					return err
				}
				filtered := transactions[:0]
				for _, t := range transactions {
					if month.Contains(t.Date) {
						filtered = append(filtered, t)
					}
				}
				transactions = filtered
			}

			if opts.jsonOut {
				return app.printResult(transactions, "", "")
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, t := range transactions {
				if opts.quiet {
					fmt.Println(t.ID)
					continue
				}
				kind := ""
				if t.IsTransfer() {
					kind = "transfer"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Date, money.FormatCents(t.Amount), t.Memo, kind)
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&monthStr, "month", "", "only transactions in YYYY-MM")

	cmd.AddCommand(add, del, list)
	return cmd
}

func newTransferCommand(opts *rootOptions) *cobra.Command {
	var (
		fromID    string
		toID      string
		dateStr   string
		amountStr string
		memo      string
	)
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money between accounts (two linked legs)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp()
			if err != nil {
				return err
			}
			defer app.Close()
			ctx := cmd.Context()

			date, err := model.ParseDate(dateStr)
			if err != nil {
				return err
			}
			amount, err := money.ParseCents(amountStr)
			if err != nil {
				return err
			}
			out, in, err := app.Ledger.AddTransfer(ctx, fromID, toID, date, amount, memo)
			if err != nil {
				return err
			}
			account, err := app.Store.Account(ctx, out.AccountID)
			if err != nil {
				return err
			}
			if _, err := app.refresh(ctx, account.BudgetID, date.Month()); err != nil {
				return err
			}
			app.record("transfer.add", "transaction", out.ID, money.FormatCents(amount))
			return app.printResult([]model.Transaction{out, in}, out.ID,
				fmt.Sprintf("Transferred %s (%s -> %s)", money.FormatCents(amount), fromID, toID))
		},
	}
	cmd.Flags().StringVar(&fromID, "from", "", "source account id (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&toID, "to", "", "destination account id (required)")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().StringVar(&dateStr, "date", "", "date YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().StringVar(&amountStr, "amount", "", "positive amount to move (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&memo, "memo", "", "memo")
	return cmd
}
